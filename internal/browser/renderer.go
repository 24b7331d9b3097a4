package browser

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"
)

const (
	defaultWidth = 80
	maxTextWidth = 100
)

// Glamour renderers are expensive to build; keep one per width and style.
var (
	rendererMu    sync.Mutex
	rendererCache = map[rendererKey]*glamour.TermRenderer{}
)

type rendererKey struct {
	width int
	style string
}

// RenderedPage holds the terminal-ready output of a page.
type RenderedPage struct {
	Title   string
	URL     string
	Content string
	Links   []Link
}

// Link returns the link numbered n.
func (p *RenderedPage) Link(n int) (Link, bool) {
	for _, l := range p.Links {
		if l.Index == n {
			return l, true
		}
	}
	return Link{}, false
}

// Render converts an Article into styled terminal text wrapped to width.
// style is a glamour standard style name ("dark", "light", "notty").
func Render(article *Article, width int, style string) *RenderedPage {
	if width <= 0 {
		width = defaultWidth
	}
	textWidth := width - 4
	if textWidth > maxTextWidth {
		textWidth = maxTextWidth
	}

	base, _ := url.Parse(article.FinalURL)
	conv := &mdConverter{base: base}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return &RenderedPage{
			Title:   article.Title,
			URL:     article.FinalURL,
			Content: article.TextContent,
		}
	}

	var md strings.Builder
	if article.Title != "" {
		md.WriteString("# " + article.Title + "\n\n")
	}
	if article.Byline != "" {
		md.WriteString("*" + article.Byline + "*\n\n")
	}

	if len(article.NavLinks) > 0 {
		items := make([]string, 0, len(article.NavLinks))
		for _, l := range article.NavLinks {
			items = append(items, conv.addLink(l.Text, l.URL))
		}
		md.WriteString(strings.Join(items, " · ") + "\n\n")
	}
	md.WriteString("---\n\n")

	doc.Find("body").Children().Each(func(i int, s *goquery.Selection) {
		md.WriteString(conv.block(s, 0))
	})

	out, err := renderMarkdown(md.String(), textWidth, style)
	if err != nil {
		out = md.String()
	}

	return &RenderedPage{
		Title:   article.Title,
		URL:     article.FinalURL,
		Content: out,
		Links:   conv.links,
	}
}

func renderMarkdown(markdown string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	rendererMu.Lock()
	defer rendererMu.Unlock()

	key := rendererKey{width: width, style: style}
	r, ok := rendererCache[key]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		rendererCache[key] = r
	}
	return r.Render(markdown)
}

// mdConverter turns sanitised HTML into markdown, numbering links as it
// goes.
type mdConverter struct {
	base  *url.URL
	links []Link
}

func (c *mdConverter) addLink(text, href string) string {
	abs, ok := ResolveURL(c.base, href)
	if !ok {
		return text
	}
	n := len(c.links) + 1
	c.links = append(c.links, Link{Index: n, Text: text, URL: abs})
	// escaped so markdown keeps the brackets as text in every style
	return fmt.Sprintf(`%s \[%d\]`, text, n)
}

func (c *mdConverter) block(s *goquery.Selection, depth int) string {
	switch tag := goquery.NodeName(s); tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := collapse(s.Text())
		if text == "" {
			return ""
		}
		return strings.Repeat("#", int(tag[1]-'0')) + " " + text + "\n\n"
	case "p", "figcaption", "dt", "dd":
		text := strings.TrimSpace(c.inline(s))
		if text == "" {
			return ""
		}
		if tag == "figcaption" {
			text = "*" + text + "*"
		}
		return text + "\n\n"
	case "ul", "ol":
		return c.list(s, tag == "ol", depth)
	case "blockquote":
		var sb strings.Builder
		body := strings.TrimRight(c.children(s, depth), "\n")
		for _, line := range strings.Split(body, "\n") {
			sb.WriteString("> " + line + "\n")
		}
		return sb.String() + "\n"
	case "pre":
		return c.codeBlock(s)
	case "img":
		alt, _ := s.Attr("alt")
		if alt == "" {
			alt = "image"
		}
		return "*[" + alt + "]*\n\n"
	case "hr":
		return "---\n\n"
	case "table":
		return c.table(s)
	case "div", "article", "section", "main", "header", "footer", "figure", "aside", "dl", "nav":
		return c.children(s, depth)
	default:
		text := strings.TrimSpace(c.inline(s))
		if text == "" {
			return ""
		}
		return text + "\n\n"
	}
}

func (c *mdConverter) children(s *goquery.Selection, depth int) string {
	var sb strings.Builder
	s.Children().Each(func(i int, child *goquery.Selection) {
		sb.WriteString(c.block(child, depth))
	})
	return sb.String()
}

func (c *mdConverter) inline(s *goquery.Selection) string {
	var sb strings.Builder
	s.Contents().Each(func(i int, n *goquery.Selection) {
		switch goquery.NodeName(n) {
		case "#text":
			sb.WriteString(n.Text())
		case "a":
			href, _ := n.Attr("href")
			text := collapse(c.inline(n))
			if text == "" {
				text = href
			}
			sb.WriteString(c.addLink(text, href))
		case "strong", "b":
			sb.WriteString("**" + strings.TrimSpace(c.inline(n)) + "**")
		case "em", "i":
			sb.WriteString("*" + strings.TrimSpace(c.inline(n)) + "*")
		case "code":
			sb.WriteString("`" + n.Text() + "`")
		case "br":
			sb.WriteString("  \n")
		case "ul", "ol":
			// nested lists are handled by list()
		case "img":
			alt, _ := n.Attr("alt")
			if alt != "" {
				sb.WriteString("[" + alt + "]")
			}
		default:
			sb.WriteString(c.inline(n))
		}
	})
	return sb.String()
}

func (c *mdConverter) list(s *goquery.Selection, ordered bool, depth int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", depth)
	s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", i+1)
		}
		sb.WriteString(indent + marker + collapse(c.inline(li)) + "\n")
		li.ChildrenFiltered("ul, ol").Each(func(j int, sub *goquery.Selection) {
			sb.WriteString(c.list(sub, goquery.NodeName(sub) == "ol", depth+1))
		})
	})
	if depth == 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func (c *mdConverter) codeBlock(s *goquery.Selection) string {
	code := s.Find("code").First()
	text := s.Text()
	lang := ""
	if code.Length() > 0 {
		text = code.Text()
		class, _ := code.Attr("class")
		for _, f := range strings.Fields(class) {
			if l, ok := strings.CutPrefix(f, "language-"); ok {
				lang = l
				break
			}
		}
	}
	return "```" + lang + "\n" + strings.TrimRight(text, "\n") + "\n```\n\n"
}

func (c *mdConverter) table(s *goquery.Selection) string {
	var rows [][]string
	s.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var row []string
		tr.ChildrenFiltered("th, td").Each(func(j int, cell *goquery.Selection) {
			row = append(row, strings.ReplaceAll(collapse(cell.Text()), "|", "\\|"))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}

	var sb strings.Builder
	for i, r := range rows {
		for len(r) < cols {
			r = append(r, "")
		}
		sb.WriteString("| " + strings.Join(r, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
		}
	}
	return sb.String() + "\n"
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
