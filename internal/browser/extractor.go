package browser

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
)

// sanitizer strips scripts, styles, frames and event handlers from the
// article HTML before it is rendered.
var sanitizer = bluemonday.UGCPolicy()

// Article holds the extracted readable content from a page.
type Article struct {
	Title       string
	Byline      string
	Content     string // sanitised HTML
	TextContent string // plain text
	Excerpt     string
	SiteName    string
	URL         string
	FinalURL    string
	FetchTime   time.Duration
	NavLinks    []Link // site menu, outside the readable content
}

// Link represents a hyperlink found in the page.
type Link struct {
	Index int
	Text  string
	URL   string // absolute, resolved against the page URL
}

// Extract turns a FetchResult into an Article. Links inside the content
// are collected later by Render; only the site navigation is gathered
// here because readability drops it.
func Extract(result *FetchResult) (*Article, error) {
	if !IsHTML(result.ContentType) {
		return &Article{
			Title:       result.FinalURL,
			Content:     "<pre>" + html.EscapeString(string(result.Body)) + "</pre>",
			TextContent: string(result.Body),
			URL:         result.URL,
			FinalURL:    result.FinalURL,
			FetchTime:   result.Duration,
		}, nil
	}

	base, err := url.Parse(result.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(result.Body), base)
	if err != nil {
		return nil, fmt.Errorf("extracting article: %w", err)
	}

	navLinks, err := extractNavLinks(result.Body, base)
	if err != nil {
		return nil, fmt.Errorf("reading navigation: %w", err)
	}

	return &Article{
		Title:       article.Title,
		Byline:      article.Byline,
		Content:     sanitizer.Sanitize(article.Content),
		TextContent: article.TextContent,
		Excerpt:     article.Excerpt,
		SiteName:    article.SiteName,
		URL:         result.URL,
		FinalURL:    result.FinalURL,
		FetchTime:   result.Duration,
		NavLinks:    navLinks,
	}, nil
}

func extractNavLinks(body []byte, base *url.URL) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var links []Link
	doc.Find("nav a[href], header a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			text, _ = s.Attr("aria-label")
		}
		abs, ok := ResolveURL(base, href)
		if !ok || text == "" {
			return
		}
		links = append(links, Link{Text: text, URL: abs})
	})

	return lo.UniqBy(links, func(l Link) string { return l.URL }), nil
}

// ResolveURL resolves href against base. It rejects empty references
// and bare "#" anchors.
func ResolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base == nil {
		return ref.String(), ref.IsAbs()
	}
	return base.ResolveReference(ref).String(), true
}
