// Package frame hosts the single content view. It takes "navigate to
// URL" requests, runs the fetch in a bubbletea command and reports the
// outcome as LoadedMsg or FailedMsg.
package frame

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/triviuminteractive/trivium-view/internal/browser"
	"go.uber.org/zap"
)

// ErrInvalidURL is returned for URLs the frame cannot load.
var ErrInvalidURL = errors.New("invalid URL")

// Kind tells the receiver of a load event how the load was started.
type Kind int

const (
	Navigate Kind = iota // new navigation
	Back                 // history position already moved
	Reload               // same entry fetched again
	InPage               // fragment change, no fetch
)

func (k Kind) String() string {
	switch k {
	case Navigate:
		return "navigate"
	case Back:
		return "back"
	case Reload:
		return "reload"
	case InPage:
		return "in-page"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// LoadedMsg is the load-complete event.
type LoadedMsg struct {
	Seq       uint64
	Kind      Kind
	URL       string // final URL after redirects
	Page      *browser.RenderedPage
	FromCache bool

	entry *cachedPage
}

// FailedMsg is the load-error event.
type FailedMsg struct {
	Seq  uint64
	Kind Kind
	URL  string
	Err  error
}

// cachedPage keeps the article next to its rendering so the page can be
// drawn again at another size without a fetch.
type cachedPage struct {
	article *browser.Article
	page    *browser.RenderedPage
	width   int
	style   string
}

func newCachedPage(article *browser.Article, width int, style string) *cachedPage {
	return &cachedPage{
		article: article,
		page:    browser.Render(article, width, style),
		width:   width,
		style:   style,
	}
}

// Options configures a Host.
type Options struct {
	Fetcher   *browser.Fetcher
	CacheSize int
	Width     int
	Style     string // glamour style name
	Logger    *zap.Logger
}

// Host is the frame. It is owned by the bubbletea update loop and is not
// safe for concurrent use; only the commands it returns run elsewhere.
type Host struct {
	fetcher *browser.Fetcher
	cache   *lru.Cache[string, *cachedPage]
	log     *zap.Logger
	width   int
	style   string

	seq     uint64
	cancel  context.CancelFunc
	pending tea.Cmd

	page    *browser.RenderedPage // on display
	shown   *cachedPage
	target  string                // last requested URL
	kind    Kind                  // kind of the last request
	loading bool
	failed  bool
	lastErr error
}

// New creates a Host.
func New(opts Options) (*Host, error) {
	if opts.Fetcher == nil {
		opts.Fetcher = browser.NewFetcher(browser.FetcherOptions{})
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 50
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cache, err := lru.New[string, *cachedPage](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating page cache: %w", err)
	}
	return &Host{
		fetcher: opts.Fetcher,
		cache:   cache,
		log:     opts.Logger.Named("frame"),
		width:   opts.Width,
		style:   opts.Style,
	}, nil
}

// Load points the frame at rawURL for a back navigation. It satisfies
// browser.Loader.
func (h *Host) Load(rawURL string) error {
	return h.Request(rawURL, Back)
}

// Request starts loading rawURL. Relative references resolve against
// the page on display. Any load still in flight is cancelled. The
// command to run is collected with Take.
func (h *Host) Request(rawURL string, kind Kind) error {
	target, err := h.resolve(rawURL)
	if err != nil {
		h.log.Warn("rejected navigation", zap.String("url", rawURL), zap.Error(err))
		return err
	}

	h.Stop()
	h.seq++
	h.target = target
	h.kind = kind
	h.loading = true
	seq := h.seq

	if kind == InPage && h.page != nil && sameDocument(h.page.URL, target) {
		page, entry := h.page, h.shown
		h.pending = func() tea.Msg {
			return LoadedMsg{Seq: seq, Kind: InPage, URL: target, Page: page, entry: entry}
		}
		return nil
	}
	if kind == InPage {
		// the fragment belongs to a document that is not on display
		kind = Navigate
		h.kind = Navigate
	}

	switch kind {
	case Back:
		if entry, ok := h.cache.Get(target); ok {
			h.pending = func() tea.Msg {
				return LoadedMsg{Seq: seq, Kind: kind, URL: target, Page: entry.page, FromCache: true, entry: entry}
			}
			return nil
		}
	case Reload:
		h.cache.Remove(target)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.pending = h.fetchCmd(ctx, seq, kind, target)
	h.log.Debug("load started", zap.Uint64("seq", seq), zap.Stringer("kind", kind), zap.String("url", target))
	return nil
}

func (h *Host) fetchCmd(ctx context.Context, seq uint64, kind Kind, target string) tea.Cmd {
	fetcher, cache := h.fetcher, h.cache
	width, style := h.width, h.style
	return func() tea.Msg {
		result, err := fetcher.Fetch(ctx, target)
		if err != nil {
			return FailedMsg{Seq: seq, Kind: kind, URL: target, Err: err}
		}
		article, err := browser.Extract(result)
		if err != nil {
			return FailedMsg{Seq: seq, Kind: kind, URL: result.FinalURL, Err: err}
		}
		entry := newCachedPage(article, width, style)
		cache.Add(result.FinalURL, entry)
		if result.FinalURL != target {
			cache.Add(target, entry)
		}
		return LoadedMsg{Seq: seq, Kind: kind, URL: result.FinalURL, Page: entry.page, entry: entry}
	}
}

func (h *Host) resolve(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	if !u.IsAbs() && h.page != nil {
		base, err := url.Parse(h.page.URL)
		if err == nil {
			u = base.ResolveReference(u)
		}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q: need an absolute http(s) URL", ErrInvalidURL, rawURL)
	}
	return u.String(), nil
}

// Take returns the queued load command, if any, and clears it.
func (h *Host) Take() tea.Cmd {
	cmd := h.pending
	h.pending = nil
	return cmd
}

// Loaded applies a load-complete event. It returns false for events of
// superseded loads, which the caller must ignore.
func (h *Host) Loaded(msg LoadedMsg) bool {
	if msg.Seq != h.seq {
		return false
	}
	h.cancel = nil
	h.loading = false
	h.failed = false
	h.lastErr = nil
	h.page = msg.Page
	h.shown = msg.entry
	if e := h.shown; e != nil && (e.width != h.width || e.style != h.style) {
		// size changed while the load was in flight
		h.redraw()
	}
	h.log.Info("page loaded",
		zap.Uint64("seq", msg.Seq),
		zap.Stringer("kind", msg.Kind),
		zap.String("url", msg.URL),
		zap.Bool("cached", msg.FromCache),
	)
	return true
}

// Failed applies a load-error event, with the same staleness rule as
// Loaded.
func (h *Host) Failed(msg FailedMsg) bool {
	if msg.Seq != h.seq {
		return false
	}
	h.cancel = nil
	h.loading = false
	h.failed = true
	h.lastErr = msg.Err
	h.log.Error("page failed to load",
		zap.Uint64("seq", msg.Seq),
		zap.Stringer("kind", msg.Kind),
		zap.String("url", msg.URL),
		zap.Error(msg.Err),
	)
	return true
}

// Reload repeats the last request when it failed, otherwise fetches the
// page on display again bypassing the cache.
func (h *Host) Reload() error {
	if h.failed || h.page == nil {
		if h.target == "" {
			return fmt.Errorf("%w: nothing to reload", ErrInvalidURL)
		}
		return h.Request(h.target, h.kind)
	}
	return h.Request(h.page.URL, Reload)
}

// Stop cancels the load in flight, if any.
func (h *Host) Stop() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.pending = nil
	h.loading = false
}

// SetSize changes the render width and style. Cached pages rendered for
// another size are dropped and the page on display is drawn again. It
// reports whether Page changed.
func (h *Host) SetSize(width int, style string) bool {
	if width == h.width && style == h.style {
		return false
	}
	h.width = width
	h.style = style
	h.cache.Purge()
	if h.shown == nil {
		return false
	}
	h.redraw()
	return true
}

func (h *Host) redraw() {
	e := newCachedPage(h.shown.article, h.width, h.style)
	h.shown = e
	h.page = e.page
	h.cache.Add(e.page.URL, e)
}

// sameDocument reports whether a and b differ at most in their fragment.
func sameDocument(a, b string) bool {
	au, err := url.Parse(a)
	if err != nil {
		return false
	}
	bu, err := url.Parse(b)
	if err != nil {
		return false
	}
	au.Fragment, au.RawFragment = "", ""
	bu.Fragment, bu.RawFragment = "", ""
	return au.String() == bu.String()
}

// Page returns the page on display, nil before the first load.
func (h *Host) Page() *browser.RenderedPage { return h.page }

// Loading reports whether a load is in flight.
func (h *Host) Loading() bool { return h.loading }

// Err returns the error of the last load, nil when it succeeded.
func (h *Host) Err() error { return h.lastErr }

// Target returns the most recently requested URL.
func (h *Host) Target() string { return h.target }

// Width returns the render width.
func (h *Host) Width() int { return h.width }

// CacheLen returns the number of cached pages.
func (h *Host) CacheLen() int { return h.cache.Len() }
