package browser

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"time"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "trivium-view/1.0 (terminal shell; +https://triviuminteractive.com)"
	maxBodySize      = 10 * 1024 * 1024 // 10 MB
	maxRedirects     = 10
)

// SharedTransport is the HTTP transport shared by every Fetcher. It is
// the default transport with shorter dial and header timeouts.
var SharedTransport = newTransport()

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	t.MaxIdleConnsPerHost = 4
	t.ResponseHeaderTimeout = DefaultTimeout
	return t
}

// FetchResult is one successful response, body already read.
type FetchResult struct {
	URL         string // as requested
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// FetcherOptions tunes a Fetcher. Zero values fall back to the defaults.
type FetcherOptions struct {
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
}

// Fetcher performs the frame's HTTP requests.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Transport == nil {
		opts.Transport = SharedTransport
	}
	return &Fetcher{
		client: &http.Client{
			Transport: opts.Transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (>%d)", maxRedirects)
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
	}
}

// Fetch retrieves the content at rawURL, which must be absolute.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header = http.Header{
		"User-Agent": {f.userAgent},
		"Accept":     {"text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8,*/*;q=0.5"},
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	final := resp.Request.URL.String()
	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{URL: final, Code: resp.StatusCode}
	}

	res := &FetchResult{
		URL:         rawURL,
		FinalURL:    final,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if res.Body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize)); err != nil {
		return nil, fmt.Errorf("reading %s: %w", final, err)
	}
	res.Duration = time.Since(start)
	return res, nil
}

// IsHTML reports whether contentType is an HTML media type.
func IsHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
