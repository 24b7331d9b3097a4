package frame

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triviuminteractive/trivium-view/internal/browser"
)

type site struct {
	*httptest.Server
	hits atomic.Int32
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><head><title>%s</title></head><body><p>page %s <a href="/next">next</a></p></body></html>`, r.URL.Path, r.URL.Path)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusFound)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newHost(t *testing.T, s *site) *Host {
	t.Helper()
	h, err := New(Options{
		Fetcher:   browser.NewFetcher(browser.FetcherOptions{Transport: s.Client().Transport}),
		CacheSize: 8,
		Width:     80,
		Style:     "notty",
	})
	require.NoError(t, err)
	return h
}

// run executes the queued command and feeds the event back to the host.
func run(t *testing.T, h *Host) tea.Msg {
	t.Helper()
	cmd := h.Take()
	require.NotNil(t, cmd)
	msg := cmd()
	switch m := msg.(type) {
	case LoadedMsg:
		h.Loaded(m)
	case FailedMsg:
		h.Failed(m)
	}
	return msg
}

func TestRequestLoadsPage(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/", Navigate))
	assert.True(t, h.Loading())

	msg := run(t, h)
	loaded, ok := msg.(LoadedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, Navigate, loaded.Kind)
	assert.Equal(t, s.URL+"/", loaded.URL)
	assert.False(t, loaded.FromCache)
	assert.False(t, h.Loading())
	assert.NoError(t, h.Err())
	require.NotNil(t, h.Page())
	assert.Equal(t, s.URL+"/", h.Page().URL)
	assert.Nil(t, h.Take(), "Take drains the queue")
}

func TestRequestReportsFinalURL(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/moved", Navigate))
	loaded := run(t, h).(LoadedMsg)
	assert.Equal(t, s.URL+"/landing", loaded.URL)
}

func TestRequestRejectsMalformedURLs(t *testing.T) {
	h, err := New(Options{})
	require.NoError(t, err)

	for _, raw := range []string{"http://[::1", "/relative/without/page", "mailto:x@y.z", "ftp://host/"} {
		err := h.Request(raw, Navigate)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
	assert.Nil(t, h.Take())
	assert.False(t, h.Loading())
}

func TestRelativeRequestResolvesAgainstPage(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/a/b", Navigate))
	run(t, h)

	require.NoError(t, h.Request("c", Navigate))
	assert.Equal(t, s.URL+"/a/c", h.Target())
}

func TestFailedLoad(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/broken", Navigate))
	failed, ok := run(t, h).(FailedMsg)
	require.True(t, ok)

	var se *browser.StatusError
	assert.True(t, errors.As(failed.Err, &se))
	assert.Error(t, h.Err())
	assert.False(t, h.Loading())
	assert.Nil(t, h.Page())
}

func TestStaleEventsAreIgnored(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/first", Navigate))
	first := h.Take()
	require.NoError(t, h.Request(s.URL+"/second", Navigate))
	second := h.Take()

	// The first load was cancelled; whatever it reports is stale.
	switch m := first().(type) {
	case LoadedMsg:
		assert.False(t, h.Loaded(m))
	case FailedMsg:
		assert.False(t, h.Failed(m))
	}
	assert.True(t, h.Loading())

	m := second().(LoadedMsg)
	assert.True(t, h.Loaded(m))
	assert.Equal(t, s.URL+"/second", h.Page().URL)
}

func TestBackUsesCache(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/a", Navigate))
	run(t, h)
	require.NoError(t, h.Request(s.URL+"/b", Navigate))
	run(t, h)
	assert.EqualValues(t, 2, s.hits.Load())

	require.NoError(t, h.Load(s.URL+"/a"))
	loaded := run(t, h).(LoadedMsg)
	assert.Equal(t, Back, loaded.Kind)
	assert.True(t, loaded.FromCache)
	assert.EqualValues(t, 2, s.hits.Load())
}

func TestReloadBypassesCache(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/a", Navigate))
	run(t, h)

	require.NoError(t, h.Reload())
	loaded := run(t, h).(LoadedMsg)
	assert.Equal(t, Reload, loaded.Kind)
	assert.EqualValues(t, 2, s.hits.Load())
}

func TestReloadAfterFailureRepeatsRequest(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/broken", Navigate))
	run(t, h)

	require.NoError(t, h.Reload())
	assert.Equal(t, s.URL+"/broken", h.Target())
	failed := run(t, h).(FailedMsg)
	assert.Equal(t, Navigate, failed.Kind)
}

func TestReloadWithNothingLoaded(t *testing.T) {
	h, err := New(Options{})
	require.NoError(t, err)
	assert.ErrorIs(t, h.Reload(), ErrInvalidURL)
}

func TestInPageNavigationSkipsFetch(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/a", Navigate))
	run(t, h)
	page := h.Page()

	require.NoError(t, h.Request(s.URL+"/a#team", InPage))
	loaded := run(t, h).(LoadedMsg)
	assert.Equal(t, InPage, loaded.Kind)
	assert.Equal(t, s.URL+"/a#team", loaded.URL)
	assert.Same(t, page, loaded.Page)
	assert.EqualValues(t, 1, s.hits.Load())
}

func TestSetSizeRedrawsPageOnDisplay(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/", Navigate))
	run(t, h)
	require.NoError(t, h.Request(s.URL+"/a", Navigate))
	run(t, h)
	assert.Equal(t, 2, h.CacheLen())
	before := h.Page()

	assert.False(t, h.SetSize(80, "notty"), "same size")
	assert.Same(t, before, h.Page())

	assert.True(t, h.SetSize(120, "notty"))
	assert.Equal(t, 120, h.Width())
	assert.NotSame(t, before, h.Page())
	assert.Equal(t, s.URL+"/a", h.Page().URL)
	assert.Equal(t, 1, h.CacheLen(), "only the page on display survives")
	assert.EqualValues(t, 2, s.hits.Load(), "redraw does not fetch")
}

func TestSetSizeBeforeFirstPage(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	assert.False(t, h.SetSize(120, "notty"))
}

func TestLoadFinishingAfterResizeIsRedrawn(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/", Navigate))
	cmd := h.Take()
	h.SetSize(40, "notty")

	loaded := cmd().(LoadedMsg)
	require.True(t, h.Loaded(loaded))
	assert.NotSame(t, loaded.Page, h.Page(), "rendered at the old width")
	assert.Equal(t, s.URL+"/", h.Page().URL)
}

func TestInPageForOtherDocumentFetches(t *testing.T) {
	s := newSite(t)
	h := newHost(t, s)

	require.NoError(t, h.Request(s.URL+"/a", Navigate))
	run(t, h)

	require.NoError(t, h.Request(s.URL+"/#top", InPage))
	loaded := run(t, h).(LoadedMsg)
	assert.Equal(t, Navigate, loaded.Kind)
	assert.False(t, loaded.FromCache)
	assert.EqualValues(t, 2, s.hits.Load())
	assert.Equal(t, s.URL+"/", h.Page().URL)
}

func TestSameDocument(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"https://triviuminteractive.com/a", "https://triviuminteractive.com/a#top", true},
		{"https://triviuminteractive.com/a#x", "https://triviuminteractive.com/a#y", true},
		{"https://triviuminteractive.com/a", "https://triviuminteractive.com/#top", false},
		{"https://triviuminteractive.com/a?q=1", "https://triviuminteractive.com/a#top", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sameDocument(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "navigate", Navigate.String())
	assert.Equal(t, "back", Back.String())
	assert.Equal(t, "reload", Reload.String())
	assert.Equal(t, "in-page", InPage.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
