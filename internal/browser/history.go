package browser

// Loader is the part of the frame host the tracker drives on back
// navigation: it rewrites what the frame shows.
type Loader interface {
	Load(url string) error
}

// Tracker emulates back navigation for a frame that does not expose its
// own history. It holds the visited URLs, a pointer into them and the
// URL currently displayed.
type Tracker struct {
	entries []string
	pos     int // -1 when empty
	current string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entries: nil,
		pos:     -1,
	}
}

// RecordNavigation registers a completed navigation to url.
//
// For a new navigation any entries after the current position are
// dropped before url is appended. For a back navigation the position
// has already been moved by GoBack, so only the current URL changes.
func (t *Tracker) RecordNavigation(url string, isBack bool) {
	if !isBack {
		if t.pos < len(t.entries)-1 {
			t.entries = t.entries[:t.pos+1]
		}
		t.entries = append(t.entries, url)
		t.pos = len(t.entries) - 1
	}
	t.current = url
}

// GoBack steps one entry back and asks l to load it. It reports whether
// a step was taken. Nothing happens at the first entry or when empty.
//
// When the loader rejects the URL the position still moves, matching
// what the frame would show after a failed load, and the error is
// returned for the caller to surface.
func (t *Tracker) GoBack(l Loader) (bool, error) {
	if t.pos <= 0 {
		return false, nil
	}
	t.pos--
	url := t.entries[t.pos]
	err := l.Load(url)
	t.RecordNavigation(url, true)
	return true, err
}

// Current returns the URL on display, or "" before the first navigation.
func (t *Tracker) Current() string {
	return t.current
}

// Index returns the current position, -1 when empty.
func (t *Tracker) Index() int {
	return t.pos
}

// CanGoBack reports whether there is a previous entry.
func (t *Tracker) CanGoBack() bool {
	return t.pos > 0
}

// Len returns the total number of entries.
func (t *Tracker) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the stack, oldest first.
func (t *Tracker) Entries() []string {
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}
