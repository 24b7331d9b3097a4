package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// Decision says where a followed link should open.
type Decision int

const (
	OpenInFrame Decision = iota // regular navigation inside the frame
	OpenInPage                  // same document, different fragment
	OpenExternal                // hand off to the system browser
)

func (d Decision) String() string {
	switch d {
	case OpenInFrame:
		return "frame"
	case OpenInPage:
		return "in-page"
	case OpenExternal:
		return "external"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Policy keeps the frame on the home site. Links to any other host open
// outside the application.
type Policy struct {
	hosts []string
}

// NewPolicy allows the host of homeURL, its www/bare twin and extra.
func NewPolicy(homeURL string, extra []string) (*Policy, error) {
	u, err := url.Parse(homeURL)
	if err != nil {
		return nil, fmt.Errorf("parsing home URL: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("home URL %q has no host", homeURL)
	}

	hosts := []string{host}
	if bare, ok := strings.CutPrefix(host, "www."); ok {
		hosts = append(hosts, bare)
	} else {
		hosts = append(hosts, "www."+host)
	}
	hosts = append(hosts, lo.Map(extra, func(h string, _ int) string {
		return strings.ToLower(strings.TrimSpace(h))
	})...)

	return &Policy{hosts: lo.Uniq(lo.Compact(hosts))}, nil
}

// Hosts returns the allowed host names.
func (p *Policy) Hosts() []string {
	return append([]string(nil), p.hosts...)
}

// Allowed reports whether rawURL may load inside the frame.
func (p *Policy) Allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return lo.Contains(p.hosts, strings.ToLower(u.Hostname()))
}

// Classify decides how a link to target behaves while current is shown.
func (p *Policy) Classify(current, target string) Decision {
	if !p.Allowed(target) {
		return OpenExternal
	}
	if samePage(current, target) {
		return OpenInPage
	}
	return OpenInFrame
}

func samePage(current, target string) bool {
	cu, err := url.Parse(current)
	if err != nil {
		return false
	}
	tu, err := url.Parse(target)
	if err != nil || tu.Fragment == "" {
		return false
	}
	cu.Fragment, tu.Fragment = "", ""
	return cu.String() == tu.String()
}
