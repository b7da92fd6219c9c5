package domains

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

var ErrFormat = errors.New("unrecognized domain format")

// Matcher is a set of domains keyed by top-level label, then second-level
// label. A nil sub-label set means every sub-label matches.
type Matcher struct {
	tops map[string]map[string]map[string]struct{}
}

type needle struct {
	sub  string
	base string
	top  string
}

// Build parses every domain and returns ErrFormat for the first one that
// does not have two or three labels.
func Build(domains []string) (*Matcher, error) {
	m := &Matcher{tops: make(map[string]map[string]map[string]struct{})}

	for _, domain := range domains {
		n, err := parseNeedle(domain)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, domain)
		}
		m.insert(n)
	}

	return m, nil
}

func (m *Matcher) insert(n needle) {
	bases, ok := m.tops[n.top]
	if !ok {
		bases = make(map[string]map[string]struct{})
		m.tops[n.top] = bases
	}

	subs, seen := bases[n.base]
	if n.sub == "" {
		bases[n.base] = nil
		return
	}
	if seen && subs == nil {
		return
	}
	if subs == nil {
		subs = make(map[string]struct{})
		bases[n.base] = subs
	}
	subs[n.sub] = struct{}{}
}

// Contains reports whether the URL's host is in the set. Anything that
// cannot be decomposed is not a match.
func (m *Matcher) Contains(rawURL string) bool {
	if m == nil {
		return false
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return false
	}

	n, err := parseNeedle(u.Hostname())
	if err != nil {
		return false
	}

	bases, ok := m.tops[n.top]
	if !ok {
		return false
	}
	subs, ok := bases[n.base]
	if !ok {
		return false
	}
	if subs == nil {
		return true
	}
	if n.sub == "" {
		return false
	}
	_, ok = subs[n.sub]
	return ok
}

func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	total := 0
	for _, bases := range m.tops {
		total += len(bases)
	}
	return total
}

// Domains lists the entries back in domain form, sorted. Match-all entries
// are rendered without a sub-label.
func (m *Matcher) Domains() []string {
	if m == nil {
		return nil
	}

	var out []string
	for top, bases := range m.tops {
		for base, subs := range bases {
			if subs == nil {
				out = append(out, base+"."+top)
				continue
			}
			for sub := range subs {
				out = append(out, sub+"."+base+"."+top)
			}
		}
	}
	sort.Strings(out)
	return out
}

func parseNeedle(domain string) (needle, error) {
	host, err := normalizeHost(domain)
	if err != nil {
		return needle{}, ErrFormat
	}

	labels := strings.Split(host, ".")
	for _, label := range labels {
		if label == "" {
			return needle{}, ErrFormat
		}
	}

	switch len(labels) {
	case 2:
		return needle{base: labels[0], top: labels[1]}, nil
	case 3:
		return needle{sub: labels[0], base: labels[1], top: labels[2]}, nil
	default:
		return needle{}, ErrFormat
	}
}

func normalizeHost(host string) (string, error) {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return "", ErrFormat
	}
	return idna.Lookup.ToASCII(host)
}
