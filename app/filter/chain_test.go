package filter

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/lysyi3m/post-comb/app/config"
	"github.com/lysyi3m/post-comb/app/heuristic"
	"github.com/lysyi3m/post-comb/app/post"
)

type mockHistory struct {
	counts   map[string]int
	err      error
	minScore float64
	calls    int
}

func (m *mockHistory) CountPosts(ctx context.Context, author string, minScore float64) (int, error) {
	m.calls++
	m.minScore = minScore
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[author], nil
}

type mockResolver struct {
	channels map[string]string
	err      error
	calls    []string
}

func (m *mockResolver) ResolveChannel(ctx context.Context, url string) (string, error) {
	m.calls = append(m.calls, url)
	if m.err != nil {
		return "", m.err
	}
	return m.channels[url], nil
}

func testPolicy(t *testing.T) *config.Policy {
	t.Helper()

	policy, err := config.Parse([]byte(`
url:
  allow:
    - "github.com"
    - "docs.rs"
  block:
    - "store.steampowered.com"
    - "twitch.tv"
youtube:
  channels:
    - "UCtrusted"
`))
	if err != nil {
		t.Fatalf("Failed to parse policy: %v", err)
	}
	return policy
}

func TestAllowOrBlockURL(t *testing.T) {
	policy := testPolicy(t)

	tests := []struct {
		name     string
		post     post.Post
		status   Status
		url      string
		noResult bool
	}{
		{
			name:   "allowed link",
			post:   post.Post{ID: "1", Link: "https://github.com/foo/bar"},
			status: StatusHam,
			url:    "https://github.com/foo/bar",
		},
		{
			name:   "blocked link",
			post:   post.Post{ID: "2", Link: "https://store.steampowered.com/app/1"},
			status: StatusSpam,
			url:    "https://store.steampowered.com/app/1",
		},
		{
			name:   "blocked link beats allowed in-text link",
			post:   post.Post{ID: "3", Link: "https://www.twitch.tv/x", Body: "[src](https://github.com/x)"},
			status: StatusSpam,
			url:    "https://www.twitch.tv/x",
		},
		{
			name:   "first allowed in-text link",
			post:   post.Post{ID: "4", Body: "[a](https://twitch.tv/a) and [b](https://docs.rs/b) and [c](https://github.com/c)"},
			status: StatusHam,
			url:    "https://docs.rs/b",
		},
		{
			name:   "last blocked in-text link",
			post:   post.Post{ID: "5", Body: "[a](https://twitch.tv/a) then [b](https://store.steampowered.com/b)"},
			status: StatusSpam,
			url:    "https://store.steampowered.com/b",
		},
		{
			name:   "unknown direct link falls through to text",
			post:   post.Post{ID: "6", Link: "https://example.com", Body: "https://github.com/x"},
			status: StatusHam,
			url:    "https://github.com/x",
		},
		{
			name:     "nothing matches",
			post:     post.Post{ID: "7", Link: "https://example.com", Body: "just text"},
			noResult: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := allowOrBlockURL(context.Background(), &Context{Post: tt.post, Policy: policy})
			if tt.noResult {
				if v != nil {
					t.Errorf("Expected no verdict, got %s", v)
				}
				return
			}
			if v == nil {
				t.Fatal("Expected a verdict, got none")
			}
			if v.Status != tt.status {
				t.Errorf("Expected status %s, got %s", tt.status, v.Status)
			}

			var got string
			switch r := v.Reason.(type) {
			case AllowedURL:
				got = r.URL
			case BlockedURL:
				got = r.URL
			default:
				t.Fatalf("Unexpected reason %T", v.Reason)
			}
			if got != tt.url {
				t.Errorf("Expected url %s, got %s", tt.url, got)
			}
		})
	}
}

func TestReputableAuthor(t *testing.T) {
	history := &mockHistory{counts: map[string]int{"veteran": 5, "newbie": 1}}

	v := reputableAuthor(context.Background(), &Context{Post: post.Post{ID: "1", Author: "veteran"}, History: history})
	if v == nil || v.Status != StatusHam {
		t.Fatalf("Expected ham for veteran, got %v", v)
	}
	if r, ok := v.Reason.(ReputableAuthor); !ok || r.Posts != 5 || r.Author != "veteran" {
		t.Errorf("Unexpected reason %v", v.Reason)
	}
	if history.minScore != KarmaThreshold {
		t.Errorf("Expected min score %d, got %g", KarmaThreshold, history.minScore)
	}

	if v := reputableAuthor(context.Background(), &Context{Post: post.Post{ID: "2", Author: "newbie"}, History: history}); v != nil {
		t.Errorf("Expected no verdict for newbie, got %s", v)
	}

	failing := &mockHistory{err: errors.New("database is locked")}
	if v := reputableAuthor(context.Background(), &Context{Post: post.Post{ID: "3", Author: "veteran"}, History: failing}); v != nil {
		t.Errorf("Expected lookup failure to give no verdict, got %s", v)
	}
}

func TestKnownChannel(t *testing.T) {
	policy := testPolicy(t)
	resolver := &mockResolver{channels: map[string]string{
		"https://www.youtube.com/watch?v=good": "UCtrusted",
		"https://youtu.be/other":               "UCother",
	}}

	p := post.Post{ID: "1", Link: "https://youtu.be/other", Body: "https://www.youtube.com/watch?v=good\n\n[site](https://example.com)"}
	v := knownChannel(context.Background(), &Context{Post: p, Policy: policy, Channels: resolver})
	if v == nil || v.Status != StatusHam {
		t.Fatalf("Expected ham, got %v", v)
	}
	if r := v.Reason.(KnownChannel); r.Channel != "UCtrusted" {
		t.Errorf("Expected UCtrusted, got %s", r.Channel)
	}
	if len(resolver.calls) != 2 {
		t.Errorf("Expected only video links to be resolved, got %v", resolver.calls)
	}

	unknown := post.Post{ID: "2", Link: "https://youtu.be/other"}
	if v := knownChannel(context.Background(), &Context{Post: unknown, Policy: policy, Channels: resolver}); v != nil {
		t.Errorf("Unknown channel should give no verdict, got %s", v)
	}

	failing := &mockResolver{err: errors.New("timeout")}
	if v := knownChannel(context.Background(), &Context{Post: p, Policy: policy, Channels: failing}); v != nil {
		t.Errorf("Resolver failure should give no verdict, got %s", v)
	}
}

func TestContainsRustCode(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason Reason
	}{
		{"fenced with language", "```python\nprint(1)\n```", FencedCodeBlock{Lang: post.LangPython}},
		{"inline path", "I tried `std::mem` but", DetectedCode{Heuristic: heuristic.Heuristic{Kind: heuristic.KindDoubleColon, Snippet: "std::mem"}}},
		{"untagged block", "```\nfn main() {}\n```", DetectedCode{Heuristic: heuristic.Heuristic{Kind: heuristic.KindKeyword, Snippet: "fn"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := containsRustCode(context.Background(), &Context{Post: post.Post{ID: "1", Body: tt.body}})
			if v == nil {
				t.Fatal("Expected a verdict")
			}
			if v.Status != StatusHam {
				t.Errorf("Expected ham, got %s", v.Status)
			}
			if v.Reason != tt.reason {
				t.Errorf("Expected %s, got %s", tt.reason, v.Reason)
			}
		})
	}

	for _, body := range []string{"", "no code here", "my base has `lots of walls`"} {
		if v := containsRustCode(context.Background(), &Context{Post: post.Post{ID: "2", Body: body}}); v != nil {
			t.Errorf("Expected no verdict for %q, got %s", body, v)
		}
	}
}

func TestFirstVerdictShortCircuits(t *testing.T) {
	history := &mockHistory{counts: map[string]int{"veteran": 10}}
	chain := NewChain(testPolicy(t), history, nil)
	chain.filters = append(chain.filters, Filter{
		Name: "AlwaysSpam",
		Run: func(context.Context, *Context) *Verdict {
			return Spam(BlockedURL{URL: "never"})
		},
	})

	p := post.Post{ID: "1", Author: "veteran", Link: "https://github.com/x"}

	outcome, ok := chain.FirstVerdict(context.Background(), p)
	if !ok {
		t.Fatal("Expected a verdict")
	}
	if outcome.Filter != "AllowOrBlockUrl" {
		t.Errorf("Expected AllowOrBlockUrl to win, got %s", outcome.Filter)
	}
	if _, ok := outcome.Verdict.Reason.(AllowedURL); !ok {
		t.Errorf("Expected AllowedUrl reason, got %s", outcome.Verdict.Reason)
	}
	if history.calls != 0 {
		t.Errorf("Expected later filters not to run, history was called %d times", history.calls)
	}
}

func TestFilterNames(t *testing.T) {
	expected := []string{"AllowOrBlockUrl", "ReputableAuthor", "KnownYoutubeChannel", "ContainsRustCode"}

	names := FilterNames()
	if !slices.Equal(names, expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}

	names[0] = "Changed"
	slices.Reverse(names)
	if got := FilterNames(); !slices.Equal(got, expected) {
		t.Errorf("Expected order to stay %v, got %v", expected, got)
	}
}

func TestRunAllKeepsTrace(t *testing.T) {
	history := &mockHistory{counts: map[string]int{"veteran": 10}}
	chain := NewChain(testPolicy(t), history, nil)

	p := post.Post{ID: "1", Author: "veteran", Link: "https://github.com/x", Body: "`foo()`"}
	outcomes := chain.RunAll(context.Background(), p)

	names := FilterNames()
	if len(outcomes) != len(names) {
		t.Fatalf("Expected %d outcomes, got %d", len(names), len(outcomes))
	}
	for i, name := range names {
		if outcomes[i].Filter != name {
			t.Errorf("Expected outcome %d to be %s, got %s", i, name, outcomes[i].Filter)
		}
	}
	if outcomes[1].Verdict == nil || outcomes[3].Verdict == nil {
		t.Error("Expected later filters to report their own verdicts")
	}
	if outcomes[2].Verdict != nil {
		t.Error("Expected no channel verdict without a resolver")
	}

	winner, ok := Decide(outcomes)
	if !ok || winner.Filter != "AllowOrBlockUrl" {
		t.Errorf("Expected AllowOrBlockUrl to win, got %+v", winner)
	}
}

func TestUnknownPost(t *testing.T) {
	chain := NewChain(testPolicy(t), &mockHistory{}, nil)
	if outcome, ok := chain.FirstVerdict(context.Background(), post.Post{ID: "1", Title: "Looking for a clan", Body: "EU server, add me"}); ok {
		t.Errorf("Expected no verdict, got %s", outcome.Verdict)
	}
}
