package filter

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/lysyi3m/post-comb/app/config"
	"github.com/lysyi3m/post-comb/app/post"
)

// AuthorHistory counts an author's stored posts with at least minScore
type AuthorHistory interface {
	CountPosts(ctx context.Context, author string, minScore float64) (int, error)
}

// ChannelResolver returns the channel ID behind a video URL
type ChannelResolver interface {
	ResolveChannel(ctx context.Context, url string) (string, error)
}

// Context is the read-only input shared by every filter for one post
type Context struct {
	Post     post.Post
	Policy   *config.Policy
	History  AuthorHistory
	Channels ChannelResolver
}

// Filter returns nil when it has no opinion about the post
type Filter struct {
	Name string
	Run  func(ctx context.Context, c *Context) *Verdict
}

// filters in priority order
var filters = []Filter{
	{Name: "AllowOrBlockUrl", Run: allowOrBlockURL},
	{Name: "ReputableAuthor", Run: reputableAuthor},
	{Name: "KnownYoutubeChannel", Run: knownChannel},
	{Name: "ContainsRustCode", Run: containsRustCode},
}

type Outcome struct {
	Filter  string
	Verdict *Verdict
	Elapsed time.Duration
}

type Chain struct {
	policy   *config.Policy
	history  AuthorHistory
	channels ChannelResolver
	filters  []Filter
}

func NewChain(policy *config.Policy, history AuthorHistory, channels ChannelResolver) *Chain {
	return &Chain{
		policy:   policy,
		history:  history,
		channels: channels,
		filters:  slices.Clone(filters),
	}
}

// FilterNames lists the filters in the order every chain runs them
func FilterNames() []string {
	return lo.Map(filters, func(f Filter, _ int) string {
		return f.Name
	})
}

func (c *Chain) context(p post.Post) *Context {
	return &Context{
		Post:     p,
		Policy:   c.policy,
		History:  c.history,
		Channels: c.channels,
	}
}

func (c *Chain) run(ctx context.Context, f Filter, fc *Context) Outcome {
	start := time.Now()
	verdict := f.Run(ctx, fc)
	elapsed := time.Since(start)

	slog.Debug("Filter finished", "filter", f.Name, "post", fc.Post.ID, "duration", elapsed)

	return Outcome{Filter: f.Name, Verdict: verdict, Elapsed: elapsed}
}

// RunAll runs every filter in order and returns the full trace
func (c *Chain) RunAll(ctx context.Context, p post.Post) []Outcome {
	fc := c.context(p)
	outcomes := make([]Outcome, 0, len(c.filters))
	for _, f := range c.filters {
		outcomes = append(outcomes, c.run(ctx, f, fc))
	}
	return outcomes
}

// FirstVerdict stops at the first filter with an opinion
func (c *Chain) FirstVerdict(ctx context.Context, p post.Post) (Outcome, bool) {
	fc := c.context(p)
	for _, f := range c.filters {
		if outcome := c.run(ctx, f, fc); outcome.Verdict != nil {
			return outcome, true
		}
	}
	return Outcome{}, false
}

// Decide picks the winning outcome of a trace
func Decide(outcomes []Outcome) (Outcome, bool) {
	return lo.Find(outcomes, func(o Outcome) bool {
		return o.Verdict != nil
	})
}
