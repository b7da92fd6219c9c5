package filter

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/lysyi3m/post-comb/app/channels"
	"github.com/lysyi3m/post-comb/app/heuristic"
	"github.com/lysyi3m/post-comb/app/post"
)

const (
	KarmaThreshold = 3
	PostsThreshold = 2
)

func inTextLinks(p post.Post) []string {
	return lo.FilterMap(p.Tokens(), func(token post.Token, _ int) (string, bool) {
		link, ok := token.(post.Link)
		return link.URL, ok
	})
}

// allowOrBlockURL checks the post link first, then in-text links. In-text,
// the first allowed link wins, otherwise the last blocked one.
func allowOrBlockURL(_ context.Context, c *Context) *Verdict {
	policy := c.Policy
	if policy == nil {
		return nil
	}

	if link := c.Post.Link; link != "" {
		if policy.Allow.Contains(link) {
			return Ham(AllowedURL{URL: link})
		}
		if policy.Block.Contains(link) {
			return Spam(BlockedURL{URL: link})
		}
	}

	var verdict *Verdict
	for _, link := range inTextLinks(c.Post) {
		if policy.Allow.Contains(link) {
			return Ham(AllowedURL{URL: link})
		}
		if policy.Block.Contains(link) {
			verdict = Spam(BlockedURL{URL: link})
		}
	}

	return verdict
}

func reputableAuthor(ctx context.Context, c *Context) *Verdict {
	if c.History == nil || c.Post.Author == "" {
		return nil
	}

	count, err := c.History.CountPosts(ctx, c.Post.Author, KarmaThreshold)
	if err != nil {
		slog.Warn("Failed to count author posts", "author", c.Post.Author, "post", c.Post.ID, "error", err)
		return nil
	}

	if count < PostsThreshold {
		return nil
	}

	return Ham(ReputableAuthor{Author: c.Post.Author, Posts: count})
}

func knownChannel(ctx context.Context, c *Context) *Verdict {
	if c.Channels == nil || c.Policy.ChannelCount() == 0 {
		return nil
	}

	links := inTextLinks(c.Post)
	if c.Post.Link != "" {
		links = append([]string{c.Post.Link}, links...)
	}

	for _, link := range lo.Uniq(links) {
		if !channels.IsVideoURL(link) {
			continue
		}

		channel, err := c.Channels.ResolveChannel(ctx, link)
		if err != nil {
			slog.Warn("Failed to resolve channel", "url", link, "post", c.Post.ID, "error", err)
			continue
		}

		if c.Policy.TrustsChannel(channel) {
			return Ham(KnownChannel{Channel: channel, URL: link})
		}
	}

	return nil
}

func containsRustCode(_ context.Context, c *Context) *Verdict {
	for _, token := range c.Post.Tokens() {
		code, ok := token.(post.Code)
		if !ok {
			continue
		}

		if code.Lang != post.LangNone {
			return Ham(FencedCodeBlock{Lang: code.Lang})
		}

		if h, ok := heuristic.Detect(code.Body); ok {
			return Ham(DetectedCode{Heuristic: h})
		}
	}

	return nil
}
