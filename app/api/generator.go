package api

import (
	"cmp"
	"fmt"
	"time"

	"github.com/gorilla/feeds"

	"github.com/lysyi3m/post-comb/app/database"
)

// Generator renders ham verdicts as an RSS feed
type Generator struct {
	subreddit string
	selfLink  string
	version   string
}

func NewGenerator(subreddit, baseURL, port, version string) *Generator {
	selfLink := fmt.Sprintf("http://localhost:%s/feeds/ham", port)
	if baseURL != "" {
		selfLink = fmt.Sprintf("%s/feeds/ham", baseURL)
	}

	return &Generator{
		subreddit: subreddit,
		selfLink:  selfLink,
		version:   version,
	}
}

func (g *Generator) Run(verdicts []database.Verdict) (string, error) {
	updated := time.Now().In(time.Local)
	if len(verdicts) > 0 {
		updated = cmp.Or(verdicts[0].ClassifiedAt, updated)
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("r/%s ham", g.subreddit),
		Link:        &feeds.Link{Href: g.selfLink},
		Description: fmt.Sprintf("Posts from r/%s classified as ham (post-comb/%s)", g.subreddit, g.version),
		Updated:     updated,
	}

	feed.Items = make([]*feeds.Item, 0, len(verdicts))
	for _, v := range verdicts {
		feed.Items = append(feed.Items, g.item(v))
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to render RSS: %w", err)
	}

	return rss, nil
}

func (g *Generator) item(v database.Verdict) *feeds.Item {
	permalink := fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s/", g.subreddit, v.PostID)

	return &feeds.Item{
		Id:          permalink,
		Title:       v.Title,
		Link:        &feeds.Link{Href: cmp.Or(v.Link, permalink)},
		Author:      &feeds.Author{Name: v.Author},
		Description: fmt.Sprintf("%s: %s", v.Filter, v.Reason),
		Created:     v.Created,
	}
}
