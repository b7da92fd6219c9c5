package reddit

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/post-comb/app/post"
)

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []struct {
			Kind string     `json:"kind"`
			Data submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type submission struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Score      float64 `json:"score"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	IsSelf     bool    `json:"is_self"`
	CreatedUTC float64 `json:"created_utc"`
	URL        string  `json:"url"`
}

func (s submission) toPost() post.Post {
	body, link := bodyAndLink(s.Title, s.Selftext, s.IsSelf, s.URL)

	return post.Post{
		ID:      s.ID,
		Author:  s.Author,
		Score:   s.Score,
		Title:   norm.NFC.String(strings.TrimSpace(s.Title)),
		Created: time.Unix(int64(s.CreatedUTC), 0).UTC(),
		Body:    body,
		Link:    link,
	}
}

// bodyAndLink turns self posts that are really just a URL into link posts
func bodyAndLink(title, selftext string, isSelf bool, url string) (string, string) {
	title = strings.TrimSpace(title)
	selftext = norm.NFC.String(strings.TrimSpace(selftext))

	if !isSelf {
		return selftext, strings.TrimSpace(url)
	}

	switch {
	case selftext == "" && post.IsAbsoluteURL(title):
		return "", title
	case post.IsAbsoluteURL(selftext):
		return "", selftext
	default:
		return selftext, ""
	}
}
