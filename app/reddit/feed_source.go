package reddit

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/post-comb/app/post"
)

// FeedSource reads the subreddit's Atom feed. It needs no credentials but
// carries no scores.
type FeedSource struct {
	httpClient *http.Client
	userAgent  string
	subreddit  string
	limit      int
	parser     *gofeed.Parser

	PublicURL string
}

func NewFeedSource(httpClient *http.Client, userAgent, subreddit string, limit int) *FeedSource {
	return &FeedSource{
		httpClient: httpClient,
		userAgent:  userAgent,
		subreddit:  subreddit,
		limit:      limit,
		parser:     gofeed.NewParser(),
		PublicURL:  DefaultPublicURL,
	}
}

func (s *FeedSource) FetchLatest(ctx context.Context) ([]post.Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/new/.rss?limit=%d", s.PublicURL, s.subreddit, s.limit)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return s.parse(data)
}

func (s *FeedSource) parse(data []byte) ([]post.Post, error) {
	feed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	posts := make([]post.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		p, err := itemToPost(item)
		if err != nil {
			return nil, fmt.Errorf("failed to convert entry %s: %w", item.GUID, err)
		}
		posts = append(posts, p)
	}

	return posts, nil
}

func itemToPost(item *gofeed.Item) (post.Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(item.Content))
	if err != nil {
		return post.Post{}, fmt.Errorf("failed to parse content: %w", err)
	}

	var selftext string
	if md := doc.Find("div.md").First(); md.Length() > 0 {
		selftext = htmlToMarkdown(md)
	}

	// the [link] anchor points back at the permalink for self posts
	var link string
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != "[link]" {
			return true
		}
		href, _ := a.Attr("href")
		if href != item.Link {
			link = href
		}
		return false
	})

	s := submission{
		ID:       strings.TrimPrefix(cmp.Or(item.GUID, item.Link), "t3_"),
		Author:   itemAuthor(item),
		Title:    item.Title,
		Selftext: selftext,
		IsSelf:   link == "",
		URL:      link,
	}

	p := s.toPost()
	p.Created = itemTime(item)

	return p, nil
}

func itemAuthor(item *gofeed.Item) string {
	var name string
	if item.Author != nil {
		name = item.Author.Name
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		name = item.Authors[0].Name
	}
	return strings.TrimPrefix(strings.TrimSpace(name), "/u/")
}

func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Now().UTC()
}
