package cfg

import (
	"time"

	"github.com/lysyi3m/post-comb/app/post"
)

const (
	CommandWatch   = "watch"
	CommandAnalyze = "analyze"
)

const (
	SourceJSON = "json"
	SourceRSS  = "rss"
)

type Cfg struct {
	// Command selected on the command line
	Command string

	// Storage and policy
	DBPath     string
	PolicyFile string

	// Listing source
	Subreddit          string
	Source             string
	RedditClientID     string
	RedditClientSecret string
	RedditUsername     string
	RedditPassword     string
	HTTPTimeout        time.Duration

	// Watch loop
	PollInterval time.Duration
	LatestBatch  int
	Margin       int

	// HTTP server
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Analysis
	Category     post.Category
	AnalyzeLimit int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
