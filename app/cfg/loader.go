package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/lysyi3m/post-comb/app/post"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type watchCmd struct {
	PollInterval int    `long:"poll-interval" env:"POLL_INTERVAL" default:"60" description:"Seconds between listing polls"`
	LatestBatch  int    `long:"latest-batch" env:"LATEST_BATCH" default:"20" description:"Number of newest posts fetched per poll"`
	Margin       int    `long:"margin" env:"DEBOUNCE_MARGIN" default:"100" description:"Extra post IDs remembered to debounce listing flicker"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://comb.example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
}

type analyzeCmd struct {
	Category string `long:"category" env:"CATEGORY" choice:"lang" choice:"game" choice:"other" description:"Only analyze stored posts of this category"`
	Limit    int    `long:"limit" env:"ANALYZE_LIMIT" default:"10000" description:"Maximum number of stored posts to analyze"`
}

type rawCfg struct {
	// Storage and policy
	DBPath     string `long:"db" env:"DB_PATH" default:"./post-comb.db" description:"SQLite database file"`
	PolicyFile string `long:"policy" env:"POLICY_FILE" default:"./policy.yml" description:"Allow/block list and trusted channel policy"`

	// Listing source
	Subreddit          string `long:"subreddit" env:"SUBREDDIT" default:"rust" description:"Board to watch"`
	Source             string `long:"source" env:"SOURCE" default:"json" choice:"json" choice:"rss" description:"Listing source"`
	RedditClientID     string `long:"reddit-client-id" env:"REDDIT_CLIENT_ID" description:"OAuth client ID (optional)"`
	RedditClientSecret string `long:"reddit-client-secret" env:"REDDIT_CLIENT_SECRET" description:"OAuth client secret"`
	RedditUsername     string `long:"reddit-username" env:"REDDIT_USERNAME" description:"OAuth username"`
	RedditPassword     string `long:"reddit-password" env:"REDDIT_PASSWORD" description:"OAuth password"`
	HTTPTimeout        int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"post-comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Watch   watchCmd   `command:"watch" description:"Poll the board, classify fresh posts and serve the API"`
	Analyze analyzeCmd `command:"analyze" description:"Re-run every filter over stored posts and log the matches"`
}

// Load parses the process arguments. It returns nil, nil when help was shown.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if parser.Active == nil {
		return nil, fmt.Errorf("failed to parse configuration: no command given")
	}

	cfg := &Cfg{
		Command:            parser.Active.Name,
		DBPath:             raw.DBPath,
		PolicyFile:         raw.PolicyFile,
		Subreddit:          raw.Subreddit,
		Source:             raw.Source,
		RedditClientID:     raw.RedditClientID,
		RedditClientSecret: raw.RedditClientSecret,
		RedditUsername:     raw.RedditUsername,
		RedditPassword:     raw.RedditPassword,
		HTTPTimeout:        time.Duration(raw.HTTPTimeout) * time.Second,
		PollInterval:       time.Duration(raw.Watch.PollInterval) * time.Second,
		LatestBatch:        raw.Watch.LatestBatch,
		Margin:             raw.Watch.Margin,
		Port:               raw.Watch.Port,
		BaseUrl:            raw.Watch.BaseUrl,
		APIAccessKey:       raw.Watch.APIAccessKey,
		Category:           post.Category(raw.Analyze.Category),
		AnalyzeLimit:       raw.Analyze.Limit,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func (c *Cfg) validate() error {
	switch c.Command {
	case CommandWatch:
		if c.PollInterval <= 0 {
			return fmt.Errorf("poll interval must be positive")
		}
		if c.LatestBatch <= 0 {
			return fmt.Errorf("latest batch must be positive")
		}
		if c.Margin < 0 {
			return fmt.Errorf("margin must not be negative")
		}
	case CommandAnalyze:
		if c.AnalyzeLimit <= 0 {
			return fmt.Errorf("analyze limit must be positive")
		}
	}
	return nil
}

// HasRedditCredentials reports whether every OAuth field is set
func (c *Cfg) HasRedditCredentials() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != "" &&
		c.RedditUsername != "" && c.RedditPassword != ""
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
