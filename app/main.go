package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"github.com/lysyi3m/post-comb/app/api"
	"github.com/lysyi3m/post-comb/app/cfg"
	"github.com/lysyi3m/post-comb/app/channels"
	"github.com/lysyi3m/post-comb/app/config"
	"github.com/lysyi3m/post-comb/app/database"
	"github.com/lysyi3m/post-comb/app/filter"
	"github.com/lysyi3m/post-comb/app/reddit"
	"github.com/lysyi3m/post-comb/app/tasks"
	"github.com/lysyi3m/post-comb/app/watch"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogging(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("post-comb stopped", "error", err)
		os.Exit(1)
	}
}

// setupLogging sends everything at the chosen level to stdout as text and
// errors to stderr as JSON
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	slog.SetDefault(slog.New(slogmulti.Fanout(textHandler, jsonHandler)))
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting post-comb",
		"version", appCfg.Version,
		"command", appCfg.Command,
		"subreddit", appCfg.Subreddit,
		"timezone", appCfg.Timezone)

	policy, err := config.Load(appCfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	postRepo := database.NewPostRepository(db)
	verdictRepo := database.NewVerdictRepository(db)

	httpClient := &http.Client{Timeout: appCfg.HTTPTimeout}
	resolver := channels.NewResolver(httpClient, appCfg.UserAgent, appCfg.HTTPTimeout)
	chain := filter.NewChain(policy, postRepo, resolver)

	switch appCfg.Command {
	case cfg.CommandAnalyze:
		return runAnalyze(appCfg, postRepo, chain)
	case cfg.CommandWatch:
		return runWatch(appCfg, httpClient, postRepo, verdictRepo, chain)
	default:
		return fmt.Errorf("unknown command: %s", appCfg.Command)
	}
}

func runAnalyze(appCfg *cfg.Cfg, postRepo *database.PostRepository, chain *filter.Chain) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := tasks.NewAnalyzeTask(appCfg.Category, appCfg.AnalyzeLimit, postRepo, chain)
	task.Start()

	if err := task.Execute(ctx); err != nil {
		return fmt.Errorf("failed to analyze posts: %w", err)
	}

	for name, count := range task.Result.ByFilter {
		slog.Info("Filter summary", "filter", name, "matched", count)
	}

	return nil
}

func newSource(appCfg *cfg.Cfg, httpClient *http.Client) watch.Source {
	if appCfg.Source == cfg.SourceRSS {
		slog.Info("Using feed listing source", "subreddit", appCfg.Subreddit)
		return reddit.NewFeedSource(httpClient, appCfg.UserAgent, appCfg.Subreddit, appCfg.LatestBatch)
	}

	credentials := &reddit.Credentials{
		ClientID:     appCfg.RedditClientID,
		ClientSecret: appCfg.RedditClientSecret,
		Username:     appCfg.RedditUsername,
		Password:     appCfg.RedditPassword,
	}
	slog.Info("Using JSON listing source", "subreddit", appCfg.Subreddit, "oauth", appCfg.HasRedditCredentials())

	return reddit.NewJSONSource(httpClient, appCfg.UserAgent, appCfg.Subreddit, appCfg.LatestBatch, credentials)
}

func runWatch(appCfg *cfg.Cfg, httpClient *http.Client, postRepo *database.PostRepository,
	verdictRepo *database.VerdictRepository, chain *filter.Chain) error {
	reconciler := watch.NewReconciler(appCfg.LatestBatch, appCfg.Margin)
	watcher := watch.NewWatcher(newSource(appCfg, httpClient), reconciler)

	slog.Info("Starting background scheduler",
		"interval", appCfg.PollInterval,
		"latest_batch", appCfg.LatestBatch,
		"debounce_capacity", reconciler.Capacity())

	scheduler := tasks.NewScheduler(appCfg.PollInterval, func() tasks.TaskInterface {
		return tasks.NewPollTask(appCfg.Subreddit, watcher, chain, postRepo, verdictRepo)
	})
	scheduler.Start()
	defer scheduler.Stop()

	generator := api.NewGenerator(appCfg.Subreddit, appCfg.BaseUrl, appCfg.Port, appCfg.Version)
	handler := api.NewHandler(postRepo, verdictRepo, generator, watcher, chain, scheduler,
		tasks.DefaultAnalyzeLimit, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "api_enabled", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case runErr = <-serverErrChan:
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return runErr
}
