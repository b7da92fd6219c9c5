package tasks

import (
	"context"

	"github.com/lysyi3m/post-comb/app/filter"
	"github.com/lysyi3m/post-comb/app/post"
	"github.com/lysyi3m/post-comb/app/watch"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to queue background work.
// Example usage:
//
//	scheduler := NewScheduler(interval, newPollTask)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewAnalyzeTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Updater produces the fresh and expired posts of one poll cycle
type Updater interface {
	Update(ctx context.Context) watch.Update
}

// Classifier runs the filter chain over a post
type Classifier interface {
	RunAll(ctx context.Context, p post.Post) []filter.Outcome
	FirstVerdict(ctx context.Context, p post.Post) (filter.Outcome, bool)
}

var (
	_ Updater    = (*watch.Watcher)(nil)
	_ Classifier = (*filter.Chain)(nil)
)
