package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/lysyi3m/post-comb/app/post"
)

const summaryTitleLength = 80

// Source supplies the current listing of the board
type Source interface {
	FetchLatest(ctx context.Context) ([]post.Post, error)
}

// Watcher polls a Source and feeds the listing through a Reconciler. A
// failed fetch produces an empty update and leaves the live set alone.
type Watcher struct {
	source     Source
	reconciler *Reconciler

	mu        sync.RWMutex
	liveCount int
}

func NewWatcher(source Source, reconciler *Reconciler) *Watcher {
	return &Watcher{
		source:     source,
		reconciler: reconciler,
	}
}

func (w *Watcher) Update(ctx context.Context) Update {
	listing, err := w.source.FetchLatest(ctx)
	if err != nil {
		slog.Warn("Failed to fetch latest posts", "error", err)
		return Update{}
	}

	w.mu.Lock()
	update := w.reconciler.Reconcile(listing)
	w.liveCount = len(w.reconciler.live)
	w.mu.Unlock()

	if update.IsEmpty() {
		return update
	}

	slog.Debug("Emitting update", "fresh", update.Fresh, "expired", update.Expired)
	slog.Info("Update summary",
		"fresh", titles(update.Fresh),
		"expired", titles(update.Expired))

	return update
}

func (w *Watcher) LiveCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.liveCount
}

func titles(posts []post.Post) []string {
	return lo.Map(posts, func(p post.Post, _ int) string {
		return post.Truncate(p.Title, summaryTitleLength)
	})
}
