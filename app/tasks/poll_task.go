package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/post-comb/app/database"
	"github.com/lysyi3m/post-comb/app/filter"
	"github.com/lysyi3m/post-comb/app/post"
)

const logTitleLength = 80

// PollTask runs one cycle of the control loop: fetch and reconcile the
// listing, store expired posts, classify fresh ones. Collaborator failures
// are logged and never fail the task.
type PollTask struct {
	Task
	watcher     Updater
	chain       Classifier
	postRepo    database.PostRepositoryInterface
	verdictRepo database.VerdictRepositoryInterface
}

func NewPollTask(subject string, watcher Updater, chain Classifier,
	postRepo database.PostRepositoryInterface, verdictRepo database.VerdictRepositoryInterface) *PollTask {
	return &PollTask{
		Task:        NewTask(TaskTypePoll, subject),
		watcher:     watcher,
		chain:       chain,
		postRepo:    postRepo,
		verdictRepo: verdictRepo,
	}
}

func (t *PollTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	update := t.watcher.Update(ctx)
	if update.IsEmpty() {
		slog.Debug("Nothing changed", "subject", t.Subject)
		return nil
	}

	stored := 0
	if len(update.Expired) > 0 {
		n, err := t.postRepo.InsertPosts(ctx, update.Expired)
		if err != nil {
			slog.Error("Failed to store expired posts", "count", len(update.Expired), "error", err)
		} else {
			stored = n
		}
	}

	counts := map[filter.Status]int{}
	for _, p := range update.Fresh {
		outcome, ok := t.chain.FirstVerdict(ctx, p)
		record := verdictRecord(p, outcome, ok, time.Now().UTC())
		counts[filter.Status(record.Status)]++

		slog.Info("Post classified",
			"post", p.ID,
			"title", post.Truncate(p.Title, logTitleLength),
			"status", record.Status,
			"filter", record.Filter,
			"reason", record.Reason)

		if err := t.verdictRepo.SaveVerdict(ctx, record); err != nil {
			slog.Error("Failed to save verdict", "post", p.ID, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", "Poll",
		"subject", t.Subject,
		"duration", t.GetDuration(),
		"fresh", len(update.Fresh),
		"expired", len(update.Expired),
		"stored", stored,
		"ham", counts[filter.StatusHam],
		"spam", counts[filter.StatusSpam],
		"unknown", counts[filter.StatusUnknown])

	return nil
}

func verdictRecord(p post.Post, outcome filter.Outcome, ok bool, now time.Time) database.Verdict {
	record := database.Verdict{
		PostID:       p.ID,
		Author:       p.Author,
		Title:        p.Title,
		Link:         p.Link,
		Created:      p.Created,
		Status:       string(filter.StatusUnknown),
		ClassifiedAt: now,
	}

	if ok && outcome.Verdict != nil {
		record.Status = string(outcome.Verdict.Status)
		record.Filter = outcome.Filter
		if outcome.Verdict.Reason != nil {
			record.Reason = outcome.Verdict.Reason.String()
		}
	}

	return record
}
