package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/post-comb/app/database"
	"github.com/lysyi3m/post-comb/app/post"
)

const DefaultAnalyzeLimit = 10000

// AnalyzeResult summarizes one analysis run
type AnalyzeResult struct {
	Posts    int
	Matched  int
	ByFilter map[string]int
}

// AnalyzeTask re-runs every filter over stored posts of a category and logs
// each filter that had an opinion. Nothing is written back.
type AnalyzeTask struct {
	Task
	category post.Category
	limit    int
	postRepo database.PostRepositoryInterface
	chain    Classifier
	Result   AnalyzeResult
}

func NewAnalyzeTask(category post.Category, limit int, postRepo database.PostRepositoryInterface, chain Classifier) *AnalyzeTask {
	subject := string(category)
	if category == post.CategoryNone {
		subject = "all"
	}

	return &AnalyzeTask{
		Task:     NewTask(TaskTypeAnalyze, subject),
		category: category,
		limit:    limit,
		postRepo: postRepo,
		chain:    chain,
	}
}

func (t *AnalyzeTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	posts, err := t.postRepo.GetPosts(ctx, t.category, t.limit)
	if err != nil {
		return fmt.Errorf("failed to get stored posts: %w", err)
	}

	result := AnalyzeResult{Posts: len(posts), ByFilter: map[string]int{}}

	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}

		matched := false
		for _, outcome := range t.chain.RunAll(ctx, p) {
			if outcome.Verdict == nil {
				continue
			}
			matched = true
			result.ByFilter[outcome.Filter]++

			slog.Info("Filter matched",
				"post", p.ID,
				"title", post.Truncate(p.Title, logTitleLength),
				"filter", outcome.Filter,
				"verdict", outcome.Verdict.String(),
				"elapsed", outcome.Elapsed.Round(time.Microsecond))
		}
		if matched {
			result.Matched++
		}
	}

	t.Result = result

	slog.Info("Task completed",
		"type", "Analyze",
		"category", t.Subject,
		"duration", t.GetDuration(),
		"posts", result.Posts,
		"matched", result.Matched)

	return nil
}
