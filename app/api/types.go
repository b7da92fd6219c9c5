package api

import (
	"time"

	"github.com/lysyi3m/post-comb/app/database"
	"github.com/lysyi3m/post-comb/app/tasks"
)

type GeneratorInterface interface {
	Run(verdicts []database.Verdict) (string, error)
}

var _ GeneratorInterface = (*Generator)(nil)

// LiveCounter reports how many posts the watcher currently sees
type LiveCounter interface {
	LiveCount() int
}

type Handler struct {
	postRepo     database.PostRepositoryInterface
	verdictRepo  database.VerdictRepositoryInterface
	generator    GeneratorInterface
	live         LiveCounter
	chain        tasks.Classifier
	scheduler    tasks.TaskSchedulerInterface
	analyzeLimit int
	version      string
}

type verdictResponse struct {
	PostID       string    `json:"post_id"`
	Author       string    `json:"author"`
	Title        string    `json:"title"`
	Link         string    `json:"link,omitempty"`
	Created      time.Time `json:"created"`
	Status       string    `json:"status"`
	Filter       string    `json:"filter,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	ClassifiedAt time.Time `json:"classified_at"`
}

type postResponse struct {
	ID       string    `json:"id"`
	Author   string    `json:"author"`
	Score    float64   `json:"score"`
	Title    string    `json:"title"`
	Created  time.Time `json:"created"`
	Body     string    `json:"body,omitempty"`
	Link     string    `json:"link,omitempty"`
	Category string    `json:"category,omitempty"`
}

type categoryRequest struct {
	Category string `json:"category"`
}
