package database

import (
	"context"

	"github.com/lysyi3m/post-comb/app/post"
)

type PostRepositoryInterface interface {
	InsertPosts(ctx context.Context, posts []post.Post) (int, error)
	CountPosts(ctx context.Context, author string, minScore float64) (int, error)
	GetPosts(ctx context.Context, category post.Category, limit int) ([]post.Post, error)
	GetPost(ctx context.Context, id string) (*post.Post, error)
	GetPostCount(ctx context.Context) (int, error)
	SetCategory(ctx context.Context, id string, category post.Category) (bool, error)
}

type VerdictRepositoryInterface interface {
	SaveVerdict(ctx context.Context, v Verdict) error
	ListVerdicts(ctx context.Context, status string, limit int) ([]Verdict, error)
	GetVerdictStats(ctx context.Context) (VerdictStats, error)
}
