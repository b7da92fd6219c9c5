package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/post-comb/app/post"
)

// PostRepository stores posts once they have left the live listing
type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// InsertPosts stores posts, silently skipping ids that already exist, and
// returns how many rows were new
func (r *PostRepository) InsertPosts(ctx context.Context, posts []post.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO posts (id, author, score, title, created, body, link, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range posts {
		res, err := stmt.ExecContext(ctx,
			p.ID, p.Author, p.Score, p.Title, p.Created.Unix(),
			nullString(p.Body), nullString(p.Link), nullString(string(p.Category)))
		if err != nil {
			return 0, fmt.Errorf("failed to insert post %s: %w", p.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit posts: %w", err)
	}

	return inserted, nil
}

// CountPosts counts the author's stored posts scoring at least minScore
func (r *PostRepository) CountPosts(ctx context.Context, author string, minScore float64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE author = ? AND score >= ?", author, minScore).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// GetPosts returns the newest posts of a category, or of every category
// when category is empty
func (r *PostRepository) GetPosts(ctx context.Context, category post.Category, limit int) ([]post.Post, error) {
	query := `
		SELECT id, author, score, title, created, COALESCE(body, ''), COALESCE(link, ''), COALESCE(category, '')
		FROM posts`
	args := []any{}
	if category != post.CategoryNone {
		query += " WHERE category = ?"
		args = append(args, string(category))
	}
	query += " ORDER BY created DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	defer rows.Close()

	var posts []post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

// GetPost returns nil, nil when the post is not stored
func (r *PostRepository) GetPost(ctx context.Context, id string) (*post.Post, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, author, score, title, created, COALESCE(body, ''), COALESCE(link, ''), COALESCE(category, '')
		FROM posts WHERE id = ?
	`, id)

	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *PostRepository) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

// SetCategory reports false when no post has the id
func (r *PostRepository) SetCategory(ctx context.Context, id string, category post.Category) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET category = ? WHERE id = ?", nullString(string(category)), id)
	if err != nil {
		return false, fmt.Errorf("failed to set category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (post.Post, error) {
	var (
		p        post.Post
		created  int64
		category string
	)

	err := s.Scan(&p.ID, &p.Author, &p.Score, &p.Title, &created, &p.Body, &p.Link, &category)
	if errors.Is(err, sql.ErrNoRows) {
		return post.Post{}, err
	}
	if err != nil {
		return post.Post{}, fmt.Errorf("failed to scan post row: %w", err)
	}

	p.Created = time.Unix(created, 0).UTC()
	p.Category = post.Category(category)

	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
