package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/post-comb/app/post"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func testPost(id, author string, score float64, created time.Time) post.Post {
	return post.Post{
		ID:      id,
		Author:  author,
		Score:   score,
		Title:   "Post " + id,
		Created: created,
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected second migration run to succeed, got %v", err)
	}
	if version != 2 {
		t.Errorf("Expected schema version 2, got %d", version)
	}
	if dirty {
		t.Error("Expected clean schema")
	}
}

func TestInsertPostsIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))
	now := time.Unix(1700000000, 0).UTC()

	inserted, err := repo.InsertPosts(ctx, []post.Post{
		testPost("a", "alice", 5, now),
		testPost("b", "bob", 1, now.Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if inserted != 2 {
		t.Errorf("Expected 2 inserted posts, got %d", inserted)
	}

	changed := testPost("a", "alice", 100, now)
	changed.Title = "Changed"
	inserted, err = repo.InsertPosts(ctx, []post.Post{changed, testPost("c", "carol", 2, now)})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if inserted != 1 {
		t.Errorf("Expected 1 inserted post, got %d", inserted)
	}

	stored, err := repo.GetPost(ctx, "a")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("Expected post a to be stored")
	}
	if stored.Title != "Post a" || stored.Score != 5 {
		t.Errorf("Expected original post to be kept, got %v", stored)
	}
	if !stored.Created.Equal(now) {
		t.Errorf("Expected created %v, got %v", now, stored.Created)
	}

	count, err := repo.GetPostCount(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 posts, got %d", count)
	}
}

func TestInsertPostsEmpty(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	inserted, err := repo.InsertPosts(context.Background(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if inserted != 0 {
		t.Errorf("Expected 0 inserted posts, got %d", inserted)
	}
}

func TestCountPosts(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))
	now := time.Now().UTC()

	_, err := repo.InsertPosts(ctx, []post.Post{
		testPost("1", "alice", 3, now),
		testPost("2", "alice", 10, now),
		testPost("3", "alice", 2, now),
		testPost("4", "bob", 50, now),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		author   string
		minScore float64
		expected int
	}{
		{"alice", 3, 2},
		{"alice", 0, 3},
		{"alice", 11, 0},
		{"bob", 3, 1},
		{"nobody", 0, 0},
	}

	for _, tt := range tests {
		got, err := repo.CountPosts(ctx, tt.author, tt.minScore)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != tt.expected {
			t.Errorf("CountPosts(%q, %g): expected %d, got %d", tt.author, tt.minScore, tt.expected, got)
		}
	}
}

func TestGetPostsAndCategories(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))
	base := time.Unix(1700000000, 0).UTC()

	withBody := testPost("1", "alice", 1, base)
	withBody.Body = "```rust\nfn main() {}\n```"
	withBody.Link = "https://github.com/rust-lang/rust"

	_, err := repo.InsertPosts(ctx, []post.Post{
		withBody,
		testPost("2", "bob", 1, base.Add(time.Hour)),
		testPost("3", "carol", 1, base.Add(2*time.Hour)),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	all, err := repo.GetPosts(ctx, post.CategoryNone, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 posts, got %d", len(all))
	}
	if all[0].ID != "3" || all[2].ID != "1" {
		t.Errorf("Expected newest first, got %s..%s", all[0].ID, all[2].ID)
	}
	if all[2].Body != withBody.Body || all[2].Link != withBody.Link {
		t.Errorf("Expected body and link to round-trip, got %q %q", all[2].Body, all[2].Link)
	}

	limited, err := repo.GetPosts(ctx, post.CategoryNone, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 post, got %d", len(limited))
	}

	ok, err := repo.SetCategory(ctx, "2", post.CategoryGame)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ok {
		t.Error("Expected category to be set")
	}

	ok, err = repo.SetCategory(ctx, "missing", post.CategoryGame)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected no post to be updated")
	}

	games, err := repo.GetPosts(ctx, post.CategoryGame, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(games) != 1 || games[0].ID != "2" {
		t.Errorf("Expected only post 2 in game category, got %v", games)
	}
	if games[0].Category != post.CategoryGame {
		t.Errorf("Expected category game, got %q", games[0].Category)
	}

	if _, err := repo.SetCategory(ctx, "2", post.CategoryNone); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	games, err = repo.GetPosts(ctx, post.CategoryGame, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(games) != 0 {
		t.Errorf("Expected cleared category, got %d posts", len(games))
	}
}

func TestGetPostNotFound(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	p, err := repo.GetPost(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("Expected nil post, got %v", p)
	}
}

func TestVerdictRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewVerdictRepository(newTestDB(t))
	base := time.Unix(1700000000, 0).UTC()

	verdicts := []Verdict{
		{PostID: "1", Author: "alice", Title: "one", Created: base, Status: "ham", Filter: "AllowOrBlockUrl", Reason: "AllowedUrl", ClassifiedAt: base},
		{PostID: "2", Author: "bob", Title: "two", Created: base, Status: "spam", Filter: "AllowOrBlockUrl", Reason: "BlockedUrl", ClassifiedAt: base.Add(time.Minute)},
		{PostID: "3", Author: "carol", Title: "three", Created: base, Status: "unknown", ClassifiedAt: base.Add(2 * time.Minute)},
	}
	for _, v := range verdicts {
		if err := repo.SaveVerdict(ctx, v); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	stats, err := repo.GetVerdictStats(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.Ham != 1 || stats.Spam != 1 || stats.Unknown != 1 {
		t.Errorf("Expected 1/1/1, got %+v", stats)
	}
	if stats.Total() != 3 {
		t.Errorf("Expected total 3, got %d", stats.Total())
	}

	// reclassification replaces the earlier verdict
	verdicts[2].Status = "ham"
	verdicts[2].Filter = "ReputableAuthor"
	verdicts[2].ClassifiedAt = base.Add(3 * time.Minute)
	if err := repo.SaveVerdict(ctx, verdicts[2]); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	hams, err := repo.ListVerdicts(ctx, "ham", 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(hams) != 2 {
		t.Fatalf("Expected 2 ham verdicts, got %d", len(hams))
	}
	if hams[0].PostID != "3" || hams[0].Filter != "ReputableAuthor" {
		t.Errorf("Expected most recent ham first, got %+v", hams[0])
	}
	if hams[1].Reason != "AllowedUrl" {
		t.Errorf("Expected reason AllowedUrl, got %q", hams[1].Reason)
	}

	all, err := repo.ListVerdicts(ctx, "", 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 verdicts, got %d", len(all))
	}

	stats, err = repo.GetVerdictStats(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.Ham != 2 || stats.Unknown != 0 {
		t.Errorf("Expected 2 ham and 0 unknown, got %+v", stats)
	}
}

func TestGetVerdictStatsEmpty(t *testing.T) {
	repo := NewVerdictRepository(newTestDB(t))

	stats, err := repo.GetVerdictStats(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.Total() != 0 {
		t.Errorf("Expected no verdicts, got %+v", stats)
	}
}
