package watch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lysyi3m/post-comb/app/post"
)

func posts(ids ...string) []post.Post {
	out := make([]post.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, post.Post{ID: id, Title: "post " + id})
	}
	return out
}

func ids(posts []post.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func assertIDs(t *testing.T, label string, got []post.Post, expected ...string) {
	t.Helper()
	gotIDs := ids(got)
	if fmt.Sprint(gotIDs) != fmt.Sprint(expected) {
		t.Errorf("Expected %s %v, got %v", label, expected, gotIDs)
	}
}

func TestReconcileFreshAndExpired(t *testing.T) {
	r := NewReconciler(20, 100)

	update := r.Reconcile(posts("a", "b"))
	assertIDs(t, "fresh", update.Fresh, "a", "b")
	assertIDs(t, "expired", update.Expired)

	update = r.Reconcile(posts("b", "c"))
	assertIDs(t, "fresh", update.Fresh, "c")
	assertIDs(t, "expired", update.Expired, "a")

	update = r.Reconcile(posts("b"))
	assertIDs(t, "fresh", update.Fresh)
	assertIDs(t, "expired", update.Expired, "c")

	// a and c flap back in and out; both were already emitted
	update = r.Reconcile(posts("a", "b", "c"))
	assertIDs(t, "fresh", update.Fresh)
	assertIDs(t, "expired", update.Expired)

	update = r.Reconcile(posts("b"))
	assertIDs(t, "fresh", update.Fresh)
	assertIDs(t, "expired", update.Expired)

	assertIDs(t, "live", r.Live(), "b")
}

func TestReconcileOrdersByID(t *testing.T) {
	r := NewReconciler(20, 100)
	update := r.Reconcile(posts("z", "m", "a"))
	assertIDs(t, "fresh", update.Fresh, "a", "m", "z")
}

func TestReconcileDuplicatesInListing(t *testing.T) {
	r := NewReconciler(20, 100)
	update := r.Reconcile(posts("a", "a", "b"))
	assertIDs(t, "fresh", update.Fresh, "a", "b")
}

func TestDebounceEviction(t *testing.T) {
	r := NewReconciler(1, 1)
	if r.Capacity() != 2 {
		t.Fatalf("Expected capacity 2, got %d", r.Capacity())
	}

	update := r.Reconcile(posts("a"))
	assertIDs(t, "fresh", update.Fresh, "a")

	r.Reconcile(posts())
	// a is still in the fresh window
	update = r.Reconcile(posts("a"))
	assertIDs(t, "fresh", update.Fresh)

	r.Reconcile(posts("b"))
	r.Reconcile(posts("c"))

	// b and c pushed a out of the fresh window; a comes back as fresh
	update = r.Reconcile(posts("a"))
	assertIDs(t, "fresh", update.Fresh, "a")
}

func TestDebounceWindow(t *testing.T) {
	d := &debounce{capacity: 3}
	for _, id := range []string{"a", "b", "c", "d"} {
		d.push(id)
	}
	if fmt.Sprint(d.ids) != "[d c b]" {
		t.Errorf("Expected [d c b], got %v", d.ids)
	}
	if d.contains("a") {
		t.Error("Expected a to be evicted")
	}
}

type mockSource struct {
	listings [][]post.Post
	errs     []error
	calls    int
}

func (m *mockSource) FetchLatest(ctx context.Context) ([]post.Post, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	return m.listings[i], nil
}

func TestWatcherFetchErrorIsNoop(t *testing.T) {
	source := &mockSource{
		listings: [][]post.Post{posts("a", "b"), nil, posts("b", "c")},
		errs:     []error{nil, errors.New("503 Service Unavailable"), nil},
	}
	w := NewWatcher(source, NewReconciler(20, 100))

	update := w.Update(context.Background())
	assertIDs(t, "fresh", update.Fresh, "a", "b")
	if w.LiveCount() != 2 {
		t.Errorf("Expected 2 live posts, got %d", w.LiveCount())
	}

	update = w.Update(context.Background())
	if !update.IsEmpty() {
		t.Errorf("Expected empty update on fetch error, got %+v", update)
	}
	if w.LiveCount() != 2 {
		t.Errorf("Expected live set to survive a failed fetch, got %d", w.LiveCount())
	}

	update = w.Update(context.Background())
	assertIDs(t, "fresh", update.Fresh, "c")
	assertIDs(t, "expired", update.Expired, "a")
}
