package watch

import (
	"github.com/samber/lo"

	"github.com/lysyi3m/post-comb/app/post"
)

const (
	DefaultLatestBatch = 20
	DefaultMargin      = 100
)

type Update struct {
	Fresh   []post.Post
	Expired []post.Post
}

func (u Update) IsEmpty() bool {
	return len(u.Fresh) == 0 && len(u.Expired) == 0
}

// debounce remembers the most recently emitted ids, newest first
type debounce struct {
	ids      []string
	capacity int
}

func (d *debounce) contains(id string) bool {
	return lo.Contains(d.ids, id)
}

func (d *debounce) push(id string) {
	for len(d.ids) >= d.capacity {
		d.ids = d.ids[:len(d.ids)-1]
	}
	d.ids = append([]string{id}, d.ids...)
}

// Reconciler turns successive listing snapshots into fresh and expired
// posts. A post id is emitted at most once per kind while it stays in that
// kind's debounce window.
type Reconciler struct {
	live    map[string]post.Post
	fresh   *debounce
	expired *debounce
}

// NewReconciler keeps latestBatch+margin ids in each debounce window
func NewReconciler(latestBatch, margin int) *Reconciler {
	capacity := max(latestBatch+margin, 1)
	return &Reconciler{
		live:    make(map[string]post.Post),
		fresh:   &debounce{capacity: capacity},
		expired: &debounce{capacity: capacity},
	}
}

func (r *Reconciler) Reconcile(listing []post.Post) Update {
	latest := lo.SliceToMap(listing, func(p post.Post) (string, post.Post) {
		return p.ID, p
	})

	update := Update{
		Fresh:   difference(latest, r.live, r.fresh),
		Expired: difference(r.live, latest, r.expired),
	}

	r.live = latest

	return update
}

// difference returns left minus right, skipping debounced ids, and records
// what it returns
func difference(left, right map[string]post.Post, d *debounce) []post.Post {
	diff := lo.Filter(lo.Values(left), func(p post.Post, _ int) bool {
		_, ok := right[p.ID]
		return !ok && !d.contains(p.ID)
	})
	post.Sort(diff)

	for _, p := range diff {
		d.push(p.ID)
	}

	return diff
}

// Live returns the current snapshot ordered by id
func (r *Reconciler) Live() []post.Post {
	live := lo.Values(r.live)
	post.Sort(live)
	return live
}

func (r *Reconciler) Capacity() int {
	return r.fresh.capacity
}
