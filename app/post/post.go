package post

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Post is a single submission from the watched board. Identity, equality
// and ordering are defined by ID alone.
type Post struct {
	ID       string
	Author   string
	Score    float64
	Title    string
	Created  time.Time
	Body     string   // empty when the post has no body
	Link     string   // empty when the post has no link
	Category Category // set by operators, never by filters
}

// Tokens re-tokenizes the body on every call.
func (p Post) Tokens() []Token {
	if p.Body == "" {
		return nil
	}
	return Tokenize(p.Body)
}

func (p Post) String() string {
	return fmt.Sprintf("Post{id=%s author=%s score=%g title=%q}", p.ID, p.Author, p.Score, Truncate(p.Title, 60))
}

func Compare(a, b Post) int {
	return cmp.Compare(a.ID, b.ID)
}

// Sort orders posts by ID in place.
func Sort(posts []Post) {
	slices.SortFunc(posts, Compare)
}

type Category string

const (
	CategoryNone  Category = ""
	CategoryLang  Category = "lang"
	CategoryGame  Category = "game"
	CategoryOther Category = "other"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryNone, CategoryLang, CategoryGame, CategoryOther:
		return c, nil
	default:
		return CategoryNone, fmt.Errorf("unknown category: %s", s)
	}
}
