package filter

import (
	"fmt"

	"github.com/lysyi3m/post-comb/app/heuristic"
	"github.com/lysyi3m/post-comb/app/post"
)

type Status string

const (
	StatusHam     Status = "ham"
	StatusSpam    Status = "spam"
	StatusUnknown Status = "unknown"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusHam, StatusSpam, StatusUnknown:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// Reason is the evidence behind a verdict
type Reason interface {
	Kind() string
	String() string
}

type Verdict struct {
	Status Status
	Reason Reason
}

func Ham(reason Reason) *Verdict {
	return &Verdict{Status: StatusHam, Reason: reason}
}

func Spam(reason Reason) *Verdict {
	return &Verdict{Status: StatusSpam, Reason: reason}
}

func (v Verdict) String() string {
	return fmt.Sprintf("%s: %s", v.Status, v.Reason)
}

type AllowedURL struct {
	URL string
}

func (AllowedURL) Kind() string     { return "AllowedUrl" }
func (r AllowedURL) String() string { return fmt.Sprintf("AllowedUrl(%s)", r.URL) }

type BlockedURL struct {
	URL string
}

func (BlockedURL) Kind() string     { return "BlockedUrl" }
func (r BlockedURL) String() string { return fmt.Sprintf("BlockedUrl(%s)", r.URL) }

type ReputableAuthor struct {
	Author string
	Posts  int
}

func (ReputableAuthor) Kind() string { return "ReputableAuthor" }
func (r ReputableAuthor) String() string {
	return fmt.Sprintf("ReputableAuthor(author=%s posts=%d)", r.Author, r.Posts)
}

type KnownChannel struct {
	Channel string
	URL     string
}

func (KnownChannel) Kind() string { return "KnownYoutubeChannel" }
func (r KnownChannel) String() string {
	return fmt.Sprintf("KnownYoutubeChannel(%s via %s)", r.Channel, r.URL)
}

type FencedCodeBlock struct {
	Lang post.Lang
}

func (FencedCodeBlock) Kind() string     { return "FencedCodeBlock" }
func (r FencedCodeBlock) String() string { return fmt.Sprintf("FencedCodeBlock(%s)", r.Lang) }

type DetectedCode struct {
	Heuristic heuristic.Heuristic
}

func (DetectedCode) Kind() string     { return "DetectedRustCode" }
func (r DetectedCode) String() string { return fmt.Sprintf("DetectedRustCode(%s)", r.Heuristic) }
