package database

import (
	"time"
)

// Verdict is the stored classification of a fresh post
type Verdict struct {
	PostID       string
	Author       string
	Title        string
	Link         string
	Created      time.Time
	Status       string // ham, spam, unknown
	Filter       string // empty for unknown
	Reason       string
	ClassifiedAt time.Time
}

type VerdictStats struct {
	Ham     int `json:"ham"`
	Spam    int `json:"spam"`
	Unknown int `json:"unknown"`
}

func (s VerdictStats) Total() int {
	return s.Ham + s.Spam + s.Unknown
}
