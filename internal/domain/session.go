package domain

import (
	"slices"
	"time"
)

// ChatSession pairs the analyzed URLs with their result. Only Title changes
// after creation.
type ChatSession struct {
	ID        SessionID      `json:"id"`
	URLs      []string       `json:"urls"`
	Result    AnalysisResult `json:"result"`
	Timestamp int64          `json:"timestamp"` // unix millis
	Title     string         `json:"title"`
}

// CreatedAt returns the creation instant.
func (s ChatSession) CreatedAt() Timestamp {
	return time.UnixMilli(s.Timestamp)
}

// Clone returns a copy that shares no memory with s.
func (s ChatSession) Clone() ChatSession {
	out := s
	out.URLs = slices.Clone(s.URLs)
	out.Result = s.Result.Clone()
	return out
}
