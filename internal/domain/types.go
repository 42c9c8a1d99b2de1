package domain

import "time"

type SessionID string

// OverallStatus is the model's verdict for a whole analysis or a single post.
type OverallStatus string

const (
	StatusHealthy   OverallStatus = "HEALTHY"
	StatusUnhealthy OverallStatus = "UNHEALTHY"
)

// SentimentLabel is the per-post sentiment reported by the model.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

type Timestamp = time.Time

// SessionsBlobKey is the blob key the session collection is stored under.
const SessionsBlobKey = "mindlens.chat_sessions"
