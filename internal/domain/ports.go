package domain

import "context"

// Prompt represents the system prompt + the content to send as "user".
type Prompt struct {
	System string
	User   string
}

// Generation is what a model call produced. OK is false for any non-success
// outcome the client could observe without a transport error.
type Generation struct {
	OK         bool
	Text       string
	StatusCode int
}

// ModelClient defines how the core application talks to a text model.
type ModelClient interface {
	Generate(ctx context.Context, prompt Prompt) (Generation, error)
}

// CaptionExtractor fetches a best-effort caption for a post URL.
// It always returns a string; failures come back as one of the sentinel
// captions.
type CaptionExtractor interface {
	FetchCaption(ctx context.Context, url string) string
}

// BlobStore is a minimal key-value persistence port.
type BlobStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

const (
	CaptionNotExtracted   = "Caption could not be extracted"
	CaptionExtractionFail = "Error extracting caption"
	PlaceholderCaption    = "Placeholder caption for analysis"
)
