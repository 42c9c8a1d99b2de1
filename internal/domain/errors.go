package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrMisalignedResult = errors.New("analysis posts do not match analyzed urls")
	ErrAnalysisInFlight = errors.New("an analysis is already in progress")
	ErrInvalidURL       = errors.New("unsupported profile or post url")
)

type AnalysisErrorKind string

const (
	KindInvalidRequest     AnalysisErrorKind = "invalid_request"
	KindModelUnavailable   AnalysisErrorKind = "model_unavailable"
	KindEmptyModelResponse AnalysisErrorKind = "empty_model_response"
	KindMisalignedResult   AnalysisErrorKind = "misaligned_result"
)

// AnalysisError is returned by the orchestrator when an analysis cannot
// produce a result.
type AnalysisError struct {
	Kind       AnalysisErrorKind
	StatusCode int // model status code, 0 when unknown
	Err        error
}

func (e *AnalysisError) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// UserMessage is the generic text shown to users for this failure.
func (e *AnalysisError) UserMessage() string {
	switch e.Kind {
	case KindInvalidRequest:
		return "at least one url is required"
	case KindEmptyModelResponse:
		return "the analysis service returned no response, please try again"
	default:
		return "failed to analyze posts, please try again later"
	}
}

// IsAnalysisKind reports whether err is an AnalysisError of the given kind.
func IsAnalysisKind(err error, kind AnalysisErrorKind) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.Kind == kind
}
