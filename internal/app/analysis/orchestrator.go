package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/mindlens/internal/adapters/llm"
	"github.com/PabloGalante/mindlens/internal/domain"
	"github.com/PabloGalante/mindlens/internal/observability"
)

const defaultMaxConcurrentFetches = 4

// Orchestrator runs one analysis: caption extraction, prompt, model call and
// response parsing. It does not touch the session store.
type Orchestrator struct {
	extractor domain.CaptionExtractor
	model     domain.ModelClient
	profile   llm.PromptProfile

	maxConcurrentFetches int
}

type Option func(*Orchestrator)

// WithMaxConcurrentFetches bounds the parallel caption fetches.
func WithMaxConcurrentFetches(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxConcurrentFetches = n
		}
	}
}

func NewOrchestrator(
	extractor domain.CaptionExtractor,
	model domain.ModelClient,
	profile llm.PromptProfile,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		extractor:            extractor,
		model:                model,
		profile:              profile,
		maxConcurrentFetches: defaultMaxConcurrentFetches,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Analyze produces one AnalysisResult for urls. Errors are *domain.AnalysisError.
func (o *Orchestrator) Analyze(ctx context.Context, urls []string) (domain.AnalysisResult, error) {
	if len(urls) == 0 {
		return domain.AnalysisResult{}, &domain.AnalysisError{
			Kind: domain.KindInvalidRequest,
			Err:  errors.New("no urls to analyze"),
		}
	}

	log := observability.LoggerFromContext(ctx).With("url_count", len(urls))
	log.Infow("analysis started", "profile", o.profile.Name)

	start := time.Now()
	inputs := o.fetchCaptions(ctx, urls)
	log.Infow("captions fetched", "elapsed_ms", time.Since(start).Milliseconds())

	prompt := llm.BuildPrompt(inputs, o.profile)

	start = time.Now()
	gen, err := o.model.Generate(ctx, prompt)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Errorw("model call failed", "error", err, "elapsed_ms", elapsed)
		return domain.AnalysisResult{}, &domain.AnalysisError{Kind: domain.KindModelUnavailable, StatusCode: gen.StatusCode, Err: err}
	}
	if !gen.OK {
		log.Errorw("model returned non-success", "status_code", gen.StatusCode, "elapsed_ms", elapsed)
		return domain.AnalysisResult{}, &domain.AnalysisError{Kind: domain.KindModelUnavailable, StatusCode: gen.StatusCode}
	}
	if strings.TrimSpace(gen.Text) == "" {
		log.Errorw("model returned empty text", "elapsed_ms", elapsed)
		return domain.AnalysisResult{}, &domain.AnalysisError{Kind: domain.KindEmptyModelResponse, StatusCode: gen.StatusCode}
	}
	log.Infow("model call done", "elapsed_ms", elapsed, "text_len", len(gen.Text))

	outcome := ParseOutcome(gen.Text, inputs)
	if outcome.Kind == Fallback {
		log.Warnw("malformed model output, using fallback analysis", "reason", outcome.Reason)
	}

	if len(outcome.Result.Posts) != len(urls) {
		return domain.AnalysisResult{}, &domain.AnalysisError{Kind: domain.KindMisalignedResult, Err: domain.ErrMisalignedResult}
	}

	log.Infow("analysis finished", "outcome", outcome.Kind.String())
	return outcome.Result, nil
}

// fetchCaptions fetches all captions concurrently. Results are stored by
// input index, so completion order does not matter.
func (o *Orchestrator) fetchCaptions(ctx context.Context, urls []string) []domain.PostInput {
	inputs := make([]domain.PostInput, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrentFetches)
	for i, u := range urls {
		inputs[i].URL = u
		g.Go(func() error {
			inputs[i].Caption = o.extractor.FetchCaption(gCtx, u)
			return nil
		})
	}
	// extractors never fail
	_ = g.Wait()

	return inputs
}
