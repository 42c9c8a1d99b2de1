package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/PabloGalante/mindlens/internal/adapters/caption"
	"github.com/PabloGalante/mindlens/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/mindlens/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/mindlens/internal/adapters/storage/memory"
	pgstore "github.com/PabloGalante/mindlens/internal/adapters/storage/postgres"
	redisstore "github.com/PabloGalante/mindlens/internal/adapters/storage/redis"
	sqlitestore "github.com/PabloGalante/mindlens/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/mindlens/internal/app/analysis"
	"github.com/PabloGalante/mindlens/internal/app/chat"
	"github.com/PabloGalante/mindlens/internal/app/sessions"
	"github.com/PabloGalante/mindlens/internal/config"
	"github.com/PabloGalante/mindlens/internal/domain"
	"github.com/PabloGalante/mindlens/internal/observability"
)

// app holds the wired dependencies shared by all commands.
type app struct {
	cfg      *config.Config
	svc      *chat.Service
	sessions *sessions.Store
	closers  []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := observability.Logger()
	a := &app{cfg: cfg}

	model, err := newModelClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blob, closeBlob, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closeBlob != nil {
		a.closers = append(a.closers, closeBlob)
	}

	profile, err := cfg.ResolvePromptProfile()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var extractor domain.CaptionExtractor = caption.PlaceholderExtractor{}
	if cfg.ExtractCaptions {
		extractor = caption.NewHTTPExtractor(&http.Client{Timeout: cfg.FetchTimeout})
	}

	a.sessions = sessions.NewStore(blob, sessions.WithKey(cfg.SessionsKey))
	a.sessions.Load(ctx)
	eventLog := observability.WithFields("component", "sessions", "blob_key", cfg.SessionsKey)
	a.sessions.Subscribe(func(ev sessions.Event) {
		eventLog.Debugw("session event", "kind", ev.Kind, "session_id", ev.SessionID, "current_id", ev.CurrentID)
	})

	orch := analysis.NewOrchestrator(extractor, model, profile,
		analysis.WithMaxConcurrentFetches(cfg.MaxConcurrentFetches))
	a.svc = chat.NewService(orch, a.sessions)

	log.Infow("app wired",
		"model_provider", cfg.ModelProvider,
		"storage_backend", cfg.StorageBackend,
		"prompt_profile", profile.Name,
		"extract_captions", cfg.ExtractCaptions)
	return a, nil
}

func newModelClient(ctx context.Context, cfg *config.Config) (domain.ModelClient, error) {
	switch cfg.ModelProvider {
	case "mock":
		return llm.NewMockClient(), nil
	case "openai":
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
		})
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
		})
		if err != nil {
			return nil, fmt.Errorf("error initializing Gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.ModelProvider)
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (domain.BlobStore, func() error, error) {
	switch cfg.StorageBackend {
	case "memory":
		return memstore.NewBlobStore(), nil, nil
	case "sqlite":
		s, err := sqlitestore.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		s, err := redisstore.NewStore(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := pgstore.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "firestore":
		s, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing Firestore store: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
