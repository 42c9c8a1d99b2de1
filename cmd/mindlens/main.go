package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/mindlens/internal/config"
	"github.com/PabloGalante/mindlens/internal/observability"
)

type rootFlags struct {
	storage  string
	provider string
	profile  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "mindlens",
		Short:         "Wellbeing analysis of social media posts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.storage, "storage", "", "storage backend (memory, sqlite, redis, postgres, firestore)")
	root.PersistentFlags().StringVar(&flags.provider, "provider", "", "model provider (gemini, openai, mock)")
	root.PersistentFlags().StringVar(&flags.profile, "profile", "", "prompt profile name")

	root.AddCommand(
		newServeCmd(&flags),
		newAnalyzeCmd(&flags),
		newSessionsCmd(&flags),
	)
	return root
}

// loadApp reads the config, applies flag overrides and wires the app.
func loadApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.storage != "" {
		cfg.StorageBackend = strings.ToLower(flags.storage)
	}
	if flags.provider != "" {
		cfg.ModelProvider = strings.ToLower(flags.provider)
	}
	if flags.profile != "" {
		cfg.PromptProfile = flags.profile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := observability.Init(cfg.LogMode); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	return newApp(ctx, cfg)
}
