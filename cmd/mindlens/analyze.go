package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/mindlens/internal/app/chat"
	"github.com/PabloGalante/mindlens/internal/domain"
	"github.com/PabloGalante/mindlens/internal/observability"
)

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze URL [URL...]",
		Short: "Analyze profile or post urls and store the result as a session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := domain.NormalizeURLs(args)
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return fmt.Errorf("no urls given")
			}

			ctx := cmd.Context()
			a, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()
			defer observability.Sync()

			out, err := a.svc.Analyze(ctx, chat.AnalyzeInput{URLs: urls})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out.Session)
		},
	}
}
