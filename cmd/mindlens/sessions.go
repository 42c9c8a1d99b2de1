package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/mindlens/internal/domain"
)

func newSessionsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored analysis sessions",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List sessions, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := loadApp(cmd.Context(), flags)
				if err != nil {
					return err
				}
				defer a.Close()

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tCREATED\tURLS")
				for _, cs := range a.svc.ListSessions(cmd.Context()) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", cs.ID, cs.Title, cs.CreatedAt().Format(time.DateTime), len(cs.URLs))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "show ID",
			Short: "Print a session as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := loadApp(cmd.Context(), flags)
				if err != nil {
					return err
				}
				defer a.Close()

				cs, err := a.svc.GetSession(cmd.Context(), domain.SessionID(args[0]))
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cs)
			},
		},
		&cobra.Command{
			Use:   "rename ID TITLE...",
			Short: "Rename a session",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := loadApp(cmd.Context(), flags)
				if err != nil {
					return err
				}
				defer a.Close()

				id := domain.SessionID(args[0])
				if !a.svc.RenameSession(cmd.Context(), id, strings.Join(args[1:], " ")) {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing renamed")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "renamed", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := loadApp(cmd.Context(), flags)
				if err != nil {
					return err
				}
				defer a.Close()

				id := domain.SessionID(args[0])
				if a.svc.DeleteSession(cmd.Context(), id) {
					fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "no session", id)
				}
				return nil
			},
		},
	)
	return cmd
}
