package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rbright/usher/internal/app"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the running session's milestone history",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, handled, err := app.Forward(cmd.Context(), "status")
			if err != nil {
				return err
			}
			if !handled {
				fmt.Fprintln(cmd.OutOrStdout(), "idle")
				return nil
			}

			milestone := resp.Milestone
			if milestone == "" {
				milestone = "idle"
			}
			fmt.Fprintln(cmd.OutOrStdout(), milestone)
			if len(resp.History) > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "history: %s\n", strings.Join(resp.History, " -> "))
			}
			return nil
		},
	}
}
