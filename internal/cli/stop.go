package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbright/usher/internal/app"
)

func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "End the running session and finalize its recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			return forwardOrFail(cmd, "stop")
		},
	}
}

// forwardOrFail sends command to the running session and fails when no
// session is live.
func forwardOrFail(cmd *cobra.Command, command string) error {
	resp, handled, err := app.Forward(cmd.Context(), command)
	if err != nil {
		return err
	}
	if !handled {
		return errors.New("no active usher session")
	}
	if resp.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
	}
	return nil
}
