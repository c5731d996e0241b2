package cli

import (
	"github.com/spf13/cobra"
)

func NewLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the meeting the running session is attending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return forwardOrFail(cmd, "leave")
		},
	}
}
