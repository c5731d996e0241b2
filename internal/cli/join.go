package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rbright/usher/internal/app"
)

func NewJoinCmd(deps *Dependencies, configPath *string) *cobra.Command {
	var params app.JoinParams

	cmd := &cobra.Command{
		Use:   "join <url>",
		Short: "Join a meeting and attend it until it ends",
		Long:  "Opens the meeting URL, waits through the admission lobby, then records and transcribes until the meeting ends, the duration cap is hit, or 'usher stop' is issued.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.URL = args[0]
			return app.Join(cmd.Context(), deps.Factory, *configPath, params, os.Stderr)
		},
	}

	cmd.Flags().StringVarP(&params.DisplayName, "name", "n", "", "display name to join with")
	cmd.Flags().StringVar(&params.Token, "token", "", "status-reporting auth token")
	cmd.Flags().StringVar(&params.TeamID, "team-id", "", "team identifier")
	cmd.Flags().StringVar(&params.Timezone, "timezone", "", "meeting timezone")
	cmd.Flags().StringVar(&params.UserID, "user-id", "", "requesting user identifier")
	cmd.Flags().StringVar(&params.EventID, "event-id", "", "calendar event identifier")
	cmd.Flags().StringVar(&params.BotID, "bot-id", "", "bot identifier")
	cmd.Flags().StringVarP(&params.OutputDir, "output", "o", "", "recording output directory")

	return cmd
}
