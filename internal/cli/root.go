// Package cli defines the cobra command tree for the usher binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/rbright/usher/internal/page"
	"github.com/rbright/usher/internal/version"
)

// Dependencies carry the collaborators the commands cannot build themselves.
// The page driver is linked by the binary, not by this module.
type Dependencies struct {
	Factory page.Factory
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "usher",
		Short:         "Headless meeting attendant",
		Long:          "Joins video meetings as a guest, records them, transcribes the conversation, and optionally speaks generated replies.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.String() + "\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: $XDG_CONFIG_HOME/usher/config.toml)")

	rootCmd.AddCommand(NewJoinCmd(deps, &configPath))
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewStopCmd())
	rootCmd.AddCommand(NewLeaveCmd())
	rootCmd.AddCommand(NewDoctorCmd(&configPath))

	return rootCmd
}
