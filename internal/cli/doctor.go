package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/doctor"
)

func NewDoctorCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run configuration and environment checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			report := doctor.Run(cmd.Context(), loaded)
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			if !report.OK() {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}
