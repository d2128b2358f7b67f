package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/selfassess/internal/app"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Answer an assessment in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		return runTake(cmd, id)
	},
}

func init() {
	takeCmd.Flags().String("id", "", "Open this assessment directly")
}

// runTake opens the store and launches the TUI.
func runTake(cmd *cobra.Command, assessmentID string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	identity, err := localIdentity(cmd)
	if err != nil {
		return err
	}
	// Log output would corrupt the alternate screen.
	logger, _ := newLogger(cfg, true)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, closeSvc, err := openService(cmd.Context(), cfg, st, logger, false)
	if err != nil {
		return err
	}
	defer closeSvc()

	return app.Run(app.Options{
		Service:      svc,
		Identity:     identity,
		AssessmentID: assessmentID,
	})
}
