package cmd

import (
	"github.com/spf13/cobra"
	"yeectl/cmd/cli"
	"yeectl/internal/logger"
)

var (
	debugFlag bool
	testFlag  bool
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Start the interactive light controller",
	Long: `Launch the interactive Terminal User Interface (TUI) for yeectl.
Pick a configured light or type an address, then toggle, dim and recolor it from the keyboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Logging would draw over the TUI unless explicitly requested
		if debugFlag {
			logger.SetSilentMode(false)
			logger.SetLevel("debug")
		} else {
			logger.SetSilentMode(true)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log := logger.New()
		log.Info().
			Bool("debug", debugFlag).
			Bool("test", testFlag).
			Int("lights", len(cfg.Lights)).
			Msg("Starting yeectl CLI interface")

		if err := cli.StartTUI(cfg, debugFlag, testFlag); err != nil {
			log.Error().Err(err).Msg("Failed to start TUI")
			return err
		}

		return nil
	},
}

func init() {
	cliCmd.Flags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	cliCmd.Flags().BoolVar(&testFlag, "test", false, "Enable test mode (control an in-process simulated bulb)")
}
