package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	configmgr "yeectl/internal/cli"
	"yeectl/internal/config"
	"yeectl/internal/logger"
)

var (
	verbose    bool
	configPath string
	log        = logger.New()
)

var rootCmd = &cobra.Command{
	Use:   "yeectl",
	Short: "yeectl - control Yeelight smart bulbs on the local network",
	Long: `yeectl talks to Yeelight bulbs over their LAN control protocol.
It can discover bulbs, send any of the bulb commands, keep a list of known lights,
expose them over a small HTTP bridge and drive them from an interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetSilentMode(false)
			logger.SetLevel("debug")
		}
		log = logger.New()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to configuration file")

	// Add subcommands
	rootCmd.AddCommand(lightCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cliCmd)
}

// loadConfig reads the configuration file, falling back to defaults when it does not exist
func loadConfig() (*config.Config, error) {
	cfg, err := configmgr.NewConfigManager(configPath).LoadConfig()
	if err != nil {
		return nil, err
	}
	if !verbose {
		logger.SetLevel(cfg.Defaults.LogLevel)
	}
	return cfg, nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
