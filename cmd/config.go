package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	configmgr "yeectl/internal/cli"
	"yeectl/internal/config"
)

var (
	configForce     bool
	configLightID   string
	configLightName string
	configLightPort int
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the list of known lights",
	Long:  `Create the configuration file and add, remove or list the lights it knows about.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configmgr.NewConfigManager(configPath).InitConfig(configForce); err != nil {
			return err
		}
		cmd.Printf("Default configuration saved to: %s\n", configPath)
		return nil
	},
}

var configAddCmd = &cobra.Command{
	Use:   "add <host>",
	Short: "Add a light",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		light, err := configmgr.NewConfigManager(configPath).AddLight(config.LightConfig{
			ID:   configLightID,
			Name: configLightName,
			Host: args[0],
			Port: configLightPort,
		})
		if err != nil {
			return err
		}

		log.Info().
			Str("id", light.ID).
			Str("address", light.Endpoint().String()).
			Msg("Light added")
		cmd.Printf("Added light %s at %s\n", light.ID, light.Endpoint())
		return nil
	},
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove <id|name>",
	Short: "Remove a light",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm := configmgr.NewConfigManager(configPath)
		light, err := cm.GetLight(args[0])
		if err != nil {
			return err
		}
		if err := cm.RemoveLight(light.ID); err != nil {
			return err
		}
		cmd.Printf("Removed light %s\n", light.ID)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured lights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lights, err := configmgr.NewConfigManager(configPath).ListLights()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(lights) == 0 {
			fmt.Fprintln(out, "No lights configured. Use 'yeectl discover --save' or 'yeectl config add'.")
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))).
			Headers("ID", "NAME", "ADDRESS")
		for _, l := range lights {
			t.Row(l.ID, l.Name, l.Endpoint().String())
		}
		_, err = fmt.Fprintln(out, t.Render())
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")

	configAddCmd.Flags().StringVar(&configLightID, "id", "", "Light id (generated when empty)")
	configAddCmd.Flags().StringVarP(&configLightName, "name", "n", "", "Display name")
	configAddCmd.Flags().IntVarP(&configLightPort, "port", "p", 0, "Control port (default 55443)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configListCmd)
}
