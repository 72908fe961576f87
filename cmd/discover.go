package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	configmgr "yeectl/internal/cli"
	"yeectl/internal/logger"
	"yeectl/internal/yeelight"
)

var (
	discoverWindow time.Duration
	discoverSave   bool
	discoverJSON   bool
	discoverTarget string
)

var (
	discoverHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	discoverNameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Bold(true)
	discoverDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find bulbs on the local network",
	Long: `Broadcast a search request to 239.255.255.250:1982 and list every bulb that
answers within the discovery window. Bulbs must have LAN control enabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		window := cfg.Defaults.DiscoveryWindow
		if cmd.Flags().Changed("window") {
			window = discoverWindow
		}

		opts := []yeelight.DiscoverOption{
			yeelight.WithWindow(window),
			yeelight.WithDiscoveryLogger(logger.Component("discovery")),
		}
		if discoverTarget != "" {
			opts = append(opts, yeelight.WithTarget(discoverTarget))
		}

		log.Info().Dur("window", window).Msg("Searching for bulbs")

		replies, err := yeelight.Discover(cmd.Context(), opts...)
		if err != nil {
			return err
		}

		// Bulbs may answer more than once; keep the first reply per id
		seen := make(map[string]bool)
		var ads []*yeelight.Advertisement
		for _, reply := range replies {
			ad, err := yeelight.ParseAdvertisement(reply.Payload)
			if err != nil {
				log.Debug().Err(err).Str("from", reply.Addr.String()).Msg("Ignoring discovery reply")
				continue
			}
			if seen[ad.ID] {
				continue
			}
			seen[ad.ID] = true
			ads = append(ads, ad)
		}

		out := cmd.OutOrStdout()
		if discoverJSON {
			if ads == nil {
				ads = []*yeelight.Advertisement{}
			}
			if err := printJSON(out, ads); err != nil {
				return err
			}
		} else {
			printAdvertisements(out, ads)
		}

		if discoverSave && len(ads) > 0 {
			added, err := configmgr.NewConfigManager(configPath).ImportAdvertisements(ads)
			if err != nil {
				return fmt.Errorf("failed to save discovered lights: %w", err)
			}
			cmd.PrintErrf("Saved %d new light(s) to %s\n", added, configPath)
		}

		return nil
	},
}

func printAdvertisements(w io.Writer, ads []*yeelight.Advertisement) {
	if len(ads) == 0 {
		fmt.Fprintln(w, discoverDimStyle.Render("No bulbs answered."))
		return
	}

	fmt.Fprintln(w, discoverHeaderStyle.Render(fmt.Sprintf("Found %d bulb(s):", len(ads))))
	for _, ad := range ads {
		name := ad.Name
		if name == "" {
			name = ad.ID
		}
		location := ad.Location
		if ep, err := ad.Endpoint(); err == nil {
			location = ep.String()
		}
		fmt.Fprintf(w, "  %s  %s\n", discoverNameStyle.Render(name), location)
		fmt.Fprintln(w, discoverDimStyle.Render(fmt.Sprintf("    id=%s model=%s fw=%d power=%s bright=%d",
			ad.ID, ad.Model, ad.FirmwareVersion, ad.Power, ad.Bright)))
	}
}

func init() {
	discoverCmd.Flags().DurationVarP(&discoverWindow, "window", "w", yeelight.DefaultDiscoveryWindow, "How long to wait for replies")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Add discovered bulbs to the configuration file")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Print advertisements as JSON")
	discoverCmd.Flags().StringVar(&discoverTarget, "target", "", "Send the search request to this address instead of the multicast group")
	_ = discoverCmd.Flags().MarkHidden("target")
}
