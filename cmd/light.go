package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"yeectl/internal/config"
	"yeectl/internal/device"
	"yeectl/internal/logger"
	"yeectl/internal/yeelight"
)

var (
	lightRef      string
	lightHost     string
	lightPort     int
	lightEffect   string
	lightDuration time.Duration
	lightTimeout  time.Duration
)

var lightCmd = &cobra.Command{
	Use:   "light",
	Short: "Send commands to a bulb",
	Long: `Send a single command to a bulb and print the normalized response envelope.
The bulb is chosen with --light (id or name from the configuration file) or --host.`,
}

// lightOp is one light subcommand bound to a client call
type lightOp struct {
	use   string
	short string
	args  cobra.PositionalArgs
	run   func(ctx context.Context, c *yeelight.Client, t transition, args []string) (yeelight.Envelope, error)
}

// transition is the effect and duration applied to state changes
type transition struct {
	effect   yeelight.Effect
	duration time.Duration
}

var lightOps = []lightOp{
	{
		use:   "get-prop <prop>...",
		short: "Read bulb properties (power, bright, ct, rgb, hue, sat, color_mode, flowing, name, ...)",
		args:  cobra.MinimumNArgs(1),
		run: func(ctx context.Context, c *yeelight.Client, _ transition, args []string) (yeelight.Envelope, error) {
			return c.GetProp(ctx, args...), nil
		},
	},
	{
		use:   "ct <kelvin>",
		short: "Set color temperature (1700-6500)",
		args:  cobra.ExactArgs(1),
		run: func(ctx context.Context, c *yeelight.Client, t transition, args []string) (yeelight.Envelope, error) {
			ct, err := parseInt("kelvin", args[0])
			if err != nil {
				return yeelight.Envelope{}, err
			}
			return c.SetCTAbx(ctx, ct, t.effect, t.duration), nil
		},
	},
	{
		use:   "rgb <value|#rrggbb>",
		short: "Set RGB color",
		args:  cobra.ExactArgs(1),
		run: func(ctx context.Context, c *yeelight.Client, t transition, args []string) (yeelight.Envelope, error) {
			rgb, err := parseRGB(args[0])
			if err != nil {
				return yeelight.Envelope{}, err
			}
			return c.SetRGB(ctx, rgb, t.effect, t.duration), nil
		},
	},
	{
		use:   "hsv <hue> <sat>",
		short: "Set hue (0-359) and saturation (0-100)",
		args:  cobra.ExactArgs(2),
		run: func(ctx context.Context, c *yeelight.Client, t transition, args []string) (yeelight.Envelope, error) {
			hue, err := parseInt("hue", args[0])
			if err != nil {
				return yeelight.Envelope{}, err
			}
			sat, err := parseInt("sat", args[1])
			if err != nil {
				return yeelight.Envelope{}, err
			}
			return c.SetHSV(ctx, hue, sat, t.effect, t.duration), nil
		},
	},
	{
		use:   "bright <1-100>",
		short: "Set brightness",
		args:  cobra.ExactArgs(1),
		run: func(ctx context.Context, c *yeelight.Client, t transition, args []string) (yeelight.Envelope, error) {
			bright, err := parseInt("brightness", args[0])
			if err != nil {
				return yeelight.Envelope{}, err
			}
			return c.SetBright(ctx, bright, t.effect, t.duration), nil
		},
	},
	{
		use:   "power <on|off>",
		short: "Switch the bulb on or off",
		args:  cobra.ExactArgs(1),
		run: func(ctx context.Context, c *yeelight.Client, t transition, args []string) (yeelight.Envelope, error) {
			return c.SetPower(ctx, yeelight.Power(args[0]), t.effect, t.duration), nil
		},
	},
	{
		use:   "on",
		short: "Switch the bulb on (smooth, 1s)",
		args:  cobra.NoArgs,
		run: func(ctx context.Context, c *yeelight.Client, _ transition, _ []string) (yeelight.Envelope, error) {
			return c.On(ctx), nil
		},
	},
	{
		use:   "off",
		short: "Switch the bulb off (smooth, 1s)",
		args:  cobra.NoArgs,
		run: func(ctx context.Context, c *yeelight.Client, _ transition, _ []string) (yeelight.Envelope, error) {
			return c.Off(ctx), nil
		},
	},
	{
		use:   "toggle",
		short: "Toggle power",
		args:  cobra.NoArgs,
		run: func(ctx context.Context, c *yeelight.Client, _ transition, _ []string) (yeelight.Envelope, error) {
			return c.Toggle(ctx), nil
		},
	},
	{
		use:   "default",
		short: "Save the current state as the power-on default",
		args:  cobra.NoArgs,
		run: func(ctx context.Context, c *yeelight.Client, _ transition, _ []string) (yeelight.Envelope, error) {
			return c.SetDefault(ctx), nil
		},
	},
	{
		use:   "flow <count> <recover|stay|off> <expression>",
		short: "Start a color flow, e.g. flow 0 recover \"1000,2,2700,100,500,1,255,10\"",
		args:  cobra.ExactArgs(3),
		run: func(ctx context.Context, c *yeelight.Client, _ transition, args []string) (yeelight.Envelope, error) {
			count, err := parseInt("count", args[0])
			if err != nil {
				return yeelight.Envelope{}, err
			}
			action, err := parseCFAction(args[1])
			if err != nil {
				return yeelight.Envelope{}, err
			}
			if _, err := yeelight.ParseFlow(args[2]); err != nil {
				return yeelight.Envelope{}, err
			}
			return c.StartCF(ctx, count, action, args[2]), nil
		},
	},
	{
		use:   "stop-flow",
		short: "Stop a running color flow",
		args:  cobra.NoArgs,
		run: func(ctx context.Context, c *yeelight.Client, _ transition, _ []string) (yeelight.Envelope, error) {
			return c.StopCF(ctx), nil
		},
	},
	{
		use:   "scene <class> <value>...",
		short: "Set a scene (color, hsv, ct, cf, auto_delay_off)",
		args:  cobra.MinimumNArgs(2),
		run: func(ctx context.Context, c *yeelight.Client, _ transition, args []string) (yeelight.Envelope, error) {
			return c.SetScene(ctx, yeelight.SceneClass(args[0]), sceneValues(args[1:])...), nil
		},
	},
	{
		use:   "cron-add <minutes>",
		short: "Power off after a delay",
		args:  cobra.ExactArgs(1),
		run: func(ctx context.Context, c *yeelight.Client, _ transition, args []string) (yeelight.Envelope, error) {
			minutes, err := parseInt("minutes", args[0])
			if err != nil {
				return yeelight.Envelope{}, err
			}
			return c.CronAdd(ctx, yeelight.CronPowerOff, minutes), nil
		},
	},
	{
		use:   "cron-get",
		short: "Show the power-off timer",
		args:  cobra.NoArgs,
		run: func(ctx context.Context, c *yeelight.Client, _ transition, _ []string) (yeelight.Envelope, error) {
			return c.CronGet(ctx, yeelight.CronPowerOff), nil
		},
	},
	{
		use:   "cron-del",
		short: "Cancel the power-off timer",
		args:  cobra.NoArgs,
		run: func(ctx context.Context, c *yeelight.Client, _ transition, _ []string) (yeelight.Envelope, error) {
			return c.CronDel(ctx, yeelight.CronPowerOff), nil
		},
	},
	{
		use:   "adjust <increase|decrease|circle> <bright|ct|color>",
		short: "Adjust a property without knowing its current value",
		args:  cobra.ExactArgs(2),
		run: func(ctx context.Context, c *yeelight.Client, _ transition, args []string) (yeelight.Envelope, error) {
			return c.SetAdjust(ctx, yeelight.AdjustAction(args[0]), yeelight.AdjustProp(args[1])), nil
		},
	},
	{
		use:   "name <name>",
		short: "Store a name on the bulb",
		args:  cobra.ExactArgs(1),
		run: func(ctx context.Context, c *yeelight.Client, _ transition, args []string) (yeelight.Envelope, error) {
			return c.SetName(ctx, args[0]), nil
		},
	},
}

var lightActionCmd = &cobra.Command{
	Use:   "action <name> [parameters-json]",
	Short: "Run a named device action with JSON parameters",
	Long: `Run a device action the same way the HTTP bridge does, for example:
  yeectl light action set_rgb '{"rgb":"#ff8800","effect":"sudden"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		light, err := resolveLight(cfg)
		if err != nil {
			return err
		}

		var params map[string]interface{}
		if len(args) == 2 {
			if err := decodeParams(args[1], &params); err != nil {
				return err
			}
		}
		actionJSON, err := device.CreateActionJSON(args[0], params)
		if err != nil {
			return err
		}

		resp, err := light.Process(cmd.Context(), actionJSON)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("%s failed: %s", args[0], resp.Error)
		}
		return nil
	},
}

func (op lightOp) command() *cobra.Command {
	name := strings.Fields(op.use)[0]
	return &cobra.Command{
		Use:   op.use,
		Short: op.short,
		Args:  op.args,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			light, err := resolveLight(cfg)
			if err != nil {
				return err
			}
			t, err := resolveTransition(cmd, cfg)
			if err != nil {
				return err
			}

			log.Debug().
				Str("light", light.GetDeviceInfo().ID).
				Str("address", light.GetDeviceInfo().Address).
				Str("command", name).
				Msg("Sending light command")

			env, err := op.run(cmd.Context(), light.Client(), t, args)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), env); err != nil {
				return err
			}
			if !env.Status {
				return fmt.Errorf("%s failed: %v", name, env.Err())
			}
			return nil
		},
	}
}

// resolveLight picks the target bulb from --host, --light or a single configured light
func resolveLight(cfg *config.Config) (*yeelight.Light, error) {
	opts := []yeelight.Option{
		yeelight.WithTimeout(cfg.Defaults.Timeout),
		yeelight.WithLogger(logger.Component("light")),
	}
	if lightTimeout > 0 {
		opts[0] = yeelight.WithTimeout(lightTimeout)
	}
	withTransition := yeelight.WithTransition(yeelight.Effect(cfg.Defaults.Effect), cfg.Defaults.Duration)

	if lightHost != "" {
		client := yeelight.NewClient(lightHost, lightPort, opts...)
		return yeelight.NewLight(client.Endpoint().String(), client, withTransition), nil
	}

	var lc *config.LightConfig
	switch {
	case lightRef != "":
		found, err := cfg.GetLight(lightRef)
		if err != nil {
			return nil, err
		}
		lc = found
	case len(cfg.Lights) == 1:
		lc = &cfg.Lights[0]
	default:
		return nil, fmt.Errorf("no light selected: use --light or --host")
	}

	client := yeelight.NewClientForEndpoint(lc.Endpoint(), opts...)
	return yeelight.NewLight(lc.ID, client, yeelight.WithName(lc.Name), withTransition), nil
}

func resolveTransition(cmd *cobra.Command, cfg *config.Config) (transition, error) {
	t := transition{
		effect:   yeelight.Effect(cfg.Defaults.Effect),
		duration: cfg.Defaults.Duration,
	}
	if cmd.Flags().Changed("effect") {
		switch yeelight.Effect(lightEffect) {
		case yeelight.EffectSmooth, yeelight.EffectSudden:
			t.effect = yeelight.Effect(lightEffect)
		default:
			return t, fmt.Errorf("invalid effect %q: must be smooth or sudden", lightEffect)
		}
	}
	if cmd.Flags().Changed("duration") {
		t.duration = lightDuration
	}
	return t, nil
}

func decodeParams(s string, params *map[string]interface{}) error {
	if err := json.Unmarshal([]byte(s), params); err != nil {
		return fmt.Errorf("invalid parameters JSON: %w", err)
	}
	return nil
}

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, s)
	}
	return n, nil
}

func parseRGB(s string) (int, error) {
	if strings.HasPrefix(s, "#") {
		n, err := strconv.ParseInt(s[1:], 16, 32)
		if err != nil || len(s) != 7 {
			return 0, fmt.Errorf("invalid color %q: must be #rrggbb", s)
		}
		return int(n), nil
	}
	return parseInt("rgb", s)
}

func parseCFAction(s string) (yeelight.CFAction, error) {
	switch s {
	case "recover", "0":
		return yeelight.CFRecover, nil
	case "stay", "1":
		return yeelight.CFStay, nil
	case "off", "2":
		return yeelight.CFOff, nil
	}
	return 0, fmt.Errorf("invalid flow action %q: must be recover, stay or off", s)
}

// sceneValues passes numeric arguments as numbers and the rest as strings
func sceneValues(args []string) []interface{} {
	values := make([]interface{}, 0, len(args))
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil {
			values = append(values, n)
		} else {
			values = append(values, a)
		}
	}
	return values
}

func init() {
	lightCmd.PersistentFlags().StringVarP(&lightRef, "light", "l", "", "Light id or name from the configuration file")
	lightCmd.PersistentFlags().StringVarP(&lightHost, "host", "H", "", "Bulb address (overrides --light)")
	lightCmd.PersistentFlags().IntVarP(&lightPort, "port", "p", yeelight.DefaultPort, "Bulb control port")
	lightCmd.PersistentFlags().DurationVar(&lightTimeout, "timeout", 0, "Exchange timeout (default from configuration)")
	lightCmd.PersistentFlags().StringVar(&lightEffect, "effect", string(yeelight.EffectSmooth), "Transition effect: smooth or sudden")
	lightCmd.PersistentFlags().DurationVar(&lightDuration, "duration", yeelight.DefaultTransitionDuration, "Transition duration")

	for _, op := range lightOps {
		lightCmd.AddCommand(op.command())
	}
	lightCmd.AddCommand(lightActionCmd)
}
