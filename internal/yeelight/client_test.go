package yeelight_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yeectl/internal/yeelight"
	"yeectl/internal/yeelight/fakebulb"
)

func newTestClient(t *testing.T, handler fakebulb.Handler) (*yeelight.Client, *fakebulb.Bulb) {
	t.Helper()
	bulb, err := fakebulb.Start(handler)
	require.NoError(t, err)
	t.Cleanup(func() { bulb.Close() })
	return yeelight.NewClient(bulb.Host(), bulb.Port(), yeelight.WithTimeout(time.Second)), bulb
}

func TestClientCatalog(t *testing.T) {
	ctx := context.Background()
	ms := 300 * time.Millisecond

	tests := []struct {
		name string
		call func(c *yeelight.Client) yeelight.Envelope
		want string
	}{
		{"get_prop", func(c *yeelight.Client) yeelight.Envelope { return c.GetProp(ctx, "power", "bright") },
			`{"id":1,"method":"get_prop","params":["power","bright"]}`},
		{"set_ct_abx", func(c *yeelight.Client) yeelight.Envelope { return c.SetCTAbx(ctx, 3500, yeelight.EffectSmooth, ms) },
			`{"id":2,"method":"set_ct_abx","params":[3500,"smooth",300]}`},
		{"set_rgb", func(c *yeelight.Client) yeelight.Envelope { return c.SetRGB(ctx, 0xff0000, yeelight.EffectSudden, 0) },
			`{"id":3,"method":"set_rgb","params":[16711680,"sudden",0]}`},
		{"set_hsv", func(c *yeelight.Client) yeelight.Envelope { return c.SetHSV(ctx, 255, 45, yeelight.EffectSmooth, ms) },
			`{"id":4,"method":"set_hsv","params":[255,45,"smooth",300]}`},
		{"set_bright", func(c *yeelight.Client) yeelight.Envelope { return c.SetBright(ctx, 50, yeelight.EffectSmooth, ms) },
			`{"id":5,"method":"set_bright","params":[50,"smooth",300]}`},
		{"set_power", func(c *yeelight.Client) yeelight.Envelope {
			return c.SetPower(ctx, yeelight.PowerOn, yeelight.EffectSmooth, 1000*time.Millisecond)
		}, `{"id":6,"method":"set_power","params":["on","smooth",1000]}`},
		{"toggle", func(c *yeelight.Client) yeelight.Envelope { return c.Toggle(ctx) },
			`{"id":7,"method":"toggle","params":[]}`},
		{"set_default", func(c *yeelight.Client) yeelight.Envelope { return c.SetDefault(ctx) },
			`{"id":8,"method":"set_default","params":[]}`},
		{"start_cf", func(c *yeelight.Client) yeelight.Envelope {
			return c.StartCF(ctx, 4, yeelight.CFStay, "1000,2,2700,100,500,1,255,10")
		}, `{"id":9,"method":"start_cf","params":[4,1,"1000,2,2700,100,500,1,255,10"]}`},
		{"stop_cf", func(c *yeelight.Client) yeelight.Envelope { return c.StopCF(ctx) },
			`{"id":10,"method":"stop_cf","params":[]}`},
		{"set_scene", func(c *yeelight.Client) yeelight.Envelope { return c.SetScene(ctx, yeelight.SceneColor, 65280, 70) },
			`{"id":11,"method":"set_scene","params":["color",65280,70]}`},
		{"cron_add", func(c *yeelight.Client) yeelight.Envelope { return c.CronAdd(ctx, yeelight.CronPowerOff, 15) },
			`{"id":12,"method":"cron_add","params":[0,15]}`},
		{"cron_get", func(c *yeelight.Client) yeelight.Envelope { return c.CronGet(ctx, yeelight.CronPowerOff) },
			`{"id":13,"method":"cron_get","params":[0]}`},
		{"cron_del", func(c *yeelight.Client) yeelight.Envelope { return c.CronDel(ctx, yeelight.CronPowerOff) },
			`{"id":14,"method":"cron_del","params":[0]}`},
		{"set_adjust", func(c *yeelight.Client) yeelight.Envelope {
			return c.SetAdjust(ctx, yeelight.AdjustIncrease, yeelight.AdjustBright)
		}, `{"id":15,"method":"set_adjust","params":["increase","bright"]}`},
		{"set_name", func(c *yeelight.Client) yeelight.Envelope { return c.SetName(ctx, "my \"bulb\"") },
			`{"id":16,"method":"set_name","params":["my \"bulb\""]}`},
		{"on", func(c *yeelight.Client) yeelight.Envelope { return c.On(ctx) },
			`{"id":6,"method":"set_power","params":["on","smooth",1000]}`},
		{"off", func(c *yeelight.Client) yeelight.Envelope { return c.Off(ctx) },
			`{"id":6,"method":"set_power","params":["off","smooth",1000]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, bulb := newTestClient(t, nil)

			env := tt.call(client)

			assert.True(t, env.Status, "data: %v", env.Data)
			require.Len(t, bulb.Requests(), 1)
			assert.Equal(t, tt.want+"\r\n", bulb.Requests()[0])
		})
	}
}

func TestClientEnvelopes(t *testing.T) {
	ctx := context.Background()

	t.Run("ok result", func(t *testing.T) {
		client, _ := newTestClient(t, func(string) string { return `{"id":1,"result":["ok"]}` })
		env := client.GetProp(ctx, "power")
		assert.True(t, env.Status)
		assert.Equal(t, []interface{}{"ok"}, env.Data["result"])
	})

	t.Run("device error", func(t *testing.T) {
		client, _ := newTestClient(t, func(string) string {
			return `{"id":1,"error":{"code":-5000,"message":"general error"}}`
		})
		env := client.SetBright(ctx, 10, yeelight.EffectSmooth, time.Second)
		assert.False(t, env.Status)
		assert.Equal(t, "general error", env.DeviceError().Message)
	})

	t.Run("malformed reply", func(t *testing.T) {
		client, _ := newTestClient(t, func(string) string { return `{oops` })
		env := client.Toggle(ctx)
		assert.False(t, env.Status)
		assert.NotEmpty(t, env.Exception())
	})

	t.Run("unreachable bulb", func(t *testing.T) {
		client := yeelight.NewClient("127.0.0.1", closedPort(t), yeelight.WithTimeout(time.Second))
		env := client.Toggle(ctx)
		assert.False(t, env.Status)
		assert.Contains(t, env.Exception(), "dial")
		assert.Len(t, env.Data, 1)
	})

	t.Run("toggle twice keeps envelope shape", func(t *testing.T) {
		client, bulb := newTestClient(t, nil)
		first := client.Toggle(ctx)
		second := client.Toggle(ctx)
		assert.Equal(t, first, second)
		assert.Equal(t, "off", bulb.Power())
	})

	t.Run("stateful props", func(t *testing.T) {
		client, _ := newTestClient(t, nil)
		require.True(t, client.On(ctx).Status)
		require.True(t, client.SetBright(ctx, 80, yeelight.EffectSudden, 0).Status)

		env := client.GetProp(ctx, "power", "bright")
		assert.Equal(t, map[string]string{"power": "on", "bright": "80"}, env.Props("power", "bright"))
	})
}

func TestClientOptions(t *testing.T) {
	tr := yeelight.NewTransport(3 * time.Second)
	client := yeelight.NewClient("10.0.0.5", 55443, yeelight.WithTransport(tr), yeelight.WithTransport(nil))
	assert.Equal(t, yeelight.Endpoint{Host: "10.0.0.5", Port: 55443}, client.Endpoint())
}
