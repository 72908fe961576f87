package yeelight_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yeectl/internal/device"
	"yeectl/internal/yeelight"
	"yeectl/internal/yeelight/fakebulb"
)

var _ device.Device = (*yeelight.Light)(nil)

func newTestLight(t *testing.T, opts ...yeelight.LightOption) (*yeelight.Light, *fakebulb.Bulb) {
	t.Helper()
	client, bulb := newTestClient(t, nil)
	return yeelight.NewLight("desk", client, opts...), bulb
}

func TestLightInfo(t *testing.T) {
	light, bulb := newTestLight(t, yeelight.WithName("Desk lamp"))
	info := light.GetDeviceInfo()

	assert.Equal(t, "desk", info.ID)
	assert.Equal(t, "yeelight", info.Type)
	assert.Equal(t, "Desk lamp", info.Name)
	assert.Equal(t, bulb.Addr(), info.Address)
	assert.Contains(t, info.Capabilities, "toggle")
	assert.Contains(t, info.Capabilities, "on")
	assert.Len(t, info.Capabilities, 18)
}

func TestLightProcess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		action string
		want   string
	}{
		{"toggle", `{"action":"toggle"}`, `{"id":7,"method":"toggle","params":[]}`},
		{"on", `{"action":"on"}`, `{"id":6,"method":"set_power","params":["on","smooth",1000]}`},
		{"props list", `{"action":"get_prop","parameters":{"props":["power","bright"]}}`,
			`{"id":1,"method":"get_prop","params":["power","bright"]}`},
		{"props string", `{"action":"get_prop","parameters":{"props":"power,bright"}}`,
			`{"id":1,"method":"get_prop","params":["power,bright"]}`},
		{"bright with transition", `{"action":"set_bright","parameters":{"brightness":40,"effect":"sudden","duration":0}}`,
			`{"id":5,"method":"set_bright","params":[40,"sudden",0]}`},
		{"rgb hex", `{"action":"set_rgb","parameters":{"rgb":"#00ff00"}}`,
			`{"id":3,"method":"set_rgb","params":[65280,"smooth",1000]}`},
		{"hsv", `{"action":"set_hsv","parameters":{"hue":120,"sat":"50"}}`,
			`{"id":4,"method":"set_hsv","params":[120,50,"smooth",1000]}`},
		{"ct", `{"action":"set_ct_abx","parameters":{"ct":2700,"duration":500}}`,
			`{"id":2,"method":"set_ct_abx","params":[2700,"smooth",500]}`},
		{"power", `{"action":"set_power","parameters":{"power":"off"}}`,
			`{"id":6,"method":"set_power","params":["off","smooth",1000]}`},
		{"start cf", `{"action":"start_cf","parameters":{"count":2,"action":2,"flow":"500,1,255,100"}}`,
			`{"id":9,"method":"start_cf","params":[2,2,"500,1,255,100"]}`},
		{"scene", `{"action":"set_scene","parameters":{"class":"ct","values":[5400,100]}}`,
			`{"id":11,"method":"set_scene","params":["ct",5400,100]}`},
		{"cron add default type", `{"action":"cron_add","parameters":{"value":15}}`,
			`{"id":12,"method":"cron_add","params":[0,15]}`},
		{"cron get", `{"action":"cron_get"}`, `{"id":13,"method":"cron_get","params":[0]}`},
		{"cron del", `{"action":"cron_del","parameters":{"type":0}}`, `{"id":14,"method":"cron_del","params":[0]}`},
		{"adjust", `{"action":"set_adjust","parameters":{"action":"circle","prop":"color"}}`,
			`{"id":15,"method":"set_adjust","params":["circle","color"]}`},
		{"name", `{"action":"set_name","parameters":{"name":"desk"}}`, `{"id":16,"method":"set_name","params":["desk"]}`},
		{"default", `{"action":"set_default"}`, `{"id":8,"method":"set_default","params":[]}`},
		{"stop cf", `{"action":"stop_cf"}`, `{"id":10,"method":"stop_cf","params":[]}`},
		{"off", `{"action":"off"}`, `{"id":6,"method":"set_power","params":["off","smooth",1000]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			light, bulb := newTestLight(t)

			resp, err := light.Process(ctx, []byte(tt.action))
			require.NoError(t, err)
			assert.True(t, resp.Success, "error: %s", resp.Error)
			assert.Empty(t, resp.Error)

			require.Len(t, bulb.Requests(), 1)
			assert.Equal(t, tt.want+"\r\n", bulb.Requests()[0])
		})
	}
}

func TestLightProcessFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		action  string
		wantErr string
	}{
		{"malformed", `{"action":`, "failed to parse action request"},
		{"missing action", `{}`, "action is required"},
		{"unknown action", `{"action":"dance"}`, "unsupported action: dance"},
		{"missing param", `{"action":"set_bright"}`, "invalid parameters: brightness is required"},
		{"wrong type", `{"action":"set_name","parameters":{"name":5}}`, "invalid parameters: name must be a string"},
		{"bad int", `{"action":"set_ct_abx","parameters":{"ct":"warm"}}`, "invalid parameters: ct must be an integer"},
		{"bad hex", `{"action":"set_rgb","parameters":{"rgb":"#zz"}}`, "invalid parameters: rgb must be a hex color"},
		{"bad props", `{"action":"get_prop","parameters":{"props":[1,2]}}`, "invalid parameters: props must contain only strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			light, bulb := newTestLight(t)

			resp, err := light.Process(ctx, []byte(tt.action))
			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.wantErr)
			assert.Empty(t, bulb.Requests())
		})
	}

	t.Run("unreachable bulb", func(t *testing.T) {
		client := yeelight.NewClient("127.0.0.1", closedPort(t), yeelight.WithTimeout(time.Second))
		light := yeelight.NewLight("gone", client)

		resp, err := light.Process(ctx, []byte(`{"action":"toggle"}`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "dial")
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, data, yeelight.ExceptionKey)
	})
}

func TestLightTransitionDefaults(t *testing.T) {
	light, bulb := newTestLight(t, yeelight.WithTransition(yeelight.EffectSudden, 250*time.Millisecond))

	resp, err := light.Process(context.Background(), []byte(`{"action":"set_bright","parameters":{"brightness":1}}`))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "{\"id\":5,\"method\":\"set_bright\",\"params\":[1,\"sudden\",250]}\r\n", bulb.Requests()[0])
}
