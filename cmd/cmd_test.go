package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yeectl/internal/config"
	"yeectl/internal/yeelight"
	"yeectl/internal/yeelight/fakebulb"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseRGB(t *testing.T) {
	n, err := parseRGB("#ff8800")
	require.NoError(t, err)
	assert.Equal(t, 0xff8800, n)

	n, err = parseRGB("255")
	require.NoError(t, err)
	assert.Equal(t, 255, n)

	_, err = parseRGB("#fff")
	assert.Error(t, err)
	_, err = parseRGB("red")
	assert.Error(t, err)
}

func TestParseCFAction(t *testing.T) {
	for in, want := range map[string]yeelight.CFAction{
		"recover": yeelight.CFRecover,
		"stay":    yeelight.CFStay,
		"off":     yeelight.CFOff,
		"2":       yeelight.CFOff,
	} {
		got, err := parseCFAction(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := parseCFAction("sometimes")
	assert.Error(t, err)
}

func TestSceneValues(t *testing.T) {
	assert.Equal(t, []interface{}{16711680, 1}, sceneValues([]string{"16711680", "1"}))
	assert.Equal(t, []interface{}{"500,1,255,100"}, sceneValues([]string{"500,1,255,100"}))
}

func TestLightCommands(t *testing.T) {
	bulb, err := fakebulb.Start(nil)
	require.NoError(t, err)
	defer bulb.Close()

	cfgPath := filepath.Join(t.TempDir(), "yeectl.yaml")
	base := []string{"--config", cfgPath, "light", "--host", bulb.Host(), "--port", strconv.Itoa(bulb.Port())}

	t.Run("toggle prints the envelope", func(t *testing.T) {
		out, err := runRoot(t, append(base, "toggle")...)
		require.NoError(t, err)

		var env yeelight.Envelope
		require.NoError(t, json.Unmarshal([]byte(out), &env))
		assert.True(t, env.Status)
		assert.Equal(t, "on", bulb.Power())
	})

	t.Run("bright uses the requested transition", func(t *testing.T) {
		_, err := runRoot(t, append(base, "--effect", "sudden", "--duration", "30ms", "bright", "80")...)
		require.NoError(t, err)

		requests := bulb.Requests()
		assert.Contains(t, requests[len(requests)-1], `"params":[80,"sudden",30]`)
	})

	t.Run("failed action sets a failing exit", func(t *testing.T) {
		out, err := runRoot(t, append(base, "action", "set_name")...)
		require.Error(t, err)
		assert.Contains(t, out, `"success": false`)
	})

	t.Run("bad argument", func(t *testing.T) {
		_, err := runRoot(t, append(base, "ct", "warm")...)
		assert.Error(t, err)
	})
}

func TestConfigCommands(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "yeectl.yaml")

	_, err := runRoot(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)

	_, err = runRoot(t, "--config", cfgPath, "config", "add", "10.0.0.7", "--id", "desk", "--name", "Desk")
	require.NoError(t, err)

	out, err := runRoot(t, "--config", cfgPath, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "desk")
	assert.Contains(t, out, "10.0.0.7:55443")

	_, err = runRoot(t, "--config", cfgPath, "config", "remove", "Desk")
	require.NoError(t, err)

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Empty(t, cfg.Lights)
}

func TestDiscoverSave(t *testing.T) {
	responder, err := fakebulb.StartResponder(0,
		fakebulb.Advertisement("0x0000000002dfb19a", "192.168.1.239:55443", "porch"),
		fakebulb.Advertisement("0x0000000002dfb19a", "192.168.1.239:55443", "porch"),
	)
	require.NoError(t, err)
	defer responder.Close()

	cfgPath := filepath.Join(t.TempDir(), "yeectl.yaml")
	out, err := runRoot(t, "--config", cfgPath, "discover",
		"--target", responder.Addr(), "--window", "300ms", "--json", "--save")
	require.NoError(t, err)

	var ads []yeelight.Advertisement
	require.NoError(t, json.Unmarshal([]byte(out), &ads))
	require.Len(t, ads, 1)
	assert.Equal(t, "porch", ads[0].Name)

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	require.Len(t, cfg.Lights, 1)
	assert.Equal(t, "192.168.1.239", cfg.Lights[0].Host)
}
