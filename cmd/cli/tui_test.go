package cli

import (
	"testing"

	"github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yeectl/internal/config"
	"yeectl/internal/yeelight"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestButtonMapping(t *testing.T) {
	cases := []struct {
		key    string
		action string
		params map[string]interface{}
	}{
		{"t", "toggle", nil},
		{" ", "toggle", nil},
		{"o", "on", nil},
		{"f", "off", nil},
		{"+", "set_adjust", map[string]interface{}{"action": "increase", "prop": "bright"}},
		{"-", "set_adjust", map[string]interface{}{"action": "decrease", "prop": "bright"}},
		{"w", "set_adjust", map[string]interface{}{"action": "decrease", "prop": "ct"}},
		{"c", "set_adjust", map[string]interface{}{"action": "increase", "prop": "ct"}},
		{"n", "set_adjust", map[string]interface{}{"action": "circle", "prop": "color"}},
		{"d", "set_default", nil},
		{"x", "stop_cf", nil},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			button := buttonForKey(tc.key)
			require.NotEqual(t, buttonNone, button)

			action, params := actionForButton(button)
			assert.Equal(t, tc.action, action)
			assert.Equal(t, tc.params, params)
		})
	}

	assert.Equal(t, buttonNone, buttonForKey("z"))
}

func TestEveryButtonIsAKnownAction(t *testing.T) {
	known := map[string]bool{}
	for _, a := range yeelight.AvailableActions() {
		known[a] = true
	}
	for b := buttonToggle; b <= buttonStopFlow; b++ {
		action, _ := actionForButton(b)
		assert.True(t, known[action], "button %d maps to %q", b, action)
	}
}

func TestSetupTyping(t *testing.T) {
	m := NewSetupModel(config.NewDefaultConfig(), false, false)
	require.True(t, m.Typing())

	for _, r := range "10.0.0.5" {
		m, _ = m.Update(keyRunes(string(r)))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "10.0.0.", m.hostAddress)

	m, _ = m.Update(keyRunes("9"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, setupFieldConnect, m.focusedField)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.IsConnected())
	assert.Equal(t, "10.0.0.9:55443", m.GetDeviceInfo().Address)
}

func TestSetupRejectsBadAddress(t *testing.T) {
	m := NewSetupModel(config.NewDefaultConfig(), false, false)
	m.hostAddress = "10.0.0.1:notaport"
	m.focusedField = setupFieldConnect

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.IsConnected())
	assert.NotEmpty(t, m.connectionError)
}

func TestSetupPicksConfiguredLight(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Lights = []config.LightConfig{
		{ID: "a", Name: "Desk", Host: "10.0.0.1", Port: 55443},
		{ID: "b", Name: "Hall", Host: "10.0.0.2", Port: 55443},
	}

	m := NewSetupModel(cfg, false, false)
	require.False(t, m.Typing())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.IsConnected())
	assert.Equal(t, "b", m.GetDeviceInfo().ID)
	assert.Equal(t, "Hall", m.GetDeviceInfo().Name)
}

func TestControlAgainstSimulatedBulb(t *testing.T) {
	var root tea.Model = model{
		currentScreen: screenLightSetup,
		setupModel:    NewSetupModel(config.NewDefaultConfig(), false, true),
	}

	root, _ = root.Update(tea.KeyMsg{Type: tea.KeyTab})
	root, _ = root.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := root.(model)
	defer m.setupModel.Close()
	require.Equal(t, screenLightControl, m.currentScreen)

	root, _ = root.Update(keyRunes("o"))
	m = root.(model)
	require.NotNil(t, m.controlModel.lastResponse)
	assert.True(t, m.controlModel.lastResponse.Success)
	assert.Equal(t, "on", m.setupModel.fake.Power())
	assert.Len(t, m.controlModel.logBuffer, 1)
	assert.Contains(t, m.View(), "Action successful")

	// q goes back to the light list instead of quitting
	root, cmd := root.Update(keyRunes("q"))
	assert.Nil(t, cmd)
	assert.Equal(t, screenLightSetup, root.(model).currentScreen)
}
