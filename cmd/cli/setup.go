// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"yeectl/internal/config"
	"yeectl/internal/device"
	"yeectl/internal/logger"
	"yeectl/internal/yeelight"
	"yeectl/internal/yeelight/fakebulb"
)

// Setup screen fields
type setupField int

const (
	setupFieldLights setupField = iota
	setupFieldHostAddress
	setupFieldConnect
)

// SetupModel lets the user pick a configured light or type an address
type SetupModel struct {
	focusedField setupField

	// Configured lights
	lights        []config.LightConfig
	selectedLight int

	// Ad-hoc address input
	hostAddress       string
	hostAddressCursor int

	connectionError string

	// Connected light (when setup complete)
	device     device.Device
	deviceInfo device.DeviceInfo

	defaults  config.DefaultsConfig
	debugMode bool
	testMode  bool

	// Simulated bulb used in test mode
	fake *fakebulb.Bulb
}

// NewSetupModel creates a setup screen listing the configured lights
func NewSetupModel(cfg *config.Config, debug, test bool) SetupModel {
	m := SetupModel{
		lights:    cfg.Lights,
		defaults:  cfg.Defaults,
		debugMode: debug,
		testMode:  test,
	}
	if len(m.lights) == 0 {
		m.focusedField = setupFieldHostAddress
	}
	return m
}

// Update handles setup screen messages
func (m SetupModel) Update(msg tea.Msg) (SetupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab":
			return m.handleTabNavigation(msg.String() == "shift+tab"), nil

		case "enter":
			if m.focusedField == setupFieldLights || m.focusedField == setupFieldConnect {
				return m.handleConnect(), nil
			}
			return m, nil

		case "up":
			if m.focusedField == setupFieldLights && m.selectedLight > 0 {
				m.selectedLight--
			}
			return m, nil

		case "down":
			if m.focusedField == setupFieldLights && m.selectedLight < len(m.lights)-1 {
				m.selectedLight++
			}
			return m, nil

		case "left":
			if m.focusedField == setupFieldHostAddress && m.hostAddressCursor > 0 {
				m.hostAddressCursor--
			}
			return m, nil

		case "right":
			if m.focusedField == setupFieldHostAddress && m.hostAddressCursor < len(m.hostAddress) {
				m.hostAddressCursor++
			}
			return m, nil

		case "backspace":
			if m.focusedField == setupFieldHostAddress && m.hostAddressCursor > 0 {
				m.hostAddress = deleteCharAt(m.hostAddress, m.hostAddressCursor-1)
				m.hostAddressCursor--
			}
			return m, nil

		case "delete":
			if m.focusedField == setupFieldHostAddress {
				m.hostAddress = deleteCharAt(m.hostAddress, m.hostAddressCursor)
			}
			return m, nil

		default:
			return m.handleTextInput(msg), nil
		}
	}

	return m, nil
}

func (m SetupModel) handleTabNavigation(backwards bool) SetupModel {
	fields := []setupField{setupFieldHostAddress, setupFieldConnect}
	if len(m.lights) > 0 {
		fields = append([]setupField{setupFieldLights}, fields...)
	}

	idx := 0
	for i, f := range fields {
		if f == m.focusedField {
			idx = i
			break
		}
	}
	if backwards {
		idx = (idx - 1 + len(fields)) % len(fields)
	} else {
		idx = (idx + 1) % len(fields)
	}
	m.focusedField = fields[idx]
	return m
}

func (m SetupModel) handleTextInput(msg tea.KeyMsg) SetupModel {
	if m.focusedField != setupFieldHostAddress || msg.Type != tea.KeyRunes {
		return m
	}
	text := string(msg.Runes)
	m.hostAddress = insertText(m.hostAddress, m.hostAddressCursor, text)
	m.hostAddressCursor += len(text)
	return m
}

// handleConnect builds a light for the selected entry or typed address
func (m SetupModel) handleConnect() SetupModel {
	m.connectionError = ""

	var (
		id   string
		name string
		ep   yeelight.Endpoint
		err  error
	)

	switch {
	case m.testMode:
		if m.fake == nil {
			m.fake, err = fakebulb.Start(nil)
			if err != nil {
				m.connectionError = fmt.Sprintf("Failed to start simulated bulb: %v", err)
				return m
			}
		}
		id, name = "simulated", "Simulated bulb"
		ep = yeelight.Endpoint{Host: m.fake.Host(), Port: m.fake.Port()}

	case m.focusedField == setupFieldLights && len(m.lights) > 0:
		light := m.lights[m.selectedLight]
		id, name, ep = light.ID, light.Name, light.Endpoint()

	default:
		ep, err = yeelight.ParseEndpoint(strings.TrimSpace(m.hostAddress))
		if err != nil {
			m.connectionError = err.Error()
			return m
		}
		id = ep.String()
	}

	client := yeelight.NewClientForEndpoint(ep,
		yeelight.WithTimeout(m.defaults.Timeout),
		yeelight.WithLogger(logger.Component("tui")))
	light := yeelight.NewLight(id, client,
		yeelight.WithName(name),
		yeelight.WithTransition(yeelight.Effect(m.defaults.Effect), m.defaults.Duration))

	m.device = light
	m.deviceInfo = light.GetDeviceInfo()
	return m
}

// IsConnected reports whether a light has been chosen
func (m SetupModel) IsConnected() bool {
	return m.device != nil
}

// GetDevice returns the chosen light
func (m SetupModel) GetDevice() device.Device {
	return m.device
}

// GetDeviceInfo returns information about the chosen light
func (m SetupModel) GetDeviceInfo() device.DeviceInfo {
	return m.deviceInfo
}

// GetDebugMode returns whether debug mode is enabled
func (m SetupModel) GetDebugMode() bool {
	return m.debugMode
}

// GetTestMode returns whether test mode is enabled
func (m SetupModel) GetTestMode() bool {
	return m.testMode
}

// Typing reports whether key presses go to the address input
func (m SetupModel) Typing() bool {
	return m.focusedField == setupFieldHostAddress
}

// Disconnect forgets the chosen light so another can be picked
func (m SetupModel) Disconnect() SetupModel {
	m.device = nil
	m.deviceInfo = device.DeviceInfo{}
	return m
}

// Close releases the simulated bulb, if any
func (m SetupModel) Close() {
	if m.fake != nil {
		m.fake.Close()
	}
}

// View renders the setup screen
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("yeectl - Choose a Light"))
	b.WriteString("\n\n")

	if len(m.lights) > 0 {
		b.WriteString(subtitleStyle.Render("Configured lights:"))
		b.WriteString("\n")
		for i, light := range m.lights {
			cursor := "  "
			if i == m.selectedLight {
				cursor = "> "
			}

			label := light.ID
			if light.Name != "" {
				label = light.Name
			}
			label = fmt.Sprintf("%s%s (%s)", cursor, label, light.Endpoint())

			style := lipgloss.NewStyle()
			if m.focusedField == setupFieldLights && i == m.selectedLight {
				style = style.Foreground(lipgloss.Color("#FF79C6"))
			}
			b.WriteString(style.Render(label))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(subtitleStyle.Render("Host Address (IP or IP:Port):"))
	b.WriteString("\n")
	hostStyle := inputStyle
	showCursor := m.focusedField == setupFieldHostAddress
	if showCursor {
		hostStyle = inputFocusedStyle
	}
	b.WriteString(hostStyle.Render(renderTextWithCursor(m.hostAddress, m.hostAddressCursor, showCursor)))
	b.WriteString("\n\n")

	connectStyle := buttonStyle
	if m.focusedField == setupFieldConnect {
		connectStyle = buttonActiveStyle
	}
	b.WriteString(connectStyle.Render("Connect"))
	b.WriteString("\n\n")

	if m.testMode {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Render("Test mode: a simulated bulb will be used"))
		b.WriteString("\n\n")
	}

	if m.connectionError != "" {
		b.WriteString(errorStyle.Render("Error: " + m.connectionError))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("Tab: Next field • ↑/↓: Select light • Enter: Connect • q: Quit"))
	return b.String()
}
