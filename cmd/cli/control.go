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
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"yeectl/internal/device"
	"yeectl/internal/logger"
	"yeectl/internal/yeelight"
)

// LogEntry represents a log entry for display
type LogEntry struct {
	Timestamp time.Time
	Level     string // INF, ERR
	Message   string
	Action    string
}

// ControlModel handles the light control screen
type ControlModel struct {
	device     device.Device
	deviceInfo device.DeviceInfo

	selectedButton  lightButton
	lastButtonPress time.Time

	lastResponse  *device.ActionResponse
	actionHistory []actionHistoryEntry

	debugMode bool
	testMode  bool

	width  int
	height int

	logBuffer   []LogEntry
	maxLogLines int
}

// NewControlModel creates a control screen for a connected light
func NewControlModel(dev device.Device, info device.DeviceInfo, debug, test bool) ControlModel {
	return ControlModel{
		device:        dev,
		deviceInfo:    info,
		actionHistory: []actionHistoryEntry{},
		debugMode:     debug,
		testMode:      test,
		logBuffer:     []LogEntry{},
		maxLogLines:   3,
	}
}

// buttonForKey maps a key press to a control button
func buttonForKey(key string) lightButton {
	switch key {
	case " ", "t":
		return buttonToggle
	case "o":
		return buttonOn
	case "f":
		return buttonOff
	case "+", "=", "up":
		return buttonBrightUp
	case "-", "down":
		return buttonBrightDown
	case "w", "left":
		return buttonWarmer
	case "c", "right":
		return buttonCooler
	case "n":
		return buttonNextColor
	case "d":
		return buttonDefault
	case "s":
		return buttonStatus
	case "x":
		return buttonStopFlow
	}
	return buttonNone
}

// actionForButton returns the device action a button triggers
func actionForButton(button lightButton) (string, map[string]interface{}) {
	adjust := func(action yeelight.AdjustAction, prop yeelight.AdjustProp) map[string]interface{} {
		return map[string]interface{}{"action": string(action), "prop": string(prop)}
	}

	switch button {
	case buttonToggle:
		return string(yeelight.Toggle), nil
	case buttonOn:
		return yeelight.ActionOn, nil
	case buttonOff:
		return yeelight.ActionOff, nil
	case buttonBrightUp:
		return string(yeelight.SetAdjust), adjust(yeelight.AdjustIncrease, yeelight.AdjustBright)
	case buttonBrightDown:
		return string(yeelight.SetAdjust), adjust(yeelight.AdjustDecrease, yeelight.AdjustBright)
	case buttonWarmer:
		return string(yeelight.SetAdjust), adjust(yeelight.AdjustDecrease, yeelight.AdjustCT)
	case buttonCooler:
		return string(yeelight.SetAdjust), adjust(yeelight.AdjustIncrease, yeelight.AdjustCT)
	case buttonNextColor:
		return string(yeelight.SetAdjust), adjust(yeelight.AdjustCircle, yeelight.AdjustColor)
	case buttonDefault:
		return string(yeelight.SetDefault), nil
	case buttonStatus:
		return string(yeelight.GetProp), map[string]interface{}{
			"props": []interface{}{"power", "bright", "ct", "rgb", "name"},
		}
	case buttonStopFlow:
		return string(yeelight.StopCF), nil
	}
	return "", nil
}

// Update handles control screen messages
func (m ControlModel) Update(msg tea.Msg) (ControlModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if button := buttonForKey(msg.String()); button != buttonNone {
			return m.handleButton(button)
		}
	}

	return m, nil
}

// View renders the control screen
func (m ControlModel) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("yeectl - Light Control"))

	name := m.deviceInfo.Name
	if name == "" {
		name = m.deviceInfo.ID
	}
	info := successStyle.Render("💡 "+name) + " " + helpStyle.Render(m.deviceInfo.Address)
	if m.testMode {
		info += " " + lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Render("(Test)")
	}
	sections = append(sections, info)

	sections = append(sections, m.renderButtons())

	if m.lastResponse != nil {
		sections = append(sections, m.renderStatusBar())
	}

	if m.debugMode || m.testMode {
		if logDisplay := m.renderLogDisplay(); logDisplay != "" {
			sections = append(sections, logDisplay)
		}
	}

	sections = append(sections, m.renderHelpText())

	return strings.Join(sections, "\n\n")
}

func (m ControlModel) renderButtons() string {
	style := func(btn lightButton) lipgloss.Style {
		if m.selectedButton == btn && time.Since(m.lastButtonPress) < 200*time.Millisecond {
			return controlButtonActiveStyle
		}
		return controlButtonStyle
	}

	powerColumn := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Render("Power:"),
		style(buttonToggle).Render("TOGGLE"),
		lipgloss.JoinHorizontal(lipgloss.Left,
			style(buttonOn).Render(" ON  "),
			style(buttonOff).Render(" OFF ")),
	)

	lightColumn := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Render("Light:"),
		lipgloss.JoinHorizontal(lipgloss.Left,
			style(buttonBrightUp).Render("BRI + "),
			style(buttonBrightDown).Render("BRI - ")),
		lipgloss.JoinHorizontal(lipgloss.Left,
			style(buttonWarmer).Render("WARM  "),
			style(buttonCooler).Render("COOL  ")),
		style(buttonNextColor).Render("COLOR "),
	)

	otherColumn := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Render("Other:"),
		style(buttonStatus).Render("STATUS"),
		style(buttonDefault).Render("SAVE  "),
		style(buttonStopFlow).Render("STOP  "),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		powerColumn,
		strings.Repeat(" ", 4),
		lightColumn,
		strings.Repeat(" ", 4),
		otherColumn,
	)
}

// renderStatusBar shows the result of the last action
func (m ControlModel) renderStatusBar() string {
	if m.lastResponse == nil {
		return ""
	}

	if !m.lastResponse.Success {
		return errorStyle.Render("✗ " + m.lastResponse.Error)
	}

	status := successStyle.Render("✓ Action successful")
	if data, ok := m.lastResponse.Data.(map[string]interface{}); ok {
		if result, ok := data["result"]; ok {
			status += fmt.Sprintf(": %v", result)
		}
	}
	return status
}

func (m ControlModel) renderLogDisplay() string {
	if len(m.logBuffer) == 0 {
		return ""
	}

	start := 0
	if len(m.logBuffer) > m.maxLogLines {
		start = len(m.logBuffer) - m.maxLogLines
	}

	header := "─── LOGS ───"
	if len(m.logBuffer) > m.maxLogLines {
		header = "─── LOGS ↓ ───"
	}
	logLines := []string{helpStyle.Render(header)}

	for i := 0; i < m.maxLogLines; i++ {
		if start+i >= len(m.logBuffer) {
			logLines = append(logLines, "")
			continue
		}
		entry := m.logBuffer[start+i]

		levelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
		if entry.Level == "ERR" {
			levelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
		}

		line := fmt.Sprintf("%s [%s] %s",
			entry.Timestamp.Format("15:04:05"),
			levelStyle.Render(entry.Level),
			entry.Message)
		if len(line) > 90 {
			line = line[:87] + "..."
		}
		logLines = append(logLines, line)
	}

	return strings.Join(logLines, "\n")
}

func (m *ControlModel) addLogEntry(level, message, action string) {
	m.logBuffer = append(m.logBuffer, LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Action:    action,
	})
	if len(m.logBuffer) > 20 {
		m.logBuffer = m.logBuffer[1:]
	}
}

func (m ControlModel) renderHelpText() string {
	help := "T/Space: Toggle • O/F: On/Off • +/-: Brightness • W/C: Warmer/Cooler • N: Color"
	if m.width > 100 {
		help += " • S: Status • D: Save default • X: Stop flow • q: Back"
	} else {
		help += " • q: Back"
	}
	return "\n" + helpStyle.Render(help)
}

// handleButton runs the action bound to button against the light
func (m ControlModel) handleButton(button lightButton) (ControlModel, tea.Cmd) {
	if m.device == nil {
		return m, nil
	}

	actionName, params := actionForButton(button)
	actionJSON, err := device.CreateActionJSON(actionName, params)
	if err != nil {
		m.lastResponse = &device.ActionResponse{Success: false, Error: err.Error()}
		return m, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	response, err := m.device.Process(ctx, actionJSON)
	if err != nil {
		response = &device.ActionResponse{Success: false, Error: err.Error()}
	}

	m.lastResponse = response
	m.selectedButton = button
	m.lastButtonPress = time.Now()

	if m.debugMode || m.testMode {
		if response.Success {
			m.addLogEntry("INF", fmt.Sprintf("%s completed", actionName), actionName)
		} else {
			m.addLogEntry("ERR", fmt.Sprintf("%s failed: %s", actionName, response.Error), actionName)
		}
	}

	entry := actionHistoryEntry{
		Timestamp: time.Now(),
		Action:    string(actionJSON),
		Success:   response.Success,
	}
	if response.Success {
		if data, err := json.Marshal(response.Data); err == nil {
			entry.Response = string(data)
		}
	} else {
		entry.Error = response.Error
	}
	m.actionHistory = append([]actionHistoryEntry{entry}, m.actionHistory...)
	if len(m.actionHistory) > 50 {
		m.actionHistory = m.actionHistory[:50]
	}

	log := logger.Component("tui")
	log.Info().
		Str("action", string(actionJSON)).
		Bool("success", response.Success).
		Msg("Light button pressed")

	return m, nil
}
