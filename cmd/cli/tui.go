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
	"github.com/charmbracelet/bubbletea"
	"yeectl/internal/config"
)

// Main TUI model that routes between screens
type model struct {
	currentScreen screen
	width         int
	height        int
	quitting      bool

	// Screen models
	setupModel   SetupModel
	controlModel ControlModel
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.controlModel, _ = m.controlModel.Update(msg)
		return m, nil

	case tea.KeyMsg:
		// Global quit handling
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "q":
			if m.currentScreen == screenLightControl {
				// 'q' on the control screen goes back to the light list
				m.currentScreen = screenLightSetup
				m.setupModel = m.setupModel.Disconnect()
				return m, nil
			}
			if !m.setupModel.Typing() {
				m.quitting = true
				return m, tea.Quit
			}
		}

		switch m.currentScreen {
		case screenLightSetup:
			var cmd tea.Cmd
			m.setupModel, cmd = m.setupModel.Update(msg)

			if m.setupModel.IsConnected() {
				m.controlModel = NewControlModel(
					m.setupModel.GetDevice(),
					m.setupModel.GetDeviceInfo(),
					m.setupModel.GetDebugMode(),
					m.setupModel.GetTestMode(),
				)
				m.controlModel.width = m.width
				m.controlModel.height = m.height
				m.currentScreen = screenLightControl
			}

			return m, cmd

		case screenLightControl:
			var cmd tea.Cmd
			m.controlModel, cmd = m.controlModel.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return successStyle.Render("Thanks for using yeectl!") + "\n"
	}

	switch m.currentScreen {
	case screenLightSetup:
		return m.setupModel.View()
	case screenLightControl:
		return m.controlModel.View()
	default:
		return "Unknown screen"
	}
}

// StartTUI runs the interactive light controller over the lights in cfg
func StartTUI(cfg *config.Config, debug, test bool) error {
	m := model{
		currentScreen: screenLightSetup,
		setupModel:    NewSetupModel(cfg, debug, test),
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Ensure proper cleanup on panic or interrupt
	defer func() {
		if r := recover(); r != nil {
			p.Kill()
		}
	}()

	final, err := p.Run()
	if fm, ok := final.(model); ok {
		fm.setupModel.Close()
	}
	return err
}
