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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"yeectl/internal/yeelight"
)

// Config represents the yeectl configuration file
type Config struct {
	Lights   []LightConfig  `yaml:"lights"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Bridge   BridgeConfig   `yaml:"bridge"`
}

// LightConfig is a known bulb
type LightConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DefaultsConfig holds values used when a command does not specify them
type DefaultsConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	DiscoveryWindow time.Duration `yaml:"discovery_window"`
	Effect          string        `yaml:"effect"`
	Duration        time.Duration `yaml:"duration"`
	LogLevel        string        `yaml:"log_level"`
}

// BridgeConfig configures the HTTP bridge
type BridgeConfig struct {
	Listen    string `yaml:"listen"`
	CacheSize int    `yaml:"cache_size"`
}

// DefaultPath returns ~/.yeectl.yaml, or .yeectl.yaml when the home directory is unknown
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".yeectl.yaml"
	}
	return filepath.Join(home, ".yeectl.yaml")
}

// LoadConfig loads configuration from a YAML file, then applies environment
// overrides and defaults before validating
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Save saves the configuration to a YAML file
func (c *Config) Save(path string) error {
	return SaveConfig(c, path)
}

func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv("YEECTL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Defaults.Timeout = d
		} else {
			fmt.Fprintf(os.Stderr, "Warning: Failed to parse YEECTL_TIMEOUT '%s': %v\n", v, err)
		}
	}
	if v := os.Getenv("YEECTL_DISCOVERY_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Defaults.DiscoveryWindow = d
		} else {
			fmt.Fprintf(os.Stderr, "Warning: Failed to parse YEECTL_DISCOVERY_WINDOW '%s': %v\n", v, err)
		}
	}
	if v := os.Getenv("YEECTL_LOG_LEVEL"); v != "" {
		c.Defaults.LogLevel = v
	}
	if v := os.Getenv("YEECTL_BRIDGE_LISTEN"); v != "" {
		c.Bridge.Listen = v
	}
}

// SetDefaults fills in unset values
func (c *Config) SetDefaults() {
	if c.Defaults.Timeout <= 0 {
		c.Defaults.Timeout = yeelight.DefaultTimeout
	}
	if c.Defaults.DiscoveryWindow <= 0 {
		c.Defaults.DiscoveryWindow = yeelight.DefaultDiscoveryWindow
	}
	if c.Defaults.Effect == "" {
		c.Defaults.Effect = string(yeelight.EffectSmooth)
	}
	if c.Defaults.Duration <= 0 {
		c.Defaults.Duration = yeelight.DefaultTransitionDuration
	}
	if c.Defaults.LogLevel == "" {
		c.Defaults.LogLevel = "info"
	}
	if c.Bridge.Listen == "" {
		c.Bridge.Listen = "127.0.0.1:8080"
	}
	if c.Bridge.CacheSize <= 0 {
		c.Bridge.CacheSize = 64
	}
	for i := range c.Lights {
		if c.Lights[i].Port == 0 {
			c.Lights[i].Port = yeelight.DefaultPort
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch yeelight.Effect(c.Defaults.Effect) {
	case yeelight.EffectSmooth, yeelight.EffectSudden:
	default:
		return fmt.Errorf("defaults.effect must be %q or %q", yeelight.EffectSmooth, yeelight.EffectSudden)
	}

	lightIDs := make(map[string]bool)
	for i, light := range c.Lights {
		if light.ID == "" {
			return fmt.Errorf("lights[%d].id is required", i)
		}
		if lightIDs[light.ID] {
			return fmt.Errorf("duplicate light ID: %s", light.ID)
		}
		lightIDs[light.ID] = true

		if light.Host == "" {
			return fmt.Errorf("lights[%d].host is required", i)
		}
		if light.Port <= 0 || light.Port > 65535 {
			return fmt.Errorf("lights[%d].port must be between 1 and 65535", i)
		}
	}

	return nil
}

// GetLight returns a light by ID or name
func (c *Config) GetLight(ref string) (*LightConfig, error) {
	for i := range c.Lights {
		if c.Lights[i].ID == ref || (c.Lights[i].Name != "" && c.Lights[i].Name == ref) {
			return &c.Lights[i], nil
		}
	}
	return nil, fmt.Errorf("light not found: %s", ref)
}

// Endpoint returns the bulb endpoint of the light
func (l LightConfig) Endpoint() yeelight.Endpoint {
	return yeelight.Endpoint{Host: l.Host, Port: l.Port}
}

// NewLightID generates an ID for a light added without one
func NewLightID() string {
	return uuid.New().String()
}

// NewDefaultConfig creates a default configuration template
func NewDefaultConfig() *Config {
	config := &Config{
		Lights: []LightConfig{},
	}
	config.SetDefaults()
	return config
}
