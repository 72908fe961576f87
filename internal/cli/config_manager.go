package cli

import (
	"errors"
	"fmt"
	"os"

	"yeectl/internal/config"
	"yeectl/internal/yeelight"
)

// ConfigManager handles configuration file operations for lights
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// LoadConfig loads the configuration, returning defaults when the file does not exist yet
func (cm *ConfigManager) LoadConfig() (*config.Config, error) {
	if _, err := os.Stat(cm.configPath); errors.Is(err, os.ErrNotExist) {
		return config.NewDefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration
func (cm *ConfigManager) SaveConfig(cfg *config.Config) error {
	if err := config.SaveConfig(cfg, cm.configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// InitConfig writes a default configuration unless one already exists
func (cm *ConfigManager) InitConfig(force bool) error {
	if _, err := os.Stat(cm.configPath); err == nil && !force {
		return fmt.Errorf("config file already exists: %s", cm.configPath)
	}
	return cm.SaveConfig(config.NewDefaultConfig())
}

// AddLight adds a light, generating an ID when none is given. It returns the stored light.
func (cm *ConfigManager) AddLight(light config.LightConfig) (*config.LightConfig, error) {
	cfg, err := cm.LoadConfig()
	if err != nil {
		return nil, err
	}

	if light.ID == "" {
		light.ID = config.NewLightID()
	}
	if light.Port == 0 {
		light.Port = yeelight.DefaultPort
	}

	for _, existing := range cfg.Lights {
		if existing.ID == light.ID {
			return nil, fmt.Errorf("light with ID '%s' already exists", light.ID)
		}
	}

	cfg.Lights = append(cfg.Lights, light)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cm.SaveConfig(cfg); err != nil {
		return nil, err
	}
	return &light, nil
}

// UpdateLight updates an existing light in the configuration
func (cm *ConfigManager) UpdateLight(lightID string, updated config.LightConfig) error {
	cfg, err := cm.LoadConfig()
	if err != nil {
		return err
	}

	for i, light := range cfg.Lights {
		if light.ID == lightID {
			// Keep the same ID
			updated.ID = lightID
			cfg.Lights[i] = updated
			return cm.SaveConfig(cfg)
		}
	}

	return fmt.Errorf("light with ID '%s' not found", lightID)
}

// RemoveLight removes a light from the configuration
func (cm *ConfigManager) RemoveLight(lightID string) error {
	cfg, err := cm.LoadConfig()
	if err != nil {
		return err
	}

	for i, light := range cfg.Lights {
		if light.ID == lightID {
			cfg.Lights = append(cfg.Lights[:i], cfg.Lights[i+1:]...)
			return cm.SaveConfig(cfg)
		}
	}

	return fmt.Errorf("light with ID '%s' not found", lightID)
}

// GetLight returns a light by ID or name
func (cm *ConfigManager) GetLight(ref string) (*config.LightConfig, error) {
	cfg, err := cm.LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.GetLight(ref)
}

// ListLights returns all configured lights
func (cm *ConfigManager) ListLights() ([]config.LightConfig, error) {
	cfg, err := cm.LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Lights, nil
}

// ImportAdvertisements stores discovered bulbs keyed by their advertised id.
// Known bulbs get their address and name refreshed. It returns how many were new.
func (cm *ConfigManager) ImportAdvertisements(ads []*yeelight.Advertisement) (int, error) {
	cfg, err := cm.LoadConfig()
	if err != nil {
		return 0, err
	}

	added := 0
	for _, ad := range ads {
		ep, err := ad.Endpoint()
		if err != nil {
			continue
		}

		light := config.LightConfig{ID: ad.ID, Name: ad.Name, Host: ep.Host, Port: ep.Port}
		if existing, err := cfg.GetLight(ad.ID); err == nil {
			existing.Host = light.Host
			existing.Port = light.Port
			if light.Name != "" {
				existing.Name = light.Name
			}
			continue
		}
		cfg.Lights = append(cfg.Lights, light)
		added++
	}

	if err := cm.SaveConfig(cfg); err != nil {
		return 0, err
	}
	return added, nil
}

// GetConfigPath returns the configuration file path
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}
