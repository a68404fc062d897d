package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadSourceConfig loads source service configuration.
// Precedence: environment > config file > defaults.
func LoadSourceConfig(configPath string) (*SourceConfig, error) {
	v := newViper()

	v.SetDefault("source.host", "0.0.0.0")
	v.SetDefault("source.port", 50061)
	v.SetDefault("source.manager_addr", "localhost:50062")
	v.SetDefault("source.request_timeout", "20s")
	v.SetDefault("source.api_version", 2)
	v.SetDefault("source.supported_types", []string{"SHORT_TEXT"})
	v.SetDefault("source.update_period", "10m")
	v.SetDefault("source.immediate_period", "1s")
	v.SetDefault("source.safe_watch_faces", []string{})

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	cfg := &SourceConfig{
		Host:            v.GetString("source.host"),
		Port:            v.GetInt("source.port"),
		ManagerAddr:     v.GetString("source.manager_addr"),
		RequestTimeout:  v.GetDuration("source.request_timeout"),
		APIVersion:      int32(v.GetInt("source.api_version")),
		SupportedTypes:  v.GetStringSlice("source.supported_types"),
		UpdatePeriod:    v.GetDuration("source.update_period"),
		ImmediatePeriod: v.GetDuration("source.immediate_period"),
		SafeWatchFaces:  v.GetStringSlice("source.safe_watch_faces"),
	}

	if err := validateSourceConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadManagerConfig loads update manager service configuration.
func LoadManagerConfig(configPath string) (*ManagerConfig, error) {
	v := newViper()

	v.SetDefault("manager.host", "0.0.0.0")
	v.SetDefault("manager.port", 50062)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	cfg := &ManagerConfig{
		Host: v.GetString("manager.host"),
		Port: v.GetInt("manager.port"),
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func readConfigFile(v *viper.Viper, configPath string) error {
	if configPath == "" {
		return nil
	}
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	// Secrets are environment-only; a config file carrying one is a
	// deployment mistake worth failing on.
	if v.IsSet("hmac_secret") || v.IsSet("source.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use FW_HMAC_SECRET environment variable)")
	}
	return nil
}

// validateSourceConfig checks port range, positive durations, a non-empty
// supported-type list, and that every listed type parses.
func validateSourceConfig(cfg *SourceConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.ManagerAddr == "" {
		return fmt.Errorf("manager_addr is required")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.APIVersion <= 0 {
		return fmt.Errorf("api_version must be positive, got %d", cfg.APIVersion)
	}
	if len(cfg.SupportedTypes) == 0 {
		return fmt.Errorf("supported_types must list at least one type")
	}
	if _, err := cfg.SupportedTypeSet(); err != nil {
		return err
	}
	if cfg.UpdatePeriod <= 0 {
		return fmt.Errorf("update_period must be positive, got %v", cfg.UpdatePeriod)
	}
	if cfg.ImmediatePeriod <= 0 {
		return fmt.Errorf("immediate_period must be positive, got %v", cfg.ImmediatePeriod)
	}
	return nil
}
