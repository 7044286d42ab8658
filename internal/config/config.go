// Package config provides server, JWT and password configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds everything the HTTP server needs to start.
type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	DatabaseURL    string `mapstructure:"database_url"`
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	ModelLite      string `mapstructure:"model_lite"`
	ModelStandard  string `mapstructure:"model_standard"`
	ModelAdvanced  string `mapstructure:"model_advanced"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
	JSONLogs       bool   `mapstructure:"json_logs"`
	Debug          bool   `mapstructure:"debug"`
}

// LoadServerConfig reads configuration from an optional config file and the
// environment. Environment variables use the RESUMESCULPT_ prefix, e.g.
// RESUMESCULPT_DATABASE_URL, except GEMINI_API_KEY which is read as-is for
// parity with the rest of the Gemini tooling.
func LoadServerConfig(cfgFile string) (*ServerConfig, error) {
	v := viper.New()
	v.SetDefault("port", 8000)
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("json_logs", true)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("RESUMESCULPT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "RESUMESCULPT_GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("database_url", "DATABASE_URL", "RESUMESCULPT_DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("binding DATABASE_URL: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config ServerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required but not set")
	}
	if config.Port < 1 || config.Port > 65535 {
		return nil, fmt.Errorf("port out of range: %d", config.Port)
	}

	return &config, nil
}

// Origins splits the configured origin list.
func (c *ServerConfig) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
