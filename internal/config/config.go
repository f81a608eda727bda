// Package config loads application configuration from an optional YAML file,
// environment variables and built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	OCR     OCRConfig
	Payment PaymentConfig
	Image   ImageConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
}

// OCRConfig holds vision provider configuration. The API key is read from
// the GEMINI_API_KEY environment variable; its absence is reported by the
// gateway, not here, so diagnostics happen before any network call.
type OCRConfig struct {
	APIKey           string
	Model            string
	TimeoutSeconds   int
	StructuredOutput bool
}

// Timeout returns the extraction deadline as a duration.
func (c OCRConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PaymentConfig holds the demo wallet and routing configuration.
type PaymentConfig struct {
	InitialBalance    float64
	DismissSeconds    int
	FastRailCountries []string
}

// DismissAfter returns how long the success receipt stays up.
func (c PaymentConfig) DismissAfter() time.Duration {
	return time.Duration(c.DismissSeconds) * time.Second
}

// ImageConfig controls receipt photo preparation before upload.
type ImageConfig struct {
	MaxDimension int
	JPEGQuality  int
}

// Load reads configuration from the given YAML file (default "config.yaml"),
// applying defaults for everything the file omits. A missing file is fine -
// the defaults describe a fully working demo setup.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.BindEnv("OCR.APIKey", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file; defaults and env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "8080")

	// The empty default keeps the key registered so the env binding is
	// picked up by Unmarshal.
	v.SetDefault("OCR.APIKey", "")
	v.SetDefault("OCR.Model", "gemini-2.5-flash")
	v.SetDefault("OCR.TimeoutSeconds", 25)
	v.SetDefault("OCR.StructuredOutput", true)

	v.SetDefault("Payment.InitialBalance", 482910.0)
	v.SetDefault("Payment.DismissSeconds", 6)
	v.SetDefault("Payment.FastRailCountries", []string{
		"UAE", "Singapore", "Mauritius", "Nepal", "Bhutan",
		"Sri Lanka", "Qatar", "Cyprus", "France",
	})

	v.SetDefault("Image.MaxDimension", 1000)
	v.SetDefault("Image.JPEGQuality", 65)
}
