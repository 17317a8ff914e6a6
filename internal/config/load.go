package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix shared by every environment variable the service reads.
const EnvPrefix = "DEVCAMPER"

// envFiles are dotenv files loaded (when present) before the environment is read.
// Values already present in the process environment are never overwritten.
var envFiles = []string{".env", "config/config.env"}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	for _, file := range envFiles {
		// Missing files are fine; only the process environment is required.
		_ = godotenv.Load(file)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.environment", "development")

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080) // 7 days
	v.SetDefault("auth.cookie_expire_days", 30)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("geocoder.base_url", "https://www.mapquestapi.com")
	v.SetDefault("geocoder.timeout_seconds", 5)
	v.SetDefault("geocoder.max_failures", 5)
	v.SetDefault("geocoder.open_seconds", 30)

	v.SetDefault("query.max_limit", 100)
	v.SetDefault("query.legacy_prev_page", false)
	v.SetDefault("query.unfiltered_count", false)
}

// bindEnvs registers keys that have no default so AutomaticEnv picks them up
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"geocoder.api_key",
	} {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}
}
