package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Query    QueryConfig    `mapstructure:"query"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int    `mapstructure:"port"        validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level"   validate:"required,oneof=debug info warn error"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development test production"`
}

// IsProduction reports whether the server runs in production mode.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lte=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lte=129600"`
	CookieExpireDays            int    `mapstructure:"cookie_expire_days"             validate:"required,gt=0"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
}

// GeocoderConfig configures the address geocoding client.
// Geocoding is disabled when APIKey is empty.
type GeocoderConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"        validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxFailures    int    `mapstructure:"max_failures"    validate:"gte=0"`
	OpenSeconds    int    `mapstructure:"open_seconds"    validate:"gte=0"`
}

// Enabled reports whether a geocoding provider is configured.
func (c GeocoderConfig) Enabled() bool {
	return c.APIKey != ""
}

// QueryConfig tunes the list query pipeline.
type QueryConfig struct {
	// MaxLimit caps the page size a client may request. Zero disables the cap.
	MaxLimit int `mapstructure:"max_limit" validate:"gte=0"`

	// LegacyPrevPage makes pagination.prev point at page+1, as the first
	// version of the API did.
	LegacyPrevPage bool `mapstructure:"legacy_prev_page"`

	// UnfilteredCount computes the total over the whole collection instead
	// of the filtered subset.
	UnfilteredCount bool `mapstructure:"unfiltered_count"`
}
