package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the environment.
// Nested keys use underscores: google.client_id -> RESTO_GOOGLE_CLIENT_ID.
const EnvPrefix = "RESTO"

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN). postgres:// URLs use pgdriver, anything else SQLite.
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Public base URL of the API
	ServerURL string

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool

	// Log encoder: "json" or "text"
	LogFormat string

	Session       SessionConfig
	CORS          CORSConfig
	Google        GoogleConfig
	Observability ObservabilityConfig
}

// SessionConfig controls the server-side session store and its cookie.
type SessionConfig struct {
	CookieName string
	// CacheSize bounds the in-process LRU in front of the sessions table. Zero disables it.
	CacheSize int
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
}

// GoogleConfig configures the two OAuth login flows (operator-facing and customer-facing).
// Both flows share the same client registration but use distinct callback URLs.
type GoogleConfig struct {
	Issuer              string
	ClientID            string
	ClientSecret        string
	AdminCallbackURL    string
	CustomerCallbackURL string
	// FailureRedirect is where the browser is sent when the provider rejects a login.
	FailureRedirect string
	// Keys for the state/PKCE cookie codec. Random per process when empty.
	CookieHashKey    string
	CookieEncryptKey string
	Scopes           []string
}

// Enabled reports whether login flows should be mounted.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != ""
}

// ObservabilityConfig configures OpenTelemetry export. An empty endpoint disables it.
type ObservabilityConfig struct {
	OTLPEndpoint   string
	OTLPProtocol   string
	OTLPInsecure   bool
	ServiceName    string
	ServiceVersion string
	Environment    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "file:restaurant.db?cache=shared")
	v.SetDefault("server_addr", "localhost:8080")
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("max_db_connections", 25)
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "json")

	v.SetDefault("session.cookie_name", "resto.session")
	v.SetDefault("session.cache_size", 1024)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("google.issuer", "https://accounts.google.com")
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.admin_callback_url", "")
	v.SetDefault("google.customer_callback_url", "")
	v.SetDefault("google.failure_redirect", "/")
	v.SetDefault("google.cookie_hash_key", "")
	v.SetDefault("google.cookie_encrypt_key", "")
	v.SetDefault("google.scopes", []string{"openid", "profile", "email"})

	v.SetDefault("observability.otlp_endpoint", "")
	v.SetDefault("observability.otlp_protocol", "http/protobuf")
	v.SetDefault("observability.otlp_insecure", false)
	v.SetDefault("observability.service_name", "restaurantapi")
	v.SetDefault("observability.service_version", "dev")
	v.SetDefault("observability.environment", "development")
}

// Load reads configuration from the global viper instance: defaults, an optional
// config file already read by the caller, and RESTO_ prefixed environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds a Config from the given viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		DatabaseURL:      v.GetString("database_url"),
		ServerAddr:       v.GetString("server_addr"),
		ServerURL:        v.GetString("server_url"),
		MaxDBConnections: v.GetInt("max_db_connections"),
		Debug:            v.GetBool("debug"),
		LogFormat:        v.GetString("log_format"),
		Session: SessionConfig{
			CookieName: v.GetString("session.cookie_name"),
			CacheSize:  v.GetInt("session.cache_size"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetStringSlice("cors.allowed_origins")),
		},
		Google: GoogleConfig{
			Issuer:              v.GetString("google.issuer"),
			ClientID:            v.GetString("google.client_id"),
			ClientSecret:        v.GetString("google.client_secret"),
			AdminCallbackURL:    v.GetString("google.admin_callback_url"),
			CustomerCallbackURL: v.GetString("google.customer_callback_url"),
			FailureRedirect:     v.GetString("google.failure_redirect"),
			CookieHashKey:       v.GetString("google.cookie_hash_key"),
			CookieEncryptKey:    v.GetString("google.cookie_encrypt_key"),
			Scopes:              splitList(v.GetStringSlice("google.scopes")),
		},
		Observability: ObservabilityConfig{
			OTLPEndpoint:   v.GetString("observability.otlp_endpoint"),
			OTLPProtocol:   v.GetString("observability.otlp_protocol"),
			OTLPInsecure:   v.GetBool("observability.otlp_insecure"),
			ServiceName:    v.GetString("observability.service_name"),
			ServiceVersion: v.GetString("observability.service_version"),
			Environment:    v.GetString("observability.environment"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s_DATABASE_URL is required", EnvPrefix)
	}
	if c.ServerURL == "" {
		return fmt.Errorf("%s_SERVER_URL is required", EnvPrefix)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("%s_SESSION_COOKIE_NAME must not be empty", EnvPrefix)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q (want json or text)", c.LogFormat)
	}

	// Login flows are optional: without a client id the API runs with anonymous access only.
	if c.Google.Enabled() {
		if c.Google.Issuer == "" {
			return fmt.Errorf("%s_GOOGLE_ISSUER is required when login is enabled", EnvPrefix)
		}
		if c.Google.ClientSecret == "" {
			return fmt.Errorf("%s_GOOGLE_CLIENT_SECRET is required when login is enabled", EnvPrefix)
		}
		if c.Google.AdminCallbackURL == "" {
			return fmt.Errorf("%s_GOOGLE_ADMIN_CALLBACK_URL is required when login is enabled", EnvPrefix)
		}
		if c.Google.CustomerCallbackURL == "" {
			return fmt.Errorf("%s_GOOGLE_CUSTOMER_CALLBACK_URL is required when login is enabled", EnvPrefix)
		}
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
