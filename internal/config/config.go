package config

import "time"

// DefaultJWTSecret is the placeholder signing secret written to new config files.
const DefaultJWTSecret = "change-me"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret      string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer      string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience    string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL         time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`
	AuthCookieName string        `mapstructure:"auth_cookie_name" yaml:"auth_cookie_name"`

	// SendBuffer is the per-connection outbound queue length.
	SendBuffer        int      `mapstructure:"send_buffer" yaml:"send_buffer"`
	MaxMessageBytes   int64    `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	MessagesPerMinute int      `mapstructure:"messages_per_minute" yaml:"messages_per_minute"`
	AllowedOrigins    []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "wirechat.db",
		JWTSecret:         DefaultJWTSecret,
		JWTIssuer:         "wirechat",
		JWTTTL:            15 * 24 * time.Hour,
		AuthCookieName:    "accessToken",
		SendBuffer:        64,
		MaxMessageBytes:   64 << 10,
		MessagesPerMinute: 120,
	}
}
