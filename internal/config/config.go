// Package config loads RefFinder settings from a YAML file and REFFINDER_*
// environment variables.
package config

import (
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Finder    FinderConfig    `yaml:"finder"`
	Store     StoreConfig     `yaml:"store"`
	Jobs      JobsConfig      `yaml:"jobs"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"REFFINDER_HOST"             env-default:"127.0.0.1"`
	Port            int           `yaml:"port"             env:"REFFINDER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"REFFINDER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"REFFINDER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"REFFINDER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"REFFINDER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	TLSCertFile     string        `yaml:"tls_cert_file"    env:"REFFINDER_TLS_CERT"`
	TLSKeyFile      string        `yaml:"tls_key_file"     env:"REFFINDER_TLS_KEY"`
}

// TLSEnabled reports whether both halves of a key pair are configured.
func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCertFile != "" && s.TLSKeyFile != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"REFFINDER_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"REFFINDER_LOG_FORMAT" env-default:"json"`
}

// FinderConfig controls reference detection.
type FinderConfig struct {
	// System is the versification system verses are checked against.
	System string `yaml:"system" env:"REFFINDER_SYSTEM" env-default:"KJV"`
	// AliasesFile is an optional YAML file of extra book aliases.
	AliasesFile    string `yaml:"aliases_file"    env:"REFFINDER_ALIASES"`
	IncludeInvalid bool   `yaml:"include_invalid" env:"REFFINDER_INCLUDE_INVALID" env-default:"false"`
	MaxTextBytes   int    `yaml:"max_text_bytes"  env:"REFFINDER_MAX_TEXT_BYTES"  env-default:"1048576"`
	// ResultCacheSize bounds the server's cache of scan results.
	ResultCacheSize int           `yaml:"result_cache_size" env:"REFFINDER_RESULT_CACHE_SIZE" env-default:"512"`
	ResultCacheTTL  time.Duration `yaml:"result_cache_ttl"  env:"REFFINDER_RESULT_CACHE_TTL"  env-default:"10m"`
	ValidClass      string        `yaml:"valid_class"       env:"REFFINDER_VALID_CLASS"`
	InvalidClass    string        `yaml:"invalid_class"     env:"REFFINDER_INVALID_CLASS"`
}

// StoreConfig selects the versification store. With an empty Path the
// built-in tables are used.
type StoreConfig struct {
	Path      string `yaml:"path"       env:"REFFINDER_DB"`
	CacheSize int    `yaml:"cache_size" env:"REFFINDER_DB_CACHE_SIZE" env-default:"128"`
}

// JobsConfig controls batch scan jobs.
type JobsConfig struct {
	Workers   int           `yaml:"workers"   env:"REFFINDER_JOB_WORKERS"   env-default:"4"`
	MaxTexts  int           `yaml:"max_texts" env:"REFFINDER_JOB_MAX_TEXTS" env-default:"100"`
	Retention time.Duration `yaml:"retention" env:"REFFINDER_JOB_RETENTION" env-default:"1h"`
}

// RateLimitConfig holds per-client request limits. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"REFFINDER_RATE_LIMIT" env-default:"120"`
	Burst             int `yaml:"burst"               env:"REFFINDER_RATE_BURST" env-default:"20"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"REFFINDER_CORS_ORIGINS" env-default:"*"`
}

// Origins splits AllowedOrigins. A nil result allows any origin: the list is
// empty or names "*" anywhere.
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			return nil
		default:
			out = append(out, o)
		}
	}
	return out
}
