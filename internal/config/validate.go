package config

import (
	"fmt"

	"github.com/FocuswithJustin/RefFinder/internal/logging"
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got %d)", c.Server.Port)
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		return fmt.Errorf("server.tls_cert_file and server.tls_key_file must be set together")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	if c.Finder.System == "" {
		return fmt.Errorf("finder.system is required")
	}
	if c.Finder.MaxTextBytes <= 0 {
		return fmt.Errorf("finder.max_text_bytes must be > 0 (got %d)", c.Finder.MaxTextBytes)
	}
	if c.Finder.ResultCacheSize < 0 || c.Store.CacheSize < 0 {
		return fmt.Errorf("cache sizes must be >= 0")
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("jobs.workers must be > 0 (got %d)", c.Jobs.Workers)
	}
	if c.Jobs.MaxTexts <= 0 {
		return fmt.Errorf("jobs.max_texts must be > 0 (got %d)", c.Jobs.MaxTexts)
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must be >= 0")
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.Burst == 0 {
		return fmt.Errorf("rate_limit.burst must be > 0 when limiting is enabled")
	}
	return nil
}
