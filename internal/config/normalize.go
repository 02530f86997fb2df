package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// envOverrides maps recognized environment variables onto config fields.
// Environment values win over file values so deployments can keep credentials
// out of the config file entirely.
func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		name   string
		target *string
	}{
		{"SUPABASE_URL", &c.Store.URL},
		{"SUPABASE_ANON_KEY", &c.Store.AnonKey},
		{"SUPABASE_SERVICE_ROLE_KEY", &c.Store.ServiceRoleKey},
		{"TMDB_BEARER", &c.TMDB.Bearer},
		{"TMDB_API_KEY", &c.TMDB.APIKey},
		{"PUBLIC_BASE_URL", &c.Server.PublicBaseURL},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalize() error {
	c.applyEnvOverrides()

	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStore()
	c.normalizeTMDB()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	c.Store.URL = strings.TrimRight(strings.TrimSpace(c.Store.URL), "/")
	c.Store.AnonKey = strings.TrimSpace(c.Store.AnonKey)
	c.Store.ServiceRoleKey = strings.TrimSpace(c.Store.ServiceRoleKey)
	if strings.TrimSpace(c.Store.SQLitePath) == "" {
		c.Store.SQLitePath = filepath.Join(c.Paths.DataDir, "marquee.db")
	} else if expanded, err := expandPath(c.Store.SQLitePath); err == nil {
		c.Store.SQLitePath = expanded
	}
}

func (c *Config) normalizeTMDB() {
	c.TMDB.Bearer = strings.TrimSpace(c.TMDB.Bearer)
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
