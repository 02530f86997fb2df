package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is structurally usable. Credential
// presence is deliberately not checked here: missing store or catalog
// credentials surface as configuration errors on the operations that need
// them, so read-only paths keep working.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	bind := strings.TrimSpace(c.Server.Bind)
	if bind == "" {
		return errors.New("server.bind must be set")
	}
	if _, _, err := net.SplitHostPort(bind); err != nil {
		return fmt.Errorf("server.bind: %w", err)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "rest", "sqlite":
	default:
		return fmt.Errorf("store.backend must be \"rest\" or \"sqlite\", got %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
