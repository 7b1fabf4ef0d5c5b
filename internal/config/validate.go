package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	if strings.TrimSpace(c.Engine.Hostname) == "" {
		return errors.New("engine.hostname must be set")
	}
	if strings.TrimSpace(c.Engine.Profile) == "" {
		return errors.New("engine.profile must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"engine.rest_port":       c.Engine.RESTPort,
		"engine.request_timeout": c.Engine.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Engine.RESTPort > 65535 {
		return errors.New("engine.rest_port must be a valid TCP port")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
