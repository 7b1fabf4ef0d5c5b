package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeEngine()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeEngine() {
	if value, ok := os.LookupEnv("VIZMSE_HOST"); ok && strings.TrimSpace(value) != "" {
		c.Engine.Hostname = value
	}
	if value, ok := os.LookupEnv("VIZMSE_REST_HOST"); ok && strings.TrimSpace(value) != "" {
		c.Engine.RESTHost = value
	}
	if value, ok := os.LookupEnv("VIZMSE_PROFILE"); ok && strings.TrimSpace(value) != "" {
		c.Engine.Profile = value
	}
	c.Engine.Hostname = strings.TrimSpace(c.Engine.Hostname)
	if c.Engine.Hostname == "" {
		c.Engine.Hostname = defaultHostname
	}
	c.Engine.RESTHost = strings.TrimSpace(c.Engine.RESTHost)
	c.Engine.Profile = strings.TrimSpace(c.Engine.Profile)
	if c.Engine.Profile == "" {
		c.Engine.Profile = defaultProfile
	}
	c.Engine.Creator = strings.TrimSpace(c.Engine.Creator)
	if c.Engine.Creator == "" {
		c.Engine.Creator = defaultCreator
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockDir) == "" {
		c.Paths.LockDir = filepath.Join(c.Paths.StateDir, lockDirName)
	}
	if c.Paths.LockDir, err = expandPath(c.Paths.LockDir); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TreeDB) == "" {
		c.Paths.TreeDB = filepath.Join(c.Paths.StateDir, treeDBName)
	}
	if c.Paths.TreeDB, err = expandPath(c.Paths.TreeDB); err != nil {
		return fmt.Errorf("paths.tree_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.RegistryDB) == "" {
		c.Paths.RegistryDB = filepath.Join(c.Paths.StateDir, registryDBName)
	}
	if c.Paths.RegistryDB, err = expandPath(c.Paths.RegistryDB); err != nil {
		return fmt.Errorf("paths.registry_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
