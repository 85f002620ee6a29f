// Package config handles the daemon configuration from YAML files and
// carries the settings the engine reads fresh at runtime.
package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Config is the top-level daemon configuration.
type Config struct {
	File       string        `yaml:"file"`        // document to preview
	Listen     string        `yaml:"listen"`      // control API address
	ScrollSync bool          `yaml:"scroll_sync"` // preview follows the editor cursor
	Zoom       int           `yaml:"zoom"`        // percent, 100 = native
	Template   string        `yaml:"template"`    // optional shell template path
	Title      string        `yaml:"title"`
	StateDB    string        `yaml:"state_db"` // empty disables persistence
	Browser    BrowserConfig `yaml:"browser"`
}

// BrowserConfig controls browser acquisition.
type BrowserConfig struct {
	Remote   string `yaml:"remote"` // attach instead of launching
	Headless bool   `yaml:"headless"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{ScrollSync: true}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:7806"
	}
	if c.Zoom <= 0 {
		c.Zoom = 100
	}
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	c.ScrollSync = true // default unless the file says otherwise
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.defaults()
	return &c, nil
}

// Runtime carries the settings read fresh on every engine operation. The
// engine never caches these; flipping a flag here takes effect on the next
// sync or refresh.
type Runtime struct {
	scrollSync atomic.Bool
}

// NewRuntime seeds the runtime flags from a configuration.
func NewRuntime(cfg *Config) *Runtime {
	r := &Runtime{}
	r.scrollSync.Store(cfg.ScrollSync)
	return r
}

// ScrollSyncEnabled reports whether the preview follows the editor cursor.
func (r *Runtime) ScrollSyncEnabled() bool {
	return r.scrollSync.Load()
}

// SetScrollSync flips the scroll-sync mode.
func (r *Runtime) SetScrollSync(enabled bool) {
	r.scrollSync.Store(enabled)
}
