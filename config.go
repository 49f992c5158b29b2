package menulet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	defaults "github.com/Paranoid-AF/menulet/default"
)

// Config represents the user's menulet configuration.
type Config struct {
	Daemon DaemonConfig `toml:"daemon"`
	Calc   CalcConfig   `toml:"calc"`
	Pick   PickConfig   `toml:"pick"`
}

// DaemonConfig holds connection settings shared by all clients.
type DaemonConfig struct {
	// Address is host:port for TCP or unix:/path for a Unix socket.
	Address       string `toml:"address"`
	Dialect       string `toml:"dialect"`
	DialTimeoutMS int    `toml:"dial_timeout_ms"`
}

// CalcConfig holds settings for the calculator client.
type CalcConfig struct {
	Matcher         string   `toml:"matcher"`
	Subscribe       []string `toml:"subscribe"`
	CacheTTLSeconds int      `toml:"cache_ttl_seconds"`
	SendStop        *bool    `toml:"send_stop"`
}

// PickConfig holds settings for the one-shot picker.
type PickConfig struct {
	Matcher string `toml:"matcher"`
}

// ConfigDir returns the config directory path.
// Resolution order: $MENULET_CONFIG_DIR > $XDG_CONFIG_HOME/menulet > ~/.config/menulet
func ConfigDir() string {
	if dir := os.Getenv("MENULET_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "menulet")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "menulet-config")
	}
	return filepath.Join(home, ".config", "menulet")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultConfig returns the default configuration from the embedded default_config.toml.
func DefaultConfig() *Config {
	var cfg Config
	if _, err := toml.Decode(defaults.DefaultConfigTOML, &cfg); err != nil {
		panic("menulet: invalid embedded default_config.toml: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(ConfigPath())
}

// LoadConfigFrom loads the config file at path, filling missing fields from defaults.
func LoadConfigFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if cfg.Daemon.Address == "" {
		cfg.Daemon.Address = defaults.Daemon.Address
	}
	if cfg.Daemon.Dialect == "" {
		cfg.Daemon.Dialect = defaults.Daemon.Dialect
	}
	if cfg.Daemon.DialTimeoutMS == 0 {
		cfg.Daemon.DialTimeoutMS = defaults.Daemon.DialTimeoutMS
	}
	if cfg.Calc.Matcher == "" {
		cfg.Calc.Matcher = defaults.Calc.Matcher
	}
	if cfg.Calc.Subscribe == nil {
		cfg.Calc.Subscribe = defaults.Calc.Subscribe
	}
	if cfg.Calc.CacheTTLSeconds == 0 {
		cfg.Calc.CacheTTLSeconds = defaults.Calc.CacheTTLSeconds
	}
	if cfg.Calc.SendStop == nil {
		cfg.Calc.SendStop = defaults.Calc.SendStop
	}
	if cfg.Pick.Matcher == "" {
		cfg.Pick.Matcher = defaults.Pick.Matcher
	}

	return &cfg, nil
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	switch cfg.Daemon.Dialect {
	case "keydata", "tagged":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown dialect %q; expected keydata or tagged", cfg.Daemon.Dialect))
	}
	if _, err := ParseMatcher(cfg.Calc.Matcher); err != nil {
		warnings = append(warnings, "calc: "+err.Error())
	}
	if _, err := ParseMatcher(cfg.Pick.Matcher); err != nil {
		warnings = append(warnings, "pick: "+err.Error())
	}
	mask, err := ParseSubscription(cfg.Calc.Subscribe)
	if err != nil {
		warnings = append(warnings, "calc: "+err.Error())
	} else if !mask.Has(SubscribeSelect | SubscribeInputChange) {
		warnings = append(warnings, "calc subscription lacks select or input_change; the calculator cannot make progress")
	} else if cfg.Daemon.Dialect == "tagged" && mask.Has(SubscribeWindowClosed) {
		warnings = append(warnings, "calc: window_closed is implicit with the tagged dialect and is not sent")
	}
	return warnings
}

// ResolveAddress returns the daemon address.
// Priority: $MENULET_ADDRESS env > config value.
func ResolveAddress(cfg *Config) string {
	if addr := os.Getenv("MENULET_ADDRESS"); addr != "" {
		return addr
	}
	if cfg != nil {
		return cfg.Daemon.Address
	}
	return ""
}

// ResolveDialect returns the wire dialect name.
// Priority: $MENULET_DIALECT env > config value.
func ResolveDialect(cfg *Config) string {
	if d := os.Getenv("MENULET_DIALECT"); d != "" {
		return d
	}
	if cfg != nil {
		return cfg.Daemon.Dialect
	}
	return ""
}

// DialTimeout returns the configured connect timeout.
func DialTimeout(cfg *Config) time.Duration {
	if cfg == nil || cfg.Daemon.DialTimeoutMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(cfg.Daemon.DialTimeoutMS) * time.Millisecond
}

// CacheTTL returns how long compiled expressions stay cached.
func CacheTTL(cfg *Config) time.Duration {
	if cfg == nil || cfg.Calc.CacheTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(cfg.Calc.CacheTTLSeconds) * time.Second
}

// SendStopEnabled returns whether the calculator notifies the daemon when the window closes.
func SendStopEnabled(cfg *Config) bool {
	if cfg == nil || cfg.Calc.SendStop == nil {
		return true // default true
	}
	return *cfg.Calc.SendStop
}
