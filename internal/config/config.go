package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. PROMPTDESK_WEB_PORT.
const EnvPrefix = "PROMPTDESK"

type Config struct {
	Web     WebConfig     `mapstructure:"web" yaml:"web"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Profile string        `mapstructure:"profile" yaml:"profile"` // built-in name or YAML path
	Presets PresetsConfig `mapstructure:"presets" yaml:"presets"`
	Audit   AuditConfig   `mapstructure:"audit" yaml:"audit"`
	Slack   SlackConfig   `mapstructure:"slack" yaml:"slack,omitempty"`
	Form    FormConfig    `mapstructure:"form" yaml:"form"`
}

type WebConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type PresetsConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type AuditConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir             string `mapstructure:"dir" yaml:"dir"`
	FilePrefix      string `mapstructure:"file_prefix" yaml:"file_prefix"`
	RetentionDays   int    `mapstructure:"retention_days" yaml:"retention_days"`
	CleanupSchedule string `mapstructure:"cleanup_schedule" yaml:"cleanup_schedule"`
}

type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url,omitempty"`
	Retries    int    `mapstructure:"retries" yaml:"retries"`
}

type FormConfig struct {
	AllowCustom bool `mapstructure:"allow_custom" yaml:"allow_custom"`
}

// DataDir is where the preset database and audit files live by default.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".promptdesk"
	}
	return filepath.Join(home, ".promptdesk")
}

func DefaultConfig() *Config {
	dir := DataDir()
	return &Config{
		Web:     WebConfig{Port: 8765},
		Logging: LoggingConfig{Level: "info"},
		Profile: "standard",
		Presets: PresetsConfig{Path: filepath.Join(dir, "presets.db")},
		Audit: AuditConfig{
			Enabled:         false,
			Dir:             filepath.Join(dir, "audit"),
			FilePrefix:      "promptdesk",
			RetentionDays:   30,
			CleanupSchedule: "@daily",
		},
		Slack: SlackConfig{Retries: 3},
	}
}

// Manager loads the configuration and reloads it when the file changes.
type Manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager loads configuration from cfgFile, or from promptdesk.yaml in the
// working directory or ~/.promptdesk when cfgFile is empty. A missing file is not
// an error.
func NewManager(cfgFile string) (*Manager, error) {
	m := &Manager{v: viper.New()}
	if err := m.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.config = cfg
	return m, nil
}

func (m *Manager) initViper(cfgFile string) error {
	d := DefaultConfig()
	defaults := map[string]any{
		"web.port":               d.Web.Port,
		"logging.level":          d.Logging.Level,
		"profile":                d.Profile,
		"presets.path":           d.Presets.Path,
		"audit.enabled":          d.Audit.Enabled,
		"audit.dir":              d.Audit.Dir,
		"audit.file_prefix":      d.Audit.FilePrefix,
		"audit.retention_days":   d.Audit.RetentionDays,
		"audit.cleanup_schedule": d.Audit.CleanupSchedule,
		"slack.webhook_url":      d.Slack.WebhookURL,
		"slack.retries":          d.Slack.Retries,
		"form.allow_custom":      d.Form.AllowCustom,
	}
	for k, val := range defaults {
		m.v.SetDefault(k, val)
	}

	m.v.SetEnvPrefix(EnvPrefix)
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()

	if cfgFile != "" {
		m.v.SetConfigFile(cfgFile)
	} else {
		m.v.SetConfigName("promptdesk")
		m.v.SetConfigType("yaml")
		m.v.AddConfigPath(".")
		m.v.AddConfigPath(DataDir())
	}

	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (m *Manager) load() (*Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.resolvePaths(m.baseDir())
	return &cfg, nil
}

// baseDir is the directory relative paths in the file are resolved against.
func (m *Manager) baseDir() string {
	if f := m.v.ConfigFileUsed(); f != "" {
		return filepath.Dir(f)
	}
	return "."
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Presets.Path = resolve(c.Presets.Path)
	c.Audit.Dir = resolve(c.Audit.Dir)
	if strings.HasSuffix(c.Profile, ".yaml") || strings.HasSuffix(c.Profile, ".yml") {
		c.Profile = resolve(c.Profile)
	}
}

// ConfigFile returns the file the configuration was read from, if any.
func (m *Manager) ConfigFile() string {
	return m.v.ConfigFileUsed()
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// OnChange registers a callback run after each successful reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// WatchConfig reloads the configuration when the file changes. onError receives
// reload failures; the previous configuration stays active.
func (m *Manager) WatchConfig(onError func(error)) {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		if err := m.Reload(); err != nil && onError != nil {
			onError(err)
		}
	})
	m.v.WatchConfig()
}

// Reload re-reads the file and notifies OnChange callbacks.
func (m *Manager) Reload() error {
	if m.v.ConfigFileUsed() != "" {
		if err := m.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	cfg, err := m.load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.config = cfg
	callbacks := make([]func(*Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}

// Save writes cfg to path as YAML with a short header.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	header := []byte(`# promptdesk configuration
# Every key can be overridden with a PROMPTDESK_ environment variable,
# e.g. PROMPTDESK_WEB_PORT=9000 or PROMPTDESK_SLACK_WEBHOOK_URL=https://hooks.slack.com/...

`)
	return os.WriteFile(path, append(header, data...), 0644)
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	return Save(path, DefaultConfig())
}
