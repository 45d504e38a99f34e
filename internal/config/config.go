// Package config builds the immutable application configuration: defaults,
// an optional YAML file, then environment overrides. The value is
// constructed once at startup and passed by reference; nothing here caches
// global state.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Shanghai"

	configPathEnv   = "AI_DAILY_CONFIG"
	databaseDSNEnv  = "DATABASE_DSN"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
	geminiModelEnv  = "GEMINI_MODEL"
	smtpUserEnv     = "SMTP_USERNAME"
	smtpPassEnv     = "SMTP_PASSWORD"
)

// Config holds the settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Collection    CollectionConfig   `yaml:"collection"`
	ContentFilter ContentFilter      `yaml:"contentFilter"`
	LLM           LLMConfig          `yaml:"llm"`
	Output        OutputConfig       `yaml:"output"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sources       SourcesConfig      `yaml:"sources"`
}

// LoggingConfig controls slog setup.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when the daily run executes.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// CollectionConfig bounds outbound collection calls.
type CollectionConfig struct {
	TimeoutSeconds  int `yaml:"timeoutSeconds"`
	IntervalSeconds int `yaml:"requestIntervalSeconds"`
}

// Timeout returns the per-request HTTP timeout.
func (c CollectionConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Interval returns the cooperative delay between calls to one source.
func (c CollectionConfig) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

// ContentFilter tunes deduplication and the freshness horizon.
type ContentFilter struct {
	MaxAgeHours    int     `yaml:"maxAgeHours"`
	DedupThreshold float64 `yaml:"dedupThreshold"`
}

// MaxAge returns the freshness horizon for published records.
func (f ContentFilter) MaxAge() time.Duration {
	if f.MaxAgeHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(f.MaxAgeHours) * time.Hour
}

// LLMConfig defines how to contact the language-model collaborator.
type LLMConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"apiKey"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// OutputConfig locates the report artifact tree.
type OutputConfig struct {
	BaseDir string `yaml:"baseDir"`
}

// DatabaseConfig describes the optional run-archive Postgres connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Email EmailConfig `yaml:"email"`
}

// EmailConfig wires SMTP delivery of the finished report.
type EmailConfig struct {
	Enabled    bool     `yaml:"enabled"`
	SMTPServer string   `yaml:"smtpServer"`
	SMTPPort   int      `yaml:"smtpPort"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	Recipients []string `yaml:"recipients"`
	UseSSL     bool     `yaml:"useSsl"`
}

// Load reads configuration. An explicitly requested file that cannot be
// read or parsed is a fatal configuration failure; with no path the
// defaults plus environment overrides apply.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(geminiModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(smtpUserEnv); v != "" {
		c.Notifications.Email.Username = v
	}
	if v := os.Getenv(smtpPassEnv); v != "" {
		c.Notifications.Email.Password = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Collection.TimeoutSeconds > 0 {
		base.Collection.TimeoutSeconds = override.Collection.TimeoutSeconds
	}
	if override.Collection.IntervalSeconds > 0 {
		base.Collection.IntervalSeconds = override.Collection.IntervalSeconds
	}

	if override.ContentFilter.MaxAgeHours > 0 {
		base.ContentFilter.MaxAgeHours = override.ContentFilter.MaxAgeHours
	}
	if override.ContentFilter.DedupThreshold > 0 {
		base.ContentFilter.DedupThreshold = override.ContentFilter.DedupThreshold
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.TimeoutSeconds > 0 {
		base.LLM.TimeoutSeconds = override.LLM.TimeoutSeconds
	}

	if override.Output.BaseDir != "" {
		base.Output = override.Output
	}
	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.Notifications.Email.SMTPServer != "" || override.Notifications.Email.Enabled {
		base.Notifications = override.Notifications
	}

	if len(override.Sources.GitHub.Topics) > 0 || len(override.Sources.GitHub.Repositories) > 0 {
		base.Sources.GitHub = override.Sources.GitHub
	}
	if len(override.Sources.RSSFeeds) > 0 {
		base.Sources.RSSFeeds = override.Sources.RSSFeeds
	}
	if len(override.Sources.Blogs) > 0 {
		base.Sources.Blogs = override.Sources.Blogs
	}
	if len(override.Sources.Categories) > 0 {
		base.Sources.Categories = override.Sources.Categories
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{CronExpression: "0 20 * * *", Timezone: defaultTimezone, location: tz},
		Collection: CollectionConfig{
			TimeoutSeconds:  30,
			IntervalSeconds: 2,
		},
		ContentFilter: ContentFilter{MaxAgeHours: 24, DedupThreshold: 0.7},
		LLM: LLMConfig{
			Model:          "gemini-2.0-flash",
			TimeoutSeconds: 120,
		},
		Output: OutputConfig{BaseDir: "data/reports"},
		Notifications: NotificationConfig{
			Email: EmailConfig{SMTPServer: "smtp.qq.com", SMTPPort: 465, UseSSL: true},
		},
		Sources: SourcesConfig{
			GitHub: GitHubSources{
				Topics: []string{"artificial-intelligence", "llm"},
				Since:  "daily",
			},
			RSSFeeds: []FeedSource{
				{Name: "Hacker News - AI", URL: "https://hnrss.org/newest?q=AI+OR+LLM"},
			},
		},
	}
}
