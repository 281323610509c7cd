package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	defaultSourceURL   = "https://maps.app.goo.gl/mYc8i3DawKk6PsPc9"
	defaultScanner     = "google-maps"
	defaultMaxReviews  = 30
	defaultDisplayPath = "public/reviews.json"
	defaultAuditPath   = "QA/reviews-verification.json"

	configPathEnv     = "REVIEWS_SCANNER_CONFIG"
	sourceURLEnv      = "GOOGLE_REVIEWS_URL"
	maxReviewsEnv     = "MAX_REVIEWS"
	placeIDEnv        = "GOOGLE_PLACE_ID"
	mapsAPIKeyEnv     = "GOOGLE_MAPS_API_KEY"
	chromePathEnv     = "CHROME_PATH"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Source        SourceConfig       `yaml:"source"`
	Places        PlacesConfig       `yaml:"places"`
	Browser       BrowserConfig      `yaml:"browser"`
	Output        OutputConfig       `yaml:"output"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// SourceConfig names the page to scrape and the scanner strategy for it.
type SourceConfig struct {
	URL        string `yaml:"url"`
	Scanner    string `yaml:"scanner"`
	MaxReviews int    `yaml:"maxReviews"`
}

// PlacesConfig enables verification against the Places details API.
type PlacesConfig struct {
	PlaceID string        `yaml:"placeId"`
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// BrowserConfig tunes the headless Chrome session.
type BrowserConfig struct {
	Headless   *bool         `yaml:"headless"`
	ExecPath   string        `yaml:"execPath"`
	UserAgent  string        `yaml:"userAgent"`
	NavTimeout time.Duration `yaml:"navTimeout"`
}

// IsHeadless defaults to true when unset.
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

// OutputConfig points at the two artifacts.
type OutputConfig struct {
	DisplayPath string `yaml:"displayPath"`
	AuditPath   string `yaml:"auditPath"`
}

// DatabaseConfig describes Postgres connection details. Empty DSN disables audit history.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the scheduled mode runs.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	RunOnStart     bool           `yaml:"runOnStart"`
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

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIURL   string `yaml:"apiUrl"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// LoggingConfig sets the slog level and handler format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if cfg.Source.MaxReviews <= 0 {
		cfg.Source.MaxReviews = defaultMaxReviews
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(sourceURLEnv); v != "" {
		c.Source.URL = v
	}

	if v := os.Getenv(maxReviewsEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("config: ignoring %s=%q, want a positive integer", maxReviewsEnv, v)
		} else {
			c.Source.MaxReviews = n
		}
	}

	if v := os.Getenv(placeIDEnv); v != "" {
		c.Places.PlaceID = v
	}

	if v := os.Getenv(mapsAPIKeyEnv); v != "" {
		c.Places.APIKey = v
	}

	if v := os.Getenv(chromePathEnv); v != "" {
		c.Browser.ExecPath = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Source.URL != "" {
		base.Source.URL = override.Source.URL
	}
	if override.Source.Scanner != "" {
		base.Source.Scanner = override.Source.Scanner
	}
	if override.Source.MaxReviews > 0 {
		base.Source.MaxReviews = override.Source.MaxReviews
	}

	if override.Places.PlaceID != "" {
		base.Places.PlaceID = override.Places.PlaceID
	}
	if override.Places.APIKey != "" {
		base.Places.APIKey = override.Places.APIKey
	}
	if override.Places.BaseURL != "" {
		base.Places.BaseURL = override.Places.BaseURL
	}
	if override.Places.Timeout > 0 {
		base.Places.Timeout = override.Places.Timeout
	}

	if override.Browser.Headless != nil {
		base.Browser.Headless = override.Browser.Headless
	}
	if override.Browser.ExecPath != "" {
		base.Browser.ExecPath = override.Browser.ExecPath
	}
	if override.Browser.UserAgent != "" {
		base.Browser.UserAgent = override.Browser.UserAgent
	}
	if override.Browser.NavTimeout > 0 {
		base.Browser.NavTimeout = override.Browser.NavTimeout
	}

	if override.Output.DisplayPath != "" {
		base.Output.DisplayPath = override.Output.DisplayPath
	}
	if override.Output.AuditPath != "" {
		base.Output.AuditPath = override.Output.AuditPath
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.RunOnStart {
		base.Scheduler.RunOnStart = true
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.APIURL != "" {
		base.Notifications.Telegram.APIURL = override.Notifications.Telegram.APIURL
	}

	if override.Metrics.TextfilePath != "" {
		base.Metrics.TextfilePath = override.Metrics.TextfilePath
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Source: SourceConfig{
			URL:        defaultSourceURL,
			Scanner:    defaultScanner,
			MaxReviews: defaultMaxReviews,
		},
		Places: PlacesConfig{
			BaseURL: "https://maps.googleapis.com",
			Timeout: 15 * time.Second,
		},
		Browser: BrowserConfig{
			NavTimeout: 60 * time.Second,
		},
		Output: OutputConfig{
			DisplayPath: defaultDisplayPath,
			AuditPath:   defaultAuditPath,
		},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
