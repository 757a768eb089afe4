package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Browser engines and session strategies.
const (
	EngineRod   = "rod"
	EngineColly = "colly"

	// StrategyContext opens an isolated browser context per lookup.
	StrategyContext = "context"
	// StrategyPage opens a new page in the shared browser per lookup.
	StrategyPage = "page"
)

// Config holds the full application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Browser      BrowserConfig      `yaml:"browser" mapstructure:"browser"`
	Jurisdiction JurisdictionConfig `yaml:"jurisdiction" mapstructure:"jurisdiction"`
	Database     DatabaseConfig     `yaml:"database" mapstructure:"database"`
	Telegram     TelegramConfig     `yaml:"telegram" mapstructure:"telegram"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port             int `yaml:"port" mapstructure:"port"`
	ReadTimeoutSecs  int `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs int `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
}

// WriteTimeout is the server's per-response write deadline.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSecs) * time.Second
}

// LookupTimeout bounds one lookup so that its error response is written before the
// connection's write deadline. It leaves a tenth of the write timeout, at most 10s.
func (s ServerConfig) LookupTimeout() time.Duration {
	w := s.WriteTimeout()
	margin := w / 10
	if margin > 10*time.Second {
		margin = 10 * time.Second
	}
	return w - margin
}

// BrowserConfig configures the document automation engine.
type BrowserConfig struct {
	Engine                string   `yaml:"engine" mapstructure:"engine"`
	Strategy              string   `yaml:"strategy" mapstructure:"strategy"`
	Bin                   string   `yaml:"bin" mapstructure:"bin"`
	UserDataDir           string   `yaml:"user_data_dir" mapstructure:"user_data_dir"`
	Headless              bool     `yaml:"headless" mapstructure:"headless"`
	UserAgent             string   `yaml:"user_agent" mapstructure:"user_agent"`
	BlockResources        []string `yaml:"block_resources" mapstructure:"block_resources"`
	NavigationTimeoutSecs int      `yaml:"navigation_timeout_secs" mapstructure:"navigation_timeout_secs"`
	ReadyTimeoutSecs      int      `yaml:"ready_timeout_secs" mapstructure:"ready_timeout_secs"`
	MaxSessions           int      `yaml:"max_sessions" mapstructure:"max_sessions"`
}

// NavigationTimeout is the ceiling for a single page navigation.
func (b BrowserConfig) NavigationTimeout() time.Duration {
	return time.Duration(b.NavigationTimeoutSecs) * time.Second
}

// ReadyTimeout is the ceiling for the page's ready selector to appear.
func (b BrowserConfig) ReadyTimeout() time.Duration {
	return time.Duration(b.ReadyTimeoutSecs) * time.Second
}

// JurisdictionConfig selects the county the lookups run against.
type JurisdictionConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}

// DatabaseConfig configures the optional request log.
type DatabaseConfig struct {
	URL               string `yaml:"url" mapstructure:"url"`
	RetentionHours    int    `yaml:"retention_hours" mapstructure:"retention_hours"`
	PruneIntervalMins int    `yaml:"prune_interval_mins" mapstructure:"prune_interval_mins"`
}

// Enabled reports whether a request log database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// TelegramConfig configures the chat bot surface.
type TelegramConfig struct {
	Token        string  `yaml:"token" mapstructure:"token"`
	AllowedUsers []int64 `yaml:"allowed_users" mapstructure:"allowed_users"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty path searches the
// working directory for config.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PARCEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout_secs", 15)
	v.SetDefault("server.write_timeout_secs", 200)
	v.SetDefault("browser.engine", EngineRod)
	v.SetDefault("browser.strategy", StrategyContext)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/69.0.3497.100 Safari/537.36")
	v.SetDefault("browser.block_resources", []string{"stylesheet", "font", "image"})
	v.SetDefault("browser.navigation_timeout_secs", 90)
	v.SetDefault("browser.ready_timeout_secs", 90)
	v.SetDefault("browser.max_sessions", 4)
	v.SetDefault("jurisdiction.name", "darke")
	v.SetDefault("database.url", "")
	v.SetDefault("database.retention_hours", 720)
	v.SetDefault("database.prune_interval_mins", 60)
	v.SetDefault("telegram.token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Browser.Engine {
	case EngineRod, EngineColly:
	default:
		return eris.Errorf("config: unknown browser.engine %q", c.Browser.Engine)
	}
	switch c.Browser.Strategy {
	case StrategyContext, StrategyPage:
	default:
		return eris.Errorf("config: unknown browser.strategy %q", c.Browser.Strategy)
	}
	if c.Browser.MaxSessions < 1 {
		return eris.Errorf("config: browser.max_sessions must be positive, got %d", c.Browser.MaxSessions)
	}
	if c.Browser.NavigationTimeoutSecs < 1 || c.Browser.ReadyTimeoutSecs < 1 {
		return eris.New("config: browser timeouts must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return eris.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSecs < 1 {
		return eris.Errorf("config: server.read_timeout_secs must be positive, got %d", c.Server.ReadTimeoutSecs)
	}
	// a lookup may spend the full navigation and ready timeouts
	if budget := c.Browser.NavigationTimeout() + c.Browser.ReadyTimeout(); c.Server.LookupTimeout() <= budget {
		return eris.Errorf("config: server.write_timeout_secs %d leaves %s per lookup, need more than %s",
			c.Server.WriteTimeoutSecs, c.Server.LookupTimeout(), budget)
	}
	if c.Database.Enabled() {
		if c.Database.RetentionHours < 1 {
			return eris.Errorf("config: database.retention_hours must be positive, got %d", c.Database.RetentionHours)
		}
		if c.Database.PruneIntervalMins < 1 {
			return eris.Errorf("config: database.prune_interval_mins must be positive, got %d", c.Database.PruneIntervalMins)
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
