package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// keyDelim separates nested keys. Domain names and spec keys contain dots, so
// viper's default delimiter would split them into nested maps.
const keyDelim = "::"

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Crossval  CrossvalConfig  `yaml:"crossval" mapstructure:"crossval"`
	Allowlist AllowlistConfig `yaml:"allowlist" mapstructure:"allowlist"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	MaxConns      int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns      int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CacheTTL returns the spec cache lifetime.
func (s StoreConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLHours) * time.Hour
}

// FetchConfig configures page fetching and the fallback cascade.
type FetchConfig struct {
	UserAgent          string         `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs        int            `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries            int            `yaml:"retries" mapstructure:"retries"`
	DefaultThrottleMs  int            `yaml:"default_throttle_ms" mapstructure:"default_throttle_ms"`
	ThrottleMsByDomain map[string]int `yaml:"throttle_ms_by_domain" mapstructure:"throttle_ms_by_domain"`
	EnableReference    bool           `yaml:"enable_reference" mapstructure:"enable_reference"`
	BrowserFallback    bool           `yaml:"browser_fallback" mapstructure:"browser_fallback"`
}

// Timeout returns the per-request timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// DefaultThrottle returns the spacing between requests to one host.
func (f FetchConfig) DefaultThrottle() time.Duration {
	return time.Duration(f.DefaultThrottleMs) * time.Millisecond
}

// Throttle returns the per-domain request spacing.
func (f FetchConfig) Throttle() map[string]time.Duration {
	out := make(map[string]time.Duration, len(f.ThrottleMsByDomain))
	for domain, ms := range f.ThrottleMsByDomain {
		out[strings.ToLower(domain)] = time.Duration(ms) * time.Millisecond
	}
	return out
}

// JinaConfig holds Jina Reader and Search settings.
type JinaConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL     string `yaml:"search_base_url" mapstructure:"search_base_url"`
	RenderTimeoutSecs int    `yaml:"render_timeout_secs" mapstructure:"render_timeout_secs"`
	// TargetSelector limits rendered pages to a CSS selector. Empty keeps
	// the whole page.
	TargetSelector string `yaml:"target_selector" mapstructure:"target_selector"`
}

// RenderTimeout returns how long Jina may spend rendering one page.
func (j JinaConfig) RenderTimeout() time.Duration {
	return time.Duration(j.RenderTimeoutSecs) * time.Second
}

// FirecrawlConfig holds Firecrawl API settings (fallback only).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CrossvalConfig configures multi-source validation.
type CrossvalConfig struct {
	MinSources    int               `yaml:"min_sources" mapstructure:"min_sources"`
	MinConfidence float64           `yaml:"min_confidence" mapstructure:"min_confidence"`
	Concurrency   int               `yaml:"concurrency" mapstructure:"concurrency"`
	Rules         map[string]string `yaml:"rules" mapstructure:"rules"`
}

// AllowlistConfig adds domains to the built-in allowlist.
type AllowlistConfig struct {
	ExtraOfficial  []string `yaml:"extra_official" mapstructure:"extra_official"`
	ExtraReference []string `yaml:"extra_reference" mapstructure:"extra_reference"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func key(parts ...string) string { return strings.Join(parts, keyDelim) }

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment: HWX_STORE_DRIVER, HWX_FETCH_RETRIES, ...
	v.SetEnvPrefix("HWX")
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelim, "_", ".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault(key("store", "driver"), "sqlite")
	v.SetDefault(key("store", "database_url"), "")
	v.SetDefault(key("store", "cache_ttl_hours"), 24*7)
	v.SetDefault(key("store", "max_conns"), 10)
	v.SetDefault(key("store", "min_conns"), 2)
	v.SetDefault(key("log", "level"), "info")
	v.SetDefault(key("log", "format"), "json")
	v.SetDefault(key("fetch", "user_agent"), "")
	v.SetDefault(key("fetch", "timeout_secs"), 20)
	v.SetDefault(key("fetch", "retries"), 2)
	v.SetDefault(key("fetch", "default_throttle_ms"), 500)
	v.SetDefault(key("fetch", "throttle_ms_by_domain"), map[string]int{
		"intel.com":       1500,
		"techpowerup.com": 2000,
	})
	v.SetDefault(key("fetch", "enable_reference"), true)
	v.SetDefault(key("fetch", "browser_fallback"), true)
	v.SetDefault(key("jina", "key"), "")
	v.SetDefault(key("jina", "base_url"), "https://r.jina.ai")
	v.SetDefault(key("jina", "search_base_url"), "https://s.jina.ai")
	v.SetDefault(key("jina", "render_timeout_secs"), 20)
	v.SetDefault(key("jina", "target_selector"), "")
	v.SetDefault(key("firecrawl", "key"), "")
	v.SetDefault(key("firecrawl", "base_url"), "https://api.firecrawl.dev/v2")
	v.SetDefault(key("crossval", "min_sources"), 2)
	v.SetDefault(key("crossval", "min_confidence"), 0.6)
	v.SetDefault(key("crossval", "concurrency"), 3)
	v.SetDefault(key("crossval", "rules"), map[string]string{})
	v.SetDefault(key("allowlist", "extra_official"), []string{})
	v.SetDefault(key("allowlist", "extra_reference"), []string{})
	v.SetDefault(key("server", "port"), 8080)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate rejects settings that command cannot run with. Every error found
// is reported.
func (c *Config) Validate(command string) error {
	var problems []string
	switch strings.ToLower(c.Store.Driver) {
	case "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not sqlite or postgres", c.Store.Driver))
	}
	if c.Fetch.Retries < 0 {
		problems = append(problems, "fetch.retries must not be negative")
	}
	if c.Crossval.MinSources < 1 {
		problems = append(problems, "crossval.min_sources must be at least 1")
	}
	if c.Crossval.MinConfidence < 0 || c.Crossval.MinConfidence > 1 {
		problems = append(problems, "crossval.min_confidence must be between 0 and 1")
	}
	if command == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		problems = append(problems, fmt.Sprintf("server.port %d is invalid", c.Server.Port))
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
