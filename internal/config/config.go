package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"server"`
	Graph     GraphConfig     `mapstructure:"graph"`
	Logging   LoggingConfig   `mapstructure:"log"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Search    SearchConfig    `mapstructure:"search"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	AllowedOriginsCSV string        `mapstructure:"allowed_origins"`
}

// GraphConfig describes connectivity to the Neo4j link graph.
type GraphConfig struct {
	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"` // text|json
	Colored       bool   `mapstructure:"color"`
	IncludeCaller bool   `mapstructure:"include_caller"`
}

// KnowledgeConfig selects and tunes the upstream knowledge service.
type KnowledgeConfig struct {
	Backend           string        `mapstructure:"backend"` // wikipedia|neo4j
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	Retries           int           `mapstructure:"retries"`
	RetryBaseDelay    time.Duration `mapstructure:"retry_base_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	BreakerEnabled    bool          `mapstructure:"breaker_enabled"`
	MaxLinks          int           `mapstructure:"max_links"`
	MaxLinkPages      int           `mapstructure:"max_link_pages"`
}

// SearchConfig holds the defaults and hard limits of the path search.
type SearchConfig struct {
	MaxDepth      int           `mapstructure:"max_depth"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Pacing        time.Duration `mapstructure:"pacing"`
	MaxDepthLimit int           `mapstructure:"max_depth_limit"`
	TimeoutLimit  time.Duration `mapstructure:"timeout_limit"`
	Strict        bool          `mapstructure:"strict"`
}

// Supported knowledge backends.
const (
	BackendWikipedia = "wikipedia"
	BackendNeo4j     = "neo4j"
)

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 75 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10

	defaultBaseURL        = "https://en.wikipedia.org/w/api.php"
	defaultUserAgent      = "linktrace/1.0 (+https://linktrace.local; contact: support@linktrace.local)"
	defaultRequestTimeout = 15 * time.Second
	defaultRetries        = 2
	defaultRetryBaseDelay = 300 * time.Millisecond
	defaultMaxLinks       = 200
	defaultMaxLinkPages   = 3

	defaultMaxDepth      = 7
	defaultSearchTimeout = 10 * time.Second
	defaultPacing        = 30 * time.Millisecond
	defaultMaxDepthLimit = 10
	defaultTimeoutLimit  = 60 * time.Second
)

// ErrInvalidConfig wraps every validation failure returned by Load.
var ErrInvalidConfig = errors.New("invalid config")

// SetDefaults registers every key with its default so environment overrides
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", defaultHost)
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.read_timeout", defaultReadTimeout)
	v.SetDefault("server.write_timeout", defaultWriteTimeout)
	v.SetDefault("server.idle_timeout", defaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.metrics_enabled", false)
	v.SetDefault("server.allowed_origins", "*")

	v.SetDefault("graph.uri", "")
	v.SetDefault("graph.database", "")
	v.SetDefault("graph.username", "")
	v.SetDefault("graph.password", "")
	v.SetDefault("graph.max_connections", defaultGraphMaxSessions)

	v.SetDefault("log.level", defaultLoggingLevel)
	v.SetDefault("log.format", defaultLoggingFormat)
	v.SetDefault("log.color", false)
	v.SetDefault("log.include_caller", false)

	v.SetDefault("knowledge.backend", BackendWikipedia)
	v.SetDefault("knowledge.base_url", defaultBaseURL)
	v.SetDefault("knowledge.user_agent", defaultUserAgent)
	v.SetDefault("knowledge.request_timeout", defaultRequestTimeout)
	v.SetDefault("knowledge.retries", defaultRetries)
	v.SetDefault("knowledge.retry_base_delay", defaultRetryBaseDelay)
	v.SetDefault("knowledge.requests_per_second", 0.0)
	v.SetDefault("knowledge.breaker_enabled", false)
	v.SetDefault("knowledge.max_links", defaultMaxLinks)
	v.SetDefault("knowledge.max_link_pages", defaultMaxLinkPages)

	v.SetDefault("search.max_depth", defaultMaxDepth)
	v.SetDefault("search.timeout", defaultSearchTimeout)
	v.SetDefault("search.pacing", defaultPacing)
	v.SetDefault("search.max_depth_limit", defaultMaxDepthLimit)
	v.SetDefault("search.timeout_limit", defaultTimeoutLimit)
	v.SetDefault("search.strict", false)
}

// SetupEnv maps keys to environment variables: server.port -> SERVER_PORT,
// log.level -> LOG_LEVEL, knowledge.max_links -> KNOWLEDGE_MAX_LINKS.
func SetupEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the optional file at path with environment
// variable overrides, applying defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that would otherwise fail at runtime.
func (c Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: port %d is out of range", ErrInvalidConfig, c.HTTP.Port)
	}
	switch c.Knowledge.Backend {
	case BackendWikipedia:
		if c.Knowledge.BaseURL == "" {
			return fmt.Errorf("%w: knowledge.base_url is required", ErrInvalidConfig)
		}
	case BackendNeo4j:
		if c.Graph.URI == "" {
			return fmt.Errorf("%w: GRAPH_URI is required for the neo4j backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown knowledge backend %q", ErrInvalidConfig, c.Knowledge.Backend)
	}
	if c.Knowledge.Retries < 0 {
		return fmt.Errorf("%w: knowledge.retries must not be negative", ErrInvalidConfig)
	}
	if c.Knowledge.MaxLinks <= 0 {
		return fmt.Errorf("%w: knowledge.max_links must be positive", ErrInvalidConfig)
	}
	if c.Search.MaxDepth <= 0 || c.Search.MaxDepthLimit < c.Search.MaxDepth {
		return fmt.Errorf("%w: search.max_depth must be in [1, %d]", ErrInvalidConfig, c.Search.MaxDepthLimit)
	}
	if c.Search.Timeout <= 0 || c.Search.TimeoutLimit < c.Search.Timeout {
		return fmt.Errorf("%w: search.timeout must be in (0, %s]", ErrInvalidConfig, c.Search.TimeoutLimit)
	}
	if c.Search.Pacing < 0 {
		return fmt.Errorf("%w: search.pacing must not be negative", ErrInvalidConfig)
	}
	return nil
}

// AllowedOrigins splits the comma separated origin list.
func (c HTTPConfig) AllowedOrigins() []string {
	if c.AllowedOriginsCSV == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(c.AllowedOriginsCSV, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
