package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/indexer"
)

// Backend types.
const (
	BackendSolr       = "solr"
	BackendRediSearch = "redisearch"
	BackendBleve      = "bleve"
	BackendPostgres   = "postgres"
)

// Config holds the advsearch service configuration.
type Config struct {
	HTTP     HTTPConfig      `yaml:"http"`
	Auth     AuthConfig      `yaml:"auth"`
	Search   SearchConfig    `yaml:"search"`
	Backends []BackendConfig `yaml:"backends"`
	Logging  LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig maps API keys to the permissions they grant.
// With no keys every caller holds every permission.
type AuthConfig struct {
	Keys []KeyConfig `yaml:"keys"`
}

// KeyConfig is one API key.
type KeyConfig struct {
	Key         string   `yaml:"key"`
	Permissions []string `yaml:"permissions"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SearchConfig holds coordinator settings.
type SearchConfig struct {
	DefaultPerPage    int      `yaml:"default_per_page"`
	BackendTimeoutSec int      `yaml:"backend_timeout_sec"`
	MenuLabel         string   `yaml:"menu_label"`
	TicketStatuses    []string `yaml:"ticket_statuses"`
	EnabledStatuses   []string `yaml:"enabled_statuses"`
	BaseURL           string   `yaml:"base_url"`
}

// BackendConfig describes one registered search backend.
type BackendConfig struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"` // solr, redisearch, bleve, postgres
	URL        string         `yaml:"url"`  // solr
	Addrs      []string       `yaml:"addrs"`
	Password   string         `yaml:"password"`
	Path       string         `yaml:"path"` // bleve
	DSN        string         `yaml:"dsn"`  // postgres
	TimeoutSec int            `yaml:"timeout_sec"`
	Cache      CacheConfig    `yaml:"cache"`
	Indexing   IndexingConfig `yaml:"indexing"`
}

// CacheConfig enables the query cache of a backend when Size > 0.
type CacheConfig struct {
	Size   int `yaml:"size"`
	TTLSec int `yaml:"ttl_sec"`
}

// IndexingConfig selects synchronous or asynchronous indexing.
type IndexingConfig struct {
	Async            bool `yaml:"async"`
	QueueSize        int  `yaml:"queue_size"`
	ShortIntervalSec int  `yaml:"short_interval_sec"`
	LongIntervalSec  int  `yaml:"long_interval_sec"`
	FailureThreshold int  `yaml:"failure_threshold"`
	MaxAttempts      int  `yaml:"max_attempts"`
}

// Indexer converts the section to indexer settings.
func (c IndexingConfig) Indexer() indexer.Config {
	cfg := indexer.Config{
		Async:            c.Async,
		QueueSize:        c.QueueSize,
		ShortInterval:    time.Duration(c.ShortIntervalSec) * time.Second,
		LongInterval:     time.Duration(c.LongIntervalSec) * time.Second,
		FailureThreshold: c.FailureThreshold,
		MaxAttempts:      c.MaxAttempts,
	}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.DefaultPerPage <= 0 {
		c.Search.DefaultPerPage = 15
	}
	if c.Search.BackendTimeoutSec <= 0 {
		c.Search.BackendTimeoutSec = 5
	}
	if c.Search.MenuLabel == "" {
		c.Search.MenuLabel = "Advanced Search"
	}
	if c.Search.TicketStatuses == nil {
		c.Search.TicketStatuses = []string{"new", "assigned", "reopened", "closed"}
	}
	if c.Search.EnabledStatuses == nil {
		c.Search.EnabledStatuses = []string{"new", "assigned", "reopened"}
	}
	for i := range c.Backends {
		b := &c.Backends[i]
		if b.Name == "" {
			b.Name = b.Type
		}
		if b.TimeoutSec <= 0 {
			b.TimeoutSec = 30
		}
		if b.Cache.Size > 0 && b.Cache.TTLSec <= 0 {
			b.Cache.TTLSec = 30
		}
	}
}

// Validate checks the settings the process needs to start. A single backend's
// settings are checked when it is opened, so one broken backend is skipped
// instead of failing the load.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	for i, k := range c.Auth.Keys {
		if k.Key == "" {
			return fmt.Errorf("auth.keys[%d].key is required", i)
		}
		for _, p := range k.Permissions {
			if p != domain.PermSearchView && p != domain.PermIndexWrite {
				return fmt.Errorf("auth.keys[%d]: unknown permission %q", i, p)
			}
		}
	}

	seen := map[string]bool{}
	for i, b := range c.Backends {
		if seen[b.Name] {
			return fmt.Errorf("backends[%d]: duplicate name %q: %w", i, b.Name, domain.ErrConfiguration)
		}
		seen[b.Name] = true
	}
	return nil
}

// Validate checks that the backend carries the settings its type requires.
// Errors wrap domain.ErrConfiguration.
func (b *BackendConfig) Validate() error {
	var missing string
	switch b.Type {
	case BackendSolr:
		if b.URL == "" {
			missing = "url"
		}
	case BackendRediSearch:
		if len(b.Addrs) == 0 {
			missing = "addrs"
		}
	case BackendBleve:
		if b.Path == "" {
			missing = "path"
		}
	case BackendPostgres:
		if b.DSN == "" {
			missing = "dsn"
		}
	default:
		return fmt.Errorf("%s: unknown type %q: %w", b.Name, b.Type, domain.ErrConfiguration)
	}
	if missing != "" {
		return fmt.Errorf("%s: %s is required for %s backends: %w", b.Name, missing, b.Type, domain.ErrConfiguration)
	}
	return nil
}

// Timeout returns the backend request timeout.
func (b *BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
