package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the lapmatch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Recommend RecommendConfig `yaml:"recommend"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CacheConfig holds the Redis result cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings. Used by the redis catalog
// source, the result cache and the import tool.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	BatchSize int    `yaml:"batch_size"`
}

// Catalog sources.
const (
	SourceFile  = "file"
	SourceRedis = "redis"
)

// CatalogConfig selects where the catalog is loaded from.
type CatalogConfig struct {
	Source string `yaml:"source"` // file (default), redis
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // csv, parquet; empty infers from the extension
}

// FeatureConfig is one weighted dimension of the feature vector.
type FeatureConfig struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// RangeConfig is an inclusive numeric interval.
type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// BoundsConfig holds the domain limits a preference must lie within.
type BoundsConfig struct {
	Price       RangeConfig `yaml:"price"`
	Performance RangeConfig `yaml:"performance"`
	Portability RangeConfig `yaml:"portability"`
}

// RecommendConfig holds clustering and filtering heuristics.
type RecommendConfig struct {
	Clusters      int             `yaml:"clusters"`
	Seed          uint64          `yaml:"seed"`
	MaxIterations int             `yaml:"max_iterations"`
	Features      []FeatureConfig `yaml:"features"`

	MinViableCandidates int `yaml:"min_viable_candidates"`
	SmallCandidateCount int `yaml:"small_candidate_count"`
	MaxResults          int `yaml:"max_results"`

	PriceRelaxFraction     float64 `yaml:"price_relax_fraction"`
	PerformanceRelaxMargin float64 `yaml:"performance_relax_margin"`
	PortabilityRelaxMargin float64 `yaml:"portability_relax_margin"`

	ScreenTolerance      float64 `yaml:"screen_tolerance"`
	LargeScreenTolerance float64 `yaml:"large_screen_tolerance"`
	LargeScreenThreshold float64 `yaml:"large_screen_threshold"`

	CrossClusterSimilarity float64 `yaml:"cross_cluster_similarity"`

	Bounds BoundsConfig `yaml:"bounds"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "lapmatch:"
	}
	if c.Storage.BatchSize <= 0 {
		c.Storage.BatchSize = 500
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = SourceFile
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	c.Recommend.applyDefaults()
}

func (r *RecommendConfig) applyDefaults() {
	if r.Clusters <= 0 {
		r.Clusters = 5
	}
	if r.Seed == 0 {
		r.Seed = 42
	}
	if r.MaxIterations <= 0 {
		r.MaxIterations = 100
	}
	if r.MinViableCandidates <= 0 {
		r.MinViableCandidates = 20
	}
	if r.SmallCandidateCount <= 0 {
		r.SmallCandidateCount = 10
	}
	if r.MaxResults <= 0 {
		r.MaxResults = 10
	}
	if r.PriceRelaxFraction <= 0 {
		r.PriceRelaxFraction = 0.2
	}
	if r.PerformanceRelaxMargin <= 0 {
		r.PerformanceRelaxMargin = 10
	}
	if r.PortabilityRelaxMargin <= 0 {
		r.PortabilityRelaxMargin = 20
	}
	if r.ScreenTolerance <= 0 {
		r.ScreenTolerance = 0.5
	}
	if r.LargeScreenTolerance <= 0 {
		r.LargeScreenTolerance = 1.0
	}
	if r.LargeScreenThreshold <= 0 {
		r.LargeScreenThreshold = 17
	}
	if r.CrossClusterSimilarity <= 0 {
		r.CrossClusterSimilarity = 50
	}
	if r.Bounds.Price == (RangeConfig{}) {
		r.Bounds.Price = RangeConfig{Min: 15990, Max: 301990}
	}
	if r.Bounds.Performance == (RangeConfig{}) {
		r.Bounds.Performance = RangeConfig{Min: 0, Max: 100}
	}
	if r.Bounds.Portability == (RangeConfig{}) {
		r.Bounds.Portability = RangeConfig{Min: 0, Max: 100}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the file source")
		}
	case SourceRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis source")
		}
	default:
		return fmt.Errorf("catalog.source must be %q or %q, got %q", SourceFile, SourceRedis, c.Catalog.Source)
	}
	if c.Cache.Enabled && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required when cache is enabled")
	}
	switch c.Catalog.Format {
	case "", "csv", "parquet":
	default:
		return fmt.Errorf("catalog.format must be \"csv\" or \"parquet\", got %q", c.Catalog.Format)
	}
	return c.Recommend.validate()
}

func (r *RecommendConfig) validate() error {
	if r.PriceRelaxFraction > 1 {
		return fmt.Errorf("recommend.price_relax_fraction must be at most 1, got %g", r.PriceRelaxFraction)
	}
	if r.CrossClusterSimilarity > 100 {
		return fmt.Errorf("recommend.cross_cluster_similarity must be at most 100, got %g", r.CrossClusterSimilarity)
	}
	for name, b := range map[string]RangeConfig{
		"price":       r.Bounds.Price,
		"performance": r.Bounds.Performance,
		"portability": r.Bounds.Portability,
	} {
		if b.Min < 0 || b.Max < b.Min {
			return fmt.Errorf("recommend.bounds.%s must satisfy 0 <= min <= max, got [%g, %g]", name, b.Min, b.Max)
		}
	}
	for i, f := range r.Features {
		if f.Name == "" {
			return fmt.Errorf("recommend.features[%d].name is required", i)
		}
		if f.Weight <= 0 {
			return fmt.Errorf("recommend.features[%d].weight must be positive, got %g", i, f.Weight)
		}
	}
	return nil
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

// UsesDatabase reports whether the server needs a Redis connection.
func (c *Config) UsesDatabase() bool {
	return c.Catalog.Source == SourceRedis || c.Cache.Enabled
}
