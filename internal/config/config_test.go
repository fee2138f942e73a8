package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Catalog: CatalogConfig{Path: "data/laptops.csv"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Catalog(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"file without path", func(c *Config) { c.Catalog.Path = "" }, "catalog.path is required"},
		{"redis without addrs", func(c *Config) { c.Catalog.Source = SourceRedis }, "database.addrs is required"},
		{"redis with addrs", func(c *Config) {
			c.Catalog.Source = SourceRedis
			c.Database.Addrs = []string{"localhost:6379"}
		}, ""},
		{"unknown source", func(c *Config) { c.Catalog.Source = "s3" }, `got "s3"`},
		{"unknown format", func(c *Config) { c.Catalog.Format = "xlsx" }, `got "xlsx"`},
		{"parquet format", func(c *Config) { c.Catalog.Format = "parquet" }, ""},
		{"cache without addrs", func(c *Config) { c.Cache.Enabled = true }, "required when cache is enabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_Recommend(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *RecommendConfig)
		wantErr string
	}{
		{"relax fraction above one", func(r *RecommendConfig) { r.PriceRelaxFraction = 1.5 }, "price_relax_fraction"},
		{"similarity above 100", func(r *RecommendConfig) { r.CrossClusterSimilarity = 120 }, "cross_cluster_similarity"},
		{"inverted bounds", func(r *RecommendConfig) { r.Bounds.Price = RangeConfig{Min: 100, Max: 10} }, "recommend.bounds.price"},
		{"unnamed feature", func(r *RecommendConfig) { r.Features = []FeatureConfig{{Weight: 1}} }, "features[0].name"},
		{"zero weight", func(r *RecommendConfig) {
			r.Features = []FeatureConfig{{Name: "price", Weight: 0}}
		}, "features[0].weight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Recommend)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.KeyPrefix != "lapmatch:" {
		t.Errorf("expected KeyPrefix='lapmatch:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Catalog.Source != SourceFile {
		t.Errorf("expected Source=%q, got %q", SourceFile, cfg.Catalog.Source)
	}
	if cfg.Cache.Enabled || cfg.Cache.TTLSec != 300 {
		t.Errorf("cache defaults = %+v", cfg.Cache)
	}
	if cfg.UsesDatabase() {
		t.Error("file source without cache must not need a database")
	}

	r := cfg.Recommend
	if r.Clusters != 5 || r.Seed != 42 || r.MaxIterations != 100 {
		t.Errorf("clustering defaults = %d/%d/%d", r.Clusters, r.Seed, r.MaxIterations)
	}
	if r.MinViableCandidates != 20 || r.SmallCandidateCount != 10 || r.MaxResults != 10 {
		t.Errorf("threshold defaults = %d/%d/%d", r.MinViableCandidates, r.SmallCandidateCount, r.MaxResults)
	}
	if r.PriceRelaxFraction != 0.2 || r.PerformanceRelaxMargin != 10 || r.PortabilityRelaxMargin != 20 {
		t.Errorf("relaxation defaults = %v/%v/%v", r.PriceRelaxFraction, r.PerformanceRelaxMargin, r.PortabilityRelaxMargin)
	}
	if r.Bounds.Price != (RangeConfig{Min: 15990, Max: 301990}) {
		t.Errorf("price bounds = %+v", r.Bounds.Price)
	}
	if r.CrossClusterSimilarity != 50 {
		t.Errorf("expected CrossClusterSimilarity=50, got %v", r.CrossClusterSimilarity)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:  DatabaseConfig{ReadinessTimeout: 15},
		Storage:   StorageConfig{KeyPrefix: "custom:"},
		Catalog:   CatalogConfig{Source: SourceRedis},
		Recommend: RecommendConfig{Clusters: 8, MinViableCandidates: 30, CrossClusterSimilarity: 40},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Catalog.Source != SourceRedis {
		t.Errorf("expected Source=%q, got %q", SourceRedis, cfg.Catalog.Source)
	}
	if cfg.Recommend.Clusters != 8 || cfg.Recommend.MinViableCandidates != 30 || cfg.Recommend.CrossClusterSimilarity != 40 {
		t.Errorf("recommend overrides lost: %+v", cfg.Recommend)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o750); err != nil {
		t.Fatal(err)
	}
	yaml := `
http:
  port: ${LAPMATCH_TEST_PORT:-9090}
catalog:
  path: ${LAPMATCH_TEST_CATALOG}
recommend:
  clusters: 7
  features:
    - name: price
      weight: 1.5
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unit.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LAPMATCH_TEST_CATALOG", "/data/laptops.parquet")
	t.Chdir(dir)

	cfg, err := Load("unit")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want default 9090", cfg.HTTP.Port)
	}
	if cfg.Catalog.Path != "/data/laptops.parquet" {
		t.Errorf("path = %q", cfg.Catalog.Path)
	}
	if cfg.Recommend.Clusters != 7 || len(cfg.Recommend.Features) != 1 || cfg.Recommend.Features[0].Weight != 1.5 {
		t.Errorf("recommend = %+v", cfg.Recommend)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LAPMATCH_A", "x")
	got := string(expandEnvVars([]byte("a=${LAPMATCH_A} b=${LAPMATCH_UNSET:-y} c=${LAPMATCH_UNSET}")))
	if got != "a=x b=y c=" {
		t.Errorf("expandEnvVars = %q", got)
	}
}
