package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mmprofiler/internal/domain"
)

const sampleYAML = `
app:
  name: mmprofiler
  version: "1.0"
path:
  init_price: 100
  drift: 0.0
  sigma: 0.2
  num_steps: 250
  dt: 0.004
  seed: 42
maker:
  kind: strip
  init_mid_price: 100
  tick_size: 1
  num_bids: 5
  bid_size: 1
  num_asks: 5
  ask_size: 1
montecarlo:
  num_runs: 10
  label: strip
server:
  addr: ":8080"
storage:
  dsn: mmprofiler.db
  report_dir: reports
logging:
  level: info
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.App.Name != "mmprofiler" {
		t.Errorf("unexpected app name %q", cfg.App.Name)
	}
	if cfg.Path.NumSteps != 250 || cfg.Path.Seed != 42 {
		t.Errorf("unexpected path config: %+v", cfg.Path)
	}
	if cfg.Maker.Kind != MakerKindStrip || cfg.Maker.TickSize != 1 {
		t.Errorf("unexpected maker config: %+v", cfg.Maker)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected server addr %q", cfg.Server.Addr)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MMPROFILER_DSN", "override.db")
	t.Setenv("MMPROFILER_SEED", "99")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Storage.DSN != "override.db" {
		t.Errorf("DSN override not applied: %q", cfg.Storage.DSN)
	}
	if cfg.Path.Seed != 99 {
		t.Errorf("seed override not applied: %d", cfg.Path.Seed)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero init price", func(c *Config) { c.Path.InitPrice = 0 }, "path.init_price"},
		{"zero steps", func(c *Config) { c.Path.NumSteps = 0 }, "path.num_steps"},
		{"zero dt", func(c *Config) { c.Path.Dt = 0 }, "path.dt"},
		{"unknown maker kind", func(c *Config) { c.Maker.Kind = "martingale" }, "maker.kind"},
		{"strip without tick size", func(c *Config) { c.Maker.TickSize = 0 }, "maker.tick_size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, sampleYAML))
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			tc.mutate(cfg)

			err = cfg.Validate()
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, cfgErr.Field)
			}
		})
	}
}

func TestValidateDeltaMaker(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg.Maker.Kind = MakerKindDelta
	cfg.Maker.TickInterval = 0.5
	cfg.Maker.NumOneWayOffers = 5
	cfg.Maker.Notional = 10000

	if err := cfg.Validate(); err != nil {
		t.Errorf("valid delta config rejected: %v", err)
	}

	cfg.Maker.NumOneWayOffers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("delta maker without levels should be rejected")
	}
}
