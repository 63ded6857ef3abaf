package infra

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"mmprofiler/internal/domain"
)

// Config holds every application setting. Values load from YAML and can be
// overridden through environment variables afterwards.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Path struct {
		InitPrice float64 `yaml:"init_price"`
		Drift     float64 `yaml:"drift"`
		Sigma     float64 `yaml:"sigma"`
		NumSteps  int     `yaml:"num_steps"`
		Dt        float64 `yaml:"dt"`
		Seed      uint64  `yaml:"seed"`
	} `yaml:"path"`

	Maker struct {
		Kind            string  `yaml:"kind"`
		InitMidPrice    float64 `yaml:"init_mid_price"`
		TickSize        float64 `yaml:"tick_size"`
		NumBids         int     `yaml:"num_bids"`
		BidSize         float64 `yaml:"bid_size"`
		NumAsks         int     `yaml:"num_asks"`
		AskSize         float64 `yaml:"ask_size"`
		NumOneWayOffers int     `yaml:"num_one_way_offers"`
		TickInterval    float64 `yaml:"tick_interval"`
		SeedInventory   bool    `yaml:"seed_inventory"`
		Notional        float64 `yaml:"notional"`
	} `yaml:"maker"`

	Option struct {
		Strike    float64 `yaml:"strike"`
		Rate      float64 `yaml:"rate"`
		Sigma     float64 `yaml:"sigma"`
		Maturity  float64 `yaml:"maturity"`
		Contracts float64 `yaml:"contracts"`
	} `yaml:"option"`

	MonteCarlo struct {
		NumRuns int    `yaml:"num_runs"`
		Label   string `yaml:"label"`
	} `yaml:"montecarlo"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		DSN       string `yaml:"dsn"`
		ReportDir string `yaml:"report_dir"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Maker kinds accepted in configuration.
const (
	MakerKindStrip       = "strip"
	MakerKindDelta       = "delta"
	MakerKindReplication = "replication"
)

// LoadConfig reads and parses the configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Path.InitPrice <= 0 {
		return &domain.ConfigError{Field: "path.init_price", Err: fmt.Errorf("must be positive, got %g", c.Path.InitPrice)}
	}
	if c.Path.NumSteps <= 0 {
		return &domain.ConfigError{Field: "path.num_steps", Err: fmt.Errorf("must be positive, got %d", c.Path.NumSteps)}
	}
	if c.Path.Dt <= 0 {
		return &domain.ConfigError{Field: "path.dt", Err: fmt.Errorf("must be positive, got %g", c.Path.Dt)}
	}

	switch c.Maker.Kind {
	case MakerKindStrip:
		if c.Maker.TickSize <= 0 {
			return &domain.ConfigError{Field: "maker.tick_size", Err: fmt.Errorf("must be positive, got %g", c.Maker.TickSize)}
		}
	case MakerKindDelta, MakerKindReplication:
		if c.Maker.TickInterval <= 0 {
			return &domain.ConfigError{Field: "maker.tick_interval", Err: fmt.Errorf("must be positive, got %g", c.Maker.TickInterval)}
		}
		if c.Maker.NumOneWayOffers <= 0 {
			return &domain.ConfigError{Field: "maker.num_one_way_offers", Err: fmt.Errorf("must be positive, got %d", c.Maker.NumOneWayOffers)}
		}
	default:
		return &domain.ConfigError{Field: "maker.kind", Err: fmt.Errorf("unknown kind %q", c.Maker.Kind)}
	}

	if c.Maker.Kind == MakerKindDelta && c.Maker.Notional <= 0 {
		return &domain.ConfigError{Field: "maker.notional", Err: fmt.Errorf("must be positive, got %g", c.Maker.Notional)}
	}
	if c.Maker.Kind == MakerKindReplication && c.Option.Maturity <= 0 {
		return &domain.ConfigError{Field: "option.maturity", Err: fmt.Errorf("must be positive, got %g", c.Option.Maturity)}
	}
	if c.MonteCarlo.NumRuns < 0 {
		return &domain.ConfigError{Field: "montecarlo.num_runs", Err: fmt.Errorf("must not be negative, got %d", c.MonteCarlo.NumRuns)}
	}

	return nil
}

// overrideWithEnv replaces settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if dsn := os.Getenv("MMPROFILER_DSN"); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if addr := os.Getenv("MMPROFILER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("MMPROFILER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if seed := os.Getenv("MMPROFILER_SEED"); seed != "" {
		if v, err := strconv.ParseUint(seed, 10, 64); err == nil {
			cfg.Path.Seed = v
		}
	}
}
