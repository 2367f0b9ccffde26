package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/limaJavier/examscheduling/pkg/model"
)

const EnvPrefix = "EXAMSCHED_"

type Config struct {
	Input     InputConfig     `json:"input"`
	Annealing AnnealingConfig `json:"annealing"`
	Cost      CostConfig      `json:"cost"`
	Output    OutputConfig    `json:"output"`
	Logging   LoggingConfig   `json:"logging"`
	Metrics   MetricsConfig   `json:"metrics"`
}

type InputConfig struct {
	// Enrollments and Rooms are CSV files; File is a JSON document holding both
	Enrollments string `json:"enrollments"`
	Rooms       string `json:"rooms"`
	File        string `json:"file"`
	Delimiter   string `json:"delimiter" validate:"len=1"`
	// Blocked is the blocked-hours directive, "s" or empty for none
	Blocked string `json:"blocked"`
}

type AnnealingConfig struct {
	TempMax                       float64 `json:"temp_max" validate:"gt=0"`
	TempMin                       float64 `json:"temp_min" validate:"gte=0,ltefield=TempMax"`
	CoolingRate                   float64 `json:"cooling_rate" validate:"gt=0,lt=1"`
	IterationsPerTemperature      int     `json:"iterations_per_temperature" validate:"gt=0"`
	K                             float64 `json:"k" validate:"gt=0"`
	DisableOverflowDay            bool    `json:"disable_overflow_day"`
	OverflowDayIterationThreshold int     `json:"overflow_day_iteration_threshold" validate:"gte=0"`
	MaxIterations                 int     `json:"max_iterations" validate:"gte=0"`
	Seed                          uint64  `json:"seed"`
	Restarts                      int     `json:"restarts" validate:"gte=1,lte=256"`
	ProgressEvery                 int     `json:"progress_every" validate:"gte=0"`
}

type CostConfig struct {
	Mode            string `json:"mode" validate:"oneof=simple conflict conflict-aware"`
	BlockedOverlaps bool   `json:"blocked_overlaps"`
}

type OutputConfig struct {
	CSV  string `json:"csv"`
	PDF  string `json:"pdf"`
	Text string `json:"text"` // Empty writes the table to stdout
}

type LoggingConfig struct {
	Level  string `json:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" validate:"oneof=json console"`
}

type MetricsConfig struct {
	// File receives the Prometheus text exposition once the run is over
	File string `json:"file"`
}

// Load reads the YAML or JSON file at path, if any, then applies environment
// overrides such as EXAMSCHED_ANNEALING__SEED=7.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when neither a file nor the environment say otherwise
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every zero field. TempMin defaults to 0, its zero value.
func (c *Config) SetDefaults() {
	defaults := model.DefaultAnnealingParameters()
	if c.Input.Delimiter == "" {
		c.Input.Delimiter = ","
	}
	if c.Annealing.TempMax == 0 {
		c.Annealing.TempMax = defaults.TempMax
	}
	if c.Annealing.CoolingRate == 0 {
		c.Annealing.CoolingRate = defaults.CoolingRate
	}
	if c.Annealing.IterationsPerTemperature == 0 {
		c.Annealing.IterationsPerTemperature = defaults.IterationsPerTemperature
	}
	if c.Annealing.K == 0 {
		c.Annealing.K = defaults.K
	}
	if c.Annealing.OverflowDayIterationThreshold == 0 {
		c.Annealing.OverflowDayIterationThreshold = defaults.OverflowDayIterationThreshold
	}
	if c.Annealing.MaxIterations == 0 {
		c.Annealing.MaxIterations = defaults.MaxIterations
	}
	if c.Annealing.Restarts == 0 {
		c.Annealing.Restarts = 1
	}
	if c.Cost.Mode == "" {
		c.Cost.Mode = defaults.Mode.String()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Parameters converts the annealing and cost sections into search parameters
func (c Config) Parameters() (model.AnnealingParameters, error) {
	mode, err := model.ParseCostMode(c.Cost.Mode)
	if err != nil {
		return model.AnnealingParameters{}, err
	}
	return model.AnnealingParameters{
		TempMax:                       c.Annealing.TempMax,
		TempMin:                       c.Annealing.TempMin,
		CoolingRate:                   c.Annealing.CoolingRate,
		IterationsPerTemperature:      c.Annealing.IterationsPerTemperature,
		K:                             c.Annealing.K,
		OverflowDay:                   !c.Annealing.DisableOverflowDay,
		OverflowDayIterationThreshold: c.Annealing.OverflowDayIterationThreshold,
		MaxIterations:                 c.Annealing.MaxIterations,
		Seed:                          c.Annealing.Seed,
		Mode:                          mode,
		BlockedOverlaps:               c.Cost.BlockedOverlaps,
		ProgressEvery:                 c.Annealing.ProgressEvery,
	}, nil
}
