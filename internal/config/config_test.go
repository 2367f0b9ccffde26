package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/examscheduling/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("YAML file with defaults", func(t *testing.T) {
		//** Arrange
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := `input:
  enrollments: "classlist.csv"
  rooms: "classrooms.csv"
  blocked: "TIT101 Monday 09.00 60"
annealing:
  seed: 42
  restarts: 4
cost:
  mode: "conflict"
logging:
  level: "debug"
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		//** Act
		cfg, err := Load(path)

		//** Assert
		require.NoError(t, err)
		checks := []struct {
			name string
			got  any
			want any
		}{
			{"enrollments", cfg.Input.Enrollments, "classlist.csv"},
			{"rooms", cfg.Input.Rooms, "classrooms.csv"},
			{"blocked", cfg.Input.Blocked, "TIT101 Monday 09.00 60"},
			{"delimiter", cfg.Input.Delimiter, ","},
			{"seed", cfg.Annealing.Seed, uint64(42)},
			{"restarts", cfg.Annealing.Restarts, 4},
			{"temp_max", cfg.Annealing.TempMax, 1.0 / 3.0},
			{"cooling_rate", cfg.Annealing.CoolingRate, 0.95},
			{"iterations_per_temperature", cfg.Annealing.IterationsPerTemperature, 10},
			{"overflow_day_iteration_threshold", cfg.Annealing.OverflowDayIterationThreshold, 1000},
			{"mode", cfg.Cost.Mode, "conflict"},
			{"level", cfg.Logging.Level, "debug"},
			{"format", cfg.Logging.Format, "json"},
		}
		for _, check := range checks {
			assert.Equal(t, check.want, check.got, check.name)
		}
	})

	t.Run("JSON file with environment overrides", func(t *testing.T) {
		//** Arrange
		path := filepath.Join(t.TempDir(), "config.json")
		data := `{"annealing": {"seed": 1, "temp_max": 0.5}}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		t.Setenv("EXAMSCHED_ANNEALING__SEED", "9")
		t.Setenv("EXAMSCHED_COST__MODE", "simple")

		//** Act
		cfg, err := Load(path)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(9), cfg.Annealing.Seed)
		assert.Equal(t, 0.5, cfg.Annealing.TempMax)
		assert.Equal(t, "simple", cfg.Cost.Mode)
	})

	t.Run("No file", func(t *testing.T) {
		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("Unsupported format", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "config.toml"))

		assert.ErrorContains(t, err, "unsupported config format")
	})

	t.Run("Invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := `annealing:
  cooling_rate: 1.5
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		_, err := Load(path)

		assert.ErrorContains(t, err, "invalid configuration")
	})
}

func TestParameters(t *testing.T) {
	//** Arrange
	cfg := Default()
	cfg.Annealing.DisableOverflowDay = true
	cfg.Cost.Mode = "conflict-aware"
	cfg.Cost.BlockedOverlaps = true

	//** Act
	params, err := cfg.Parameters()

	//** Assert
	require.NoError(t, err)
	assert.False(t, params.OverflowDay)
	assert.Equal(t, model.CostConflictAware, params.Mode)
	assert.True(t, params.BlockedOverlaps)
	assert.Equal(t, model.DefaultAnnealingParameters().MaxIterations, params.MaxIterations)
	assert.NoError(t, params.Validate())
}
