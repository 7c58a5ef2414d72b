package config

import (
	"os"
	"runtime"
	"strconv"

	"tdcov/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
// It is built once by the CLI and passed by value into every pipeline stage.
type Config struct {
	Paths       PathConfig        `yaml:"paths"`
	Selection   SelectionConfig   `yaml:"selection"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Output      OutputConfig      `yaml:"output"`
	LogLevel    string            `yaml:"log_level"`
}

// PathConfig holds the simulation directory layout produced by the fitting stages
type PathConfig struct {
	SimulationDir      string `yaml:"simulation_dir"`
	EstimatorGlob      string `yaml:"estimator_glob"`
	MockRunGlob        string `yaml:"mock_run_glob"`
	MarginalisationDir string `yaml:"marginalisation_dir"`
	GroupsUsedFile     string `yaml:"groups_used_file"`
	GroupsAllFile      string `yaml:"groups_all_file"`
}

// SelectionConfig holds the markers used to parse group names
type SelectionConfig struct {
	CombinedMarker   string `yaml:"combined_marker"`
	SplineMarker     string `yaml:"spline_marker"`
	PolynomialMarker string `yaml:"polynomial_marker"`
}

// CalibrationConfig holds the clip-sigma search settings
type CalibrationConfig struct {
	SigmaLower       float64 `yaml:"sigma_lower"`
	SigmaUpper       float64 `yaml:"sigma_upper"`
	Tolerance        float64 `yaml:"tolerance"`
	MaxIterations    int     `yaml:"max_iterations"`
	DefaultClipSigma float64 `yaml:"default_clip_sigma"`
	PercentileLow    float64 `yaml:"percentile_low"`
	PercentileHigh   float64 `yaml:"percentile_high"`
	Workers          int     `yaml:"workers"`
}

// OutputConfig toggles the optional artifacts written next to the covariance matrix
type OutputConfig struct {
	ExcelExport bool `yaml:"excel_export"`
	Report      bool `yaml:"report"`
	HTMLReport  bool `yaml:"html_report"`
}

// Default returns the configuration matching the layout of the upstream fitting pipeline
func Default() Config {
	return Config{
		Paths: PathConfig{
			SimulationDir:      "Simulation",
			EstimatorGlob:      "spl1*",
			MockRunGlob:        "sims_mocks*opt*",
			MarginalisationDir: "marginalisation_spline",
			GroupsUsedFile:     "marginalisation_spline_sigma_0.50_groups_used_in_combined.json",
			GroupsAllFile:      "marginalisation_spline_sigma_0.50_groups.json",
		},
		Selection: SelectionConfig{
			CombinedMarker:   "combined",
			SplineMarker:     "nmlspl_",
			PolynomialMarker: "degree_",
		},
		Calibration: CalibrationConfig{
			SigmaLower:       2.0,
			SigmaUpper:       5.0,
			Tolerance:        1e-2,
			MaxIterations:    100,
			DefaultClipSigma: 3.5,
			PercentileLow:    16,
			PercentileHigh:   84,
			Workers:          runtime.NumCPU(),
		},
		Output: OutputConfig{
			Report: true,
		},
		LogLevel: "INFO",
	}
}

// Load reads an optional YAML file on top of the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to parse config file %s", path)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Paths.SimulationDir = getEnvOrDefault("TDCOV_SIMULATION_DIR", cfg.Paths.SimulationDir)
	cfg.Paths.EstimatorGlob = getEnvOrDefault("TDCOV_ESTIMATOR_GLOB", cfg.Paths.EstimatorGlob)
	cfg.Paths.MockRunGlob = getEnvOrDefault("TDCOV_MOCK_RUN_GLOB", cfg.Paths.MockRunGlob)

	cfg.Calibration.SigmaLower = getEnvFloatOrDefault("TDCOV_SIGMA_LOWER", cfg.Calibration.SigmaLower)
	cfg.Calibration.SigmaUpper = getEnvFloatOrDefault("TDCOV_SIGMA_UPPER", cfg.Calibration.SigmaUpper)
	cfg.Calibration.DefaultClipSigma = getEnvFloatOrDefault("TDCOV_DEFAULT_CLIP_SIGMA", cfg.Calibration.DefaultClipSigma)
	cfg.Calibration.Workers = getEnvIntOrDefault("TDCOV_WORKERS", cfg.Calibration.Workers)

	cfg.Output.ExcelExport = getEnvBoolOrDefault("TDCOV_EXCEL_EXPORT", cfg.Output.ExcelExport)
	cfg.Output.Report = getEnvBoolOrDefault("TDCOV_REPORT", cfg.Output.Report)
	cfg.Output.HTMLReport = getEnvBoolOrDefault("TDCOV_HTML_REPORT", cfg.Output.HTMLReport)

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
}

// Validate checks the invariants the pipeline relies on
func (c Config) Validate() error {
	if c.Paths.SimulationDir == "" {
		return errors.ConfigInvalid("simulation directory is required")
	}
	if c.Paths.EstimatorGlob == "" || c.Paths.MockRunGlob == "" {
		return errors.ConfigInvalid("estimator and mock run globs are required")
	}
	if c.Paths.GroupsUsedFile == "" || c.Paths.GroupsAllFile == "" {
		return errors.ConfigInvalid("group file names are required")
	}
	if c.Selection.SplineMarker == "" {
		return errors.ConfigInvalid("spline marker is required")
	}

	cal := c.Calibration
	if cal.SigmaLower <= 0 || cal.SigmaUpper <= cal.SigmaLower {
		return errors.ConfigInvalid("clip sigma bounds must satisfy 0 < lower < upper")
	}
	if cal.Tolerance <= 0 {
		return errors.ConfigInvalid("calibration tolerance must be positive")
	}
	if cal.MaxIterations <= 0 {
		return errors.ConfigInvalid("calibration max iterations must be positive")
	}
	if cal.DefaultClipSigma <= 0 {
		return errors.ConfigInvalid("default clip sigma must be positive")
	}
	if cal.PercentileLow < 0 || cal.PercentileHigh > 100 || cal.PercentileLow >= cal.PercentileHigh {
		return errors.ConfigInvalid("percentiles must satisfy 0 <= low < high <= 100")
	}
	if cal.Workers < 1 {
		return errors.ConfigInvalid("at least one calibration worker is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
