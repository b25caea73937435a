// Package config holds the directory layout and label sources used by the
// remapping and extraction tools. Values come from defaults, an optional
// YAML file, and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KyungWonPark/GraphTheory/internal/atlas"
	"gopkg.in/yaml.v3"
)

// ErrInvalidMode is returned for a remap mode that is not configured.
var ErrInvalidMode = errors.New("invalid mode")

// Config is the full tool configuration.
type Config struct {
	// LogLevel is "info" (default), "debug", "warn" or "error".
	LogLevel string `yaml:"log_level"`

	// BaseDir anchors every relative path except the results outputs.
	BaseDir string `yaml:"base_dir"`

	Remap   Remap   `yaml:"remap"`
	Results Results `yaml:"results"`
	Census  Census  `yaml:"census"`
}

// Mode is one kind of connectivity matrix the remapper converts.
type Mode struct {
	InputDir     string `yaml:"input_dir"`
	OutputDir    string `yaml:"output_dir"`
	Suffix       string `yaml:"suffix"`
	OutputPrefix string `yaml:"output_prefix"`
}

// Remap configures the atlas remapper.
type Remap struct {
	SourceLabels atlas.LabelSource `yaml:"source_labels"`
	TargetLabels atlas.LabelSource `yaml:"target_labels"`
	Modes        map[string]Mode   `yaml:"modes"`

	// Workers is the number of files converted at once.
	Workers int `yaml:"workers"`
}

// Mode returns the named mode or ErrInvalidMode.
func (r Remap) Mode(name string) (Mode, error) {
	m, ok := r.Modes[name]
	if !ok {
		return Mode{}, fmt.Errorf("%w: %q (use %s)", ErrInvalidMode, name, strings.Join(r.ModeNames(), " or "))
	}
	return m, nil
}

// ModeNames lists the configured modes, sorted.
func (r Remap) ModeNames() []string {
	names := make([]string, 0, len(r.Modes))
	for k := range r.Modes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Results configures the JSON result extraction.
type Results struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`

	// GlobalMetric is the document key read by the global extraction and
	// GlobalColumn its CSV column title.
	GlobalMetric string `yaml:"global_metric"`
	GlobalColumn string `yaml:"global_column"`

	// NodeTable optionally replaces the built-in node schema
	// (CSV: Index, Node Name[, Group]).
	NodeTable string `yaml:"node_table,omitempty"`

	GlobalOutput   string `yaml:"global_output"`
	RegionalOutput string `yaml:"regional_output"`
	SummaryOutput  string `yaml:"summary_output"`
}

// Census configures the atlas volume census.
type Census struct {
	Volume string `yaml:"volume"`

	// Dims is the grid the volume must have; all zero accepts any grid.
	Dims [3]int `yaml:"dims"`

	Output string `yaml:"output"`
}

// Default returns the development layout, relative to the working directory.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		BaseDir:  ".",
		Remap: Remap{
			SourceLabels: atlas.LabelSource{
				Path:        "AICHA/AICHA1mm_vol3.txt",
				Delimiter:   "\\t",
				NameColumn:  "nom_s",
				IndexColumn: "color",
			},
			TargetLabels: atlas.LabelSource{
				Path:             "SENSAAS_brainAtlas-main/Atlas/SENSAAS_description.csv",
				Delimiter:        ",",
				NameColumn:       "Abbreviation",
				HemisphereColumn: "Hemisphere",
			},
			Modes: map[string]Mode{
				"length": {
					InputDir:     "Parcelated BIL FILES/Length_matrices_AICHA",
					OutputDir:    "Parcelated BIL FILES/Length_matrices_SENSAAS",
					Suffix:       "_connectivity_length.npy",
					OutputPrefix: "sensaas_LENGTH_",
				},
				"streamline": {
					InputDir:     "streamline_count_matrices/connectivity_matrices_of_interest",
					OutputDir:    "sensaas_atlas_streamline_connectivity",
					Suffix:       "_connectivity_streamline_count.npy",
					OutputPrefix: "sensaas_streamline_",
				},
			},
			Workers: 1,
		},
		Results: Results{
			Dir:            "Network_results",
			Prefix:         "result_",
			Suffix:         ".json",
			GlobalMetric:   "global_efficiency",
			GlobalColumn:   "Global Efficiency",
			GlobalOutput:   "global_efficiency_measures.csv",
			RegionalOutput: "regional_network_measures.csv",
			SummaryOutput:  "regional_network_summary.csv",
		},
		Census: Census{
			Volume: "AICHA/AICHA.nii",
			Dims:   [3]int{91, 109, 91},
			Output: "aicha_census.csv",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// $GT_CONFIG when path is empty), then environment overrides. Relative paths
// are resolved before returning.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("GT_CONFIG")
	}
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg.Resolve(), nil
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values no run can use.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"": true, "info": true, "debug": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, warn, error)", c.LogLevel)
	}

	if c.Remap.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Remap.Workers)
	}
	if len(c.Remap.Modes) == 0 {
		return errors.New("no remap modes configured")
	}
	for name, m := range c.Remap.Modes {
		if m.InputDir == "" || m.OutputDir == "" || m.Suffix == "" {
			return fmt.Errorf("mode %q needs input_dir, output_dir and suffix", name)
		}
	}
	if c.Remap.SourceLabels.NameColumn == "" || c.Remap.TargetLabels.NameColumn == "" {
		return errors.New("label sources need a name_column")
	}

	if c.Results.GlobalMetric == "" {
		return errors.New("results.global_metric must be set")
	}

	if c.Census.Dims != [3]int{} {
		for i, d := range c.Census.Dims {
			if d < 1 {
				return fmt.Errorf("census dims[%d] must be positive, got %d", i, d)
			}
		}
	}

	return nil
}

// Resolve returns a copy with relative paths joined to BaseDir, and result
// outputs joined to the results directory.
func (c *Config) Resolve() *Config {
	out := *c

	out.Remap.SourceLabels.Path = c.abs(c.Remap.SourceLabels.Path)
	out.Remap.TargetLabels.Path = c.abs(c.Remap.TargetLabels.Path)

	out.Remap.Modes = make(map[string]Mode, len(c.Remap.Modes))
	for name, m := range c.Remap.Modes {
		m.InputDir = c.abs(m.InputDir)
		m.OutputDir = c.abs(m.OutputDir)
		out.Remap.Modes[name] = m
	}

	out.Results.Dir = c.abs(c.Results.Dir)
	out.Results.GlobalOutput = under(out.Results.Dir, c.Results.GlobalOutput)
	out.Results.RegionalOutput = under(out.Results.Dir, c.Results.RegionalOutput)
	out.Results.SummaryOutput = under(out.Results.Dir, c.Results.SummaryOutput)
	if c.Results.NodeTable != "" {
		out.Results.NodeTable = c.abs(c.Results.NodeTable)
	}

	out.Census.Volume = c.abs(c.Census.Volume)
	out.Census.Output = c.abs(c.Census.Output)

	return &out
}

func (c *Config) abs(p string) string {
	return under(c.BaseDir, p)
}

func under(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
// DATA and RESULT are honoured as fallbacks for the base and results dirs.
func applyEnvOverrides(cfg *Config) error {
	if v := firstEnv("GT_BASE_DIR", "DATA"); v != "" {
		cfg.BaseDir = v
	}

	if v := firstEnv("GT_RESULTS_DIR", "RESULT"); v != "" {
		cfg.Results.Dir = v
	}

	if v := os.Getenv("GT_SOURCE_LABELS"); v != "" {
		cfg.Remap.SourceLabels.Path = v
	}

	if v := os.Getenv("GT_TARGET_LABELS"); v != "" {
		cfg.Remap.TargetLabels.Path = v
	}

	if v := os.Getenv("GT_NODE_TABLE"); v != "" {
		cfg.Results.NodeTable = v
	}

	if v := os.Getenv("GT_WORKERS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("GT_WORKERS: %q is not a number", v)
		}
		cfg.Remap.Workers = n
	}

	if v := os.Getenv("GT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return nil
}
