package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "BULLETIN_CONFIG"
	sourcePathEnv  = "BULLETIN_SOURCE"
	datasetPathEnv = "BULLETIN_DATASET"
	cachePathEnv   = "BULLETIN_CACHE"
	archivePathEnv = "BULLETIN_ARCHIVE"
	logLevelEnv    = "BULLETIN_LOG_LEVEL"
	otelStdoutEnv  = "BULLETIN_OTEL_STDOUT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Source      SourceConfig      `yaml:"source"`
	Output      OutputConfig      `yaml:"output"`
	Rules       RulesConfig       `yaml:"rules"`
	Filter      FilterConfig      `yaml:"filter"`
	Translation TranslationConfig `yaml:"translation"`
	Logging     LoggingConfig     `yaml:"logging"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// SourceConfig points at the bulletin archive. Variant is "lines",
// "documents" or empty to detect from the path.
type SourceConfig struct {
	Path    string `yaml:"path" validate:"required"`
	Variant string `yaml:"variant" validate:"omitempty,oneof=lines documents"`
}

// OutputConfig lists the files the pipeline writes. An empty Archive
// disables the SQLite run history.
type OutputConfig struct {
	Dataset string `yaml:"dataset" validate:"required"`
	Cache   string `yaml:"cache" validate:"required"`
	Archive string `yaml:"archive"`
}

// RulesConfig optionally replaces the built-in rule catalogs.
type RulesConfig struct {
	Catalog string `yaml:"catalog"`
	Policy  string `yaml:"policy"`
}

// FilterConfig holds the background/main-event boundary month.
type FilterConfig struct {
	Cutoff string `yaml:"cutoff" validate:"required,datetime=2006-01"`
}

// TranslationConfig defines how to contact the translation endpoint.
type TranslationConfig struct {
	Endpoint   string        `yaml:"endpoint" validate:"required,url"`
	SourceLang string        `yaml:"sourceLang" validate:"required"`
	TargetLang string        `yaml:"targetLang" validate:"required"`
	BatchSize  int           `yaml:"batchSize" validate:"min=1"`
	BatchDelay time.Duration `yaml:"batchDelay"`
	Timeout    time.Duration `yaml:"timeout"`

	// Zero keeps the default for both; -1 disables retries or the breaker.
	// BreakerThreshold counts consecutive failures before the circuit opens.
	MaxRetries       int `yaml:"maxRetries"`
	BreakerThreshold int `yaml:"breakerThreshold"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TelemetryConfig toggles the stdout metric exporter.
type TelemetryConfig struct {
	Stdout bool `yaml:"stdout"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

var validate = validator.New()

// Validate checks the merged configuration before any stage runs.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s fails %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(sourcePathEnv); v != "" {
		c.Source.Path = v
	}
	if v := os.Getenv(datasetPathEnv); v != "" {
		c.Output.Dataset = v
	}
	if v := os.Getenv(cachePathEnv); v != "" {
		c.Output.Cache = v
	}
	if v := os.Getenv(archivePathEnv); v != "" {
		c.Output.Archive = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(otelStdoutEnv); v != "" {
		c.Telemetry.Stdout = strings.EqualFold(v, "true")
	}
}

func mergeConfig(base, override Config) Config {
	if override.Source.Path != "" {
		base.Source.Path = override.Source.Path
	}
	if override.Source.Variant != "" {
		base.Source.Variant = override.Source.Variant
	}

	if override.Output.Dataset != "" {
		base.Output.Dataset = override.Output.Dataset
	}
	if override.Output.Cache != "" {
		base.Output.Cache = override.Output.Cache
	}
	if override.Output.Archive != "" {
		base.Output.Archive = override.Output.Archive
	}

	if override.Rules.Catalog != "" {
		base.Rules.Catalog = override.Rules.Catalog
	}
	if override.Rules.Policy != "" {
		base.Rules.Policy = override.Rules.Policy
	}

	if override.Filter.Cutoff != "" {
		base.Filter.Cutoff = override.Filter.Cutoff
	}

	if override.Translation.Endpoint != "" {
		base.Translation.Endpoint = override.Translation.Endpoint
	}
	if override.Translation.SourceLang != "" {
		base.Translation.SourceLang = override.Translation.SourceLang
	}
	if override.Translation.TargetLang != "" {
		base.Translation.TargetLang = override.Translation.TargetLang
	}
	if override.Translation.BatchSize > 0 {
		base.Translation.BatchSize = override.Translation.BatchSize
	}
	if override.Translation.BatchDelay > 0 {
		base.Translation.BatchDelay = override.Translation.BatchDelay
	}
	if override.Translation.Timeout > 0 {
		base.Translation.Timeout = override.Translation.Timeout
	}
	if override.Translation.MaxRetries != 0 {
		base.Translation.MaxRetries = override.Translation.MaxRetries
	}
	if override.Translation.BreakerThreshold != 0 {
		base.Translation.BreakerThreshold = override.Translation.BreakerThreshold
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Telemetry.Stdout {
		base.Telemetry.Stdout = true
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Source: SourceConfig{Path: "data/docx_output.txt"},
		Output: OutputConfig{
			Dataset: "data/data.json",
			Cache:   "data/translations_cache.json",
		},
		Filter: FilterConfig{Cutoff: "2021-02"},
		Translation: TranslationConfig{
			Endpoint:         "https://translate.googleapis.com/translate_a/single",
			SourceLang:       "ko",
			TargetLang:       "en",
			BatchSize:        8,
			BatchDelay:       600 * time.Millisecond,
			Timeout:          15 * time.Second,
			MaxRetries:       2,
			BreakerThreshold: 10,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
