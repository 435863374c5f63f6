package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"shiftwatch/internal/detect"
	"shiftwatch/internal/logging"
	"shiftwatch/internal/sampling"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Sampling  SamplingConfig  `mapstructure:"sampling"`
	Detection DetectionConfig `mapstructure:"detection"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity plus the table the
// watch service reads its series from.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SeriesTable     string        `mapstructure:"series_table"`
	PositionColumn  string        `mapstructure:"position_column"`
	ValueColumn     string        `mapstructure:"value_column"`
}

// IngestConfig governs CSV series extraction.
type IngestConfig struct {
	ValueColumn    string `mapstructure:"value_column"`
	PositionColumn string `mapstructure:"position_column"`
	PositionMode   string `mapstructure:"position_mode"`
	HasHeader      bool   `mapstructure:"has_header"`
	Comma          string `mapstructure:"comma"`
}

// SamplingConfig bounds series size before detection runs.
type SamplingConfig struct {
	MaxPoints     int    `mapstructure:"max_points"`
	Method        string `mapstructure:"method"`
	PreserveEdges bool   `mapstructure:"preserve_edges"`
	Seed          int64  `mapstructure:"seed"`
}

// DetectionConfig selects the algorithm and its tuning knobs.
type DetectionConfig struct {
	Algorithm string         `mapstructure:"algorithm"`
	Options   detect.Options `mapstructure:"options"`
}

// WatchConfig governs the polling detection service.
type WatchConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
	WindowPoints    int           `mapstructure:"window_points"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
}

// AlertingConfig defines alert thresholds and routing.
type AlertingConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	MinConfidence float64       `mapstructure:"min_confidence"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	Channels      []string      `mapstructure:"channels"`
	Webhook       WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig describes the JSON webhook alert channel.
type WebhookConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`
	AuthToken string        `mapstructure:"auth_token"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ExportConfig sets chart and CSV export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
	ChartWidth    int `mapstructure:"chart_width"`
	ChartHeight   int `mapstructure:"chart_height"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHIFTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "shiftwatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("ingest.position_mode", "ordinal")
	v.SetDefault("ingest.has_header", true)
	v.SetDefault("ingest.comma", ",")

	v.SetDefault("sampling.max_points", 2000)
	v.SetDefault("sampling.method", "peak_preserving")
	v.SetDefault("sampling.preserve_edges", true)

	v.SetDefault("detection.algorithm", "moving_average")

	v.SetDefault("watch.interval", "5m")
	v.SetDefault("watch.align_to_bucket", true)
	v.SetDefault("watch.startup_delay", "0s")
	v.SetDefault("watch.window_points", 5000)
	v.SetDefault("watch.advisory_lock_key", int64(0x73686677))

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.min_confidence", 0.5)
	v.SetDefault("alerting.cooldown", "30m")
	v.SetDefault("alerting.channels", []string{"webhook"})
	v.SetDefault("alerting.webhook.enabled", false)
	v.SetDefault("alerting.webhook.timeout", "10s")

	v.SetDefault("export.max_data_points", 100000)
	v.SetDefault("export.chart_width", 1280)
	v.SetDefault("export.chart_height", 720)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.series_table", "series_points")
	v.SetDefault("database.position_column", "position")
	v.SetDefault("database.value_column", "value")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Sampling.MaxPoints < 2 {
		return fmt.Errorf("sampling.max_points must be at least 2")
	}
	if _, err := sampling.ParseMethod(c.Sampling.Method); err != nil {
		return fmt.Errorf("sampling.method: %w", err)
	}
	if _, err := detect.ParseAlgorithm(c.Detection.Algorithm); err != nil {
		return fmt.Errorf("detection.algorithm: %w", err)
	}
	switch c.Ingest.PositionMode {
	case "ordinal", "numeric", "timestamp":
	default:
		return fmt.Errorf("ingest.position_mode must be ordinal, numeric, or timestamp")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Watch.WindowPoints < 2 {
		return fmt.Errorf("watch.window_points must be at least 2")
	}
	if c.Alerting.MinConfidence < 0 || c.Alerting.MinConfidence > 1 {
		return fmt.Errorf("alerting.min_confidence must be within [0, 1]")
	}
	if c.Alerting.Webhook.Enabled && c.Alerting.Webhook.URL == "" {
		return fmt.Errorf("alerting.webhook.url must be configured")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Sampling.MaxPoints
}

// SamplingOptions converts the sampling section into sampler options.
func (c *Config) SamplingOptions(maxPointsOverride int) (sampling.Options, error) {
	method, err := sampling.ParseMethod(c.Sampling.Method)
	if err != nil {
		return sampling.Options{}, err
	}
	return sampling.Options{
		MaxPoints:     c.ResolveMaxPoints(maxPointsOverride),
		Method:        method,
		PreserveEdges: c.Sampling.PreserveEdges,
		Seed:          c.Sampling.Seed,
	}, nil
}
