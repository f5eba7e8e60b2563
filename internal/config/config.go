package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"required|int|min:1|max:65535"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type IngestConfig struct {
	ImportOnStart bool   `mapstructure:"importOnStart"`
	StatusFile    string `mapstructure:"statusFile"`
	HoursFile     string `mapstructure:"hoursFile"`
	TimezonesFile string `mapstructure:"timezonesFile"`
}

type ReportConfig struct {
	OutputDir       string `mapstructure:"outputDir" validate:"required"`
	Workers         int    `mapstructure:"workers" validate:"int|min:1"`
	DefaultTimezone string `mapstructure:"defaultTimezone" validate:"required"`
	ChartStores     int    `mapstructure:"chartStores"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Size    int  `mapstructure:"size"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type MaintenanceConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	ArchiveAfter time.Duration `mapstructure:"archiveAfter"`
	DeleteAfter  time.Duration `mapstructure:"deleteAfter"`
}

type Config struct {
	AppName string
	Debug   bool
	Path    string

	WebServer   ServerConfig      `mapstructure:"webServer"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Ingest      IngestConfig      `mapstructure:"ingest"`
	Report      ReportConfig      `mapstructure:"report"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return v.Errors.OneError()
	}
	// The default zone must resolve at startup; per-store zones may
	// fail open later, the process-wide fallback may not.
	if _, err := time.LoadLocation(c.Report.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid default timezone %q: %w", c.Report.DefaultTimezone, err)
	}
	if c.Ingest.ImportOnStart {
		for _, f := range []string{c.Ingest.StatusFile, c.Ingest.HoursFile, c.Ingest.TimezonesFile} {
			if f == "" {
				return fmt.Errorf("ingest.importOnStart requires statusFile, hoursFile and timezonesFile")
			}
		}
	}
	return nil
}

// Load reads the YAML config, applies env overrides and validates the
// result. A missing config file is not an error; defaults apply.
func Load(flags *CliFlags) (*Config, error) {
	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "STOREMON_LOG_LEVEL")
	viper.BindEnv("database.path", "STOREMON_DB_PATH")
	viper.BindEnv("webServer.port", "STOREMON_PORT")
	viper.BindEnv("report.outputDir", "STOREMON_REPORT_DIR")
	viper.BindEnv("report.defaultTimezone", "STOREMON_DEFAULT_TIMEZONE")
	viper.BindEnv("cache.enabled", "STOREMON_CACHE_ENABLED")
	viper.BindEnv("metrics.enabled", "STOREMON_METRICS_ENABLED")

	setDefaults()

	if _, err := os.Stat(flags.ConfigPath); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	conf.AppName = "store-monitor"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func setDefaults() {
	viper.SetDefault("webServer.host", "0.0.0.0")
	viper.SetDefault("webServer.port", 8080)
	viper.SetDefault("database.path", "store_monitor.db")
	viper.SetDefault("ingest.importOnStart", false)
	viper.SetDefault("report.outputDir", "reports")
	viper.SetDefault("report.workers", 4)
	viper.SetDefault("report.defaultTimezone", "America/Chicago")
	viper.SetDefault("report.chartStores", 20)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.size", 16)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("maintenance.interval", time.Hour)
	viper.SetDefault("maintenance.archiveAfter", 24*time.Hour)
	viper.SetDefault("maintenance.deleteAfter", 30*24*time.Hour)
}
