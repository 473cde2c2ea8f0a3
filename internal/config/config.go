package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Sources    SourcesConfig    `yaml:"sources" mapstructure:"sources"`
	Settlement SettlementConfig `yaml:"settlement" mapstructure:"settlement"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
}

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Port             int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB      int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	CORSOrigins      []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	UploadRatePerMin int      `yaml:"upload_rate_per_min" mapstructure:"upload_rate_per_min"`
	UploadDir        string   `yaml:"upload_dir" mapstructure:"upload_dir"`
}

// StoreConfig configures the session snapshot store.
type StoreConfig struct {
	Driver            string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL       string `yaml:"database_url" mapstructure:"database_url"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes" mapstructure:"session_ttl_minutes"`
	SweepIntervalSecs int    `yaml:"sweep_interval_secs" mapstructure:"sweep_interval_secs"`
}

// SourcesConfig names the worksheet read from each source workbook.
// FieldMapFile optionally points to a YAML file of extra header aliases.
type SourcesConfig struct {
	KiwiSheet    string `yaml:"kiwi_sheet" mapstructure:"kiwi_sheet"`
	WabangSheet  string `yaml:"wabang_sheet" mapstructure:"wabang_sheet"`
	BackendSheet string `yaml:"backend_sheet" mapstructure:"backend_sheet"`
	FieldMapFile string `yaml:"field_map_file" mapstructure:"field_map_file"`
}

// SettlementConfig lists per-click settlement rates in match order.
type SettlementConfig struct {
	Rates []SettlementRate `yaml:"rates" mapstructure:"rates"`
}

// SettlementRate applies Rate to agents whose name contains Fragment.
type SettlementRate struct {
	Fragment string  `yaml:"fragment" mapstructure:"fragment"`
	Rate     float64 `yaml:"rate" mapstructure:"rate"`
}

// FetchConfig configures remote source downloads.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env files, the config file and environment.
func Load() (*Config, error) {
	// .env.local overrides .env; neither overrides the real environment.
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADRECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.max_upload_mb", 50)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.upload_rate_per_min", 10)
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.session_ttl_minutes", 24*60)
	v.SetDefault("store.sweep_interval_secs", 300)
	v.SetDefault("sources.kiwi_sheet", "计划数据")
	v.SetDefault("sources.wabang_sheet", "总数据源")
	v.SetDefault("sources.backend_sheet", "分计划明细表")
	v.SetDefault("sources.field_map_file", "")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.user_agent", "adrecon/1.0")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Mode is "serve" or "process".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "memory", "":
	case "sqlite", "postgres":
		if mode == "serve" && c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for driver "+c.Store.Driver)
		}
	default:
		errs = append(errs, "store.driver must be one of memory, sqlite, postgres")
	}

	for _, r := range c.Settlement.Rates {
		if r.Fragment == "" {
			errs = append(errs, "settlement.rates fragment must not be empty")
		}
		if r.Rate < 0 {
			errs = append(errs, "settlement.rates rate must be >= 0")
		}
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.MaxUploadMB <= 0 {
			errs = append(errs, "server.max_upload_mb must be > 0")
		}
	case "process":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
