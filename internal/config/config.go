package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Data     DataConfig     `mapstructure:"data"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	API      APIConfig      `mapstructure:"api"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DataConfig struct {
	PatientsCSV string `mapstructure:"patients_csv"`
	GestionCSV  string `mapstructure:"gestion_csv"`
	UploadDir   string `mapstructure:"upload_dir"`
	Delimiter   string `mapstructure:"delimiter"`
}

// RiskConfig parameterizes the classifier thresholds. Ward teams have run
// with more than one set of cut points, so they are tunable per deployment.
type RiskConfig struct {
	ProbabilityRed       float64 `mapstructure:"probability_red"`
	ProbabilityYellow    float64 `mapstructure:"probability_yellow"`
	StayRedDays          int     `mapstructure:"stay_red_days"`
	StayYellowDays       int     `mapstructure:"stay_yellow_days"`
	PendingDischargeDays int     `mapstructure:"pending_discharge_days"`
}

type UpstreamConfig struct {
	IngestURL      string `mapstructure:"ingest_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryMax       int    `mapstructure:"retry_max"`
}

type APIConfig struct {
	RateLimitRPS    float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int     `mapstructure:"rate_limit_burst"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds"`
}

// envOverrides are environment variables that win over the config file.
// PORT is the only one the deployment scripts actually set.
type envOverrides struct {
	Port        int    `envconfig:"PORT"`
	PatientsCSV string `envconfig:"PATIENTS_CSV"`
	GestionCSV  string `envconfig:"GESTION_CSV"`
	IngestURL   string `envconfig:"UPSTREAM_INGEST_URL"`
}

func setDefaults() {
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("data.patients_csv", "GRD 2024-Agosto 2025(Egresos 2024-2025)_con_datos.csv")
	viper.SetDefault("data.gestion_csv", "Gestion Estadía(Respuestas Formulario).csv")
	viper.SetDefault("data.upload_dir", ".")
	viper.SetDefault("data.delimiter", ";")
	viper.SetDefault("risk.probability_red", 0.66)
	viper.SetDefault("risk.probability_yellow", 0.33)
	viper.SetDefault("risk.stay_red_days", 15)
	viper.SetDefault("risk.stay_yellow_days", 7)
	viper.SetDefault("risk.pending_discharge_days", 14)
	viper.SetDefault("upstream.ingest_url", "http://18.216.167.127/gestion/ingest/csv")
	viper.SetDefault("upstream.timeout_seconds", 30)
	viper.SetDefault("upstream.retry_max", 3)
	viper.SetDefault("api.rate_limit_rps", 100)
	viper.SetDefault("api.rate_limit_burst", 200)
	viper.SetDefault("api.cache_ttl_seconds", 30)
}

// LoadConfig reads config.yaml (optional), applies environment overrides and
// validates the result.
func LoadConfig() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// The file is optional; defaults plus env cover a bare deployment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if env.Port != 0 {
		config.Server.Port = env.Port
	}
	if env.PatientsCSV != "" {
		config.Data.PatientsCSV = env.PatientsCSV
	}
	if env.GestionCSV != "" {
		config.Data.GestionCSV = env.GestionCSV
	}
	if env.IngestURL != "" {
		config.Upstream.IngestURL = env.IngestURL
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks required fields and threshold ordering.
func (c *Config) Validate() error {
	if c.Data.PatientsCSV == "" {
		return fmt.Errorf("data.patients_csv is required")
	}
	if len(c.Data.Delimiter) != 1 {
		return fmt.Errorf("data.delimiter must be a single character, got %q", c.Data.Delimiter)
	}
	if c.Risk.ProbabilityYellow >= c.Risk.ProbabilityRed {
		return fmt.Errorf("risk.probability_yellow (%v) must be below risk.probability_red (%v)",
			c.Risk.ProbabilityYellow, c.Risk.ProbabilityRed)
	}
	if c.Risk.StayYellowDays >= c.Risk.StayRedDays {
		return fmt.Errorf("risk.stay_yellow_days (%d) must be below risk.stay_red_days (%d)",
			c.Risk.StayYellowDays, c.Risk.StayRedDays)
	}
	return nil
}

func (c *ServerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
