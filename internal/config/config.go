package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"affiliate-locator/internal/geo"

	"github.com/spf13/viper"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	GinMode       string `mapstructure:"GIN_MODE"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFile       string `mapstructure:"LOG_FILE"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `mapstructure:"LOG_MAX_AGE_DAYS"`
	LogCompress   bool   `mapstructure:"LOG_COMPRESS"`

	OfficeName      string  `mapstructure:"OFFICE_NAME"`
	OfficeLatitude  float64 `mapstructure:"OFFICE_LATITUDE"`
	OfficeLongitude float64 `mapstructure:"OFFICE_LONGITUDE"`
	DistanceLimitKm float64 `mapstructure:"AFFILIATE_DISTANCE_LIMIT_KM"`
	DataFile        string  `mapstructure:"AFFILIATE_DATA_FILE"`
	CacheTTLSeconds int     `mapstructure:"AFFILIATE_CACHE_TTL"`
	Source          string  `mapstructure:"AFFILIATE_SOURCE"`
	DBSource        string  `mapstructure:"DB_SOURCE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":              ":8080",
	"GIN_MODE":                    "release",
	"LOG_LEVEL":                   "info",
	"LOG_FILE":                    "",
	"LOG_MAX_SIZE_MB":             100,
	"LOG_MAX_BACKUPS":             3,
	"LOG_MAX_AGE_DAYS":            28,
	"LOG_COMPRESS":                false,
	"OFFICE_NAME":                 "Dublin",
	"OFFICE_LATITUDE":             53.3340285,
	"OFFICE_LONGITUDE":            -6.2535495,
	"AFFILIATE_DISTANCE_LIMIT_KM": 100.0,
	"AFFILIATE_DATA_FILE":         "affiliates.txt",
	"AFFILIATE_CACHE_TTL":         3600,
	"AFFILIATE_SOURCE":            SourceFile,
	"DB_SOURCE":                   "",
	"REDIS_ADDR":                  "",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
}

// LoadConfig reads configuration from app.env in path, if present, and
// from environment variables, which take precedence.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: unmarshal config: %w", err)
	}

	return config, config.Validate()
}

// Validate checks values the application cannot start without.
func (c Config) Validate() error {
	if !c.Office().Valid() {
		return fmt.Errorf("config: invalid office coordinate: %v,%v", c.OfficeLatitude, c.OfficeLongitude)
	}
	if math.IsNaN(c.DistanceLimitKm) || math.IsInf(c.DistanceLimitKm, 0) || c.DistanceLimitKm < 0 {
		return fmt.Errorf("config: invalid distance limit: %v", c.DistanceLimitKm)
	}
	switch c.Source {
	case SourceFile:
		if c.DataFile == "" {
			return errors.New("config: AFFILIATE_DATA_FILE is required")
		}
	case SourcePostgres:
		if c.DBSource == "" {
			return errors.New("config: DB_SOURCE is required for the postgres source")
		}
	default:
		return fmt.Errorf("config: unknown affiliate source %q", c.Source)
	}
	return nil
}

// Office returns the reference point affiliates are measured from.
func (c Config) Office() geo.Coordinate {
	return geo.Coordinate{Latitude: c.OfficeLatitude, Longitude: c.OfficeLongitude}
}

// CacheTTL returns the dataset cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
