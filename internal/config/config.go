package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Database carries the credentials for the direct-insert sink. The DSN is
// assembled once in Load; individual fields keep their env names so deploys
// can override them one by one.
type Database struct {
	Host string `envconfig:"DB_HOST" default:"db"`
	User string `envconfig:"DB_USER" default:"postgres"`
	Pass string `envconfig:"DB_PASS" default:""`
	Name string `envconfig:"DB_NAME" default:"weather"`
	Port int    `envconfig:"DB_PORT" default:"5432"`
}

// Breaker tunes the circuit breaker the scheduler puts in front of the
// provider client. Intervals are in seconds.
type Breaker struct {
	TimeInterval        int    `envconfig:"BREAKER_INTERVAL" default:"30"`
	TimeTimeOut         int    `envconfig:"BREAKER_TIMEOUT" default:"60"`
	ConsecutiveFailures uint32 `envconfig:"BREAKER_CONSECUTIVE_FAILURES" default:"3"`
}

// Config holds all the environment-driven settings for the application.
//
// Latitude, Longitude and APIKey deliberately carry no required tag: their
// presence is checked by Validate so that every missing name is reported at
// once instead of envconfig stopping at the first.
type Config struct {
	Latitude  string `envconfig:"LATITUDE"`
	Longitude string `envconfig:"LONGITUDE"`
	APIKey    string `envconfig:"OPEN_WEATHER_MAP_API_KEY"`

	WeatherURL     string `envconfig:"OPEN_WEATHER_MAP_URL" default:"https://api.openweathermap.org/data/2.5/weather"`
	RequestTimeout int    `envconfig:"REQUEST_TIMEOUT" default:"10"`

	// Sink selects the persistence variant: "postgres" inserts directly,
	// "pipeline" hands the record to the COPY-based loader.
	Sink           string `envconfig:"SINK" default:"postgres"`
	Database       Database
	DestinationDSN string `envconfig:"DESTINATION_POSTGRES_DSN" default:""`

	HTTPLogPath     string `envconfig:"HTTP_LOG_PATH" default:""`
	PushgatewayAddr string `envconfig:"PUSHGATEWAY_ADDR" default:""`
	ZipkinEndpoint  string `envconfig:"ZIPKIN_ENDPOINT" default:""`

	SchedulerSpec string `envconfig:"SCHEDULER_SPEC" default:"*/15 * * * *"`
	Breaker       Breaker

	DatabaseURL string `ignored:"true"`
}

// Load reads the environment, applying defaults where appropriate. It returns
// an error only when a value is malformed (e.g. a non-numeric port); missing
// weather parameters are Validate's concern.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.DatabaseURL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Database.User, cfg.Database.Pass, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name,
	)

	return &cfg, nil
}

// Validate reports whether the three parameters every run needs are present
// and non-empty. Missing ones are logged by env name — all of them, not just
// the first — and false gates the run before any network call is made. No
// side effects beyond logging.
func Validate(lat, lon, apiKey string, logger *zap.Logger) bool {
	var missing []string
	if lat == "" {
		missing = append(missing, "LATITUDE")
	}
	if lon == "" {
		missing = append(missing, "LONGITUDE")
	}
	if apiKey == "" {
		missing = append(missing, "OPEN_WEATHER_MAP_API_KEY")
	}
	if len(missing) > 0 {
		logger.Error("missing required configuration", zap.Strings("missing", missing))
		return false
	}
	return true
}
