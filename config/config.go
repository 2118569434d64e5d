package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"booking_db"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	ServerPort string `envconfig:"SERVER_PORT" default:"8082"`
	RateLimit  int    `envconfig:"RATE_LIMIT" default:"20"`

	// Empty disables the broker: no notification fan-out, no payment or directory consumers.
	RabbitURL string `envconfig:"RABBIT_URL"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	SweepSchedule string `envconfig:"SWEEP_SCHEDULE" default:"0 0 * * *"`
	SweepTimezone string `envconfig:"SWEEP_TIMEZONE" default:"Local"`
	SweepOnStart  bool   `envconfig:"SWEEP_ON_START" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return &cfg
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// SweepLocation resolves SWEEP_TIMEZONE; "Local" means the deployment's zone.
func (c *Config) SweepLocation() (*time.Location, error) {
	if c.SweepTimezone == "" || c.SweepTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.SweepTimezone)
}

// ConfigureLogger applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger.
func (c *Config) ConfigureLogger() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("unknown log level %q, using info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
