package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vasapolrittideah/postly-api/shared/mailer"
)

// Store drivers.
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

// ContentServiceConfig holds the configuration of the content service.
type ContentServiceConfig struct {
	ServiceName    string        `env:"SERVICE_NAME"    envDefault:"content-service"`
	Host           string        `env:"HOST"            envDefault:"localhost"`
	HTTPPort       int           `env:"HTTP_PORT"       envDefault:"8080"`
	GRPCPort       int           `env:"GRPC_PORT"       envDefault:"9090"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	ConsulAddr     string        `env:"CONSUL_ADDR"`

	Log   LogConfig     `envPrefix:"LOG_"`
	Store StoreConfig   `envPrefix:"STORE_"`
	Mongo MongoConfig   `envPrefix:"MONGO_"`
	Token TokenConfig   `envPrefix:"TOKEN_"`
	Redis RedisConfig   `envPrefix:"REDIS_"`
	SMTP  mailer.Config `envPrefix:"SMTP_"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info"`
	Pretty bool   `env:"PRETTY" envDefault:"false"`
}

// StoreConfig selects the document store driver.
type StoreConfig struct {
	Driver string `env:"DRIVER" envDefault:"mongo"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string `env:"URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"DATABASE" envDefault:"postly"`
}

// TokenConfig holds access token settings. The secret is loaded once at
// startup and used for every token the process issues or validates.
type TokenConfig struct {
	AccessTokenSecret    string        `env:"ACCESS_TOKEN_SECRET"`
	AccessTokenExpiresIn time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN" envDefault:"1h"`
	Issuer               string        `env:"ISSUER"                  envDefault:"postly"`
}

// RedisConfig holds the post cache settings. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB"       envDefault:"0"`
	PostTTL  time.Duration `env:"POST_TTL" envDefault:"5m"`
}

// Load reads the configuration from the environment, loading .env first
// when one exists in the working directory.
func Load() (*ContentServiceConfig, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg, err := env.ParseAs[ContentServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks if the configuration is usable.
func (c *ContentServiceConfig) validate() error {
	if c.Token.AccessTokenSecret == "" {
		return errors.New("missing TOKEN_ACCESS_TOKEN_SECRET environment variable")
	}
	if c.Token.AccessTokenExpiresIn <= 0 {
		return errors.New("TOKEN_ACCESS_TOKEN_EXPIRES_IN must be positive")
	}

	switch c.Store.Driver {
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("missing MONGO_URI environment variable")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.SMTP.Enabled() {
		if err := c.SMTP.Validate(); err != nil {
			return err
		}
	}

	return nil
}
