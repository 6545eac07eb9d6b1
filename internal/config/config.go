// Package config handles loading and parsing application configuration.
// It supports three sources (in priority order):
//  1. Environment variables (PORT, MONGO_URI, STORAGE_DRIVER, ...)
//  2. A YAML file named by CONFIG_PATH or the --config flag
//  3. Built-in defaults (env-default tags)
//
// The YAML file is optional: with no path set the service runs entirely
// from environment variables and defaults, listening on :5008 and talking
// to MongoDB on 127.0.0.1:27017.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers accepted in storage.driver / STORAGE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev" validate:"oneof=dev staging prod"`

	HTTPServer `yaml:"http_server"`

	Storage Storage `yaml:"storage"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Host is the interface to bind; empty means all interfaces.
	Host string `yaml:"host" env:"HTTP_SERVER_HOST"`

	Port int `yaml:"port" env:"PORT" env-default:"5008" validate:"min=1,max=65535"`

	// ShutdownTimeout bounds how long in-flight requests may run after a
	// shutdown signal.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"*" env-separator:","`
}

// Addr returns the listen address, e.g. ":5008" or "localhost:8082".
func (h HTTPServer) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// Storage selects and configures the document store backend.
type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo" validate:"oneof=mongo sqlite memory"`
	Mongo  Mongo  `yaml:"mongo"`
	SQLite SQLite `yaml:"sqlite"`
}

// Mongo holds MongoDB connection settings.
type Mongo struct {
	URI            string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://127.0.0.1:27017"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE" env-default:"studentDB"`
	Collection     string        `yaml:"collection" env:"MONGO_COLLECTION" env-default:"studentdetails"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"MONGO_CONNECT_TIMEOUT" env-default:"10s"`
}

// SQLite holds settings for the file-backed store.
type SQLite struct {
	// Path is the filesystem path to the SQLite .db file.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/students.db"`
}

// Load reads configuration from configPath (if non-empty) and the
// environment, applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
	} else {
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: config file does not exist: %s", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", configPath, err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad resolves the config path from CONFIG_PATH or --config, loads
// the config, and exits the process if anything is wrong. If this returns,
// the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}

	return cfg
}
