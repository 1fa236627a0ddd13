// Package config handles loading and parsing application
// configuration. Values come from a YAML file plus environment
// overrides, located via (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// A .env file in the working directory is loaded first (best effort)
// so local development does not need exported variables.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure. Every field maps to a
// key in the YAML file and can be overridden by the corresponding
// environment variable.
type Config struct {
	// Env controls log format and how much detail error responses
	// carry. Valid values: "dev", "staging", "prod".
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`

	// QueryTimeout bounds every storage operation. A wedged database
	// turns into a 500 after this long instead of a hung request.
	QueryTimeout time.Duration `yaml:"query_timeout" env:"QUERY_TIMEOUT" env-default:"5s"`

	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// MustLoad reads, validates, and returns the application config.
// Functions prefixed with "Must" are allowed to exit on failure: if
// this returns, the config is valid.
func MustLoad() *Config {
	// Best effort: a missing .env is fine, exported variables and the
	// YAML file still apply.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return &cfg
}
