// Package config reads mdtouml settings from the environment.
//
// Command-line flags take precedence; the values here only seed flag
// defaults. A .env file in the working directory is honored when
// LoadDotEnv is called before Load.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables consulted by Load.
const (
	EnvServer  = "MDTOUML_SERVER"
	EnvOutput  = "MDTOUML_OUTPUT"
	EnvViewer  = "MDTOUML_VIEWER"
	EnvTimeout = "MDTOUML_TIMEOUT"
)

// Config holds the environment-provided defaults for command flags.
type Config struct {
	Server  string        // Rendering server base URL
	Output  string        // Output directory
	Viewer  bool          // Write the HTML viewer next to each image
	Timeout time.Duration // HTTP timeout; 0 means none
}

// Load returns the configuration from the environment, using the given
// defaults for unset variables.
func Load(defaultServer, defaultOutput string) *Config {
	return &Config{
		Server:  getEnv(EnvServer, defaultServer),
		Output:  getEnv(EnvOutput, defaultOutput),
		Viewer:  getBool(EnvViewer, true),
		Timeout: getDuration(EnvTimeout, 0),
	}
}

// LoadDotEnv loads .env from the working directory. Variables already set
// win, and a missing file is not an error.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, defaultValue.String()))
	if err != nil {
		return defaultValue
	}
	return v
}
