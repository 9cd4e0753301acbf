// Package config loads server configuration from the environment.
package config

import (
	"os"
	"runtime"
	"strconv"
)

type Config struct {
	Port    string // listen address, e.g. ":8080"
	DBPath  string // sqlite database holding jobs and rendered views
	Workers int    // views evaluated concurrently per job
}

// Load reads the configuration from environment variables, falling back to
// defaults suitable for local use.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/zoomdive.db"
	}

	workers := runtime.NumCPU()
	if s := os.Getenv("WORKERS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			workers = n
		}
	}

	return &Config{
		Port:    port,
		DBPath:  dbPath,
		Workers: workers,
	}
}
