// The server coordinates batch Mandelbrot render jobs: clients submit a
// centers x zoom-levels view set over HTTP, a worker pool evaluates and
// renders the views, and finished images are served back from the job store.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"zoomdive/internal/config"
	"zoomdive/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	cfg := config.Load()

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("store.Open: %w", err)
	}
	defer st.Close()
	log.Printf("job store ready: %s", cfg.DBPath)

	s := &server{st: st, cfg: cfg}
	r := setupRouter(s)

	log.Printf("listening on http://localhost%s (%d workers per job)", cfg.Port, cfg.Workers)
	return r.Run(cfg.Port)
}
