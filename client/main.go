// Command client runs only the web client, configured from HRPULSE_*
// variables and an optional .env file in the working directory.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/phillip-england/hrpulse/internal/config"
	"github.com/phillip-england/hrpulse/internal/envutil"
	"github.com/phillip-england/hrpulse/internal/logging"
	"github.com/phillip-england/hrpulse/internal/webapp"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := envutil.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	level, err := cfg.Level()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.Setup(os.Stderr, level, cfg.LogFormat)

	if err := webapp.Run(ctx, webapp.ConfigFrom(cfg), logger); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
