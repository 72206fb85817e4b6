package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	savectl "github.com/louisbranch/continuity/internal/cmd/savectl"
	"github.com/louisbranch/continuity/internal/platform/config"
	"github.com/louisbranch/continuity/internal/platform/otel"
)

func main() {
	log.SetPrefix("[SAVECTL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("savectl: %v", err)
	}

	shutdown, err := otel.Setup(ctx, "savectl", cfg.OTELEndpoint)
	if err != nil {
		log.Printf("WARN otel setup failed: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("WARN otel shutdown failed: %v", err)
		}
	}()

	if err := savectl.Execute(ctx, cfg); err != nil {
		config.Exitf("savectl: %v", err)
	}
}
