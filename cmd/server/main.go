package main

import (
	"context"
	"log"
	"os"

	"github.com/abanwa/twitter/internal/logging"
	"github.com/abanwa/twitter/internal/server"
	"github.com/abanwa/twitter/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("config error: %v", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Env, os.Stdout)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "app init error", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
