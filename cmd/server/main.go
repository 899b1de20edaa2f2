package main

import (
	"context"
	"log"

	"legacyvault/internal/server"
	"legacyvault/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app := server.NewApp(cfg)
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
