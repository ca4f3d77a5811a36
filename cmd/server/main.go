package main

import (
	"context"
	"log"

	"github.com/iammonth1997/tdlao-hr-web/internal/server"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	ctx := context.Background()

	// optional .env for local development
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
