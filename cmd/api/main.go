package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jun/gophbox/internal/app"
	"github.com/jun/gophbox/internal/config"
	"github.com/jun/gophbox/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	application, err := app.NewApp(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	lambda.Start(application.HandleRequest)
}
