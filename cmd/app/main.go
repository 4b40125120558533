package main

import (
	"log"
	"os"

	"github.com/andreyxaxa/Photo-Ingest/config"
	"github.com/andreyxaxa/Photo-Ingest/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	// Config
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	if _, err := os.Stat(envFile); err == nil {
		// переменные окружения процесса имеют приоритет над файлом
		if err = godotenv.Load(envFile); err != nil {
			log.Fatalf("config error: load %s: %s", envFile, err)
		}
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	app.Run(cfg)
}
