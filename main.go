// @title AICU 통계 API
// @version 1.0
// @description Statistics aggregation and synchronization backend for the AICU study tracker.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"aicu_backend/internal/app"
	"aicu_backend/internal/config"
	"aicu_backend/pkg/configwatcher"
	"aicu_backend/pkg/logger"
	"flag"
	"log"
	"path/filepath"
)

func main() {
	configPath := flag.String("config", "configs", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig(filepath.Join(*configPath, "config.yaml"), application.ApplyConfig)

	application.Run()
}
