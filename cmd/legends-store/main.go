package main

import (
	"os"

	"github.com/tflegends/legends/internal/config"
	"github.com/tflegends/legends/internal/constants"
	"github.com/tflegends/legends/internal/logging"
	"github.com/tflegends/legends/internal/sheetserver"
)

func main() {
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./legends_config.json"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid legends configuration", err, logging.Fields{"config_path": configPath})
	}

	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	db, err := sheetserver.OpenAndMigrate(dbPath, cfg.SeedCards)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}

	server := sheetserver.New(db)
	router := server.Router()

	logging.Info("Record store started", logging.Fields{constants.LogFieldAddr: cfg.ServerAddress})
	if err := router.Run(cfg.ServerAddress); err != nil {
		logging.Fatal("Failed to start record store", err, nil)
	}
}
