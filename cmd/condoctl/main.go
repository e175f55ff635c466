package main

import (
	"os"

	"condomanager/cmd/condoctl/commands"
	"condomanager/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := commands.Execute(); err != nil {
		logger.Get().Errorf("condoctl: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}
