package main

import (
	"os"

	"alfreds-toolbox/infrastructure/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Command failed")
		os.Exit(1)
	}
}
