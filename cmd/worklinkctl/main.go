package main

import (
	"os"
	"time"

	"github.com/worklink-ci/worklinkctl/internal/cli"
	"github.com/worklink-ci/worklinkctl/internal/logging"
)

func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)

	err := cli.Execute(os.Args[1:], logger)
	logging.Flush(2 * time.Second)
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
