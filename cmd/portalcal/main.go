package main

import (
	"os"

	"portalcal/internal/commands"
	appLog "portalcal/internal/log"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		appLog.Error("portalcal failed", err)
		os.Exit(1)
	}
}
