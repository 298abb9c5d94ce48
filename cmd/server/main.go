// Package main is the entry point for the docker-manager-mcp server.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}
