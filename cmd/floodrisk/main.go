// Package main provides the entry point for the floodrisk service and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/flood-risk-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
