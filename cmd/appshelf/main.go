// Package main provides the entry point for the appshelf CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/appshelf/cmd/appshelf/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
