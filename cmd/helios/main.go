// Package main provides the Helios Oracle-to-Spark-SQL converter CLI.
package main

import (
	"os"

	"github.com/helios-data/helios/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
