// Package main is the entry point for ridemart.
package main

import (
	"fmt"
	"os"

	"github.com/urbanfleet/ridemart/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
