// Package main provides the entry point for the adsctl CLI.
package main

import (
	"os"

	"github.com/campaignlabs/ads-console/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
