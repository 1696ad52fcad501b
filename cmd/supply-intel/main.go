/*
Package main is the entry point for the supply-intel CLI.

supply-intel matches buyers to suppliers, forecasts product demand and
scores suppliers for a B2B supply-chain marketplace.

Usage:
  supply-intel [command]

Available Commands:
  train       Train supplier matching and/or demand forecasting
  recommend   Recommend suppliers for a buyer profile
  similar     List suppliers similar to a trained supplier
  forecast    Forecast demand for a product
  score       Score a supplier
  status      Show model state and recent activity
  config      Manage the configuration file
  version     Show version information

Examples:
  # Train both models from files
  supply-intel train --suppliers suppliers.yaml --demand history.json

  # Recommend suppliers
  supply-intel recommend --description "stainless fasteners for marine use"

  # Keep the model in redis
  supply-intel train --suppliers suppliers.yaml --model redis://localhost:6379/0?key=intel
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/khanglvm/supply-intel/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
