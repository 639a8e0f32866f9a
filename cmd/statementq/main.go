// Command statementq delivers gameplay statements to a collection endpoint through a
// durable local queue.
//
// Records are kept in a durable store (sqlite by default; mysql, pebble, redis and
// dynamodb are available) until the endpoint acknowledges them, so statements queued
// while offline are delivered by a later flush.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const envFileVar = "STATEMENTQ_ENV_FILE"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	envFile := os.Getenv(envFileVar)
	if envFile == "" {
		envFile = ".env"
	}
	root, err := newRootCmd(envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
