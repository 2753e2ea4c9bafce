// Command dripctl computes a single insulin infusion decision from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"dripcalc/internal/cli"
	"dripcalc/internal/logger"
)

func main() {
	logger.Logger = logger.New(os.Stderr, true)

	cfg, err := cli.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("invalid arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, cfg, os.Stdout); err != nil {
		logger.Logger.Fatal().Err(err).Msg("dripctl failed")
	}
}
