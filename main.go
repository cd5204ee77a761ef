package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lcalzada-xor/codeprobe/internal/config"
	"github.com/lcalzada-xor/codeprobe/internal/logging"
	"github.com/lcalzada-xor/codeprobe/internal/network"
	"github.com/lcalzada-xor/codeprobe/internal/output"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		exitWithError(err)
	}

	log := logging.New(os.Stderr, cfg.Verbose)

	payload, err := cfg.Payload()
	if err != nil {
		exitWithError(err)
	}

	if err := run(context.Background(), cfg, payload, os.Stdout, log); err != nil {
		fmt.Fprintf(os.Stderr, "Result can't be saved in %s due to exception: %v\n", cfg.JSONPath, err)
		os.Exit(1)
	}
}

// run sends a single probe and prints its outcome. Transport failures are
// printed, not returned; only a failed report write produces an error.
func run(ctx context.Context, cfg config.Config, payload string, stdout io.Writer, log logrus.FieldLogger) error {
	probe := network.NewRequest(cfg.URL, payload)

	resp, sendErr := network.Send(ctx, cfg, probe, log)
	if sendErr != nil {
		log.WithError(sendErr).Debug("probe failed")
		output.PrintError(stdout, sendErr)
	} else {
		output.PrintResponse(stdout, resp)
	}

	if cfg.JSONPath == "" {
		return nil
	}

	result := output.NewResult(probe, resp, sendErr, time.Now().UTC())
	if err := output.WriteJSON(cfg.JSONPath, result); err != nil {
		return err
	}
	log.WithField("path", cfg.JSONPath).Debug("result written")
	return nil
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Usage: %s -u URL [Options] use -h for help\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
