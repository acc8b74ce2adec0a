// rtlmon records narrowband FM from an RTL-SDR to an audio file, so an SSTV
// transmission can be checked with any decoder.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hacksstv/audio"
	"hacksstv/config"
	"hacksstv/monitor"
	"hacksstv/sdr"
)

func main() {
	cfg, err := parseOptions(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	config.SetupLogging(os.Stderr, cfg.Verbose, cfg.Timestamps)

	demod, err := monitor.NewDemodulator(cfg.SDR.SampleRateHz, cfg.AudioRate, sdr.Deviation)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	dongle, err := monitor.SetupDevice(cfg.SDR)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	defer dongle.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[INFO] Recording %s to %s. Press Ctrl+C to stop early.", cfg.Duration, cfg.Output)
	samples, err := monitor.Record(ctx, dongle, demod, cfg.Samples())
	switch {
	case errors.Is(err, context.Canceled):
		log.Printf("[INFO] Stopped after %.1f s", float64(len(samples))/float64(cfg.AudioRate))
	case err != nil:
		log.Printf("[ERROR] %v", err)
		if len(samples) == 0 {
			os.Exit(1)
		}
	}

	if err := audio.Write(cfg.Output, cfg.AudioFormat, samples, cfg.AudioRate); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	log.Printf("[INFO] Wrote %d samples to %s", len(samples), cfg.Output)
}
