package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/pflag"

	"hacksstv/audio"
	"hacksstv/config"
	"hacksstv/monitor"
)

// Receive limits. The RTL2832 accepts 225-300 kHz and 0.9-3.2 MHz.
const (
	maxRecord    = 10 * time.Minute
	maxTunerGain = 496 // tenths of a dB
)

// options holds rtlmon's settings.
type options struct {
	SDR monitor.Config

	Output     string
	Format     string
	AudioRate  int
	Duration   time.Duration
	Verbose    bool
	Timestamps bool

	AudioFormat audio.Format
}

// parseOptions reads rtlmon's flags from args.
func parseOptions(name string, args []string, out io.Writer) (*options, error) {
	cfg := &options{}
	var freq, bw float64

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false
	fs.Float64Var(&freq, "freq", config.DefaultFrequency, "Receive frequency in MHz")
	fs.Float64Var(&bw, "bw", float64(monitor.DefaultSampleRate)/1e6, "SDR sample rate in MHz")
	fs.IntVar(&cfg.SDR.Gain, "gain", 350, fmt.Sprintf("Tuner gain in tenths of a dB (0-%d)", maxTunerGain))
	fs.StringVarP(&cfg.Output, "output", "o", "monitor.wav", "Recorded audio file")
	fs.StringVarP(&cfg.Format, "format", "f", config.DefaultFormat, "Audio format: wav or aiff")
	fs.IntVarP(&cfg.AudioRate, "rate", "r", monitor.DefaultAudioRate, "Audio sample rate in Hz")
	fs.DurationVarP(&cfg.Duration, "duration", "d", 2*time.Minute, "How long to record")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVarP(&cfg.Timestamps, "timestamps", "Z", false, "Timestamp log lines (implies -v)")
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s [options]\n\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if cfg.Timestamps {
		cfg.Verbose = true
	}

	cfg.SDR.FrequencyHz = int(math.Round(freq * 1_000_000))
	cfg.SDR.SampleRateHz = int(math.Round(bw * 1_000_000))

	var formatErr, freqErr, rateErr, gainErr, durErr error
	cfg.AudioFormat, formatErr = audio.ParseFormat(cfg.Format)
	if freq < 24 || freq > 1766 {
		freqErr = errors.New("frequency must be 24-1766 MHz")
	}
	if sr := cfg.SDR.SampleRateHz; !(sr > 225_000 && sr <= 300_000 || sr > 900_000 && sr <= 3_200_000) {
		rateErr = errors.New("SDR sample rate must be 0.225-0.3 or 0.9-3.2 MHz")
	} else if cfg.AudioRate <= 0 || sr%cfg.AudioRate != 0 {
		rateErr = fmt.Errorf("SDR sample rate %d is not a multiple of audio rate %d", sr, cfg.AudioRate)
	}
	if cfg.SDR.Gain < 0 || cfg.SDR.Gain > maxTunerGain {
		gainErr = fmt.Errorf("tuner gain must be 0-%d", maxTunerGain)
	}
	if cfg.Duration <= 0 || cfg.Duration > maxRecord {
		durErr = fmt.Errorf("duration must be positive and at most %s", maxRecord)
	}
	if err := errors.Join(formatErr, freqErr, rateErr, gainErr, durErr); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Samples is the number of audio samples to record.
func (c *options) Samples() int {
	return int(c.Duration.Seconds() * float64(c.AudioRate))
}
