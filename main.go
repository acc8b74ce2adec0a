package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hacksstv/audio"
	"hacksstv/config"
	"hacksstv/sdr"
	"hacksstv/source"
	"hacksstv/sstv"
	"hacksstv/txlog"
	"hacksstv/ui"
)

// captureTimeout bounds how long ffmpeg may take to deliver a webcam frame.
const captureTimeout = 15 * time.Second

func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	config.SetupLogging(os.Stderr, cfg.Verbose, cfg.Timestamps)

	if err := run(cfg); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	for _, line := range strings.Split(cfg.Mode.Describe(), "\n") {
		log.Printf("[DEBUG] %s", line)
	}

	// opened first so a bad path fails before anything is produced
	var txl *txlog.Logger
	if cfg.TxLog != "" {
		var err error
		if txl, err = txlog.Open(cfg.TxLog); err != nil {
			return err
		}
		defer txl.Close()
	}

	// 1. Get the picture to send (file, test pattern or webcam)
	frame, sourceName, err := loadFrame(cfg)
	if err != nil {
		return err
	}
	applyOverlays(frame, cfg.TextOverlays)
	if cfg.Keep {
		path := cfg.IntermediatePath()
		if err := source.SavePNG(path, frame.Image()); err != nil {
			return err
		}
		log.Printf("[INFO] Processed image kept as %s", path)
	}

	// 2. Encode it
	enc, err := encode(cfg, frame)
	if err != nil {
		return err
	}
	samples := enc.Samples()

	// 3. Write the audio file
	if err := audio.Write(cfg.Output, cfg.AudioFormat, samples, cfg.SampleRate); err != nil {
		return err
	}
	txl.Generated(txlog.Entry{
		Mode:       cfg.Mode.Name,
		VIS:        cfg.Mode.VIS,
		SampleRate: cfg.SampleRate,
		Samples:    len(samples),
		Output:     cfg.Output,
		Source:     sourceName,
		Callsign:   cfg.Callsign,
	})

	ui.PrintSummary(os.Stdout, "SSTV audio written", summaryRows(cfg, sourceName, len(samples), txl.Session()))

	// 4. Optionally put it on the air
	if cfg.Transmit {
		if err := transmit(cfg, samples, txl); err != nil {
			return fmt.Errorf("transmission failed: %w", err)
		}
	}
	return nil
}

// loadFrame produces the picture at the mode's resolution, along with a
// description of where it came from.
func loadFrame(cfg *config.Config) (*source.Frame, string, error) {
	w, h := cfg.Mode.Width, cfg.Mode.Lines

	switch {
	case cfg.Test:
		log.Println("[INFO] Test mode: SMPTE color bars will be encoded.")
		return source.ColorBars(w, h), "test pattern", nil

	case cfg.Webcam:
		ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
		defer cancel()
		img, err := source.Capture(ctx, source.CaptureConfig{Device: cfg.Device, Callsign: cfg.Callsign}, w, h)
		if err != nil {
			return nil, "", fmt.Errorf("webcam capture failed: %w", err)
		}
		return source.NewFrame(img), "webcam " + cfg.Device, nil
	}

	img, err := source.Load(cfg.Input)
	if err != nil {
		return nil, "", err
	}
	log.Printf("[DEBUG] %s is %dx%d, fitting to %dx%d (%s)",
		cfg.Input, img.Bounds().Dx(), img.Bounds().Dy(), w, h, cfg.AspectMode)
	return source.NewFrame(fitted(img, w, h, cfg.AspectMode)), cfg.Input, nil
}

func applyOverlays(frame *source.Frame, overlays []source.Overlay) {
	for _, o := range overlays {
		o.Draw(frame.Image())
		log.Printf("[DEBUG] Overlay %q drawn", o.Text)
	}
}

func fitted(img image.Image, w, h int, a source.Aspect) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds() == image.Rect(0, 0, w, h) {
		return rgba
	}
	return source.Fit(img, w, h, a)
}

// encode runs the encoder over frame, showing progress on a terminal or
// in the log otherwise, and appends the CW signature.
func encode(cfg *config.Config, frame *source.Frame) (*sstv.Encoder, error) {
	var report func(done, total int)
	enc, err := sstv.New(cfg.SampleRate, sstv.WithProgress(func(done, total int) {
		report(done, total)
	}))
	if err != nil {
		return nil, err
	}
	enc.SetProtocol(cfg.Mode.VIS)

	log.Printf("[INFO] Encoding %s at %d Hz", cfg.Mode, cfg.SampleRate)
	start := time.Now()
	work := func(r func(done, total int)) error {
		report = r
		return enc.EncodeFrame(frame)
	}
	if ui.IsTerminal(os.Stdout) && !cfg.NoUI {
		err = ui.Run(cfg.Mode.Name, work)
	} else {
		err = work(ui.LogProgress(cfg.Mode.Name))
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[DEBUG] Encoded %d samples in %s", enc.Len(), time.Since(start).Round(time.Millisecond))

	if cfg.Callsign != "" {
		enc.AddSignature(cfg.Callsign, cfg.WPM, float64(cfg.Tone))
		log.Printf("[INFO] Added CW signature %q at %d WPM, %d Hz", sstv.SignatureText(cfg.Callsign), cfg.WPM, cfg.Tone)
	}

	if enc.Truncated() {
		return nil, fmt.Errorf("output exceeds the %d-sample buffer; nothing written", enc.Cap())
	}
	return enc, nil
}

// transmit sends samples with the first HackRF until done or interrupted.
func transmit(cfg *config.Config, samples []uint16, txl *txlog.Logger) error {
	dev, closeDev, err := sdr.Open()
	if err != nil {
		return err
	}
	defer closeDev()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("[INFO] Transmitting. Press Ctrl+C to stop.")
	start := time.Now()
	err = sdr.Transmit(ctx, dev, cfg, samples, cfg.SampleRate)
	txl.Transmitted(cfg.Frequency, cfg.Gain, time.Since(start), err)
	if err != nil {
		return err
	}
	log.Println("[INFO] Transmission complete.")
	return nil
}

func summaryRows(cfg *config.Config, sourceName string, n int, session string) [][2]string {
	seconds := float64(n) / float64(cfg.SampleRate)
	rows := [][2]string{
		{"Mode", cfg.Mode.String()},
		{"Source", sourceName},
		{"Output", cfg.Output},
		{"Format", fmt.Sprintf("%s, %d Hz, 16-bit mono", cfg.AudioFormat, cfg.SampleRate)},
		{"Length", fmt.Sprintf("%.1f s (%d samples)", seconds, n)},
	}
	if cfg.Callsign != "" {
		rows = append(rows, [2]string{"CW", fmt.Sprintf("%s, %d WPM, %d Hz", sstv.SignatureText(cfg.Callsign), cfg.WPM, cfg.Tone)})
	}
	if cfg.Transmit {
		rows = append(rows, [2]string{"Transmit", fmt.Sprintf("%.3f MHz, gain %d", cfg.Frequency, cfg.Gain)})
	}
	if session != "" {
		rows = append(rows, [2]string{"Session", session})
	}
	return rows
}
