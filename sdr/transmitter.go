// Package sdr transmits encoded SSTV audio as narrowband FM with a HackRF.
package sdr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/samuel/go-hackrf/hackrf"

	"hacksstv/config"
)

// tailBuffers is the number of silent buffers sent after the signal so
// the transfers already queued in the driver drain before TX stops.
const tailBuffers = 4

// Device is the part of a HackRF that Transmit drives. *hackrf.Device
// implements it.
type Device interface {
	SetFreq(freqHz uint64) error
	SetSampleRate(rate float64) error
	SetTXVGAGain(gain int) error
	SetAmpEnable(enable bool) error
	StartTX(cb hackrf.Callback) error
	StopTX() error
}

var _ Device = (*hackrf.Device)(nil)

// Open initialises libhackrf and opens the first device. The returned
// function closes the device and releases the library.
func Open() (*hackrf.Device, func(), error) {
	if err := hackrf.Init(); err != nil {
		return nil, nil, fmt.Errorf("hackrf.Init() failed: %w", err)
	}
	dev, err := hackrf.Open()
	if err != nil {
		hackrf.Exit()
		return nil, nil, fmt.Errorf("hackrf.Open() failed: %w", err)
	}
	return dev, func() {
		dev.Close()
		hackrf.Exit()
	}, nil
}

// Transmit configures dev and sends samples, recorded at audioRate, once.
// It returns when the whole signal has been streamed or ctx is done.
func Transmit(ctx context.Context, dev Device, cfg *config.Config, samples []uint16, audioRate int) error {
	txFrequencyHz := uint64(math.Round(cfg.Frequency * 1_000_000))

	if err := dev.SetFreq(txFrequencyHz); err != nil {
		return err
	}
	if err := dev.SetSampleRate(RFSampleRate); err != nil {
		return err
	}
	if err := dev.SetTXVGAGain(cfg.Gain); err != nil {
		return err
	}
	if err := dev.SetAmpEnable(false); err != nil {
		return err
	}

	mod := NewModulator(samples, audioRate, RFSampleRate, Deviation)
	duration := time.Duration(float64(mod.Len()) / RFSampleRate * float64(time.Second))
	log.Printf("[INFO] sdr: transmitting %s on %.3f MHz, NBFM %.1f kHz deviation (gain %d)",
		duration.Round(time.Second/10), float64(txFrequencyHz)/1e6, Deviation/1e3, cfg.Gain)

	drained := make(chan struct{})
	var once sync.Once
	silent := 0
	// StartTX is non-blocking; the callback runs on the driver's thread.
	err := dev.StartTX(func(buf []byte) error {
		if mod.Fill(buf) == 0 {
			silent++
			if silent >= tailBuffers {
				once.Do(func() { close(drained) })
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	select {
	case <-drained:
		log.Printf("[DEBUG] sdr: %d RF samples sent", mod.Len())
	case <-ctx.Done():
		log.Printf("[WARN] sdr: transmission stopped early: %v", ctx.Err())
	}
	stopErr := dev.StopTX()
	if ctx.Err() != nil {
		return errors.Join(ctx.Err(), stopErr)
	}
	return stopErr
}
