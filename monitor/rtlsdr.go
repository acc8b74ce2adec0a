// Package monitor receives narrowband FM with an RTL-SDR and turns it back
// into encoder-style audio, so a transmission can be recorded and checked
// with any SSTV decoder.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"

	rtl "github.com/jpoirier/gortlsdr"
)

// ErrNoDevice is returned by SetupDevice when no RTL-SDR is attached.
var ErrNoDevice = errors.New("no RTL-SDR devices found")

// Config holds settings for the RTL-SDR device.
type Config struct {
	FrequencyHz  int
	SampleRateHz int
	Gain         int // tenths of a dB
}

// SetupDevice initializes and configures the first RTL-SDR device.
func SetupDevice(cfg Config) (*rtl.Context, error) {
	devCount := rtl.GetDeviceCount()
	if devCount == 0 {
		return nil, ErrNoDevice
	}
	log.Printf("[INFO] monitor: found %d RTL-SDR device(s), using device 0", devCount)

	dongle, err := rtl.Open(0)
	if err != nil {
		return nil, fmt.Errorf("error opening RTL-SDR device: %w", err)
	}

	if err := dongle.SetCenterFreq(cfg.FrequencyHz); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetCenterFreq failed: %w", err)
	}
	log.Printf("[INFO] monitor: tuned to %.3f MHz", float64(cfg.FrequencyHz)/1e6)

	if err := dongle.SetSampleRate(cfg.SampleRateHz); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetSampleRate failed: %w", err)
	}
	log.Printf("[DEBUG] monitor: sample rate %.3f MHz", float64(cfg.SampleRateHz)/1e6)

	if err := dongle.SetTunerGainMode(true); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetTunerGainMode failed: %w", err)
	}
	if err := dongle.SetTunerGain(cfg.Gain); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetTunerGain failed: %w", err)
	}
	log.Printf("[DEBUG] monitor: tuner gain set to MANUAL %.1f dB", float64(cfg.Gain)/10.0)

	if err := dongle.ResetBuffer(); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("ResetBuffer failed: %w", err)
	}

	return dongle, nil
}

// Reader is the synchronous read interface of an RTL-SDR. *rtl.Context
// implements it.
type Reader interface {
	ReadSync(buf []uint8, len int) (int, error)
}

var _ Reader = (*rtl.Context)(nil)

// Record reads from r and demodulates until n audio samples have been
// produced or ctx is done. The samples gathered so far are returned in
// either case.
func Record(ctx context.Context, r Reader, d *Demodulator, n int) ([]uint16, error) {
	out := make([]uint16, 0, n)
	buf := make([]byte, rtl.DefaultBufLength)
	for len(out) < n {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		read, err := r.ReadSync(buf, len(buf))
		if err != nil {
			return out, fmt.Errorf("ReadSync: %w", err)
		}
		if read != len(buf) {
			log.Printf("[WARN] monitor: short read (%d / %d bytes)", read, len(buf))
		}
		out = d.Process(buf[:read&^1], out)
	}
	return out[:n], nil
}
