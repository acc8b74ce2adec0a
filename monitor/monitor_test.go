package monitor

import (
	"context"
	"errors"
	"math"
	"testing"

	"hacksstv/sstv"
)

const deviation = 2500.0

// fmSource synthesises unsigned 8-bit I/Q for a carrier frequency-modulated
// by audio(t), where audio is in ±1 and t in seconds.
type fmSource struct {
	rate  float64
	audio func(t float64) float64
	n     int
	phase float64
	reads int
}

func (s *fmSource) ReadSync(buf []uint8, length int) (int, error) {
	s.reads++
	for i := 0; i+1 < length; i += 2 {
		t := float64(s.n) / s.rate
		s.phase += 2 * math.Pi * deviation * s.audio(t) / s.rate
		buf[i] = uint8(math.Round(iqBias + 127*math.Cos(s.phase)))
		buf[i+1] = uint8(math.Round(iqBias + 127*math.Sin(s.phase)))
		s.n++
	}
	return length &^ 1, nil
}

func mustDemod(t *testing.T) *Demodulator {
	t.Helper()
	d, err := NewDemodulator(DefaultSampleRate, DefaultAudioRate, deviation)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNewDemodulatorRates(t *testing.T) {
	if _, err := NewDemodulator(250_000, 24_000, deviation); err == nil {
		t.Error("expected error for a rate that is not a multiple")
	}
	if _, err := NewDemodulator(240_000, 0, deviation); err == nil {
		t.Error("expected error for a zero audio rate")
	}
}

func TestDemodulateOffset(t *testing.T) {
	src := &fmSource{rate: DefaultSampleRate, audio: func(float64) float64 { return 0.5 }}
	got, err := Record(context.Background(), src, mustDemod(t), DefaultAudioRate/2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != DefaultAudioRate/2 {
		t.Fatalf("got %d samples, want %d", len(got), DefaultAudioRate/2)
	}

	want := sstv.Center + 0.5*sstv.AmplitudeScale
	tol := 0.03 * sstv.AmplitudeScale
	// skip the filters' settling time
	for i := 100; i < len(got); i++ {
		if d := math.Abs(float64(got[i]) - want); d > tol {
			t.Fatalf("sample %d = %d, want %.0f ± %.0f", i, got[i], want, tol)
		}
	}
}

func TestDemodulateTone(t *testing.T) {
	const freq = 1900.0
	src := &fmSource{
		rate:  DefaultSampleRate,
		audio: func(t float64) float64 { return math.Sin(2 * math.Pi * freq * t) },
	}
	got, err := Record(context.Background(), src, mustDemod(t), DefaultAudioRate)
	if err != nil {
		t.Fatal(err)
	}

	// count rising zero crossings over the last half second
	start := DefaultAudioRate / 2
	crossings := 0
	var peak float64
	for i := start + 1; i < len(got); i++ {
		a := float64(sstv.ToSigned(got[i-1]))
		b := float64(sstv.ToSigned(got[i]))
		if a < 0 && b >= 0 {
			crossings++
		}
		peak = math.Max(peak, math.Abs(b))
	}
	measured := float64(crossings) / 0.5
	if math.Abs(measured-freq) > 10 {
		t.Errorf("measured %.0f Hz, want %.0f", measured, freq)
	}
	// within the passband the swing is close to full scale
	if peak < 0.9*sstv.AmplitudeScale || peak > 1.1*sstv.AmplitudeScale {
		t.Errorf("peak %.0f, want about %d", peak, sstv.AmplitudeScale)
	}
}

func TestProcessKeepsPhaseAcrossCalls(t *testing.T) {
	audio := func(t float64) float64 { return math.Sin(2 * math.Pi * 1200 * t) }

	whole := &fmSource{rate: DefaultSampleRate, audio: audio}
	buf := make([]byte, 48000)
	whole.ReadSync(buf, len(buf))
	want := mustDemod(t).Process(buf, nil)

	d := mustDemod(t)
	var got []uint16
	for _, chunk := range [][]byte{buf[:10002], buf[10002:30000], buf[30000:]} {
		got = d.Process(chunk, got)
	}
	if len(got) != len(want) {
		t.Fatalf("chunked len %d, whole len %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestToSampleClips(t *testing.T) {
	tests := []struct {
		x    float64
		want uint16
	}{
		{0, sstv.Center},
		{1, sstv.Center + sstv.AmplitudeScale},
		{-1, sstv.Center - sstv.AmplitudeScale},
		{10, math.MaxUint16},
		{-10, 0},
	}
	for _, tt := range tests {
		if got := toSample(tt.x); got != tt.want {
			t.Errorf("toSample(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

type failingReader struct{}

func (failingReader) ReadSync([]uint8, int) (int, error) { return 0, errors.New("usb gone") }

func TestRecordErrors(t *testing.T) {
	if _, err := Record(context.Background(), failingReader{}, mustDemod(t), 10); err == nil {
		t.Error("expected read error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fmSource{rate: DefaultSampleRate, audio: func(float64) float64 { return 0 }}
	_, err := Record(ctx, src, mustDemod(t), 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if src.reads != 0 {
		t.Errorf("%d reads after cancel", src.reads)
	}
}
