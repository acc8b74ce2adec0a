package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"hacksstv/audio"
	"hacksstv/source"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var out bytes.Buffer
	return Parse("hacksstv", args, &out)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(t, "-i", "photos/cat.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode.VIS != 44 || cfg.AudioFormat != audio.WAV || cfg.SampleRate != 22050 || cfg.AspectMode != source.AspectCenter {
		t.Errorf("defaults = VIS %d, %v, %d Hz, %v", cfg.Mode.VIS, cfg.AudioFormat, cfg.SampleRate, cfg.AspectMode)
	}
	if cfg.Output != "photos/cat.wav" {
		t.Errorf("Output = %q, want photos/cat.wav", cfg.Output)
	}
	if cfg.WPM != 15 || cfg.Tone != 800 || cfg.Callsign != "" {
		t.Errorf("CW = %q %d WPM %d Hz", cfg.Callsign, cfg.WPM, cfg.Tone)
	}
	if cfg.Keep || cfg.Verbose || cfg.Transmit {
		t.Errorf("flags set by default: keep %v verbose %v tx %v", cfg.Keep, cfg.Verbose, cfg.Transmit)
	}
}

func TestParseOptions(t *testing.T) {
	cfg, err := parse(t, "-i", "in.png", "-o", "out/x.aiff", "-p", "R36", "-f", "aiff", "-r", "8000",
		"-a", "pad", "-C", "w1aw/p", "-W", "20", "-T", "1000", "-Z")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode.ShortName != "r36" || cfg.AudioFormat != audio.AIFF || cfg.SampleRate != 8000 || cfg.AspectMode != source.AspectPad {
		t.Errorf("parsed = %s %v %d %v", cfg.Mode.ShortName, cfg.AudioFormat, cfg.SampleRate, cfg.AspectMode)
	}
	if cfg.Callsign != "W1AW/P" || cfg.WPM != 20 || cfg.Tone != 1000 {
		t.Errorf("CW = %q %d %d", cfg.Callsign, cfg.WPM, cfg.Tone)
	}
	// -Z implies -v implies -K
	if !cfg.Timestamps || !cfg.Verbose || !cfg.Keep {
		t.Errorf("Z=%v v=%v K=%v", cfg.Timestamps, cfg.Verbose, cfg.Keep)
	}
	if cfg.Output != "out/x.aiff" || cfg.IntermediatePath() != "out/x_processed.png" {
		t.Errorf("Output = %q, intermediate %q", cfg.Output, cfg.IntermediatePath())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", nil, "input file (-i) is required"},
		{"input and test", []string{"-i", "a.png", "--test"}, "cannot be combined"},
		{"test and webcam", []string{"--test", "--webcam"}, "exclusive"},
		{"protocol", []string{"-i", "a.png", "-p", "pd90"}, `unknown protocol "pd90"`},
		{"format", []string{"-i", "a.png", "-f", "ogg"}, "unknown audio format"},
		{"rate low", []string{"-i", "a.png", "-r", "7999"}, "sample rate must be 8000-48000 Hz"},
		{"rate high", []string{"-i", "a.png", "-r", "48001"}, "sample rate must be 8000-48000 Hz"},
		{"aspect", []string{"-i", "a.png", "-a", "zoom"}, "unknown aspect mode"},
		{"callsign char", []string{"-i", "a.png", "-C", "W1-AW"}, "invalid character '-'"},
		{"callsign long", []string{"-i", "a.png", "-C", strings.Repeat("A", 32)}, "callsign too long"},
		{"wpm without callsign", []string{"-i", "a.png", "-W", "20"}, "-C <callsign> is required"},
		{"tone without callsign", []string{"-i", "a.png", "-T", "900"}, "-C <callsign> is required"},
		{"wpm range", []string{"-i", "a.png", "-C", "K1A", "-W", "51"}, "CW WPM must be 1-50"},
		{"tone range", []string{"-i", "a.png", "-C", "K1A", "-T", "399"}, "CW tone must be 400-2000 Hz"},
		{"output chars", []string{"-i", "a.png", "-o", "x;rm.wav"}, "invalid character"},
		{"input long", []string{"-i", strings.Repeat("a", 256)}, "input filename too long"},
		{"gain", []string{"--test", "--gain", "48"}, "TX gain must be 0-47"},
		{"freq", []string{"--test", "--freq", "0.5"}, "frequency must be"},
		{"unknown flag", []string{"-i", "a.png", "-x"}, "unknown shorthand flag"},
		{"extra argument", []string{"-i", "a.png", "b.png"}, "unexpected argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestParseReportsAllErrors(t *testing.T) {
	_, err := parse(t, "-i", "a.png", "-p", "x", "-f", "y", "-r", "1")
	for _, want := range []string{"unknown protocol", "unknown audio format", "sample rate"} {
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("err = %v, missing %q", err, want)
		}
	}
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := Parse("hacksstv", []string{"-h"}, &out)
	if !errors.Is(err, ErrHelp) {
		t.Fatalf("err = %v, want ErrHelp", err)
	}
	for _, want := range []string{"Usage: hacksstv", "--protocol", "m1, m2, s1, s2, sdx, r36, r72", "Examples:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		in   string
		f    audio.Format
		want string
	}{
		{"cat.jpg", audio.WAV, "cat.wav"},
		{"dir.d/cat", audio.AIFF, "dir.d/cat.aiff"},
		{"a.b.png", audio.WAV, "a.b.wav"},
		{"", audio.WAV, "sstv.wav"},
	}
	for _, tt := range tests {
		if got := DefaultOutput(tt.in, tt.f); got != tt.want {
			t.Errorf("DefaultOutput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const stationYAML = `
station:
  callsign: g4abc
  cw_wpm: 25
output:
  protocol: s2
  sample_rate: 44100
  txlog: /var/log/sstv.jsonl
radio:
  frequency_mhz: 433.9
  gain: 0
webcam:
  device: /dev/video1
`

const stationINI = `
[Station]
Callsign = G4ABC
WPM = 25

[Output]
Protocol = s2
SampleRate = 44100
TxLog = /var/log/sstv.jsonl

[Radio]
Frequency = 433.9
Gain = 0

[Webcam]
Device = /dev/video1
`

func TestStationFile(t *testing.T) {
	for name, content := range map[string]string{"station.yaml": stationYAML, "station.ini": stationINI} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, content)
			cfg, err := parse(t, "--webcam", "--config", path, "-r", "11025")
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Callsign != "G4ABC" || cfg.WPM != 25 || cfg.Mode.ShortName != "s2" {
				t.Errorf("station = %q %d %s", cfg.Callsign, cfg.WPM, cfg.Mode.ShortName)
			}
			if cfg.SampleRate != 11025 {
				t.Errorf("SampleRate = %d, want the flag value 11025", cfg.SampleRate)
			}
			if cfg.Frequency != 433.9 || cfg.Gain != 0 || cfg.Device != "/dev/video1" || cfg.TxLog != "/var/log/sstv.jsonl" {
				t.Errorf("radio = %v MHz gain %d device %q txlog %q", cfg.Frequency, cfg.Gain, cfg.Device, cfg.TxLog)
			}
			if cfg.Output != "sstv.wav" {
				t.Errorf("Output = %q", cfg.Output)
			}
		})
	}
}

func TestStationFileCWNeedsCallsign(t *testing.T) {
	path := writeFile(t, "station.yaml", "station:\n  cw_tone: 600\n")
	if _, err := parse(t, "--test", "--config", path); err == nil || !strings.Contains(err.Error(), "-C <callsign> is required") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(writeFile(t, "station.toml", "")); !errors.Is(err, ErrFileFormat) {
		t.Errorf("toml: err = %v, want ErrFileFormat", err)
	}
	if _, err := LoadFile(writeFile(t, "bad.ini", "[Station]\nWPM = fast\n")); err == nil || !strings.Contains(err.Error(), "WPM") {
		t.Errorf("bad ini: err = %v", err)
	}
	if _, err := LoadFile(writeFile(t, "bad.yaml", "station: [1, 2\n")); err == nil {
		t.Error("bad yaml: no error")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing: err = %v", err)
	}
}

func TestParseOverlays(t *testing.T) {
	cfg, err := parse(t, "--test", "--overlay", "N0CALL|pos=bottom", "--overlay", "EM12")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.TextOverlays) != 2 {
		t.Fatalf("%d overlays, want 2", len(cfg.TextOverlays))
	}
	if o := cfg.TextOverlays[0]; o.Text != "N0CALL" || o.Place != source.PlaceBottom {
		t.Errorf("first overlay = %+v", o)
	}

	_, err = parse(t, "--test", "--overlay", "X|size=1", "--overlay", "Y|pos=moon")
	for _, want := range []string{"out of range", "unknown placement"} {
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("err = %v, want mention of %q", err, want)
		}
	}
}

func TestStationFileOverlays(t *testing.T) {
	tests := map[string]string{
		"station.yaml": "station:\n  overlays:\n    - \"N0CALL|pos=top\"\n    - \"EM12|pos=bottom|bg=#000000\"\n",
		"station.ini":  "[Station]\nOverlay = N0CALL|pos=top\nOverlay = EM12|pos=bottom|bg=#000000\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, content)
			cfg, err := parse(t, "--test", "--config", path)
			if err != nil {
				t.Fatal(err)
			}
			want := []string{"N0CALL|pos=top", "EM12|pos=bottom|bg=#000000"}
			if !reflect.DeepEqual(cfg.Overlays, want) {
				t.Errorf("Overlays = %q, want %q", cfg.Overlays, want)
			}

			// the flag replaces the file's list
			cfg, err = parse(t, "--test", "--config", path, "--overlay", "OTHER")
			if err != nil {
				t.Fatal(err)
			}
			if len(cfg.TextOverlays) != 1 || cfg.TextOverlays[0].Text != "OTHER" {
				t.Errorf("TextOverlays = %+v", cfg.TextOverlays)
			}
		})
	}
}
