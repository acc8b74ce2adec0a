package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// ErrFileFormat is returned by LoadFile for an unrecognised extension.
var ErrFileFormat = errors.New("unsupported station file format")

// File is a station file: the settings an operator keeps between runs.
// Zero values mean "not set".
type File struct {
	Station StationSection `yaml:"station"`
	Output  OutputSection  `yaml:"output"`
	Radio   RadioSection   `yaml:"radio"`
	Webcam  WebcamSection  `yaml:"webcam"`
}

// StationSection identifies the operator.
type StationSection struct {
	Callsign string   `yaml:"callsign"`
	WPM      int      `yaml:"cw_wpm"`
	Tone     int      `yaml:"cw_tone"`
	Overlays []string `yaml:"overlays"`
}

// OutputSection selects the encoding.
type OutputSection struct {
	Protocol   string `yaml:"protocol"`
	Format     string `yaml:"format"`
	SampleRate int    `yaml:"sample_rate"`
	Aspect     string `yaml:"aspect"`
	TxLog      string `yaml:"txlog"`
}

// RadioSection holds HackRF transmit settings.
type RadioSection struct {
	Frequency float64 `yaml:"frequency_mhz"`
	Gain      *int    `yaml:"gain"`
}

// WebcamSection selects the capture device.
type WebcamSection struct {
	Device string `yaml:"device"`
}

// LoadFile reads a station file. The format follows the extension: .yaml
// or .yml for YAML, .ini for INI.
func LoadFile(path string) (*File, error) {
	log.Printf("[INFO] Loading settings from '%s'", path)

	var (
		f   *File
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err = loadYAML(path)
	case ".ini":
		f, err = loadINI(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrFileFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config from %s: %w", path, err)
	}
	return f, nil
}

func loadYAML(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func loadINI(path string) (*File, error) {
	// Repeated Overlay keys each add one overlay. Hex colours contain '#',
	// so only " #" and " ;" start a comment.
	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowShadows:             true,
		SpaceBeforeInlineComment: true,
	}, path)
	if err != nil {
		return nil, err
	}

	station := cfg.Section("Station")
	output := cfg.Section("Output")
	radio := cfg.Section("Radio")

	wpm, wpmErr := optionalInt(station.Key("WPM"))
	tone, toneErr := optionalInt(station.Key("Tone"))
	rate, rateErr := optionalInt(output.Key("SampleRate"))
	freq, freqErr := optionalFloat(radio.Key("Frequency"))

	f := &File{
		Station: StationSection{
			Callsign: station.Key("Callsign").String(),
			WPM:      wpm,
			Tone:     tone,
		},
		Output: OutputSection{
			Protocol:   output.Key("Protocol").String(),
			Format:     output.Key("Format").String(),
			SampleRate: rate,
			Aspect:     output.Key("Aspect").String(),
			TxLog:      output.Key("TxLog").String(),
		},
		Radio: RadioSection{
			Frequency: freq,
		},
		Webcam: WebcamSection{
			Device: cfg.Section("Webcam").Key("Device").String(),
		},
	}

	if station.HasKey("Overlay") {
		f.Station.Overlays = station.Key("Overlay").ValueWithShadows()
	}

	var gainErr error
	if radio.HasKey("Gain") {
		var gain int
		gain, gainErr = radio.Key("Gain").Int()
		f.Radio.Gain = &gain
	}

	return f, errors.Join(wpmErr, toneErr, rateErr, freqErr, gainErr)
}

func optionalInt(k *ini.Key) (int, error) {
	if k.String() == "" {
		return 0, nil
	}
	v, err := k.Int()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k.Name(), err)
	}
	return v, nil
}

func optionalFloat(k *ini.Key) (float64, error) {
	if k.String() == "" {
		return 0, nil
	}
	v, err := k.Float64()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k.Name(), err)
	}
	return v, nil
}

// apply copies the values set in f into cfg, skipping any setting whose
// flag was given on the command line. It reports whether the file set a
// CW speed or tone.
func (f *File) apply(cfg *Config, changed func(name string) bool) bool {
	setString := func(flag string, dst *string, v string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}
	setInt := func(flag string, dst *int, v int) bool {
		if v != 0 && !changed(flag) {
			*dst = v
			return true
		}
		return false
	}

	setString("callsign", &cfg.Callsign, f.Station.Callsign)
	cwSet := setInt("wpm", &cfg.WPM, f.Station.WPM)
	cwSet = setInt("tone", &cfg.Tone, f.Station.Tone) || cwSet

	if len(f.Station.Overlays) > 0 && !changed("overlay") {
		cfg.Overlays = f.Station.Overlays
	}

	setString("protocol", &cfg.Protocol, f.Output.Protocol)
	setString("format", &cfg.Format, f.Output.Format)
	setInt("rate", &cfg.SampleRate, f.Output.SampleRate)
	setString("aspect", &cfg.Aspect, f.Output.Aspect)
	setString("txlog", &cfg.TxLog, f.Output.TxLog)

	if f.Radio.Frequency != 0 && !changed("freq") {
		cfg.Frequency = f.Radio.Frequency
	}
	if f.Radio.Gain != nil && !changed("gain") {
		cfg.Gain = *f.Radio.Gain
	}
	setString("device", &cfg.Device, f.Webcam.Device)

	return cwSet
}
