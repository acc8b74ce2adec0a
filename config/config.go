// Package config parses the command line and optional station file.
package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"hacksstv/audio"
	"hacksstv/source"
	"hacksstv/sstv"
)

// Limits enforced by Validate.
const (
	MaxPathLen     = 255
	MaxCallsignLen = 31
	MinWPM         = 1
	MaxWPM         = 50
	MinTone        = 400
	MaxTone        = 2000
	MaxGain        = 47
	MinFrequency   = 1.0    // MHz
	MaxFrequency   = 6000.0 // MHz
)

// Defaults for settings that are not required.
const (
	DefaultProtocol  = "m1"
	DefaultFormat    = "wav"
	DefaultAspect    = "center"
	DefaultFrequency = 145.5 // MHz, 2 m SSTV calling frequency
	DefaultGain      = 30
)

// ErrHelp is returned by Parse when -h or --help was given. Usage has
// already been printed.
var ErrHelp = pflag.ErrHelp

// Config holds all application configuration values.
type Config struct {
	Input      string
	Output     string
	Protocol   string
	Format     string
	SampleRate int
	Aspect     string

	Callsign string
	WPM      int
	Tone     int
	Overlays []string

	Verbose    bool
	Timestamps bool
	Keep       bool

	Test   bool
	Webcam bool
	Device string

	Transmit  bool
	Frequency float64
	Gain      int

	ConfigFile string
	TxLog      string
	NoUI       bool

	// Parsed forms, filled in by Validate.
	Mode         sstv.Mode
	AudioFormat  audio.Format
	AspectMode   source.Aspect
	TextOverlays []source.Overlay
}

// Parse reads configuration from args, which exclude the program name.
// Usage and flag errors are written to out. Values from a station file
// given with --config apply where the corresponding flag was not set.
func Parse(name string, args []string, out io.Writer) (*Config, error) {
	cfg := &Config{}
	fs := newFlagSet(name, cfg, out)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	cwSet := fs.Changed("wpm") || fs.Changed("tone")
	if cfg.ConfigFile != "" {
		f, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cwSet = f.apply(cfg, fs.Changed) || cwSet
	}

	if cfg.Timestamps {
		cfg.Verbose = true
	}
	if cfg.Verbose {
		cfg.Keep = true
	}
	cfg.Callsign = strings.ToUpper(strings.TrimSpace(cfg.Callsign))

	if err := cfg.Validate(cwSet); err != nil {
		return nil, err
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput(cfg.Input, cfg.AudioFormat)
	}
	return cfg, nil
}

func newFlagSet(name string, cfg *Config, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false

	fs.StringVarP(&cfg.Input, "input", "i", "", "Input image file (PNG, JPEG, GIF, BMP, TIFF or WebP)")
	fs.StringVarP(&cfg.Output, "output", "o", "", "Output audio file (default: input name with format extension)")
	fs.StringVarP(&cfg.Protocol, "protocol", "p", DefaultProtocol, "SSTV protocol: "+strings.Join(sstv.ShortNames(), ", "))
	fs.StringVarP(&cfg.Format, "format", "f", DefaultFormat, "Audio format: wav or aiff")
	fs.IntVarP(&cfg.SampleRate, "rate", "r", sstv.DefaultSampleRate, fmt.Sprintf("Sample rate in Hz (%d-%d)", sstv.MinSampleRate, sstv.MaxSampleRate))
	fs.StringVarP(&cfg.Aspect, "aspect", "a", DefaultAspect, "Aspect correction: center, pad or stretch")

	fs.StringVarP(&cfg.Callsign, "callsign", "C", "", "Append a CW signature with this callsign")
	fs.IntVarP(&cfg.WPM, "wpm", "W", sstv.DefaultWPM, fmt.Sprintf("CW speed in words per minute (%d-%d)", MinWPM, MaxWPM))
	fs.IntVarP(&cfg.Tone, "tone", "T", int(sstv.DefaultCWTone), fmt.Sprintf("CW tone in Hz (%d-%d)", MinTone, MaxTone))

	fs.StringArrayVar(&cfg.Overlays, "overlay", nil, "Draw text on the image: \"text|pos=bottom|size=24|color=white|bg=black\" (repeatable)")

	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output (implies -K)")
	fs.BoolVarP(&cfg.Timestamps, "timestamps", "Z", false, "Timestamp log lines (implies -v)")
	fs.BoolVarP(&cfg.Keep, "keep", "K", false, "Keep the processed image next to the output")

	fs.BoolVar(&cfg.Test, "test", false, "Send SMPTE colour bars instead of an image")
	fs.BoolVar(&cfg.Webcam, "webcam", false, "Capture the image from a webcam")
	fs.StringVar(&cfg.Device, "device", "", "Video device name or index (OS-dependent)")

	fs.BoolVar(&cfg.Transmit, "tx", false, "Transmit the result with a HackRF")
	fs.Float64Var(&cfg.Frequency, "freq", DefaultFrequency, "Transmit frequency in MHz")
	fs.IntVar(&cfg.Gain, "gain", DefaultGain, fmt.Sprintf("TX VGA gain (0-%d)", MaxGain))

	fs.StringVar(&cfg.ConfigFile, "config", "", "Station file (.yaml, .yml or .ini)")
	fs.StringVar(&cfg.TxLog, "txlog", "", "Append a JSON record of each generated file to this log")
	fs.BoolVar(&cfg.NoUI, "no-ui", false, "Plain log output instead of the progress display")

	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s -i <image> [options]\n\n", name)
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  %s -i photo.jpg -p s1 -r 44100\n", name)
		fmt.Fprintf(out, "  %s -i photo.png -p r36 -a pad -C N0CALL -W 20\n", name)
		fmt.Fprintf(out, "  %s --test -p m2 --tx --freq 145.5\n", name)
		fmt.Fprintf(out, "  %s -i photo.jpg --overlay \"N0CALL EM12|pos=bottom\"\n", name)
	}
	return fs
}

// Validate checks every setting and fills in the parsed fields. cwSet
// reports whether a CW speed or tone was given explicitly. All problems
// are reported together.
func (c *Config) Validate(cwSet bool) error {
	var inputErr, protocolErr, formatErr, rateErr, aspectErr error
	var callsignErr, wpmErr, toneErr, overlayErr, outputErr, radioErr error

	switch {
	case c.Input == "" && !c.Test && !c.Webcam:
		inputErr = errors.New("input file (-i) is required unless --test or --webcam is given")
	case c.Input != "" && (c.Test || c.Webcam):
		inputErr = errors.New("-i cannot be combined with --test or --webcam")
	case c.Test && c.Webcam:
		inputErr = errors.New("--test and --webcam are exclusive")
	case len(c.Input) > MaxPathLen:
		inputErr = fmt.Errorf("input filename too long (max %d chars)", MaxPathLen)
	}

	var ok bool
	if c.Mode, ok = sstv.ModeByName(c.Protocol); !ok {
		protocolErr = fmt.Errorf("unknown protocol %q (want %s)", c.Protocol, strings.Join(sstv.ShortNames(), ", "))
	}
	c.AudioFormat, formatErr = audio.ParseFormat(c.Format)
	if c.SampleRate < sstv.MinSampleRate || c.SampleRate > sstv.MaxSampleRate {
		rateErr = fmt.Errorf("sample rate must be %d-%d Hz", sstv.MinSampleRate, sstv.MaxSampleRate)
	}
	c.AspectMode, aspectErr = source.ParseAspect(c.Aspect)

	callsignErr = validateCallsign(c.Callsign)
	if c.Callsign == "" && cwSet {
		callsignErr = errors.New("-C <callsign> is required if -W or -T are provided")
	}
	if c.WPM < MinWPM || c.WPM > MaxWPM {
		wpmErr = fmt.Errorf("CW WPM must be %d-%d", MinWPM, MaxWPM)
	}
	if c.Tone < MinTone || c.Tone > MaxTone {
		toneErr = fmt.Errorf("CW tone must be %d-%d Hz", MinTone, MaxTone)
	}

	c.TextOverlays = c.TextOverlays[:0]
	for _, spec := range c.Overlays {
		o, err := source.ParseOverlay(spec)
		overlayErr = errors.Join(overlayErr, err)
		if err == nil {
			c.TextOverlays = append(c.TextOverlays, o)
		}
	}

	outputErr = validateOutput(c.Output)

	if c.Gain < 0 || c.Gain > MaxGain {
		radioErr = fmt.Errorf("TX gain must be 0-%d", MaxGain)
	}
	if c.Frequency < MinFrequency || c.Frequency > MaxFrequency {
		radioErr = errors.Join(radioErr, fmt.Errorf("frequency must be %.0f-%.0f MHz", MinFrequency, MaxFrequency))
	}

	return errors.Join(
		inputErr,
		protocolErr,
		formatErr,
		rateErr,
		aspectErr,
		callsignErr,
		wpmErr,
		toneErr,
		overlayErr,
		outputErr,
		radioErr,
	)
}

func validateCallsign(call string) error {
	if len(call) > MaxCallsignLen {
		return fmt.Errorf("callsign too long (max %d chars)", MaxCallsignLen)
	}
	for _, c := range call {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '/') {
			return fmt.Errorf("callsign contains invalid character %q (use A-Z, 0-9, / only)", c)
		}
	}
	return nil
}

func validateOutput(path string) error {
	if len(path) > MaxPathLen {
		return fmt.Errorf("output filename too long (max %d chars)", MaxPathLen)
	}
	if i := strings.IndexFunc(path, func(r rune) bool {
		return r < 32 || strings.ContainsRune("&|;`$%", r)
	}); i >= 0 {
		return fmt.Errorf("output filename contains invalid character (code %d)", path[i])
	}
	return nil
}

// DefaultOutput derives the output file name from the input by replacing
// its extension. Without an input the name is "sstv".
func DefaultOutput(input string, f audio.Format) string {
	if input == "" {
		return "sstv" + f.Ext()
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + f.Ext()
}

// IntermediatePath is where the processed image is kept: next to the
// output, named after it with a "_processed.png" suffix so it never
// replaces the input image.
func (c *Config) IntermediatePath() string {
	return strings.TrimSuffix(c.Output, filepath.Ext(c.Output)) + "_processed.png"
}
