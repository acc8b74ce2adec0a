package config

import (
	"io"
	"log"

	"github.com/hashicorp/logutils"
)

// LogLevels are the prefixes understood by the log filter, lowest first.
var LogLevels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

// SetupLogging routes the standard logger through a level filter writing
// to w. Verbose enables [DEBUG] lines; timestamps adds microsecond times.
func SetupLogging(w io.Writer, verbose, timestamps bool) {
	minLevel := logutils.LogLevel("INFO")
	if verbose {
		minLevel = "DEBUG"
	}
	log.SetOutput(&logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: minLevel,
		Writer:   w,
	})
	if timestamps {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		log.SetFlags(0)
	}
	log.Print("[DEBUG] Debug is on")
}
