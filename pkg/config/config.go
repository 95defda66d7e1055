// Package config builds the immutable endpoint configuration from parsed
// CLI flags and validates it, matching the flag table an endpoint's -h
// prints.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"sofi/pkg/modem"
)

// widthForFreqCount maps a frequency-table length to the symbol width it
// fixes, per the CLI's -f rule: count must be 2, 4, 16, or 256.
var widthForFreqCount = map[int]int{2: 1, 4: 2, 16: 4, 256: 8}

// Config is the immutable, fully-validated configuration built once at
// startup and passed by value into every component that needs it. No
// process-wide statics are read after this point.
type Config struct {
	SampleRate           int
	Baud                 float64
	SymbolFreqs          []float64
	SymbolWidth          int
	RecvWindowFactor     float64
	InterpacketGapFactor float64
	MaxPacketLength      int
	Sender               bool
	Receiver             bool
	KeepOpen             bool
	DebugLevel           int

	// UseCRC enables the optional per-packet CRC-32 described by spec.md
	// §3. The CLI has no flag for it: it's an implementer-level default,
	// not something an operator tunes per run.
	UseCRC bool

	// RecvQueueCap sizes the bounded packet queue between the demodulator
	// worker and the stdout consumer.
	RecvQueueCap int
}

// Defaults mirror original_source/sofinc.c's compiled-in defaults.
func Defaults() Config {
	return Config{
		SampleRate:           192000,
		Baud:                 1000,
		SymbolFreqs:          []float64{2200, 1200},
		SymbolWidth:          1,
		RecvWindowFactor:     0.2,
		InterpacketGapFactor: 2,
		MaxPacketLength:      16,
		Sender:               true,
		Receiver:             true,
		KeepOpen:             false,
		DebugLevel:           0,
		UseCRC:               true,
		RecvQueueCap:         64,
	}
}

// ModemParams projects the configuration fields the modem package needs.
func (c Config) ModemParams() modem.Params {
	return modem.Params{
		SampleRate:           float64(c.SampleRate),
		Baud:                 c.Baud,
		SymbolFreqs:          c.SymbolFreqs,
		RecvWindowFactor:     c.RecvWindowFactor,
		InterpacketGapFactor: c.InterpacketGapFactor,
		SilenceThreshold:     modem.DefaultSilenceThreshold,
		MaxPacketLength:      c.MaxPacketLength,
	}
}

// ParseFrequencies parses a "-f" argument of comma-separated floats and
// derives the symbol width its count fixes. It returns an error naming
// the invalid count if it isn't one of {2,4,16,256}.
func ParseFrequencies(arg string) ([]float64, int, error) {
	parts := strings.Split(arg, ",")
	freqs := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("config: invalid frequency %q: %w", p, err)
		}
		if v <= 0 {
			return nil, 0, fmt.Errorf("config: frequency %v must be positive", v)
		}
		freqs = append(freqs, v)
	}
	width, ok := widthForFreqCount[len(freqs)]
	if !ok {
		return nil, 0, fmt.Errorf("config: frequency count must be 2, 4, 16, or 256, got %d", len(freqs))
	}
	return freqs, width, nil
}

// Validate checks the invariants the CLI flag table imposes beyond what
// ParseFrequencies already enforces.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("config: sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Baud < 1 {
		return fmt.Errorf("config: baud must be >= 1, got %v", c.Baud)
	}
	if c.RecvWindowFactor <= 0 {
		return fmt.Errorf("config: window factor must be positive, got %v", c.RecvWindowFactor)
	}
	if c.InterpacketGapFactor < 1 {
		return fmt.Errorf("config: gap factor must be >= 1, got %v", c.InterpacketGapFactor)
	}
	if c.MaxPacketLength < 1 || c.MaxPacketLength > 255 {
		return fmt.Errorf("config: max packet length must be in [1,255], got %d", c.MaxPacketLength)
	}
	if _, ok := widthForFreqCount[len(c.SymbolFreqs)]; !ok {
		return fmt.Errorf("config: frequency count must be 2, 4, 16, or 256, got %d", len(c.SymbolFreqs))
	}
	if !c.Sender && !c.Receiver {
		return fmt.Errorf("config: at least one of sender or receiver must be enabled")
	}
	return nil
}
