package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// FromFlags parses args against the CLI flag table (spec.md §6) and
// returns a validated Config. On a flag-parsing or validation failure it
// returns the usage text alongside the error so the caller can print it
// to stderr before exiting 1. help is true when -h/--help was given,
// independent of any error.
func FromFlags(args []string) (cfg Config, usage string, help bool, err error) {
	fs := pflag.NewFlagSet("sofi", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder)) // suppress pflag's own error/usage printing

	d := Defaults()

	receiver := fs.BoolP("receiver", "R", false, "Enable receive direction.")
	sender := fs.BoolP("sender", "S", false, "Enable send direction. If neither -R nor -S is given, both are enabled.")
	baud := fs.Float64P("baud", "b", d.Baud, "Symbol rate, in symbols/second.")
	freqStr := fs.StringP("frequencies", "f", "2200,1200", `Comma-separated symbol frequencies in Hz. Count fixes symbol width: 2->1 bit, 4->2 bits, 16->4 bits, 256->8 bits.`)
	sampleRate := fs.IntP("sample-rate", "s", d.SampleRate, "Audio sample rate, in Hz.")
	window := fs.Float64P("window", "w", d.RecvWindowFactor, "Listen-mode window factor (fraction of a symbol).")
	gap := fs.Float64P("gap", "g", d.InterpacketGapFactor, "Inter-packet silence, in symbol durations.")
	maxLength := fs.IntP("max-length", "l", d.MaxPacketLength, "Max payload bytes per outgoing packet.")
	keepOpen := fs.BoolP("keep-open", "k", false, "Do not close stdout on receiving a zero-length packet.")
	debugLevel := fs.IntP("debug-level", "d", 0, "Log verbosity.")
	help2 := fs.BoolP("help", "h", false, "Print usage and exit.")

	fs.Usage = func() {} // usage is rendered by the caller via FlagUsages

	if err := fs.Parse(args); err != nil {
		return Config{}, fs.FlagUsages(), false, fmt.Errorf("config: %w", err)
	}

	if *help2 {
		return Config{}, fs.FlagUsages(), true, nil
	}

	freqs, width, err := ParseFrequencies(*freqStr)
	if err != nil {
		return Config{}, fs.FlagUsages(), false, err
	}

	cfg = Config{
		SampleRate:           *sampleRate,
		Baud:                 *baud,
		SymbolFreqs:          freqs,
		SymbolWidth:          width,
		RecvWindowFactor:     *window,
		InterpacketGapFactor: *gap,
		MaxPacketLength:      *maxLength,
		Sender:               *sender,
		Receiver:             *receiver,
		KeepOpen:             *keepOpen,
		DebugLevel:           *debugLevel,
		UseCRC:               d.UseCRC,
		RecvQueueCap:         d.RecvQueueCap,
	}

	if !cfg.Sender && !cfg.Receiver {
		cfg.Sender = true
		cfg.Receiver = true
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fs.FlagUsages(), false, err
	}
	return cfg, fs.FlagUsages(), false, nil
}
