package app

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/leandrodaf/riano/internal/audio"
	"github.com/leandrodaf/riano/internal/queue"
	"github.com/leandrodaf/riano/internal/render"
	"github.com/leandrodaf/riano/internal/synth"
	"github.com/leandrodaf/riano/sdk/contracts"
)

// Config is everything the command line controls.
type Config struct {
	SoundFontPath string
	DeviceName    string

	SampleRate    int
	BlockSize     int
	QueueCapacity int
	Overflow      contracts.OverflowPolicy
	Channel       int
	Polyphony     int
	Reverb        bool

	LogLevel contracts.LogLevel
	LogFile  string
}

// DefaultConfig is 44.1 kHz stereo, 512 frame blocks, every note on channel 0.
func DefaultConfig() Config {
	return Config{
		SampleRate:    audio.DefaultSampleRate,
		BlockSize:     audio.DefaultBlockSize,
		QueueCapacity: queue.DefaultCapacity,
		Overflow:      contracts.DropNewest,
		Channel:       0,
		Polyphony:     synth.DefaultMaximumPolyphony,
		Reverb:        true,
		LogLevel:      contracts.InfoLevel,
	}
}

func (c Config) synthSettings() synth.Settings {
	return synth.Settings{
		SampleRate:            c.SampleRate,
		MaximumPolyphony:      c.Polyphony,
		EnableReverbAndChorus: c.Reverb,
	}
}

func (c Config) audioConfig() audio.Config {
	return audio.Config{
		SampleRate:   c.SampleRate,
		BlockSize:    c.BlockSize,
		ChannelCount: audio.DefaultChannelCount,
	}
}

// command describes one entry point for flag parsing and usage output.
type command struct {
	name       string
	positional []string
	help       string
}

var (
	bridgeCommand = command{
		name:       "riano",
		positional: []string{"<soundfont.sf2>", "<midi-device-name>"},
		help:       "Pass sf2 file as the first arg and midi device name as the second one",
	}
	chordCommand = command{
		name:       "riano-chord",
		positional: []string{"<soundfont.sf2>"},
		help:       "Pass sf2 file as the first arg; plays a C major chord until interrupted",
	}
)

func (c command) usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags]", c.name)
	for _, p := range c.positional {
		fmt.Fprintf(w, " %s", p)
	}
	fmt.Fprintf(w, "\n%s\n\nFlags:\n", c.help)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// flagSet binds every flag to cfg; the textual ones land in overflow and level.
func (c command) flagSet(cfg *Config, overflow, level *string) *flag.FlagSet {
	fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "output sample rate in Hz")
	fs.IntVar(&cfg.BlockSize, "block", cfg.BlockSize, "frames per audio buffer request")
	fs.IntVar(&cfg.QueueCapacity, "queue", cfg.QueueCapacity, "maximum pending note events")
	fs.StringVar(overflow, "overflow", cfg.Overflow.String(), "full queue policy: drop-newest or drop-oldest")
	fs.IntVar(&cfg.Channel, "channel", cfg.Channel, "synthesizer channel 0-15, or -1 to keep each event's channel")
	fs.IntVar(&cfg.Polyphony, "polyphony", cfg.Polyphony, "maximum simultaneous voices")
	fs.BoolVar(&cfg.Reverb, "reverb", cfg.Reverb, "enable reverb and chorus")
	fs.StringVar(level, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", "", "write logs to this file instead of stderr")
	return fs
}

// parse reads flags and positional arguments. The device name is left empty when absent.
func (c command) parse(args []string, stdout io.Writer) (Config, error) {
	cfg := DefaultConfig()
	var overflow, level string
	fs := c.flagSet(&cfg, &overflow, &level)

	if err := fs.Parse(args); err != nil {
		c.usage(stdout, fs)
		if errors.Is(err, flag.ErrHelp) {
			return cfg, err
		}
		return cfg, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	var ok bool
	if cfg.Overflow, ok = contracts.ParseOverflowPolicy(overflow); !ok {
		c.usage(stdout, fs)
		return cfg, fmt.Errorf("%w: unknown overflow policy %q", ErrUsage, overflow)
	}
	if cfg.LogLevel, ok = contracts.ParseLogLevel(level); !ok {
		c.usage(stdout, fs)
		return cfg, fmt.Errorf("%w: unknown log level %q", ErrUsage, level)
	}
	if cfg.Channel < render.PassThroughChannel || cfg.Channel > 15 {
		c.usage(stdout, fs)
		return cfg, fmt.Errorf("%w: channel %d out of range", ErrUsage, cfg.Channel)
	}

	rest := fs.Args()
	if len(rest) < 1 {
		c.usage(stdout, fs)
		return cfg, fmt.Errorf("%w: missing SoundFont path", ErrUsage)
	}
	cfg.SoundFontPath = rest[0]
	if len(rest) > 1 {
		cfg.DeviceName = rest[1]
	}
	return cfg, nil
}

// printUsage prints the usage text with default flag values.
func (c command) printUsage(w io.Writer) {
	cfg := DefaultConfig()
	var overflow, level string
	c.usage(w, c.flagSet(&cfg, &overflow, &level))
}
