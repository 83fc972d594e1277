// Package app wires the MIDI input, event queue, render loop and audio output
// into the riano command line programs.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/leandrodaf/riano/internal/audio"
	"github.com/leandrodaf/riano/internal/logger"
	"github.com/leandrodaf/riano/internal/queue"
	"github.com/leandrodaf/riano/internal/render"
	"github.com/leandrodaf/riano/internal/synth"
	"github.com/leandrodaf/riano/sdk/contracts"
	"github.com/leandrodaf/riano/sdk/midi"
)

// Chord is the demo chord: C4, E4, G4.
var Chord = []uint8{60, 64, 67}

// ChordVelocity is the velocity every demo chord note is struck with.
const ChordVelocity = 100

// Deps are the collaborators the programs talk to. Tests swap them for fakes.
type Deps struct {
	Logger        contracts.Logger
	Stdout        io.Writer
	Stderr        io.Writer
	NewMIDIClient func(opts ...contracts.Option) (contracts.ClientMIDI, error)
	NewOutput     func(cfg audio.Config, logger contracts.Logger, onError audio.ErrorHandler) (audio.Output, error)
	LoadSynth     func(path string, settings synth.Settings) (contracts.Synthesizer, error)
}

// DefaultDeps uses the real devices and a zap logger.
func DefaultDeps() Deps {
	return Deps{
		Logger:        logger.NewZapLogger(),
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		NewMIDIClient: midi.NewMIDIClient,
		NewOutput:     audio.NewOutput,
		LoadSynth: func(path string, settings synth.Settings) (contracts.Synthesizer, error) {
			return synth.Load(path, settings)
		},
	}
}

// Main runs the MIDI bridge until ctx is cancelled and returns the exit status.
func Main(ctx context.Context, args []string, deps Deps) int {
	return run(ctx, bridgeCommand, args, deps, runBridge)
}

// MainChord plays the demo chord until ctx is cancelled and returns the exit status.
func MainChord(ctx context.Context, args []string, deps Deps) int {
	return run(ctx, chordCommand, args, deps, runChord)
}

type runFunc func(ctx context.Context, cfg Config, deps Deps) error

func run(ctx context.Context, cmd command, args []string, deps Deps, fn runFunc) int {
	cfg, err := cmd.parse(args, deps.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return int(ExitOK)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "%s: %v\n", cmd.name, err)
		return int(ExitUsage)
	}

	deps.Logger.SetLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		deps.Logger.SetDestination(contracts.FileLog, cfg.LogFile)
	}

	err = fn(ctx, cfg, deps)
	code := ExitCodeOf(err)
	if code == ExitUsage {
		cmd.printUsage(deps.Stdout)
	}
	if err != nil {
		deps.Logger.Error("riano stopped with an error",
			deps.Logger.Field().Error("error", err),
			deps.Logger.Field().Int("exitCode", int(code)))
		fmt.Fprintf(deps.Stderr, "%s: %v\n", cmd.name, err)
	}
	return int(code)
}

func loadSynth(cfg Config, deps Deps) (contracts.Synthesizer, error) {
	s, err := deps.LoadSynth(cfg.SoundFontPath, cfg.synthSettings())
	switch {
	case err == nil:
		deps.Logger.Info("SoundFont loaded", deps.Logger.Field().String("path", cfg.SoundFontPath))
		return s, nil
	case errors.Is(err, synth.ErrSynthesizer):
		return nil, &Error{Code: ExitSynthesizer, Err: err}
	default:
		return nil, &Error{Code: ExitSoundFont, Err: err}
	}
}

// runBridge is the MIDI driven program: SoundFont, device lookup, capture, playback.
func runBridge(ctx context.Context, cfg Config, deps Deps) (err error) {
	synthesizer, err := loadSynth(cfg, deps)
	if err != nil {
		return err
	}

	client, err := deps.NewMIDIClient(
		contracts.WithLogger(deps.Logger),
		contracts.WithLogLevel(cfg.LogLevel),
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: "riano"}),
	)
	if err != nil {
		return &Error{Code: ExitMIDI, Err: err}
	}
	defer func() {
		err = multierr.Append(err, client.Stop())
	}()

	devices, err := client.ListDevices()
	switch {
	case errors.Is(err, contracts.ErrNoMIDIDevices):
		deps.Logger.Warn("No MIDI input devices available")
	case err != nil:
		return fail(ExitMIDI, "list MIDI devices: %w", err)
	}
	fmt.Fprintln(deps.Stdout, "Discovered MIDI devices:")
	for _, d := range devices {
		fmt.Fprintf(deps.Stdout, "%q\n", d.Name)
	}

	if cfg.DeviceName == "" {
		return &Error{Code: ExitUsage, Err: fmt.Errorf("%w: missing MIDI device name", ErrUsage)}
	}
	idx, err := midi.FindDevice(devices, cfg.DeviceName)
	if err != nil {
		return &Error{Code: ExitDeviceNotFound, Err: err}
	}

	fmt.Fprintf(deps.Stdout, "Connecting to %s\n", devices[idx].Name)
	if err := client.SelectDevice(idx); err != nil {
		return fail(ExitMIDI, "connect to %q: %w", devices[idx].Name, err)
	}

	q := queue.New(cfg.QueueCapacity, cfg.Overflow)
	if err := client.StartCapture(q); err != nil {
		return fail(ExitMIDI, "start capture on %q: %w", devices[idx].Name, err)
	}

	return play(ctx, cfg, deps, synthesizer, q)
}

// runChord strikes the demo chord once and plays until ctx is cancelled.
// The notes go straight to the synthesizer, before the render loop takes it over.
func runChord(ctx context.Context, cfg Config, deps Deps) error {
	synthesizer, err := loadSynth(cfg, deps)
	if err != nil {
		return err
	}

	channel := int32(max(cfg.Channel, 0))
	for _, pitch := range Chord {
		synthesizer.NoteOn(channel, int32(pitch), ChordVelocity)
	}
	return play(ctx, cfg, deps, synthesizer, queue.New(cfg.QueueCapacity, cfg.Overflow))
}

// play hands the synthesizer to a render loop, installs it on the output and blocks until ctx ends.
func play(ctx context.Context, cfg Config, deps Deps, synthesizer contracts.Synthesizer, q *queue.Queue) error {
	loop := render.NewLoop(synthesizer, q,
		render.WithChannel(cfg.Channel),
		render.WithLogger(deps.Logger),
		render.WithScratchFrames(cfg.BlockSize),
	)

	out, err := deps.NewOutput(cfg.audioConfig(), deps.Logger, nil)
	if err != nil {
		return &Error{Code: ExitAudio, Err: err}
	}
	out.Setup(loop)
	if err := out.Start(); err != nil {
		return &Error{Code: ExitAudio, Err: multierr.Append(err, out.Close())}
	}
	deps.Logger.Info("Playing; interrupt to stop")

	<-ctx.Done()

	closeErr := out.Close()
	ls, qs := loop.Stats(), q.Stats()
	deps.Logger.Info("Playback stopped",
		deps.Logger.Field().Uint64("buffers", ls.Buffers),
		deps.Logger.Field().Uint64("events", ls.Events),
		deps.Logger.Field().Uint64("renderFailures", ls.Failures),
		deps.Logger.Field().Uint64("queueDropped", qs.Dropped))
	if closeErr != nil {
		return &Error{Code: ExitAudio, Err: closeErr}
	}
	return nil
}
