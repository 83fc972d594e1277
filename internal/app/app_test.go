package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/leandrodaf/riano/internal/audio"
	"github.com/leandrodaf/riano/internal/logger"
	"github.com/leandrodaf/riano/internal/synth"
	"github.com/leandrodaf/riano/sdk/contracts"
)

type fakeClient struct {
	devices    []contracts.DeviceInfo
	listErr    error
	captureErr error
	selected   int
	sink       contracts.EventSink
	stopped    int
}

func (c *fakeClient) ListDevices() ([]contracts.DeviceInfo, error) { return c.devices, c.listErr }

func (c *fakeClient) SelectDevice(id int) error {
	if id < 0 || id >= len(c.devices) {
		return errors.New("bad id")
	}
	c.selected = id
	return nil
}

func (c *fakeClient) StartCapture(sink contracts.EventSink) error {
	if c.captureErr != nil {
		return c.captureErr
	}
	c.sink = sink
	return nil
}

func (c *fakeClient) Stop() error {
	c.stopped++
	return nil
}

type fakeOutput struct {
	cfg     audio.Config
	src     audio.Source
	started bool
	closed  bool
	failOn  string
}

func (o *fakeOutput) Setup(src audio.Source) { o.src = src }

func (o *fakeOutput) Start() error {
	if o.failOn == "start" {
		return errors.New("device busy")
	}
	o.started = true
	return nil
}

func (o *fakeOutput) Close() error {
	o.closed = true
	return nil
}

type fakeSynth struct {
	on  []int32
	off []int32
}

func (s *fakeSynth) NoteOn(channel, key, velocity int32) { s.on = append(s.on, key) }
func (s *fakeSynth) NoteOff(channel, key int32) { s.off = append(s.off, key) }
func (s *fakeSynth) Render(left, right []float32) {}

type harness struct {
	deps    Deps
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	client  *fakeClient
	output  *fakeOutput
	synth   *fakeSynth
	outputs int
	loadErr error
	path    string
}

func newHarness() *harness {
	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		client: &fakeClient{devices: []contracts.DeviceInfo{
			{Name: "Midi Through Port-0"},
			{Name: "Keystation 49 MK3 MIDI 1"},
		}},
		output: &fakeOutput{},
		synth:  &fakeSynth{},
	}
	h.deps = Deps{
		Logger: logger.NewNopLogger(),
		Stdout: h.stdout,
		Stderr: h.stderr,
		NewMIDIClient: func(opts ...contracts.Option) (contracts.ClientMIDI, error) {
			return h.client, nil
		},
		NewOutput: func(cfg audio.Config, _ contracts.Logger, _ audio.ErrorHandler) (audio.Output, error) {
			h.outputs++
			h.output.cfg = cfg
			return h.output, nil
		},
		LoadSynth: func(path string, _ synth.Settings) (contracts.Synthesizer, error) {
			h.path = path
			if h.loadErr != nil {
				return nil, h.loadErr
			}
			return h.synth, nil
		},
	}
	return h
}

func cancelled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestMainWithoutArgumentsPrintsUsage(t *testing.T) {
	h := newHarness()
	code := Main(cancelled(), nil, h.deps)

	if code != int(ExitUsage) {
		t.Fatalf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(h.stdout.String(), "Usage: riano") {
		t.Errorf("usage not printed: %q", h.stdout.String())
	}
	if h.outputs != 0 || h.path != "" {
		t.Errorf("audio output created (%d) or SoundFont loaded (%q)", h.outputs, h.path)
	}
}

func TestMainWithoutDeviceListsDevices(t *testing.T) {
	h := newHarness()
	code := Main(cancelled(), []string{"piano.sf2"}, h.deps)

	if code != int(ExitUsage) {
		t.Fatalf("exit code = %d, want %d", code, ExitUsage)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "Discovered MIDI devices:") || !strings.Contains(out, "Keystation 49 MK3 MIDI 1") {
		t.Errorf("device list missing: %q", out)
	}
	if !strings.Contains(out, "Pass sf2 file as the first arg") {
		t.Errorf("usage missing: %q", out)
	}
	if h.outputs != 0 {
		t.Error("audio output was created")
	}
	if h.client.stopped != 1 {
		t.Errorf("client stopped %d times", h.client.stopped)
	}
}

func TestMainUnknownDevice(t *testing.T) {
	h := newHarness()
	code := Main(cancelled(), []string{"piano.sf2", "Launchpad"}, h.deps)

	if code != int(ExitDeviceNotFound) {
		t.Fatalf("exit code = %d, want %d", code, ExitDeviceNotFound)
	}
	if !strings.Contains(h.stderr.String(), `"Launchpad"`) {
		t.Errorf("diagnostic does not name the device: %q", h.stderr.String())
	}
	if h.outputs != 0 {
		t.Error("audio output was created")
	}
}

func TestMainBridgesDeviceToOutput(t *testing.T) {
	h := newHarness()
	code := Main(cancelled(), []string{"-block", "256", "piano.sf2", "Keystation"}, h.deps)

	if code != int(ExitOK) {
		t.Fatalf("exit code = %d, stderr %q", code, h.stderr.String())
	}
	if h.path != "piano.sf2" {
		t.Errorf("SoundFont path = %q", h.path)
	}
	if h.client.selected != 1 || h.client.sink == nil {
		t.Fatalf("selected %d, sink %v", h.client.selected, h.client.sink)
	}
	if !h.output.started || !h.output.closed || h.client.stopped != 1 {
		t.Errorf("output started=%v closed=%v, client stopped=%d", h.output.started, h.output.closed, h.client.stopped)
	}
	if h.output.cfg.BlockSize != 256 || h.output.cfg.ChannelCount != 2 {
		t.Errorf("audio config = %+v", h.output.cfg)
	}
	if !strings.Contains(h.stdout.String(), "Connecting to Keystation 49 MK3 MIDI 1") {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	// Events captured by the client reach the synthesizer through the installed source.
	h.client.sink.Push(contracts.NoteOnEvent(0, 60, 100))
	h.client.sink.Push(contracts.NoteOffEvent(0, 60))
	h.output.src.Render(make([]float32, 4))
	if len(h.synth.on) != 1 || h.synth.on[0] != 60 || len(h.synth.off) != 1 {
		t.Errorf("synth on=%v off=%v", h.synth.on, h.synth.off)
	}
}

func TestMainChordStrikesChord(t *testing.T) {
	h := newHarness()
	code := MainChord(cancelled(), []string{"piano.sf2"}, h.deps)
	if code != int(ExitOK) {
		t.Fatalf("exit code = %d, stderr %q", code, h.stderr.String())
	}

	h.output.src.Render(make([]float32, 8))
	if fmt.Sprint(h.synth.on) != "[60 64 67]" || len(h.synth.off) != 0 {
		t.Errorf("synth on=%v off=%v", h.synth.on, h.synth.off)
	}
}

func TestMainChordSurvivesTinyQueue(t *testing.T) {
	for _, size := range []string{"1", "2"} {
		t.Run("queue "+size, func(t *testing.T) {
			h := newHarness()
			code := MainChord(cancelled(), []string{"-queue", size, "piano.sf2"}, h.deps)
			if code != int(ExitOK) {
				t.Fatalf("exit code = %d, stderr %q", code, h.stderr.String())
			}

			h.output.src.Render(make([]float32, 8))
			if fmt.Sprint(h.synth.on) != "[60 64 67]" {
				t.Errorf("synth on=%v, want the full chord", h.synth.on)
			}
		})
	}
}

func TestMainChordWithoutArguments(t *testing.T) {
	h := newHarness()
	if code := MainChord(cancelled(), nil, h.deps); code != int(ExitUsage) {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(h.stdout.String(), "Usage: riano-chord") {
		t.Errorf("usage not printed: %q", h.stdout.String())
	}
}

func TestExitCodesPerFailureKind(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		loadErr error
		prepare func(h *harness)
		want    ExitCode
	}{
		{
			name:    "missing SoundFont",
			args:    []string{"missing.sf2", "Keystation"},
			loadErr: fmt.Errorf("%w: missing.sf2", synth.ErrSoundFontNotFound),
			want:    ExitSoundFont,
		},
		{
			name:    "malformed SoundFont",
			args:    []string{"bad.sf2", "Keystation"},
			loadErr: fmt.Errorf("%w: RIFF chunk not found", synth.ErrSoundFontInvalid),
			want:    ExitSoundFont,
		},
		{
			name:    "bad synthesizer settings",
			args:    []string{"-rate", "8000", "piano.sf2", "Keystation"},
			loadErr: fmt.Errorf("%w: sample rate", synth.ErrSynthesizer),
			want:    ExitSynthesizer,
		},
		{
			name: "MIDI subsystem",
			args: []string{"piano.sf2", "Keystation"},
			prepare: func(h *harness) {
				h.deps.NewMIDIClient = func(...contracts.Option) (contracts.ClientMIDI, error) {
					return nil, errors.New("no ALSA sequencer")
				}
			},
			want: ExitMIDI,
		},
		{
			name: "MIDI enumeration",
			args: []string{"piano.sf2", "Keystation"},
			prepare: func(h *harness) {
				h.client.devices = nil
				h.client.listErr = errors.New("rtmidi input requires a cgo build on Linux or BSD")
			},
			want: ExitMIDI,
		},
		{
			name: "no MIDI devices",
			args: []string{"piano.sf2", "Keystation"},
			prepare: func(h *harness) {
				h.client.devices = nil
				h.client.listErr = fmt.Errorf("coremidi: %w", contracts.ErrNoMIDIDevices)
			},
			want: ExitDeviceNotFound,
		},
		{
			name: "MIDI capture",
			args: []string{"piano.sf2", "Keystation"},
			prepare: func(h *harness) {
				h.client.captureErr = errors.New("open input: device busy")
			},
			want: ExitMIDI,
		},
		{
			name: "audio device",
			args: []string{"piano.sf2", "Keystation"},
			prepare: func(h *harness) {
				h.output.failOn = "start"
			},
			want: ExitAudio,
		},
		{
			name: "bad flag",
			args: []string{"-overflow", "drop-everything", "piano.sf2"},
			want: ExitUsage,
		},
		{
			name: "channel out of range",
			args: []string{"-channel", "16", "piano.sf2"},
			want: ExitUsage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.loadErr = tt.loadErr
			if tt.prepare != nil {
				tt.prepare(h)
			}
			if code := Main(cancelled(), tt.args, h.deps); code != int(tt.want) {
				t.Fatalf("exit code = %d, want %d (stderr %q)", code, tt.want, h.stderr.String())
			}
		})
	}
}

func TestMainCaptureFailureStopsBeforePlayback(t *testing.T) {
	h := newHarness()
	h.client.captureErr = errors.New("open input: device busy")

	code := Main(cancelled(), []string{"piano.sf2", "Keystation"}, h.deps)
	if code != int(ExitMIDI) {
		t.Fatalf("exit code = %d, want %d", code, ExitMIDI)
	}
	if h.outputs != 0 {
		t.Error("audio output was created")
	}
	if h.client.stopped != 1 {
		t.Errorf("client stopped %d times", h.client.stopped)
	}
	if !strings.Contains(h.stderr.String(), "device busy") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestHelpExitsCleanly(t *testing.T) {
	h := newHarness()
	if code := Main(cancelled(), []string{"-h"}, h.deps); code != int(ExitOK) {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(h.stdout.String(), "-overflow") {
		t.Errorf("flag defaults missing: %q", h.stdout.String())
	}
}

func TestExitCodeOf(t *testing.T) {
	if ExitCodeOf(nil) != ExitOK {
		t.Error("nil error should exit 0")
	}
	wrapped := fmt.Errorf("outer: %w", &Error{Code: ExitAudio, Err: errors.New("x")})
	if ExitCodeOf(wrapped) != ExitAudio {
		t.Error("wrapped *Error lost its code")
	}
	if ExitCodeOf(errors.New("plain")) != ExitUsage {
		t.Error("unclassified error should exit 1")
	}
}
