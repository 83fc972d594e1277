package midi

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leandrodaf/riano/internal/logger"
	"github.com/leandrodaf/riano/sdk/contracts"
)

func TestFindDevice(t *testing.T) {
	devices := []contracts.DeviceInfo{
		{Name: "Midi Through Port-0"},
		{Name: "Keystation 49 MK3 MIDI 1"},
		{Name: "Keystation 88"},
	}

	tests := []struct {
		substr string
		want   int
	}{
		{"Through", 0},
		{"Keystation", 1},
		{"88", 2},
	}
	for _, tt := range tests {
		got, err := FindDevice(devices, tt.substr)
		if err != nil || got != tt.want {
			t.Errorf("FindDevice(%q) = %d, %v; want %d", tt.substr, got, err, tt.want)
		}
	}
}

func TestFindDeviceNotFound(t *testing.T) {
	devices := []contracts.DeviceInfo{{Name: "Keystation 88"}}
	for _, substr := range []string{"Launchpad", "keystation", ""} {
		_, err := FindDevice(devices, substr)
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Fatalf("FindDevice(%q) error = %v", substr, err)
		}
		if substr != "" && !strings.Contains(err.Error(), substr) {
			t.Errorf("error %q does not name %q", err, substr)
		}
	}
}

func TestApplyDefaultOptions(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if opts.CoreMIDIConfig.ClientName != DefaultClientName {
		t.Errorf("client name = %q", opts.CoreMIDIConfig.ClientName)
	}
	if !opts.MIDIEventFilter.Allows(contracts.NoteOnKind) || !opts.MIDIEventFilter.Allows(contracts.NoteOffKind) {
		t.Errorf("default filter = %+v", opts.MIDIEventFilter)
	}
	if opts.LogLevel != contracts.InfoLevel {
		t.Errorf("log level = %v", opts.LogLevel)
	}
}

func TestApplyDefaultOptionsKeepsExplicitValues(t *testing.T) {
	opts, err := applyDefaultOptions(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithLogLevel(contracts.DebugLevel),
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: "bench"}),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{Commands: []contracts.MIDICommand{contracts.NoteOn}}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if opts.LogLevel != contracts.DebugLevel {
		t.Errorf("log level = %v", opts.LogLevel)
	}
	if opts.CoreMIDIConfig.ClientName != "bench" {
		t.Errorf("client name = %q", opts.CoreMIDIConfig.ClientName)
	}
	if opts.MIDIEventFilter.Allows(contracts.NoteOffKind) {
		t.Error("explicit filter was replaced")
	}
}

func TestApplyDefaultOptionsLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "midi.log")
	log := logger.NewZapLogger()

	opts, err := applyDefaultOptions(contracts.WithLogger(log), contracts.WithLogFile(path))
	if err != nil {
		t.Fatal(err)
	}
	if opts.LogFilePath != path {
		t.Errorf("log file = %q", opts.LogFilePath)
	}

	log.Info("device listed")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "device listed") {
		t.Errorf("log file content = %q", data)
	}
}

func TestNewClientFallback(t *testing.T) {
	saved := clientInitializers
	savedFallback := fallbackInitializer
	defer func() {
		clientInitializers = saved
		fallbackInitializer = savedFallback
	}()

	want := errors.New("driver missing")
	clientInitializers = map[string]initializer{}
	fallbackInitializer = func(*contracts.ClientOptions) (contracts.ClientMIDI, error) {
		return nil, want
	}

	_, err := NewClient(&contracts.ClientOptions{Logger: logger.NewNopLogger()})
	if !errors.Is(err, want) {
		t.Errorf("NewClient error = %v, want %v", err, want)
	}
}
