package midi

import (
	"fmt"
	"runtime"

	"github.com/leandrodaf/riano/internal/midi/mididarwin"
	"github.com/leandrodaf/riano/internal/midi/midirtmidi"
	"github.com/leandrodaf/riano/internal/midi/midiwindows"
	"github.com/leandrodaf/riano/sdk/contracts"
)

type initializer func(*contracts.ClientOptions) (contracts.ClientMIDI, error)

// clientInitializers maps OS names to corresponding MIDI client initializers.
var clientInitializers = map[string]initializer{
	"darwin":  mididarwin.NewMIDIClient,  // macOS (Darwin) CoreMIDI client initializer.
	"windows": midiwindows.NewMIDIClient, // Windows winmm client initializer.
}

// fallbackInitializer serves every other OS through rtmidi.
var fallbackInitializer initializer = midirtmidi.NewMIDIClient

// NewClient initializes a MIDI client based on the current operating system.
// macOS uses CoreMIDI, Windows uses winmm and everything else uses rtmidi.
func NewClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	newClient, ok := clientInitializers[runtime.GOOS]
	if !ok {
		newClient = fallbackInitializer
	}
	client, err := newClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create %s MIDI client: %w", runtime.GOOS, err)
	}
	return client, nil
}
