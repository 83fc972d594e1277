//go:build darwin || windows || !cgo
// +build darwin windows !cgo

// Package midirtmidi reads MIDI input through the gomidi rtmidi driver (ALSA/JACK).
package midirtmidi

import (
	"errors"

	"github.com/leandrodaf/riano/sdk/contracts"
)

// ErrUnavailable is returned when the rtmidi driver is not compiled in.
var ErrUnavailable = errors.New("rtmidi input requires a cgo build on Linux or BSD")

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient returns a stub client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("Using dummy rtmidi client")
	return &dummyMIDIClient{logger: options.Logger}, nil
}

func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, ErrUnavailable
}

func (m *dummyMIDIClient) SelectDevice(deviceID int) error {
	return ErrUnavailable
}

func (m *dummyMIDIClient) StartCapture(sink contracts.EventSink) error {
	return ErrUnavailable
}

func (m *dummyMIDIClient) Stop() error {
	return nil
}
