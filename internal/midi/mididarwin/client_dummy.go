//go:build !darwin
// +build !darwin

package mididarwin

import (
	"errors"

	"github.com/leandrodaf/riano/sdk/contracts"
)

// ErrUnavailable is returned by every operation of the stub client.
var ErrUnavailable = errors.New("CoreMIDI is only available on macOS")

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient returns a stub so the package builds on every platform.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("Using dummy CoreMIDI client on non-macOS system")
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
