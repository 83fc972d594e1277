//go:build !windows
// +build !windows

package midiwindows

import (
	"errors"

	"github.com/leandrodaf/riano/sdk/contracts"
)

// ErrUnavailable is returned by every operation of the stub client.
var ErrUnavailable = errors.New("winmm MIDI input is only available on Windows")

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient returns a stub so the package builds on every platform.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("Using dummy winmm client on non-Windows system")
	return &dummyMIDIClient{logger: options.Logger}, nil
}

// ListDevices always fails on this platform.
func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, ErrUnavailable
}

// SelectDevice always fails on this platform.
func (m *dummyMIDIClient) SelectDevice(deviceID int) error {
	return ErrUnavailable
}

// StartCapture always fails on this platform.
func (m *dummyMIDIClient) StartCapture(sink contracts.EventSink) error {
	return ErrUnavailable
}

// Stop is a no-op.
func (m *dummyMIDIClient) Stop() error {
	return nil
}
