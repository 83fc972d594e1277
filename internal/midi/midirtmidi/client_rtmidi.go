//go:build !darwin && !windows && cgo
// +build !darwin,!windows,cgo

// Package midirtmidi reads MIDI input through the gomidi rtmidi driver (ALSA/JACK).
package midirtmidi

import (
	"errors"
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"github.com/leandrodaf/riano/internal/midi/midimsg"
	"github.com/leandrodaf/riano/sdk/contracts"
)

var (
	ErrNoMIDIDevices     = contracts.ErrNoMIDIDevices
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNotConnected      = errors.New("no MIDI device selected")
)

// ClientMid manages MIDI input through gomidi.
type ClientMid struct {
	logger    contracts.Logger
	forwarder *midimsg.Forwarder
	inPort    drivers.In
	stopFunc  func()
	mu        sync.Mutex
	stopOnce  sync.Once
}

// NewMIDIClient creates an rtmidi backed client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("MIDI client successfully created",
		options.Logger.Field().String("backend", "rtmidi"))

	return &ClientMid{
		logger:    options.Logger,
		forwarder: midimsg.NewForwarder(options.Logger, options.MIDIEventFilter),
	}, nil
}

// ListDevices lists the MIDI input ports known to the driver.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	ins := gomidi.GetInPorts()
	if len(ins) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{Name: in.String(), EntityName: in.String()}
	}
	return devices, nil
}

// SelectDevice picks the input port at deviceID. An active capture is moved to the new port.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ins := gomidi.GetInPorts()
	if deviceID < 0 || deviceID >= len(ins) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}

	wasListening := m.stopFunc != nil
	m.unlisten()

	m.inPort = ins[deviceID]
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", m.inPort.String()))

	if wasListening {
		return m.listen()
	}
	return nil
}

// StartCapture installs sink and opens the selected port.
func (m *ClientMid) StartCapture(sink contracts.EventSink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sink == nil {
		return contracts.ErrNilSink
	}
	if m.inPort == nil {
		m.logger.Error("Cannot start capture", m.logger.Field().Error("error", ErrNotConnected))
		return ErrNotConnected
	}

	m.forwarder.SetSink(sink)
	if m.stopFunc != nil {
		m.logger.Warn("Capture already started; replacing event sink")
		return nil
	}
	if err := m.listen(); err != nil {
		m.forwarder.SetSink(nil)
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", err))
		return err
	}
	m.logger.Info("Starting MIDI event capture")
	return nil
}

func (m *ClientMid) listen() error {
	stop, err := gomidi.ListenTo(m.inPort, func(msg gomidi.Message, timestampms int32) {
		m.forwarder.Handle(msg)
	})
	if err != nil {
		return fmt.Errorf("open input %q: %w", m.inPort.String(), err)
	}
	m.stopFunc = stop
	return nil
}

func (m *ClientMid) unlisten() {
	if m.stopFunc != nil {
		m.stopFunc()
		m.stopFunc = nil
	}
}

// Stop closes the port and the driver. Safe to call more than once.
func (m *ClientMid) Stop() error {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.forwarder.SetSink(nil)
		m.unlisten()
		gomidi.CloseDriver()
		m.logger.Info("MIDI capture stopped",
			m.logger.Field().Uint64("dropped", m.forwarder.Dropped()))
	})
	return nil
}
