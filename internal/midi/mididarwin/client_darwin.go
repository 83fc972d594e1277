//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/riano/internal/midi/midimsg"
	"github.com/leandrodaf/riano/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices       = contracts.ErrNoMIDIDevices
	ErrInvalidMIDIDevice   = errors.New("invalid MIDI device")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// ClientMid manages MIDI input on Darwin (macOS) systems through CoreMIDI.
// Packets arrive on a CoreMIDI thread and are decoded by the forwarder.
type ClientMid struct {
	logger    contracts.Logger
	forwarder *midimsg.Forwarder
	client    coremidi.Client        // CoreMIDI client instance for MIDI operations.
	inputPort coremidi.InputPort     // Input port for receiving MIDI packets.
	portConn  internalPortConnection // Connection to the selected source.
	mu        sync.Mutex             // Guards portConn and capturing.
	capturing bool
	wg        sync.WaitGroup // Tracks packet callbacks in flight.
	stopOnce  sync.Once
}

// NewMIDIClient initializes a CoreMIDI client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("MIDI client successfully created",
		options.Logger.Field().String("backend", "coremidi"))

	return &ClientMid{
		logger:    options.Logger,
		forwarder: midimsg.NewForwarder(options.Logger, options.MIDIEventFilter),
		client:    client,
	}, nil
}

// ListDevices returns the available CoreMIDI sources.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		sourceEntity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   sourceEntity.Name(),
			Manufacturer: sourceEntity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects the input port to the source at deviceID,
// dropping any previous connection.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}

	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}

	source := sources[deviceID]
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))

	m.inputPort, err = coremidi.NewInputPort(m.client, "riano input", m.handlePacket)
	if err != nil {
		m.logger.Error(ErrCreateInputPort.Error(), m.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	m.portConn, err = m.inputPort.Connect(source)
	if err != nil {
		m.logger.Error(ErrMIDIConnectionError.Error(), m.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	m.logger.Info("MIDI device successfully connected")
	return nil
}

// handlePacket runs on the CoreMIDI thread. A packet may carry several messages.
func (m *ClientMid) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.forwarder.Handle(packet.Data)
}

// StartCapture starts forwarding decoded note events to sink.
func (m *ClientMid) StartCapture(sink contracts.EventSink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sink == nil {
		return contracts.ErrNilSink
	}
	if m.portConn == nil {
		m.logger.Error("Cannot start capture without a connected source")
		return fmt.Errorf("%w: no device selected", ErrMIDIConnectionError)
	}
	if m.capturing {
		m.logger.Warn("Capture already started; replacing event sink")
	}

	m.logger.Info("Starting MIDI event capture")
	m.forwarder.SetSink(sink)
	m.capturing = true
	return nil
}

// Stop disconnects the source and waits for in-flight packets. Safe to call more than once.
func (m *ClientMid) Stop() error {
	m.stopOnce.Do(func() {
		m.logger.Info("Stopping MIDI capture")
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.portConn != nil {
			m.portConn.Disconnect()
			m.portConn = nil
		}
		m.forwarder.SetSink(nil)
		m.capturing = false

		m.wg.Wait()
		m.logger.Info("MIDI capture stopped",
			m.logger.Field().Uint64("dropped", m.forwarder.Dropped()))
	})
	return nil
}
