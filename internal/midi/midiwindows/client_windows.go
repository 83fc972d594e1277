//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/riano/internal/midi/midimsg"
	"github.com/leandrodaf/riano/sdk/contracts"
	"golang.org/x/sys/windows"
)

// HMIDIIN is a winmm MIDI input handle.
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

var (
	ErrNoMIDIDevices     = contracts.ErrNoMIDIDevices
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNotConnected      = errors.New("no MIDI device selected")
)

// midiInCaps mirrors MIDIINCAPSW.
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// ClientMid manages MIDI input on Windows through winmm.dll.
type ClientMid struct {
	logger    contracts.Logger
	forwarder *midimsg.Forwarder
	handle    HMIDIIN
	portConn  bool
	started   bool
	id        uintptr
	mu        sync.Mutex
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// Clients are looked up by id from the winmm callback instead of handing a Go
// pointer to the driver.
var (
	clientsMu sync.RWMutex
	clients   map[uintptr]*ClientMid
	nextID    uintptr
)

var callbackFn = windows.NewCallback(midiInCallback)

func register(m *ClientMid) uintptr {
	clientsMu.Lock()
	defer clientsMu.Unlock()
	if clients == nil {
		clients = map[uintptr]*ClientMid{}
	}
	nextID++
	clients[nextID] = m
	return nextID
}

func unregister(id uintptr) {
	clientsMu.Lock()
	defer clientsMu.Unlock()
	delete(clients, id)
}

func lookup(id uintptr) *ClientMid {
	clientsMu.RLock()
	defer clientsMu.RUnlock()
	return clients[id]
}

// NewMIDIClient creates a MIDI client for Windows
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("MIDI client successfully created",
		options.Logger.Field().String("backend", "winmm"))

	m := &ClientMid{
		logger:    options.Logger,
		forwarder: midimsg.NewForwarder(options.Logger, options.MIDIEventFilter),
	}
	m.id = register(m)
	return m, nil
}

// ListDevices lists the available MIDI input devices
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			m.logger.Warn("Failed to get information for MIDI device", m.logger.Field().Int("deviceID", int(i)))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// SelectDevice opens the input device at deviceID, closing any previous one.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r0, _, _ := procMidiInGetNumDevs.Call()
	if deviceID < 0 || deviceID >= int(uint32(r0)) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}

	if m.portConn {
		if err := m.closeDevice(); err != nil {
			return fmt.Errorf("failed to close previous MIDI device: %w", err)
		}
	}

	fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS
	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&m.handle)),
		uintptr(deviceID),
		callbackFn,
		m.id,
		uintptr(fdwOpen),
	)
	if r1 != 0 {
		m.logger.Error("Failed to open MIDI device",
			m.logger.Field().Int("deviceID", deviceID),
			m.logger.Field().Error("error", err))
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}

	m.portConn = true
	m.logger.Info("MIDI device successfully connected", m.logger.Field().Int("deviceID", deviceID))
	return nil
}

// StartCapture installs sink and starts the winmm input stream.
func (m *ClientMid) StartCapture(sink contracts.EventSink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sink == nil {
		return contracts.ErrNilSink
	}
	if !m.portConn || m.handle == 0 {
		m.logger.Error("Cannot start capture", m.logger.Field().Error("error", ErrNotConnected))
		return ErrNotConnected
	}

	m.forwarder.SetSink(sink)
	if m.started {
		m.logger.Warn("Capture already started; replacing event sink")
		return nil
	}

	r1, _, err := procMidiInStart.Call(uintptr(m.handle))
	if r1 != 0 {
		m.forwarder.SetSink(nil)
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", err))
		return fmt.Errorf("midiInStart failed with code %d: %w", r1, err)
	}
	m.started = true
	m.logger.Info("Starting MIDI event capture")
	return nil
}

// midiInCallback runs on a winmm thread. dwInstance carries the client id.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	m := lookup(dwInstance)
	if m == nil {
		return 0
	}

	switch wMsg {
	case MIM_OPEN:
		m.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		m.logger.Debug("MIDI device closed")
	case MIM_DATA:
		// Short messages are packed little-endian into dwParam1.
		m.forwarder.Handle([]byte{
			byte(dwParam1 & 0xFF),
			byte((dwParam1 >> 8) & 0xFF),
			byte((dwParam1 >> 16) & 0xFF),
		})
	case MIM_ERROR, MIM_LONGERROR:
		m.logger.Warn("Invalid MIDI data received", m.logger.Field().Uint64("msg", uint64(wMsg)))
	case MIM_MOREDATA:
		m.logger.Debug("Received MIM_MOREDATA message; ignored")
	}
	return 0
}

// Stop terminates MIDI event capture and closes the device
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.forwarder.SetSink(nil)
	if !m.portConn {
		unregister(m.id)
		return nil
	}

	if err := m.closeDevice(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	unregister(m.id)
	m.logger.Info("MIDI capture stopped",
		m.logger.Field().Uint64("dropped", m.forwarder.Dropped()))
	return nil
}

// closeDevice stops the input stream and closes the handle.
func (m *ClientMid) closeDevice() error {
	if m.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}

	if m.started {
		if r1, _, err := procMidiInStop.Call(uintptr(m.handle)); r1 != 0 {
			m.logger.Error("Failed to stop MIDI capture", m.logger.Field().Error("error", err))
			return err
		}
		m.started = false
	}

	if r1, _, err := procMidiInClose.Call(uintptr(m.handle)); r1 != 0 {
		m.logger.Error("Failed to close MIDI device", m.logger.Field().Error("error", err))
		return err
	}

	m.portConn = false
	m.handle = 0
	return nil
}
