package contracts

import "errors"

// Errors shared by every MIDI backend.
var (
	// ErrNoMIDIDevices means the subsystem works but reports no input ports.
	ErrNoMIDIDevices = errors.New("no MIDI devices found")
	// ErrNilSink is returned by StartCapture when no sink is given.
	ErrNilSink = errors.New("nil event sink")
)

// DeviceInfo describes a MIDI input port.
type DeviceInfo struct {
	Name         string // Port name as reported by the MIDI subsystem.
	Manufacturer string // Device manufacturer, when the backend knows it.
	EntityName   string // Name of the entity the port belongs to.
}

// String renders the device for listings.
func (d DeviceInfo) String() string {
	if d.Manufacturer == "" {
		return d.Name
	}
	return d.Name + " (" + d.Manufacturer + ")"
}
