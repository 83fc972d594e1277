package contracts

// NoteKind tags a NoteEvent.
type NoteKind uint8

const (
	// NoteOnKind starts a voice.
	NoteOnKind NoteKind = iota + 1
	// NoteOffKind releases a voice.
	NoteOffKind
)

// String returns a short name for the kind.
func (k NoteKind) String() string {
	switch k {
	case NoteOnKind:
		return "note-on"
	case NoteOffKind:
		return "note-off"
	}
	return "unknown"
}

// NoteEvent is a decoded note message travelling from the MIDI input to the render loop.
// It is consumed exactly once.
type NoteEvent struct {
	Timestamp uint64   // Timestamp is the UTC time in nanoseconds the event was received.
	Kind      NoteKind // Kind is NoteOnKind or NoteOffKind.
	Channel   uint8    // Channel is the MIDI channel (0-15).
	Pitch     uint8    // Pitch is the MIDI note number (0-127).
	Velocity  uint8    // Velocity is the note-on strength (0-127); always 0 for NoteOffKind.
}

// NoteOnEvent builds a NoteOnKind event.
func NoteOnEvent(channel, pitch, velocity uint8) NoteEvent {
	return NoteEvent{Kind: NoteOnKind, Channel: channel, Pitch: pitch, Velocity: velocity}
}

// NoteOffEvent builds a NoteOffKind event.
func NoteOffEvent(channel, pitch uint8) NoteEvent {
	return NoteEvent{Kind: NoteOffKind, Channel: channel, Pitch: pitch}
}

// EventSink receives note events from a MIDI client. Push must never block.
// It reports false when an event had to be discarded.
type EventSink interface {
	Push(event NoteEvent) bool
}

// ClientMIDI defines an interface for MIDI client operations.
type ClientMIDI interface {
	Stop() error                        // Stops the MIDI client and releases resources.
	ListDevices() ([]DeviceInfo, error) // Lists all available MIDI input devices.
	SelectDevice(deviceID int) error    // Selects a MIDI device by its index in ListDevices.
	StartCapture(sink EventSink) error  // Starts forwarding decoded note events to sink.
}

// Synthesizer is the voice state driven by the render loop.
// Implementations are not safe for concurrent use.
type Synthesizer interface {
	NoteOn(channel int32, key int32, velocity int32)
	NoteOff(channel int32, key int32)
	Render(left []float32, right []float32)
}

// OverflowPolicy decides what a full event queue gives up.
type OverflowPolicy int

const (
	// DropNewest discards the incoming event.
	DropNewest OverflowPolicy = iota
	// DropOldest evicts the oldest queued event to make room.
	DropOldest
)

// String returns the flag spelling of the policy.
func (p OverflowPolicy) String() string {
	if p == DropOldest {
		return "drop-oldest"
	}
	return "drop-newest"
}

// ParseOverflowPolicy parses "drop-newest" or "drop-oldest".
func ParseOverflowPolicy(s string) (OverflowPolicy, bool) {
	switch s {
	case "drop-newest", "":
		return DropNewest, true
	case "drop-oldest":
		return DropOldest, true
	}
	return DropNewest, false
}
