package midimsg

import (
	"sync/atomic"
	"time"

	"github.com/leandrodaf/riano/sdk/contracts"
)

// DefaultFilter passes note on and note off events.
func DefaultFilter() *contracts.MIDIEventFilter {
	return &contracts.MIDIEventFilter{Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff}}
}

type sinkHolder struct {
	sink contracts.EventSink
}

// Forwarder decodes incoming bytes and pushes the resulting note events into
// the sink installed by SetSink. Handle may run on a MIDI driver thread while
// SetSink is called from another goroutine.
type Forwarder struct {
	logger  contracts.Logger
	filter  *contracts.MIDIEventFilter
	sink    atomic.Pointer[sinkHolder]
	now     func() time.Time
	dropped atomic.Uint64
}

// NewForwarder creates a forwarder. A nil filter passes every note event.
func NewForwarder(logger contracts.Logger, filter *contracts.MIDIEventFilter) *Forwarder {
	return &Forwarder{logger: logger, filter: filter, now: time.Now}
}

// SetSink installs the destination for decoded events; nil detaches it.
func (f *Forwarder) SetSink(sink contracts.EventSink) {
	if sink == nil {
		f.sink.Store(nil)
		return
	}
	f.sink.Store(&sinkHolder{sink: sink})
}

// Dropped returns how many events the sink refused.
func (f *Forwarder) Dropped() uint64 {
	return f.dropped.Load()
}

// Handle decodes a raw MIDI packet and forwards every allowed note event.
func (f *Forwarder) Handle(data []byte) {
	holder := f.sink.Load()
	if holder == nil {
		f.logger.Warn("MIDI data received before capture started; dropping")
		return
	}

	ts := uint64(f.now().UTC().UnixNano())
	DecodePacket(data, func(ev contracts.NoteEvent) {
		if !f.filter.Allows(ev.Kind) {
			return
		}
		ev.Timestamp = ts
		f.logger.Debug("note event",
			f.logger.Field().String("kind", ev.Kind.String()),
			f.logger.Field().Uint8("channel", ev.Channel),
			f.logger.Field().Uint8("note", ev.Pitch),
			f.logger.Field().Uint8("velocity", ev.Velocity))
		if !holder.sink.Push(ev) {
			f.dropped.Add(1)
			f.logger.Warn("event queue full; MIDI event dropped",
				f.logger.Field().Uint64("dropped", f.dropped.Load()))
		}
	})
}
