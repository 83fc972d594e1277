package midimsg

import (
	"testing"
	"time"

	"github.com/leandrodaf/riano/internal/logger"
	"github.com/leandrodaf/riano/sdk/contracts"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want contracts.NoteEvent
		ok   bool
	}{
		{"note on", []byte{0x90, 60, 100}, contracts.NoteOnEvent(0, 60, 100), true},
		{"note on channel 10", []byte{0x99, 36, 127}, contracts.NoteOnEvent(9, 36, 127), true},
		{"note on velocity zero is note off", []byte{0x91, 64, 0}, contracts.NoteOffEvent(1, 64), true},
		{"note off", []byte{0x80, 60, 40}, contracts.NoteOffEvent(0, 60), true},
		{"control change ignored", []byte{0xB0, 64, 127}, contracts.NoteEvent{}, false},
		{"program change ignored", []byte{0xC0, 5}, contracts.NoteEvent{}, false},
		{"truncated", []byte{0x90, 60}, contracts.NoteEvent{}, false},
		{"empty", nil, contracts.NoteEvent{}, false},
		{"missing status", []byte{60, 100, 0}, contracts.NoteEvent{}, false},
		{"data byte with high bit", []byte{0x90, 0x80, 100}, contracts.NoteEvent{}, false},
		{"system message", []byte{0xF2, 0, 0}, contracts.NoteEvent{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Decode(% X) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDecodePacket(t *testing.T) {
	packet := []byte{
		0xF8,             // clock
		0x90, 60, 100,    // note on
		64, 90,           // running status note on
		0xC0, 3,          // program change
		0xF0, 1, 2, 0xF7, // sysex
		0x80, 60, 0,      // note off
		0x90, 67,         // truncated
	}
	var got []contracts.NoteEvent
	DecodePacket(packet, func(ev contracts.NoteEvent) { got = append(got, ev) })

	want := []contracts.NoteEvent{
		contracts.NoteOnEvent(0, 60, 100),
		contracts.NoteOnEvent(0, 64, 90),
		contracts.NoteOffEvent(0, 60),
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDecodePacketStopsOnGarbage(t *testing.T) {
	calls := 0
	DecodePacket([]byte{60, 100, 0x90, 60, 100}, func(contracts.NoteEvent) { calls++ })
	if calls != 0 {
		t.Errorf("data without status produced %d events", calls)
	}
}

type recordingSink struct {
	events []contracts.NoteEvent
	accept bool
}

func (s *recordingSink) Push(ev contracts.NoteEvent) bool {
	if s.accept {
		s.events = append(s.events, ev)
	}
	return s.accept
}

func TestForwarder(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	f := NewForwarder(logger.NewNopLogger(), DefaultFilter())
	f.now = func() time.Time { return fixed }

	// Nothing is counted before a sink is installed.
	f.Handle([]byte{0x90, 60, 100})
	if f.Dropped() != 0 {
		t.Fatalf("Dropped() = %d without a sink", f.Dropped())
	}

	sink := &recordingSink{accept: true}
	f.SetSink(sink)
	f.Handle([]byte{0x90, 60, 100})
	f.Handle([]byte{0xB0, 1, 1})
	f.Handle([]byte{0x90, 60})
	f.Handle([]byte{0x80, 60, 0})

	if len(sink.events) != 2 {
		t.Fatalf("sink got %+v", sink.events)
	}
	if sink.events[0].Kind != contracts.NoteOnKind || sink.events[1].Kind != contracts.NoteOffKind {
		t.Errorf("unexpected kinds: %+v", sink.events)
	}
	if sink.events[0].Timestamp != uint64(fixed.UnixNano()) {
		t.Errorf("timestamp = %d", sink.events[0].Timestamp)
	}
}

func TestForwarderFilterAndDrops(t *testing.T) {
	f := NewForwarder(logger.NewNopLogger(), &contracts.MIDIEventFilter{
		Commands: []contracts.MIDICommand{contracts.NoteOn},
	})
	sink := &recordingSink{accept: true}
	f.SetSink(sink)
	f.Handle([]byte{0x90, 60, 100, 0x80, 60, 0})
	if len(sink.events) != 1 || sink.events[0].Kind != contracts.NoteOnKind {
		t.Fatalf("filter let through %+v", sink.events)
	}

	full := &recordingSink{accept: false}
	f.SetSink(full)
	f.Handle([]byte{0x90, 61, 100})
	if f.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", f.Dropped())
	}

	f.SetSink(nil)
	f.Handle([]byte{0x90, 62, 100})
	if len(sink.events) != 1 || f.Dropped() != 1 {
		t.Errorf("detached forwarder still delivered: events %+v, dropped %d", sink.events, f.Dropped())
	}
}
