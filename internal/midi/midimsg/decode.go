// Package midimsg turns raw MIDI input bytes into note events and forwards
// them to an event sink. Every platform backend feeds its bytes through here.
package midimsg

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/riano/sdk/contracts"
)

// messageLen returns the length of the channel-voice message started by status,
// or 0 when status is not a channel-voice status byte.
func messageLen(status byte) int {
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 3
	case 0xC0, 0xD0:
		return 2
	}
	return 0
}

// Decode converts one channel-voice message into a note event.
// Malformed messages and non-note messages report false.
func Decode(data []byte) (contracts.NoteEvent, bool) {
	if len(data) < 3 || messageLen(data[0]) != 3 {
		return contracts.NoteEvent{}, false
	}
	if data[1]&0x80 != 0 || data[2]&0x80 != 0 {
		return contracts.NoteEvent{}, false
	}

	msg := gomidi.Message(data[:3])
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if velocity == 0 {
			return contracts.NoteOffEvent(channel, key), true
		}
		return contracts.NoteOnEvent(channel, key, velocity), true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return contracts.NoteOffEvent(channel, key), true
	}
	return contracts.NoteEvent{}, false
}

// DecodePacket walks a buffer holding back-to-back MIDI messages, honouring
// running status, and calls fn for every note event. Real-time bytes and
// SysEx blocks are skipped; a malformed message ends the walk.
func DecodePacket(data []byte, fn func(contracts.NoteEvent)) {
	var running byte
	var msg [3]byte

	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b >= 0xF8:
			i++
			continue
		case b == 0xF0:
			for i < len(data) && data[i] != 0xF7 {
				i++
			}
			i++
			running = 0
			continue
		case b >= 0xF0:
			return
		case b&0x80 != 0:
			running = b
			i++
		case running == 0:
			return
		}

		n := messageLen(running)
		if i+n-1 > len(data) {
			return
		}
		msg[0] = running
		copy(msg[1:], data[i:i+n-1])
		for _, d := range msg[1:n] {
			if d&0x80 != 0 {
				return
			}
		}
		i += n - 1

		if n == 3 {
			if ev, ok := Decode(msg[:]); ok {
				fn(ev)
			}
		}
	}
}
