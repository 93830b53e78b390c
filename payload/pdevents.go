package payload

import (
	"encoding/binary"
	"fmt"
)

// PdPreambleSize is the fixed size of the header preceding a PD event
// stream's event loop.
const PdPreambleSize = 12

const pdEventHeaderSize = 6
const pdEventTypeConnection = 0x45
const pdConnectionConnect = 0x11
const pdConnectionDisconnect = 0x12
const pdEventSizeMask = 0x3F
const pdEventSizeOffset = 5

// ErrPdEventStreamTooShort is returned by DecodePDEventStream when fewer
// than PdPreambleSize bytes are given.
var ErrPdEventStreamTooShort = fmt.Errorf("payload: PD event stream shorter than %d-byte preamble", PdPreambleSize)

// ErrPdEventOverrun is returned when an event's wire_len claims more bytes
// than remain in the stream.
var ErrPdEventOverrun = fmt.Errorf("payload: PD event claims more wire bytes than remain")

// PdPreamble is the fixed header at the start of a PD event stream,
// reporting the bus state at the moment streaming began.
type PdPreamble struct {
	Timestamp uint32 // milliseconds
	VbusV     float64
	IbusA     float64 // signed: direction through the meter
	Cc1V      float64
	Cc2V      float64
}

// PdEventKind distinguishes a connection state change from a raw PD wire
// message.
type PdEventKind int

const (
	PdEventConnect PdEventKind = iota
	PdEventDisconnect
	PdEventMessage
)

// PdEvent is one timestamped entry in a PD event stream.
type PdEvent struct {
	Timestamp uint32
	Kind      PdEventKind
	SOP       uint8  // valid for PdEventMessage
	WireData  []byte // valid for PdEventMessage
}

// PdEventStream is a fully decoded PD event stream: the preamble plus the
// ordered sequence of events that followed it.
type PdEventStream struct {
	Preamble PdPreamble
	Events   []PdEvent
}

// DecodePDEventStream parses a preamble followed by a run of
// variable-length events. Parsing stops cleanly (without error) once fewer
// than 6 bytes remain -- that's a short trailing fragment, not a malformed
// stream -- but an event that claims more wire bytes than remain is a hard
// error.
func DecodePDEventStream(b []byte) (PdEventStream, error) {
	if len(b) < PdPreambleSize {
		return PdEventStream{}, ErrPdEventStreamTooShort
	}

	ibusRaw := int16(binary.LittleEndian.Uint16(b[6:8]))
	preamble := PdPreamble{
		Timestamp: binary.LittleEndian.Uint32(b[0:4]),
		VbusV:     float64(binary.LittleEndian.Uint16(b[4:6])) / 1000,
		IbusA:     float64(ibusRaw) / 1000,
		Cc1V:      float64(binary.LittleEndian.Uint16(b[8:10])) / 1000,
		Cc2V:      float64(binary.LittleEndian.Uint16(b[10:12])) / 1000,
	}

	var events []PdEvent
	rest := b[PdPreambleSize:]
	for len(rest) >= pdEventHeaderSize {
		sizeFlag := rest[0]
		timestamp := binary.LittleEndian.Uint32(rest[1:5])
		sop := rest[5]

		// The connection-event code (0x11/0x12) rides in a single wire byte
		// following the header; every other size_flag encodes its wire
		// length via the low 6 bits, offset by the 5 header bytes already
		// consumed ahead of the SOP byte.
		var wireLen int
		if sizeFlag == pdEventTypeConnection {
			wireLen = 1
		} else if masked := int(sizeFlag&pdEventSizeMask) - pdEventSizeOffset; masked > 0 {
			wireLen = masked
		}
		rest = rest[pdEventHeaderSize:]

		if wireLen > len(rest) {
			return PdEventStream{}, fmt.Errorf("%w: claims %d bytes, %d remain", ErrPdEventOverrun, wireLen, len(rest))
		}
		wireData := append([]byte(nil), rest[:wireLen]...)
		rest = rest[wireLen:]

		ev := PdEvent{Timestamp: timestamp, Kind: PdEventMessage, SOP: sop, WireData: wireData}
		if sizeFlag == pdEventTypeConnection && len(wireData) > 0 {
			switch wireData[0] {
			case pdConnectionConnect:
				ev = PdEvent{Timestamp: timestamp, Kind: PdEventConnect}
			case pdConnectionDisconnect:
				ev = PdEvent{Timestamp: timestamp, Kind: PdEventDisconnect}
			}
		}
		events = append(events, ev)
	}

	return PdEventStream{Preamble: preamble, Events: events}, nil
}

// Messages returns the PD wire messages in the stream, skipping connection
// events.
func (s PdEventStream) Messages() []PdEvent {
	var out []PdEvent
	for _, e := range s.Events {
		if e.Kind == PdEventMessage {
			out = append(out, e)
		}
	}
	return out
}
