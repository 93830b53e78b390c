package frame

import "fmt"

// LogicalPacket is one link in the chain a PutData frame or a MemoryRead
// response carries. Chunk is carried verbatim; its meaning is device/firmware
// specific and not interpreted here.
type LogicalPacket struct {
	Attribute Attribute
	Chunk     uint8
	Data      []byte
}

// Frame is a fully parsed KM003C wire frame: the primary header plus either
// a chain of logical packets (PutData, and a MemoryRead response) or an
// opaque payload (every other packet type, including a MemoryRead or
// StreamingAuth request, which shares a packet type with its data-shaped
// response but carries its ciphertext as a flat payload instead).
type Frame struct {
	Header  Header
	Logical []LogicalPacket // see chained(); nil for an opaque-payload frame
	Opaque  []byte          // payload when Logical is nil
}

// chained reports whether f actually carries a logical-packet chain rather
// than an opaque payload. A data-shaped packet type with Logical left unset
// falls back to the opaque interpretation -- this is what lets a MemoryRead
// request (built with an opaque ciphertext payload) and a MemoryRead
// response (parsed into a logical chain) share one PacketType.
func (f Frame) chained() bool {
	return f.Header.Type.dataShaped() && f.Logical != nil
}

// Parse decodes b into a Frame. It rejects inputs shorter than the 4-byte
// primary header and, for data-shaped frames (PutData, MemoryRead), walks
// the logical-packet chain by size/next until the chain terminates; a chain
// that overruns the payload, claims a link it has no room for, or leaves
// bytes after its final link is a hard error. All other packet types retain their
// payload as opaque bytes without further interpretation.
func Parse(b []byte) (Frame, error) {
	if len(b) < headerSize {
		return Frame{}, ErrTooShort
	}
	f := Frame{Header: parseHeader(b[:headerSize])}
	payload := b[headerSize:]

	if !f.Header.Type.dataShaped() {
		f.Opaque = append([]byte(nil), payload...)
		return f, nil
	}

	logical, err := parseLogicalChain(payload)
	if err != nil {
		return Frame{}, err
	}
	f.Logical = logical
	return f, nil
}

func parseLogicalChain(payload []byte) ([]LogicalPacket, error) {
	var chain []LogicalPacket
	rest := payload
	for len(rest) > 0 {
		if len(rest) < extendedHeaderSize {
			return nil, fmt.Errorf("%w: %d bytes remain, need %d for an extended header", ErrInvalidLogicalChain, len(rest), extendedHeaderSize)
		}
		eh := parseExtendedHeader(rest[:extendedHeaderSize])
		rest = rest[extendedHeaderSize:]

		if int(eh.Size) > len(rest) {
			return nil, fmt.Errorf("%w: logical packet claims %d bytes, %d remain", ErrExtendedHeaderOverrun, eh.Size, len(rest))
		}
		data := rest[:eh.Size]
		rest = rest[eh.Size:]

		chain = append(chain, LogicalPacket{
			Attribute: eh.Attribute,
			Chunk:     eh.Chunk,
			Data:      append([]byte(nil), data...),
		})

		if !eh.Next {
			if len(rest) > 0 {
				return nil, fmt.Errorf("%w: %d bytes follow the final logical packet", ErrInvalidLogicalChain, len(rest))
			}
			break
		}
		if len(rest) == 0 {
			return nil, fmt.Errorf("%w: next=1 but chain is exhausted", ErrInvalidLogicalChain)
		}
	}
	return chain, nil
}

// Serialize re-encodes f back to wire bytes. For every Frame produced by
// Parse, Serialize(Parse(b)) == b.
func (f Frame) Serialize() []byte {
	headerBytes := f.Header.encode()
	out := append([]byte(nil), headerBytes[:]...)

	if !f.chained() {
		return append(out, f.Opaque...)
	}

	for i, lp := range f.Logical {
		eh := ExtendedHeader{
			Attribute: lp.Attribute,
			Next:      i != len(f.Logical)-1,
			Chunk:     lp.Chunk,
			Size:      uint16(len(lp.Data)),
		}
		ehBytes := eh.encode()
		out = append(out, ehBytes[:]...)
		out = append(out, lp.Data...)
	}
	return out
}

// GetAttribute returns the header attribute for a control-shaped frame, or
// the attribute of the first logical packet for a data-shaped frame with at
// least one link. It returns (0, false) for an empty-response PutData frame.
func (f Frame) GetAttribute() (Attribute, bool) {
	if f.IsEmptyResponse() {
		return 0, false
	}
	if !f.chained() {
		return f.Header.Attribute(), true
	}
	if len(f.Logical) == 0 {
		return 0, false
	}
	return f.Logical[0].Attribute, true
}

// GetExtendedHeader returns the first logical packet's header-equivalent
// fields for a data-shaped frame, or ok=false for a control-shaped frame or
// an empty-response data frame.
func (f Frame) GetExtendedHeader() (ExtendedHeader, bool) {
	if !f.chained() || len(f.Logical) == 0 {
		return ExtendedHeader{}, false
	}
	first := f.Logical[0]
	eh := ExtendedHeader{
		Attribute: first.Attribute,
		Next:      len(f.Logical) > 1,
		Chunk:     first.Chunk,
		Size:      uint16(len(first.Data)),
	}
	return eh, true
}

// IsEmptyResponse reports whether f is a PutData frame with no logical
// packets at all -- the device's explicit "I have no data" response, not an
// error.
func (f Frame) IsEmptyResponse() bool {
	return f.Header.Type == PutData && len(f.Logical) == 0
}

// Find returns the data of the first logical packet tagged with attr.
func (f Frame) Find(attr Attribute) ([]byte, bool) {
	for _, lp := range f.Logical {
		if lp.Attribute == attr {
			return lp.Data, true
		}
	}
	return nil, false
}
