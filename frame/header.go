package frame

import "encoding/binary"

const headerSize = 4

// Header is the 4-byte primary header shared by every frame. field2 holds
// the raw LE value of bytes 2-3 verbatim; Attribute and ObjCountWords
// interpret it according to which shape this packet type uses, but the raw
// value is what gets re-serialized, so an unknown or malformed field2 still
// round-trips byte for byte.
type Header struct {
	Type          PacketType
	ReservedFlag  bool
	TransactionID uint8
	field2        uint16
}

// dataShaped reports whether this header's bytes 2-3 hold obj_count_words
// (PutData, and a MemoryRead response) rather than an attribute (every
// other known type, including the MemoryRead/StreamingAuth requests, which
// are control-shaped but still carry a trailing payload).
func (t PacketType) dataShaped() bool {
	return t == PutData || t == MemoryRead
}

// Attribute returns the control-shaped interpretation of bytes 2-3: bit 15
// reserved, bits 14-0 the attribute/request bitmask.
func (h Header) Attribute() Attribute {
	return Attribute(getBits(uint32(h.field2), 0, 15))
}

// SetAttribute sets the control-shaped interpretation of bytes 2-3,
// preserving the reserved bit.
func (h *Header) SetAttribute(a Attribute) {
	h.field2 = uint16(putBits(uint32(h.field2), 0, 15, uint32(a)))
}

// ObjCountWords returns the data-shaped interpretation of bytes 2-3: bits
// 15-10 reserved, bits 9-0 an informational word count. Per spec this must
// never be used to infer payload length.
func (h Header) ObjCountWords() uint16 {
	return uint16(getBits(uint32(h.field2), 0, 10))
}

// SetObjCountWords sets the data-shaped interpretation of bytes 2-3.
func (h *Header) SetObjCountWords(n uint16) {
	h.field2 = uint16(putBits(uint32(h.field2), 0, 10, uint32(n)))
}

func parseHeader(b []byte) Header {
	word := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return Header{
		Type:          PacketType(getBits(word, 0, 7)),
		ReservedFlag:  getBit(word, 7),
		TransactionID: uint8(getBits(word, 8, 8)),
		field2:        uint16(getBits(word, 16, 16)),
	}
}

func (h Header) encode() [headerSize]byte {
	var word uint32
	word = putBits(word, 0, 7, uint32(h.Type))
	word = setBit(word, 7, h.ReservedFlag)
	word = putBits(word, 8, 8, uint32(h.TransactionID))
	word = putBits(word, 16, 16, uint32(h.field2))

	var out [headerSize]byte
	binary.LittleEndian.PutUint32(out[:], word)
	return out
}

// ExtendedHeader prefixes every logical packet carried inside a PutData
// payload, or a MemoryRead response's payload.
type ExtendedHeader struct {
	Attribute Attribute
	Next      bool
	Chunk     uint8
	Size      uint16
}

const extendedHeaderSize = 4

func parseExtendedHeader(b []byte) ExtendedHeader {
	word := binary.LittleEndian.Uint32(b)
	return ExtendedHeader{
		Attribute: Attribute(getBits(word, 0, 15)),
		Next:      getBit(word, 15),
		Chunk:     uint8(getBits(word, 16, 6)),
		Size:      uint16(getBits(word, 22, 10)),
	}
}

func (h ExtendedHeader) encode() [extendedHeaderSize]byte {
	var word uint32
	word = putBits(word, 0, 15, uint32(h.Attribute))
	word = setBit(word, 15, h.Next)
	word = putBits(word, 16, 6, uint32(h.Chunk))
	word = putBits(word, 22, 10, uint32(h.Size))

	var out [extendedHeaderSize]byte
	binary.LittleEndian.PutUint32(out[:], word)
	return out
}
