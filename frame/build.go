package frame

// NewControlFrame builds a control-shaped frame: a 4-byte header carrying
// packet type, transaction ID, and attribute, followed by whatever opaque
// payload the command needs (empty for most requests; 32 bytes of AES-ECB
// ciphertext for MemoryRead and StreamingAuth).
func NewControlFrame(t PacketType, tid uint8, attr Attribute, payload []byte) Frame {
	h := Header{Type: t, TransactionID: tid}
	h.SetAttribute(attr)
	return Frame{Header: h, Opaque: append([]byte(nil), payload...)}
}

// NewPutDataFrame builds a PutData frame from a list of attribute-tagged
// logical packets, in the order given. An empty logical list produces the
// explicit empty-response shape.
func NewPutDataFrame(tid uint8, logical ...LogicalPacket) Frame {
	h := Header{Type: PutData, TransactionID: tid}
	return Frame{Header: h, Logical: logical}
}

// NewMemoryReadResponseFrame builds the data-shaped frame a MemoryRead
// response arrives as: a single logical packet carrying the encrypted
// memory block. Unlike the request (NewControlFrame, opaque ciphertext),
// the response chains through the same logical-packet format as PutData.
func NewMemoryReadResponseFrame(tid uint8, logical LogicalPacket) Frame {
	h := Header{Type: MemoryRead, TransactionID: tid}
	return Frame{Header: h, Logical: []LogicalPacket{logical}}
}
