package frame_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jpl-power/km003c/frame"
)

func TestParseControlFrame(t *testing.T) {
	// 02 01 00 00 -> Connect, tid=1, attribute=0, empty payload.
	in := []byte{0x02, 0x01, 0x00, 0x00}
	f, err := frame.Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Header.Type != frame.Connect {
		t.Errorf("type = %v, want Connect", f.Header.Type)
	}
	if f.Header.TransactionID != 1 {
		t.Errorf("tid = %d, want 1", f.Header.TransactionID)
	}
	attr, ok := f.GetAttribute()
	if !ok || attr != 0 {
		t.Errorf("attribute = %v, ok=%v, want 0, true", attr, ok)
	}
	if len(f.Opaque) != 0 {
		t.Errorf("opaque payload = %v, want empty", f.Opaque)
	}

	out := f.Serialize()
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTooShort(t *testing.T) {
	_, err := frame.Parse([]byte{0x01, 0x02, 0x03})
	if err != frame.ErrTooShort {
		t.Errorf("err = %v, want ErrTooShort", err)
	}
}

func TestEmptyResponsePutData(t *testing.T) {
	// obj_count_words=0, zero-byte payload.
	in := []byte{0x41, 0x07, 0x00, 0x00}
	f, err := frame.Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !f.IsEmptyResponse() {
		t.Errorf("IsEmptyResponse() = false, want true")
	}
	if _, ok := f.GetAttribute(); ok {
		t.Errorf("GetAttribute() ok = true for empty response, want false")
	}
	out := f.Serialize()
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLogicalChainSingleLinkTerminates(t *testing.T) {
	tid := uint8(9)
	data := []byte{0xAA, 0xBB, 0xCC}
	f := frame.NewPutDataFrame(tid, frame.LogicalPacket{Attribute: frame.Adc, Data: data})

	encoded := f.Serialize()
	reparsed, err := frame.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reparsed.Logical) != 1 {
		t.Fatalf("len(Logical) = %d, want 1", len(reparsed.Logical))
	}
	lp := reparsed.Logical[0]
	if lp.Attribute != frame.Adc || string(lp.Data) != string(data) {
		t.Errorf("logical packet = %+v, want attribute=Adc data=%v", lp, data)
	}

	eh, ok := reparsed.GetExtendedHeader()
	if !ok {
		t.Fatal("GetExtendedHeader ok = false")
	}
	if eh.Next {
		t.Errorf("Next = true for the only link, want false")
	}
	if int(eh.Size) != len(data) {
		t.Errorf("Size = %d, want %d", eh.Size, len(data))
	}

	reencoded := reparsed.Serialize()
	if diff := cmp.Diff(encoded, reencoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestChainedLogicalPackets(t *testing.T) {
	tid := uint8(1)
	f := frame.NewPutDataFrame(tid,
		frame.LogicalPacket{Attribute: frame.Adc, Data: make([]byte, 44)},
		frame.LogicalPacket{Attribute: frame.PdStatus, Data: make([]byte, 12)},
	)
	encoded := f.Serialize()

	// invariant: sum of (4 + logical.size) over all logical packets equals
	// the payload byte length.
	wantPayloadLen := 0
	for _, lp := range f.Logical {
		wantPayloadLen += 4 + len(lp.Data)
	}
	if got := len(encoded) - 4; got != wantPayloadLen {
		t.Errorf("payload length = %d, want %d", got, wantPayloadLen)
	}

	reparsed, err := frame.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reparsed.Logical) != 2 {
		t.Fatalf("len(Logical) = %d, want 2", len(reparsed.Logical))
	}
	attr, ok := reparsed.GetAttribute()
	if !ok || attr != frame.Adc {
		t.Errorf("GetAttribute() = %v, %v, want Adc, true", attr, ok)
	}
	if data, ok := reparsed.Find(frame.PdStatus); !ok || len(data) != 12 {
		t.Errorf("Find(PdStatus) = %v, %v, want 12 bytes, true", data, ok)
	}
}

func TestMalformedChainOverrun(t *testing.T) {
	// extended header claims size=10 but only 2 bytes of payload remain.
	header := []byte{0x41, 0x00, 0x00, 0x00}
	// attribute=Adc(1), next=0, chunk=0, size=10 -> word = 1 | (10<<22)
	word := uint32(1) | uint32(10)<<22
	extended := []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
	in := append(append([]byte{}, header...), extended...)
	in = append(in, 0x01, 0x02) // only 2 bytes, not the claimed 10

	_, err := frame.Parse(in)
	if err == nil {
		t.Fatal("Parse succeeded on an overrunning chain, want an error")
	}
}

func TestMalformedChainNextWithNoRoom(t *testing.T) {
	header := []byte{0x41, 0x00, 0x00, 0x00}
	// attribute=Adc(1), next=1, chunk=0, size=0
	word := uint32(1) | uint32(1)<<15
	extended := []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
	in := append(append([]byte{}, header...), extended...)

	_, err := frame.Parse(in)
	if err == nil {
		t.Fatal("Parse succeeded on next=1 with nothing following, want an error")
	}
}

func TestOpaquePayloadPreservedForNonChainedTypes(t *testing.T) {
	// StreamingAuth control frame with a 32-byte opaque ciphertext.
	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = byte(i)
	}
	f := frame.NewControlFrame(frame.StreamingAuth, 5, 0x0101, payload)
	encoded := f.Serialize()
	if len(encoded) != 36 {
		t.Fatalf("len(encoded) = %d, want 36", len(encoded))
	}

	reparsed, err := frame.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(payload, reparsed.Opaque); diff != "" {
		t.Errorf("opaque payload mismatch (-want +got):\n%s", diff)
	}
	attr, ok := reparsed.GetAttribute()
	if !ok || attr != 0x0101 {
		t.Errorf("attribute = %v, ok=%v, want 0x0101, true", attr, ok)
	}
}

func TestMemoryReadRequestStaysOpaqueDespiteSharedType(t *testing.T) {
	// A MemoryRead request (built as a control frame, no Logical set) must
	// still serialize as a flat 36-byte payload even though MemoryRead is
	// data-shaped -- the shape applies to the response, not the request.
	payload := make([]byte, 32)
	f := frame.NewControlFrame(frame.MemoryRead, 9, 0x0101, payload)
	encoded := f.Serialize()
	if len(encoded) != 36 {
		t.Fatalf("len(encoded) = %d, want 36", len(encoded))
	}
	attr, ok := f.GetAttribute()
	if !ok || attr != 0x0101 {
		t.Errorf("attribute = %v, ok=%v, want 0x0101, true", attr, ok)
	}
}

func TestMemoryReadResponseParsesAsLogicalChain(t *testing.T) {
	ciphertext := make([]byte, 32)
	for i := range ciphertext {
		ciphertext[i] = byte(i + 1)
	}
	f := frame.NewMemoryReadResponseFrame(9, frame.LogicalPacket{Attribute: 0x0101, Data: ciphertext})
	encoded := f.Serialize()
	// header(4) + extended header(4) + ciphertext(32)
	if len(encoded) != 40 {
		t.Fatalf("len(encoded) = %d, want 40", len(encoded))
	}

	reparsed, err := frame.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reparsed.Logical) != 1 {
		t.Fatalf("len(Logical) = %d, want 1", len(reparsed.Logical))
	}
	if diff := cmp.Diff(ciphertext, reparsed.Logical[0].Data); diff != "" {
		t.Errorf("logical payload mismatch (-want +got):\n%s", diff)
	}
}

func TestReservedPacketTypePreservedVerbatim(t *testing.T) {
	in := []byte{0x2A, 0x03, 0x00, 0x00} // 0x2A is not in the enumerated set
	f, err := frame.Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if uint8(f.Header.Type) != 0x2A {
		t.Errorf("Type = %v, want raw 0x2A preserved", f.Header.Type)
	}
	if f.Header.Type.String() == "" {
		t.Errorf("String() unexpectedly empty for reserved type")
	}
}
