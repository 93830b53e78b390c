package auth_test

import (
	"testing"

	"github.com/jpl-power/km003c/auth"
	"github.com/jpl-power/km003c/frame"
)

func TestBuildMemoryReadFrameShape(t *testing.T) {
	f, err := auth.BuildMemoryReadFrame(auth.HardwareIDAddress, auth.HardwareIDSize, 7)
	if err != nil {
		t.Fatalf("BuildMemoryReadFrame: %v", err)
	}
	if f.Header.Type != frame.MemoryRead {
		t.Errorf("Type = %v, want MemoryRead", f.Header.Type)
	}
	if f.Header.TransactionID != 7 {
		t.Errorf("TransactionID = %d, want 7", f.Header.TransactionID)
	}
	if attr, ok := f.GetAttribute(); !ok || attr != 0x0101 {
		t.Errorf("attribute = %v, ok=%v, want 0x0101, true", attr, ok)
	}
	encoded := f.Serialize()
	if len(encoded) != 36 {
		t.Fatalf("len(encoded) = %d, want 36", len(encoded))
	}
}

func TestDecryptMemoryReadResponseWantSizeTooLarge(t *testing.T) {
	_, err := auth.DecryptMemoryReadResponse(make([]byte, 16), 32)
	if err == nil {
		t.Fatal("DecryptMemoryReadResponse succeeded with wantSize exceeding the plaintext, want an error")
	}
}
