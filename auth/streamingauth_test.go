package auth_test

import (
	"testing"
	"time"

	"github.com/jpl-power/km003c/auth"
	"github.com/jpl-power/km003c/frame"
)

func hwidFixture(t *testing.T) auth.HardwareID {
	t.Helper()
	id, err := auth.ParseHardwareID([]byte{0x30, 0x37, 0x31, 0x4B, 0x42, 0x50, 0x0D, 0xFF, 0x11, 0x0A, 0xFF, 0xFF})
	if err != nil {
		t.Fatalf("ParseHardwareID: %v", err)
	}
	return id
}

func TestBuildStreamingAuthFrameShape(t *testing.T) {
	id := hwidFixture(t)
	now := time.Unix(1700000000, 0)

	f, err := auth.BuildStreamingAuthFrame(id, 9, now)
	if err != nil {
		t.Fatalf("BuildStreamingAuthFrame: %v", err)
	}
	if f.Header.Type != frame.StreamingAuth {
		t.Errorf("Type = %v, want StreamingAuth", f.Header.Type)
	}
	attr, ok := f.GetAttribute()
	if !ok || attr != 0x0002 {
		t.Errorf("attribute = %v, ok=%v, want 0x0002, true", attr, ok)
	}
	if len(f.Serialize()) != 36 {
		t.Errorf("len(Serialize()) = %d, want 36", len(f.Serialize()))
	}
}

func TestBuildStreamingAuthFramePaddingVaries(t *testing.T) {
	// The 12 trailing plaintext bytes are CSPRNG padding; two frames built
	// back to back should almost certainly differ in ciphertext.
	id := hwidFixture(t)
	now := time.Unix(1700000000, 0)

	a, err := auth.BuildStreamingAuthFrame(id, 1, now)
	if err != nil {
		t.Fatalf("BuildStreamingAuthFrame: %v", err)
	}
	b, err := auth.BuildStreamingAuthFrame(id, 1, now)
	if err != nil {
		t.Fatalf("BuildStreamingAuthFrame: %v", err)
	}
	if string(a.Opaque) == string(b.Opaque) {
		t.Error("two StreamingAuth frames with identical timestamp/ID produced identical ciphertext, want random padding to differ")
	}
}

func TestParseStreamingAuthResponseEnabled(t *testing.T) {
	resp := frame.NewControlFrame(frame.StreamingAuth, 9, 0x0203, make([]byte, 32))
	result, err := auth.ParseStreamingAuthResponse(resp)
	if err != nil {
		t.Fatalf("ParseStreamingAuthResponse: %v", err)
	}
	if !result.Enabled {
		t.Error("Enabled = false, want true for attribute 0x0203")
	}
}

func TestParseStreamingAuthResponseRejected(t *testing.T) {
	resp := frame.NewControlFrame(frame.StreamingAuth, 9, 0x0201, make([]byte, 32))
	result, err := auth.ParseStreamingAuthResponse(resp)
	if err != nil {
		t.Fatalf("ParseStreamingAuthResponse: %v", err)
	}
	if result.Enabled {
		t.Error("Enabled = true, want false for attribute 0x0201")
	}
}

func TestParseStreamingAuthResponseWrongPayloadSize(t *testing.T) {
	resp := frame.NewControlFrame(frame.StreamingAuth, 9, 0x0203, make([]byte, 10))
	_, err := auth.ParseStreamingAuthResponse(resp)
	if err != auth.ErrStreamingAuthPayloadSize {
		t.Errorf("err = %v, want ErrStreamingAuthPayloadSize", err)
	}
}
