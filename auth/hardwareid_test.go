package auth_test

import (
	"testing"

	"github.com/jpl-power/km003c/auth"
)

func TestParseHardwareID(t *testing.T) {
	id, err := auth.ParseHardwareID([]byte{0x30, 0x37, 0x31, 0x4B, 0x42, 0x50, 0x0D, 0xFF, 0x11, 0x0A, 0xFF, 0xFF})
	if err != nil {
		t.Fatalf("ParseHardwareID: %v", err)
	}
	prefix, ok := id.SerialPrefix()
	if !ok || prefix != "071KBP" {
		t.Errorf("SerialPrefix() = %q, %v, want 071KBP, true", prefix, ok)
	}
	if got, want := id.DeviceID(), uint16(0x0A11); got != want {
		t.Errorf("DeviceID() = %#x, want %#x", got, want)
	}
}

func TestParseHardwareIDWrongSize(t *testing.T) {
	_, err := auth.ParseHardwareID(make([]byte, 10))
	if err != auth.ErrHardwareIDSize {
		t.Errorf("err = %v, want ErrHardwareIDSize", err)
	}
}

func TestSerialPrefixNonAlnum(t *testing.T) {
	id, err := auth.ParseHardwareID([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0D, 0xFF, 0, 0, 0xFF, 0xFF})
	if err != nil {
		t.Fatalf("ParseHardwareID: %v", err)
	}
	if _, ok := id.SerialPrefix(); ok {
		t.Error("SerialPrefix() ok = true for non-alphanumeric prefix, want false")
	}
}
