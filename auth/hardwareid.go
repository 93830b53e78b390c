package auth

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// HardwareID is the 12-byte identity block read from device memory at
// HardwareIDAddress: a 6-byte ASCII serial prefix, a 2-byte separator
// (typically 0x0D 0xFF), a little-endian u16 device ID, and 2 bytes of
// padding.
type HardwareID [HardwareIDSize]byte

// ErrHardwareIDSize is returned by ParseHardwareID when the input isn't
// exactly 12 bytes.
var ErrHardwareIDSize = fmt.Errorf("auth: hardware ID must be %d bytes", HardwareIDSize)

// ParseHardwareID copies b into a HardwareID.
func ParseHardwareID(b []byte) (HardwareID, error) {
	if len(b) != int(HardwareIDSize) {
		return HardwareID{}, ErrHardwareIDSize
	}
	var id HardwareID
	copy(id[:], b)
	return id, nil
}

// SerialPrefix returns the first 6 bytes as a string if they're all
// alphanumeric ASCII, else ok=false.
func (id HardwareID) SerialPrefix() (string, bool) {
	prefix := id[0:6]
	for _, b := range prefix {
		if !isAlnumASCII(b) {
			return "", false
		}
	}
	return string(prefix), true
}

func isAlnumASCII(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	default:
		return false
	}
}

// DeviceID returns bytes 8-9 as a little-endian device ID.
func (id HardwareID) DeviceID() uint16 {
	return binary.LittleEndian.Uint16(id[8:10])
}

func (id HardwareID) String() string {
	return hex.EncodeToString(id[:])
}
