package auth

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// DeviceInfo aggregates the three fixed 64-byte memory blocks read during
// session initialization. It is assembled incrementally: each parse
// method fills in the fields its block owns and leaves the rest alone, so
// callers can apply them in any order (initialization applies them in
// DeviceInfoAddress, FirmwareInfoAddress, CalibrationAddress order).
type DeviceInfo struct {
	Model     string
	HWVersion string
	MfgDate   string
	FWVersion string
	FWDate    string
	SerialID  string
	UUID      string
	FWValid   bool
}

// ErrInfoBlockSize is returned by the Parse* methods when the block isn't
// exactly InfoBlockSize bytes.
var ErrInfoBlockSize = fmt.Errorf("auth: info block must be %d bytes", InfoBlockSize)

// ParseDeviceInfoBlock fills Model, HWVersion, and MfgDate from the block
// read at DeviceInfoAddress.
func (d *DeviceInfo) ParseDeviceInfoBlock(b []byte) error {
	if len(b) != int(InfoBlockSize) {
		return ErrInfoBlockSize
	}
	d.Model = extractCString(b, 0x10, 0x1C)
	d.HWVersion = extractCString(b, 0x1C, 0x28)
	d.MfgDate = extractCString(b, 0x28, 0x40)
	return nil
}

// ParseFirmwareInfoBlock fills FWVersion and FWDate from the block read at
// FirmwareInfoAddress. A block whose first 4 bytes (LE) equal 0xFFFFFFFF
// is an absent/uninitialized firmware block, not an error: FWValid is set
// false and the string fields are left untouched.
func (d *DeviceInfo) ParseFirmwareInfoBlock(b []byte) error {
	if len(b) != int(InfoBlockSize) {
		return ErrInfoBlockSize
	}
	magic := binary.LittleEndian.Uint32(b[0:4])
	if magic == invalidFirmwareMagic {
		d.FWValid = false
		return nil
	}
	d.FWValid = true
	d.FWVersion = extractCString(b, 0x1C, 0x28)
	d.FWDate = extractCString(b, 0x28, 0x34)
	return nil
}

// ParseCalibrationBlock fills SerialID and UUID from the block read at
// CalibrationAddress.
func (d *DeviceInfo) ParseCalibrationBlock(b []byte) error {
	if len(b) != int(InfoBlockSize) {
		return ErrInfoBlockSize
	}
	d.SerialID = strings.TrimSpace(extractCString(b, 0x00, 0x07))
	d.UUID = extractCString(b, 0x07, 0x27)
	return nil
}

// extractCString returns the null-terminated (or slice-bound) ASCII run
// in b[start:end].
func extractCString(b []byte, start, end int) string {
	if start >= len(b) || end > len(b) || start >= end {
		return ""
	}
	slice := b[start:end]
	if i := bytes.IndexByte(slice, 0); i >= 0 {
		slice = slice[:i]
	}
	return string(slice)
}
