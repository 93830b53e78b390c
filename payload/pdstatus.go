package payload

import (
	"encoding/binary"
	"fmt"
)

// PdStatusSize is the fixed wire size of a PD status block, as carried
// alongside an ADC sample in a combined ADC+PD-status response.
const PdStatusSize = 12

// ErrPdStatusTooShort is returned by DecodePDStatus when fewer than
// PdStatusSize bytes are given.
var ErrPdStatusTooShort = fmt.Errorf("payload: PD status shorter than %d bytes", PdStatusSize)

// PdStatus is a snapshot of the USB-PD negotiation state at the moment an
// ADC+PD-status response was produced.
type PdStatus struct {
	TypeID    uint8
	Timestamp uint32 // 24-bit device counter, zero-extended; ~40ms per tick
	VbusV     float64
	IbusA     float64
	Cc1V      float64
	Cc2V      float64
}

// DecodePDStatus parses a 12-byte PD status block.
func DecodePDStatus(b []byte) (PdStatus, error) {
	if len(b) < PdStatusSize {
		return PdStatus{}, ErrPdStatusTooShort
	}
	ts := uint32(b[1]) | uint32(b[2])<<8 | uint32(b[3])<<16
	return PdStatus{
		TypeID:    b[0],
		Timestamp: ts,
		VbusV:     float64(binary.LittleEndian.Uint16(b[4:6])) / 1000,
		IbusA:     float64(binary.LittleEndian.Uint16(b[6:8])) / 1000,
		Cc1V:      float64(binary.LittleEndian.Uint16(b[8:10])) / 1000,
		Cc2V:      float64(binary.LittleEndian.Uint16(b[10:12])) / 1000,
	}, nil
}
