// Package frame implements the KM003C wire codec: the 4-byte primary header
// (control or data shape), the optional extended header, and the chain of
// logical sub-packets carried by a PutData (or memory-read-response) frame.
//
// The layout is normative and byte-exact, so fields are extracted and
// written with explicit bit masking rather than relying on any compiler's
// struct packing, matching the way this codebase treats other bit-packed
// wire formats.
package frame

import "fmt"

// PacketType is the 7-bit opcode carried in byte 0 of every primary header.
type PacketType uint8

// Known packet types. Values outside this enumeration are preserved
// verbatim as PacketType(raw) rather than rejected.
const (
	Sync          PacketType = 0x01
	Connect       PacketType = 0x02
	Disconnect    PacketType = 0x03
	Reset         PacketType = 0x04
	Accept        PacketType = 0x05
	Reject        PacketType = 0x06
	Finished      PacketType = 0x07
	JumpAprom     PacketType = 0x08
	JumpDFU       PacketType = 0x09
	GetStatus     PacketType = 0x0A
	ErrorPacket   PacketType = 0x0B
	GetData       PacketType = 0x0C
	GetFile       PacketType = 0x0D
	StartGraph    PacketType = 0x0E
	StopGraph     PacketType = 0x0F
	Head          PacketType = 0x40
	PutData       PacketType = 0x41
	MemoryRead    PacketType = 0x44
	StreamingAuth PacketType = 0x4C
)

var packetTypeNames = map[PacketType]string{
	Sync:          "Sync",
	Connect:       "Connect",
	Disconnect:    "Disconnect",
	Reset:         "Reset",
	Accept:        "Accept",
	Reject:        "Reject",
	Finished:      "Finished",
	JumpAprom:     "JumpAprom",
	JumpDFU:       "JumpDFU",
	GetStatus:     "GetStatus",
	ErrorPacket:   "Error",
	GetData:       "GetData",
	GetFile:       "GetFile",
	StartGraph:    "StartGraph",
	StopGraph:     "StopGraph",
	Head:          "Head",
	PutData:       "PutData",
	MemoryRead:    "MemoryRead",
	StreamingAuth: "StreamingAuth",
}

// String implements fmt.Stringer, printing the name of known types and a
// hex fallback for vendor/reserved codes so log lines stay readable.
func (t PacketType) String() string {
	if name, ok := packetTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Reserved(0x%02X)", uint8(t))
}
