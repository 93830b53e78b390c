// Package auth implements the KM003C authentication and streaming
// enablement handshake: an AES-128-ECB encrypted memory-read of the
// device's hardware ID, and an encrypted StreamingAuth frame that embeds
// that ID to unlock the AdcQueue streaming attribute.
package auth

// The three embedded AES-128 keys. None of these are secret in any
// meaningful sense -- they are fixed, reverse-engineered device constants,
// not per-session credentials.
var (
	memoryReadKey   = []byte("Lh2yfB7n6X7d9a5Z")
	streamingEncKey = []byte("Fa0b4tA25f4R038a") // host -> device
	streamingDecKey = []byte("FX0b4tA25f4R038a") // device -> host
)

// Fixed memory addresses read during session initialization.
const (
	HardwareIDAddress    uint32 = 0x40010450
	DeviceInfoAddress    uint32 = 0x00000420
	FirmwareInfoAddress  uint32 = 0x00004420
	CalibrationAddress   uint32 = 0x03000C00
	InfoBlockSize        uint32 = 64
	HardwareIDSize       uint32 = 12
	invalidFirmwareMagic uint32 = 0xFFFFFFFF
)
