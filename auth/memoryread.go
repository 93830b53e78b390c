package auth

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/jpl-power/km003c/frame"
)

// memoryReadAttribute is the fixed attribute value (0x0101) every
// MemoryRead request carries, regardless of which address it targets.
const memoryReadAttribute = frame.Attribute(0x0101)

// buildMemoryReadPlaintext lays out the 32-byte pre-encryption block:
// address (u32 LE) | size (u32 LE) | magic 0xFFFFFFFF (u32 LE) | CRC32 of
// the first 12 bytes (u32 LE) | 16 bytes of 0xFF padding.
func buildMemoryReadPlaintext(address, size uint32) [32]byte {
	var pt [32]byte
	for i := range pt {
		pt[i] = 0xFF
	}
	binary.LittleEndian.PutUint32(pt[0:4], address)
	binary.LittleEndian.PutUint32(pt[4:8], size)
	binary.LittleEndian.PutUint32(pt[8:12], invalidFirmwareMagic)
	binary.LittleEndian.PutUint32(pt[12:16], crc32.ChecksumIEEE(pt[0:12]))
	return pt
}

// BuildMemoryReadFrame builds the 36-byte MemoryRead(0x44) request frame
// for the given address and size.
func BuildMemoryReadFrame(address, size uint32, tid uint8) (frame.Frame, error) {
	ciphertext, err := ecbEncrypt32(buildMemoryReadPlaintext(address, size), memoryReadKey)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("auth: build MemoryRead frame: %w", err)
	}
	return frame.NewControlFrame(frame.MemoryRead, tid, memoryReadAttribute, ciphertext[:]), nil
}

// DecryptMemoryReadResponse decrypts the ciphertext carried by a MemoryRead
// response and truncates it to wantSize bytes. The device rounds its reply
// up to a 16-byte multiple; any padding beyond wantSize is discarded.
func DecryptMemoryReadResponse(ciphertext []byte, wantSize int) ([]byte, error) {
	plain, err := ecbDecryptBlocks(ciphertext, memoryReadKey)
	if err != nil {
		return nil, fmt.Errorf("auth: decrypt MemoryRead response: %w", err)
	}
	if wantSize > len(plain) {
		return nil, fmt.Errorf("auth: MemoryRead response too short: got %d bytes, want at least %d", len(plain), wantSize)
	}
	return plain[:wantSize], nil
}
