package auth

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/jpl-power/km003c/frame"
)

// streamingAuthAttribute is the fixed attribute value (0x0002) every
// StreamingAuth request carries.
const streamingAuthAttribute = frame.Attribute(0x0002)

// streamingAuthEnableBit is bit 1 of the echoed response attribute; when
// set, AdcQueue streaming access (auth level 1) has been granted.
const streamingAuthEnableBit = 0x0002

// BuildStreamingAuthFrame builds the 36-byte StreamingAuth(0x4C) request:
// wall-clock milliseconds-since-epoch, the 12-byte hardware ID, and 12
// bytes of CSPRNG padding, AES-128-ECB encrypted with the host->device key.
func BuildStreamingAuthFrame(id HardwareID, tid uint8, now time.Time) (frame.Frame, error) {
	var pt [32]byte
	binary.LittleEndian.PutUint64(pt[0:8], uint64(now.UnixMilli()))
	copy(pt[8:20], id[:])
	if _, err := io.ReadFull(rand.Reader, pt[20:32]); err != nil {
		return frame.Frame{}, fmt.Errorf("auth: generate StreamingAuth padding: %w", err)
	}

	ciphertext, err := ecbEncrypt32(pt, streamingEncKey)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("auth: build StreamingAuth frame: %w", err)
	}
	return frame.NewControlFrame(frame.StreamingAuth, tid, streamingAuthAttribute, ciphertext[:]), nil
}

// StreamingAuthResult is the outcome of a StreamingAuth round trip.
type StreamingAuthResult struct {
	Attribute        frame.Attribute
	Enabled          bool
	DecryptedPayload [32]byte
}

// ErrStreamingAuthPayloadSize is returned when the response's opaque
// payload isn't exactly 32 bytes.
var ErrStreamingAuthPayloadSize = fmt.Errorf("auth: StreamingAuth response payload must be 32 bytes")

// ParseStreamingAuthResponse decrypts a StreamingAuth response frame's
// payload with the device->host key and reports whether the response
// attribute's enable bit was set.
func ParseStreamingAuthResponse(resp frame.Frame) (StreamingAuthResult, error) {
	if len(resp.Opaque) != 32 {
		return StreamingAuthResult{}, ErrStreamingAuthPayloadSize
	}
	var ciphertext [32]byte
	copy(ciphertext[:], resp.Opaque)

	decrypted, err := ecbDecrypt32(ciphertext, streamingDecKey)
	if err != nil {
		return StreamingAuthResult{}, fmt.Errorf("auth: decrypt StreamingAuth response: %w", err)
	}

	attr := resp.Header.Attribute()
	return StreamingAuthResult{
		Attribute:        attr,
		Enabled:          uint16(attr)&streamingAuthEnableBit != 0,
		DecryptedPayload: decrypted,
	}, nil
}
