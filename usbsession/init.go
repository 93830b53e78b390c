package usbsession

import (
	"time"

	"github.com/jpl-power/km003c/auth"
)

// Authenticate runs the full session-initialization sequence documented
// for this device family: read the hardware ID and the three info memory
// blocks, then perform the StreamingAuth handshake that is a
// precondition for AdcQueue streaming. DeviceInfo and HardwareID are
// populated on the Session even if the caller never calls StartGraph.
//
// An invalid firmware-info magic is tolerated (DeviceInfo.FWValid is left
// false) rather than treated as a failure, matching the firmware block's
// own documented short-circuit.
func (s *Session) Authenticate() error {
	hwidBytes, err := s.memoryRead(auth.HardwareIDAddress, auth.HardwareIDSize)
	if err != nil {
		return err
	}
	hwid, err := auth.ParseHardwareID(hwidBytes)
	if err != nil {
		return err
	}
	s.HardwareID = hwid

	deviceInfoBlock, err := s.memoryRead(auth.DeviceInfoAddress, auth.InfoBlockSize)
	if err != nil {
		return err
	}
	if err := s.DeviceInfo.ParseDeviceInfoBlock(deviceInfoBlock); err != nil {
		return err
	}

	firmwareBlock, err := s.memoryRead(auth.FirmwareInfoAddress, auth.InfoBlockSize)
	if err != nil {
		return err
	}
	if err := s.DeviceInfo.ParseFirmwareInfoBlock(firmwareBlock); err != nil {
		return err
	}

	calibrationBlock, err := s.memoryRead(auth.CalibrationAddress, auth.InfoBlockSize)
	if err != nil {
		return err
	}
	if err := s.DeviceInfo.ParseCalibrationBlock(calibrationBlock); err != nil {
		return err
	}

	req, err := auth.BuildStreamingAuthFrame(hwid, s.nextTransactionID(), time.Now())
	if err != nil {
		return err
	}
	resp, err := s.transact(req)
	if err != nil {
		return err
	}
	result, err := auth.ParseStreamingAuthResponse(resp)
	if err != nil {
		return err
	}
	if !result.Enabled {
		return ErrAuthRejected
	}
	s.authed = true
	return nil
}

// Authed reports whether the StreamingAuth handshake has completed
// successfully on this session.
func (s *Session) Authed() bool { return s.authed }

// memoryRead issues one MemoryRead transaction and decrypts the response
// down to size bytes of plaintext.
func (s *Session) memoryRead(address, size uint32) ([]byte, error) {
	req, err := auth.BuildMemoryReadFrame(address, size, s.nextTransactionID())
	if err != nil {
		return nil, err
	}
	resp, err := s.transact(req)
	if err != nil {
		return nil, err
	}
	ciphertext := resp.Opaque
	if len(resp.Logical) == 1 {
		ciphertext = resp.Logical[0].Data
	}
	return auth.DecryptMemoryReadResponse(ciphertext, int(size))
}
