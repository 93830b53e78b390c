package usbsession

import (
	"errors"
	"fmt"

	"github.com/jpl-power/km003c/frame"
)

// Sentinel errors a Session surfaces to callers. Codec errors
// (ErrTooShort/ErrInvalidLogicalChain/ErrExtendedHeaderOverrun) are reused
// directly from the frame package rather than re-wrapped, per the
// documented recovery policy: a malformed received frame is dropped, not
// treated as a session-ending failure.
var (
	// ErrDeviceNotFound means no USB device matched VendorID/ProductID.
	ErrDeviceNotFound = errors.New("usbsession: no device matching VID/PID found")

	// ErrUsbIO wraps a lower-layer USB transfer failure. The session may
	// be retried after a fresh Open.
	ErrUsbIO = errors.New("usbsession: usb transfer failed")

	// ErrTimeout means a transfer exceeded its deadline. The session
	// remains usable; callers may retry.
	ErrTimeout = errors.New("usbsession: transfer timed out")

	// ErrDeviceBusy means the interface claim failed even after a
	// kernel-driver detach sweep.
	ErrDeviceBusy = errors.New("usbsession: interface claim failed")

	// ErrAuthRejected means the StreamingAuth response did not set the
	// enable bit.
	ErrAuthRejected = errors.New("usbsession: streaming auth rejected")

	// ErrStreamingRejected means StartGraph got back a Reject frame.
	ErrStreamingRejected = errors.New("usbsession: start graph rejected")

	// errNoSuchAttribute backs DecodeFailureError when a convenience
	// wrapper's requested attribute is absent from an otherwise
	// successfully decoded response.
	errNoSuchAttribute = errors.New("usbsession: response did not carry the requested attribute")
)

// DecodeFailureError reports that a logical payload had the wrong size or
// an invalid field for the attribute it was tagged with.
type DecodeFailureError struct {
	Attribute frame.Attribute
	Err       error
}

func (e *DecodeFailureError) Error() string {
	return fmt.Sprintf("usbsession: decode failure for %s: %v", e.Attribute, e.Err)
}

func (e *DecodeFailureError) Unwrap() error { return e.Err }

func newDecodeFailure(attr frame.Attribute, err error) error {
	return &DecodeFailureError{Attribute: attr, Err: err}
}
