package frame

import "errors"

// Sentinel and parameterized errors returned by Parse. Codec errors are
// reported to the caller; per the session's recovery policy they drop the
// offending frame rather than tearing down the connection.
var (
	// ErrTooShort is returned when fewer than 4 bytes are available, not
	// even enough for a primary header.
	ErrTooShort = errors.New("frame: input shorter than the 4-byte primary header")

	// ErrExtendedHeaderOverrun is returned when an extended header's size
	// field claims more bytes than remain in the payload.
	ErrExtendedHeaderOverrun = errors.New("frame: extended header size overruns remaining payload")

	// ErrInvalidLogicalChain is returned when a logical packet sets next=1
	// but there is no room left for another extended header, or when bytes
	// remain after the final (next=0) logical packet.
	ErrInvalidLogicalChain = errors.New("frame: next=1 with no room for another logical header")
)
