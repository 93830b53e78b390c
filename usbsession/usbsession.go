// Package usbsession drives the KM003C over USB: endpoint selection
// between the vendor (bulk) and HID (interrupt) interfaces, request/
// response correlation by transaction ID, draining of unsolicited
// frames, and the high-level request surface (ADC, PD, ADC-queue
// streaming) built on top of the frame, payload, and auth packages.
//
// The embeddable shape mirrors the teacher's comm.RemoteDevice: open the
// handle once, issue blocking Send/Recv-style calls, close on teardown.
// There is no background listener goroutine -- every suspension point
// (send, receive, drain, sleep) is explicit, so response ordering within
// a session stays deterministic.
package usbsession

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/gousb"
	"golang.org/x/time/rate"

	"github.com/jpl-power/km003c/auth"
	"github.com/jpl-power/km003c/capture"
	"github.com/jpl-power/km003c/frame"
	"github.com/jpl-power/km003c/payload"
)

// USB identity of every KM003C-class device.
const (
	VendorID  gousb.ID = 0x5FC9
	ProductID gousb.ID = 0x0063
)

// Interface is which of the device's two claimable interfaces a session
// talks over.
type Interface int

const (
	// Vendor is the fast bulk-transfer interface; required for AdcQueue
	// streaming.
	Vendor Interface = iota
	// HID is the portable interrupt-transfer interface, sufficient for
	// basic ADC and PD polling.
	HID
)

func (i Interface) String() string {
	if i == HID {
		return "hid"
	}
	return "vendor"
}

type endpointProfile struct {
	ifaceNum   int
	outAddr    int
	inAddr     int
	detachAll  bool
	resetFirst bool
}

var profiles = map[Interface]endpointProfile{
	Vendor: {ifaceNum: 0, outAddr: 0x01, inAddr: 0x81, detachAll: true, resetFirst: true},
	HID:    {ifaceNum: 3, outAddr: 0x05, inAddr: 0x85, detachAll: false, resetFirst: false},
}

// DefaultTransferTimeout is the per-transfer deadline surfaced as Timeout
// when exceeded.
const DefaultTransferTimeout = 2 * time.Second

// DrainTimeout bounds each receive in the drain loop used to clear
// unsolicited frames between transactions.
const DrainTimeout = 5 * time.Millisecond

// resetSettleDelay is slept after a bus reset before claiming the
// interface, per the open sequence in spec.md §5.
const resetSettleDelay = 100 * time.Millisecond

// Session is one open connection to a KM003C-class device. It owns the
// USB interface handle and the transaction counter exclusively; neither
// is safe to share across sessions.
type Session struct {
	mu sync.Mutex

	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	iface  *gousb.Interface
	out    *gousb.OutEndpoint
	in     *gousb.InEndpoint

	profile Interface
	counter uint8

	// TransferTimeout overrides DefaultTransferTimeout when non-zero.
	TransferTimeout time.Duration

	// Logger receives drain/correlation diagnostics. Defaults to
	// log.Default(), matching every teacher package's logging field.
	Logger *log.Logger

	HardwareID auth.HardwareID
	DeviceInfo auth.DeviceInfo
	authed     bool

	dropDetector *payload.DropDetector

	// Sink, when non-nil, receives every request/response frame's raw
	// bytes -- the CLI's -dump flag attaches an *capture.InMemorySink
	// here for post-run inspection.
	Sink        capture.CaptureSink
	SessionID   string
	frameNumber uint32

	// Limiter, when non-nil, throttles outgoing requests so a polling
	// loop can't flood the device faster than its firmware services
	// transactions. nil means unthrottled.
	Limiter *rate.Limiter
}

// Open enumerates USB devices, matches VendorID/ProductID, and claims the
// requested interface. For the vendor profile it resets the device and
// sweeps a kernel-driver detach across all four interfaces first, per the
// documented open sequence; the HID profile skips both.
func Open(iface Interface) (*Session, error) {
	return open(iface, profiles[iface].resetFirst)
}

// OpenSkippingReset is Open but never issues a bus reset first, even on
// the vendor profile -- for callers (e.g. the CLI's -no-reset flag) who
// know the device is already in a good state and want to avoid the
// reset's settle delay.
func OpenSkippingReset(iface Interface) (*Session, error) {
	return open(iface, false)
}

func open(iface Interface, reset bool) (*Session, error) {
	ctx := gousb.NewContext()

	device, err := ctx.OpenDeviceWithVIDPID(VendorID, ProductID)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("%w: %v", ErrUsbIO, err)
	}
	if device == nil {
		ctx.Close()
		return nil, ErrDeviceNotFound
	}

	prof := profiles[iface]
	if reset {
		if err := device.Reset(); err != nil {
			log.Default().Printf("usbsession: reset failed, continuing: %v", err)
		}
		time.Sleep(resetSettleDelay)
	}
	if prof.detachAll {
		// gousb's detach is device-wide, not per-interface, but the
		// open sequence is documented as sweeping all four interfaces;
		// one call covers it, ignoring failure per that same contract.
		if err := device.SetAutoDetach(true); err != nil {
			log.Default().Printf("usbsession: auto-detach failed, continuing: %v", err)
		}
	} else {
		_ = device.SetAutoDetach(false)
	}

	config, err := device.Config(1)
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: claim config: %v", ErrDeviceBusy, err)
	}
	ifc, err := config.Interface(prof.ifaceNum, 0)
	if err != nil {
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: claim interface %d: %v", ErrDeviceBusy, prof.ifaceNum, err)
	}
	outEP, err := ifc.OutEndpoint(prof.outAddr)
	if err != nil {
		ifc.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: open OUT endpoint: %v", ErrUsbIO, err)
	}
	inEP, err := ifc.InEndpoint(prof.inAddr)
	if err != nil {
		ifc.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: open IN endpoint: %v", ErrUsbIO, err)
	}

	return &Session{
		ctx:          ctx,
		device:       device,
		config:       config,
		iface:        ifc,
		out:          outEP,
		in:           inEP,
		profile:      iface,
		Logger:       log.Default(),
		dropDetector: payload.NewDropDetector(),
	}, nil
}

// OpenWithBackoff retries Open a handful of times with exponential
// backoff, the same reconnect idiom the teacher's comm package uses for
// TCP/serial opens, bounded so a genuinely absent device still surfaces
// DeviceNotFound/DeviceBusy promptly.
func OpenWithBackoff(iface Interface) (*Session, error) {
	return openWithBackoff(iface, profiles[iface].resetFirst)
}

// OpenWithBackoffSkippingReset is OpenWithBackoff combined with
// OpenSkippingReset's behavior.
func OpenWithBackoffSkippingReset(iface Interface) (*Session, error) {
	return openWithBackoff(iface, false)
}

func openWithBackoff(iface Interface, reset bool) (*Session, error) {
	var sess *Session
	op := func() error {
		s, err := open(iface, reset)
		if err != nil {
			return err
		}
		sess = s
		return nil
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     50 * time.Millisecond,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock,
	}
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return sess, nil
}

// Close releases the USB interface handle on every exit path.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.iface != nil {
		s.iface.Close()
	}
	if s.config != nil {
		s.config.Close()
	}
	if s.device != nil {
		s.device.Close()
	}
	if s.ctx != nil {
		s.ctx.Close()
	}
	return nil
}

// transferTimeout returns the configured timeout or the default.
func (s *Session) transferTimeout() time.Duration {
	if s.TransferTimeout > 0 {
		return s.TransferTimeout
	}
	return DefaultTransferTimeout
}

// nextTransactionID advances and returns the 8-bit wrapping transaction
// counter.
func (s *Session) nextTransactionID() uint8 {
	s.counter++
	return s.counter
}

// SendRaw writes b to the OUT endpoint, bypassing correlation. Exposed
// for diagnostics and offline capture-file replay.
func (s *Session) SendRaw(b []byte) error {
	_, err := s.out.Write(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsbIO, err)
	}
	return nil
}

// ReceiveRaw reads up to len(buf) bytes from the IN endpoint with the
// session's transfer timeout.
func (s *Session) ReceiveRaw(buf []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.transferTimeout())
	defer cancel()
	n, err := s.in.ReadContext(ctx, buf)
	if err != nil {
		if ctx.Err() != nil {
			return n, ErrTimeout
		}
		return n, fmt.Errorf("%w: %v", ErrUsbIO, err)
	}
	return n, nil
}

// drain performs a short bounded receive loop to clear unsolicited
// frames (PD events, stream chunks) left over from a prior transaction.
// It never returns an error: a drain timeout just means nothing was
// waiting, which is the expected common case.
func (s *Session) drain() {
	buf := make([]byte, 4096)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), DrainTimeout)
		n, err := s.in.ReadContext(ctx, buf)
		cancel()
		if err != nil || n == 0 {
			return
		}
		s.Logger.Printf("usbsession: drained %d unsolicited bytes", n)
	}
}

// transact sends req and reads exactly one correlated response, draining
// any stragglers before sending. A response whose transaction ID doesn't
// match req's is logged and discarded -- except when req is a
// StreamingAuth-opcode frame with attribute DataRecorderMode, whose
// response is documented to always carry transaction ID 0.
func (s *Session) transact(req frame.Frame) (frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Limiter != nil {
		if err := s.Limiter.Wait(context.Background()); err != nil {
			return frame.Frame{}, fmt.Errorf("%w: rate limiter: %v", ErrUsbIO, err)
		}
	}

	s.drain()

	encoded := req.Serialize()
	if err := s.SendRaw(encoded); err != nil {
		return frame.Frame{}, err
	}
	s.record(capture.HostToDevice, encoded)

	buf := make([]byte, 8192)
	for {
		n, err := s.ReceiveRaw(buf)
		if err != nil {
			return frame.Frame{}, err
		}
		s.record(capture.DeviceToHost, buf[:n])
		resp, err := frame.Parse(buf[:n])
		if err != nil {
			s.Logger.Printf("usbsession: dropping malformed frame: %v", err)
			continue
		}
		if correlates(req, resp) {
			return resp, nil
		}
		s.Logger.Printf("usbsession: transaction ID mismatch (want %d, got %d), draining", req.Header.TransactionID, resp.Header.TransactionID)
	}
}

// record writes raw bytes to the attached Sink, if any, tagging them with
// the session's ID and a monotonically increasing frame number. A nil Sink
// (the default) makes this a no-op.
func (s *Session) record(dir capture.Direction, raw []byte) {
	if s.Sink == nil {
		return
	}
	s.frameNumber++
	err := s.Sink.WriteRecord(capture.CaptureRecord{
		SessionID:    s.SessionID,
		TimestampSec: float64(time.Now().UnixNano()) / 1e9,
		Direction:    dir,
		RawBytes:     append([]byte(nil), raw...),
		FrameNumber:  s.frameNumber,
		AddedAt:      time.Now(),
	})
	if err != nil {
		s.Logger.Printf("usbsession: capture sink write failed: %v", err)
	}
}

// correlates reports whether resp is the expected reply to req: either it
// echoes req's transaction ID, or req is the documented DataRecorderMode
// quirk whose response always carries ID 0.
func correlates(req, resp frame.Frame) bool {
	if resp.Header.TransactionID == req.Header.TransactionID {
		return true
	}
	isDataRecorderMode := req.Header.Type == frame.StreamingAuth && req.Header.Attribute() == frame.DataRecorderMode
	return isDataRecorderMode && resp.Header.TransactionID == 0
}
