// Package capture defines the narrow record shape and sink interface a
// caller wires in to archive raw frame traffic. Columnar storage itself
// (Parquet, SQLite, whatever) is an external collaborator; this package
// only ships the types and two reference sinks used by tests and by the
// CLI's -dump flag.
package capture

import (
	"fmt"
	"sync"
	"time"
)

// Direction is which way a captured frame travelled across the wire.
type Direction int

const (
	HostToDevice Direction = iota
	DeviceToHost
)

func (d Direction) String() string {
	if d == DeviceToHost {
		return "device->host"
	}
	return "host->device"
}

// CaptureRecord is one raw frame observed on a session, tagged with enough
// metadata to reconstruct ordering and provenance without decoding it.
type CaptureRecord struct {
	SessionID    string
	TimestampSec float64
	Direction    Direction
	RawBytes     []byte
	FrameNumber  uint32
	AddedAt      time.Time
}

// CaptureSink receives CaptureRecords as they're observed. Implementations
// decide how (and whether) to persist them; a sink error is the caller's
// to handle, capture itself never retries.
type CaptureSink interface {
	WriteRecord(CaptureRecord) error
	HasSession(sessionID string) (bool, error)
}

// NopSink discards every record. Useful as a default when no archival is
// configured.
type NopSink struct{}

func (NopSink) WriteRecord(CaptureRecord) error           { return nil }
func (NopSink) HasSession(sessionID string) (bool, error) { return false, nil }

// InMemorySink accumulates records in a slice, grouped by session. It is
// not bounded: callers that capture for a long time should drain it or use
// a real sink instead.
type InMemorySink struct {
	mu       sync.Mutex
	records  []CaptureRecord
	sessions map[string]struct{}
}

// NewInMemorySink returns an empty InMemorySink.
func NewInMemorySink() *InMemorySink {
	return &InMemorySink{sessions: make(map[string]struct{})}
}

func (s *InMemorySink) WriteRecord(r CaptureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	s.sessions[r.SessionID] = struct{}{}
	return nil
}

func (s *InMemorySink) HasSession(sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	return ok, nil
}

// Records returns a copy of every record written so far, in write order.
func (s *InMemorySink) Records() []CaptureRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CaptureRecord, len(s.records))
	copy(out, s.records)
	return out
}

// RecordsForSession filters Records to one session ID.
func (s *InMemorySink) RecordsForSession(sessionID string) []CaptureRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CaptureRecord
	for _, r := range s.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out
}

// String renders a record as a short one-line summary, used by the CLI's
// -dump flag.
func (r CaptureRecord) String() string {
	return fmt.Sprintf("[%s #%d %s] %d bytes at t=%.6f", r.SessionID, r.FrameNumber, r.Direction, len(r.RawBytes), r.TimestampSec)
}
