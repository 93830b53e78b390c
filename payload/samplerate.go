// Package payload decodes the fixed-layout binary payloads the device
// carries inside logical packets: ADC samples, ADC-queue sample batches,
// PD status blocks, and PD event streams. None of this package touches the
// wire framing itself; it starts from the byte slice frame.Frame.Find (or
// frame.Frame.Opaque) already handed back.
package payload

import "fmt"

// SampleRate is the device's single-sample ADC rate, carried as an index
// byte inside the ADC sample itself (distinct from GraphSampleRate, which
// is a parameter of the StartGraph request).
type SampleRate uint8

const (
	Sps1 SampleRate = iota
	Sps10
	Sps50
	Sps1000
	Sps10000
)

// Unknown wraps a sample-rate index outside the known set. Per decode_adc's
// contract an out-of-range index is not a decode failure.
type Unknown uint8

func (u Unknown) String() string { return fmt.Sprintf("Unknown(%d)", uint8(u)) }

var sampleRateNames = map[SampleRate]string{
	Sps1:     "1 SPS",
	Sps10:    "10 SPS",
	Sps50:    "50 SPS",
	Sps1000:  "1 kSPS",
	Sps10000: "10 kSPS",
}

func (r SampleRate) String() string {
	if s, ok := sampleRateNames[r]; ok {
		return s
	}
	return Unknown(r).String()
}

// AsHz reports the sample rate in samples per second, or ok=false for an
// out-of-range index.
func (r SampleRate) AsHz() (int, bool) {
	switch r {
	case Sps1:
		return 1, true
	case Sps10:
		return 10, true
	case Sps50:
		return 50, true
	case Sps1000:
		return 1000, true
	case Sps10000:
		return 10000, true
	default:
		return 0, false
	}
}

// ParseSampleRate maps a raw index byte to SampleRate, accepting any value:
// callers that care about validity use AsHz's ok return.
func ParseSampleRate(raw uint8) SampleRate {
	return SampleRate(raw)
}

// GraphSampleRate is the rate index parameter sent with StartGraph; unlike
// SampleRate its index-to-Hz mapping is not a simple power-of-ten ladder
// (index 0 is 2 SPS, not 1).
type GraphSampleRate uint16

const (
	GraphSps2 GraphSampleRate = iota
	GraphSps10
	GraphSps50
	GraphSps1000
)

func (r GraphSampleRate) AsHz() (int, bool) {
	switch r {
	case GraphSps2:
		return 2, true
	case GraphSps10:
		return 10, true
	case GraphSps50:
		return 50, true
	case GraphSps1000:
		return 1000, true
	default:
		return 0, false
	}
}
