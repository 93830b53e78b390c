package payload

import (
	"encoding/binary"

	"github.com/snksoft/crc"
)

var xmodemTable = crc.NewTable(crc.XMODEM)

// AdcQueueSampleSize is the fixed wire size of one ADC-queue sample.
const AdcQueueSampleSize = 20

// AdcQueueSample is one entry of a high-rate streaming batch: the same bus
// and line measurements as Adc, minus temperature, averages, and internal
// VDD, plus a wrapping sequence number used to detect drops.
type AdcQueueSample struct {
	Sequence uint16
	Marker   uint16
	VbusV    float64
	IbusA    float64
	PowerW   float64
	Cc1V     float64
	Cc2V     float64
	VdpV     float64
	VdmV     float64
}

// DecodeADCQueue splits b into complete 20-byte samples, ignoring any
// trailing bytes that don't make up a full sample. Firmware is known to
// emit batches whose length isn't a multiple of 20; this never errors on
// that, per decode_adc_queue's contract.
func DecodeADCQueue(b []byte) []AdcQueueSample {
	n := len(b) / AdcQueueSampleSize
	samples := make([]AdcQueueSample, n)
	for i := 0; i < n; i++ {
		s := b[i*AdcQueueSampleSize : (i+1)*AdcQueueSampleSize]

		vbusUV := int32(binary.LittleEndian.Uint32(s[4:8]))
		ibusUA := int32(binary.LittleEndian.Uint32(s[8:12]))
		vbusV := float64(vbusUV) / 1e6
		ibusA := float64(ibusUA) / 1e6

		samples[i] = AdcQueueSample{
			Sequence: binary.LittleEndian.Uint16(s[0:2]),
			Marker:   binary.LittleEndian.Uint16(s[2:4]),
			VbusV:    vbusV,
			IbusA:    ibusA,
			PowerW:   vbusV * ibusA,
			Cc1V:     float64(binary.LittleEndian.Uint16(s[12:14])) / 1e4,
			Cc2V:     float64(binary.LittleEndian.Uint16(s[14:16])) / 1e4,
			VdpV:     float64(binary.LittleEndian.Uint16(s[16:18])) / 1e4,
			VdmV:     float64(binary.LittleEndian.Uint16(s[18:20])) / 1e4,
		}
	}
	return samples
}

// DroppedGap reports an ADC-queue sequence jump larger than the learned
// intra-batch stride: samples were lost between From and To.
type DroppedGap struct {
	From, To uint16
	Stride   uint16
}

// DropDetector flags ADC-queue sequence gaps within each batch, keeping the
// learned stride across successive batches. The stride between consecutive
// samples is learned once, from the first two samples of the first batch
// that has at least two samples; until learned it defaults to 1. The step
// from one batch's last sample to the next batch's first is not checked.
type DropDetector struct {
	stride  uint16
	learned bool
}

// NewDropDetector returns a detector with the default stride of 1.
func NewDropDetector() *DropDetector {
	return &DropDetector{stride: 1}
}

// Observe feeds one batch's samples through the detector in sequence order
// and returns any gaps found within the batch. Sequence arithmetic wraps
// modulo 2^16, matching the device counter.
func (d *DropDetector) Observe(samples []AdcQueueSample) []DroppedGap {
	if !d.learned && len(samples) >= 2 {
		d.stride = samples[1].Sequence - samples[0].Sequence
		d.learned = true
	}

	var gaps []DroppedGap
	for i := 0; i+1 < len(samples); i++ {
		diff := samples[i+1].Sequence - samples[i].Sequence
		if diff > d.stride {
			gaps = append(gaps, DroppedGap{From: samples[i].Sequence, To: samples[i+1].Sequence, Stride: d.stride})
		}
	}
	return gaps
}

// Stride returns the currently learned (or default) stride.
func (d *DropDetector) Stride() uint16 { return d.stride }

// Checksum computes an XMODEM CRC-16 over a raw ADC-queue batch, for
// callers that want a cheap self-check on transport integrity beyond the
// sequence-gap detection Observe already does. The wire format carries no
// such checksum itself; this exists for diagnostics and capture-file
// integrity checks.
func Checksum(raw []byte) uint16 {
	crcUint := xmodemTable.InitCrc()
	crcUint = xmodemTable.UpdateCrc(crcUint, raw)
	return xmodemTable.CRC16(crcUint)
}
