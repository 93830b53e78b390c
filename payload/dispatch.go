package payload

import (
	"fmt"

	"github.com/jpl-power/km003c/frame"
)

// PacketData is the dispatched, typed contents of one response frame. Each
// field is nil/empty unless the frame actually carried that attribute --
// absence is normal (e.g. PD idle yields no PdStatus), never an error.
type PacketData struct {
	ADC      *Adc
	ADCQueue []AdcQueueSample
	PDStatus *PdStatus
	PDEvents *PdEventStream
}

// GetADC reports the frame's ADC sample, if present.
func (p PacketData) GetADC() (Adc, bool) {
	if p.ADC == nil {
		return Adc{}, false
	}
	return *p.ADC, true
}

// GetADCQueue reports the frame's ADC-queue batch, if present.
func (p PacketData) GetADCQueue() ([]AdcQueueSample, bool) {
	if p.ADCQueue == nil {
		return nil, false
	}
	return p.ADCQueue, true
}

// GetPDStatus reports the frame's PD status block, if present.
func (p PacketData) GetPDStatus() (PdStatus, bool) {
	if p.PDStatus == nil {
		return PdStatus{}, false
	}
	return *p.PDStatus, true
}

// GetPDEvents reports the frame's PD event stream, if present.
func (p PacketData) GetPDEvents() (PdEventStream, bool) {
	if p.PDEvents == nil {
		return PdEventStream{}, false
	}
	return *p.PDEvents, true
}

// Dispatch walks f's logical packet chain (a no-op for a control-shaped
// frame, which carries none) and decodes each known attribute into
// PacketData. An attribute whose payload fails to decode is reported as an
// error naming the attribute; packets with an unrecognized attribute are
// silently skipped, matching the closed-but-extensible tag space of §3.
func Dispatch(f frame.Frame) (PacketData, error) {
	var out PacketData
	for _, lp := range f.Logical {
		switch lp.Attribute {
		case frame.Adc:
			v, err := DecodeADC(lp.Data)
			if err != nil {
				return PacketData{}, fmt.Errorf("dispatch %s: %w", lp.Attribute, err)
			}
			out.ADC = &v
		case frame.AdcQueue:
			out.ADCQueue = DecodeADCQueue(lp.Data)
		case frame.PdStatus:
			v, err := DecodePDStatus(lp.Data)
			if err != nil {
				return PacketData{}, fmt.Errorf("dispatch %s: %w", lp.Attribute, err)
			}
			out.PDStatus = &v
		case frame.PdPacket:
			v, err := DecodePDEventStream(lp.Data)
			if err != nil {
				return PacketData{}, fmt.Errorf("dispatch %s: %w", lp.Attribute, err)
			}
			out.PDEvents = &v
		}
	}
	return out, nil
}
