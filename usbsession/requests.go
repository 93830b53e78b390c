package usbsession

import (
	"github.com/jpl-power/km003c/frame"
	"github.com/jpl-power/km003c/payload"
)

// RequestData sends one GetData frame whose attribute field is the OR of
// the requested attributes and dispatches the response's logical-packet
// chain into a payload.PacketData. The response's own chain order is not
// guaranteed; payload.Dispatch keys results by attribute, not position.
func (s *Session) RequestData(attrs frame.AttributeSet) (payload.PacketData, error) {
	tid := s.nextTransactionID()
	req := frame.NewControlFrame(frame.GetData, tid, frame.Attribute(attrs), nil)

	resp, err := s.transact(req)
	if err != nil {
		return payload.PacketData{}, err
	}

	data, err := payload.Dispatch(resp)
	if err != nil {
		return payload.PacketData{}, err
	}
	return data, nil
}

// RequestADC is a convenience wrapper requesting just the Adc attribute.
func (s *Session) RequestADC() (payload.Adc, error) {
	data, err := s.RequestData(frame.NewAttributeSet(frame.Adc))
	if err != nil {
		return payload.Adc{}, err
	}
	adc, ok := data.GetADC()
	if !ok {
		return payload.Adc{}, newDecodeFailure(frame.Adc, errNoSuchAttribute)
	}
	return adc, nil
}

// RequestPD is a convenience wrapper requesting just the PdStatus
// attribute.
func (s *Session) RequestPD() (payload.PdStatus, error) {
	data, err := s.RequestData(frame.NewAttributeSet(frame.PdStatus))
	if err != nil {
		return payload.PdStatus{}, err
	}
	status, ok := data.GetPDStatus()
	if !ok {
		return payload.PdStatus{}, newDecodeFailure(frame.PdStatus, errNoSuchAttribute)
	}
	return status, nil
}

// RequestADCWithPD requests the Adc and PdStatus attributes in a single
// combined frame, matching the device's combined ADC+PD-status response
// shape.
func (s *Session) RequestADCWithPD() (payload.Adc, payload.PdStatus, error) {
	data, err := s.RequestData(frame.NewAttributeSet(frame.Adc, frame.PdStatus))
	if err != nil {
		return payload.Adc{}, payload.PdStatus{}, err
	}
	adc, ok := data.GetADC()
	if !ok {
		return payload.Adc{}, payload.PdStatus{}, newDecodeFailure(frame.Adc, errNoSuchAttribute)
	}
	status, ok := data.GetPDStatus()
	if !ok {
		return payload.Adc{}, payload.PdStatus{}, newDecodeFailure(frame.PdStatus, errNoSuchAttribute)
	}
	return adc, status, nil
}

// RequestADCQueue polls the accumulated AdcQueue samples during an active
// stream, applying the session's DropDetector as each batch arrives.
func (s *Session) RequestADCQueue() ([]payload.AdcQueueSample, []payload.DroppedGap, error) {
	tid := s.nextTransactionID()
	req := frame.NewControlFrame(frame.GetData, tid, frame.Attribute(frame.NewAttributeSet(frame.AdcQueue)), nil)

	resp, err := s.transact(req)
	if err != nil {
		return nil, nil, err
	}
	data, err := payload.Dispatch(resp)
	if err != nil {
		return nil, nil, err
	}
	samples, ok := data.GetADCQueue()
	if !ok {
		return nil, nil, nil
	}
	gaps := s.dropDetector.Observe(samples)

	for _, lp := range resp.Logical {
		if lp.Attribute == frame.AdcQueue {
			s.Logger.Printf("usbsession: adc-queue batch checksum %04x (%d bytes)", payload.Checksum(lp.Data), len(lp.Data))
		}
	}
	return samples, gaps, nil
}

// RequestPDEvents is a convenience wrapper requesting just the PdPacket
// attribute.
func (s *Session) RequestPDEvents() (payload.PdEventStream, error) {
	data, err := s.RequestData(frame.NewAttributeSet(frame.PdPacket))
	if err != nil {
		return payload.PdEventStream{}, err
	}
	events, ok := data.GetPDEvents()
	if !ok {
		return payload.PdEventStream{}, newDecodeFailure(frame.PdPacket, errNoSuchAttribute)
	}
	return events, nil
}

// StartGraph requests the device begin AdcQueue streaming at the given
// rate. It requires the vendor (bulk) interface profile and a completed
// StreamingAuth handshake; the caller polls RequestADCQueue afterward.
func (s *Session) StartGraph(rate payload.GraphSampleRate) error {
	if s.profile != Vendor {
		return ErrStreamingRejected
	}
	tid := s.nextTransactionID()
	req := frame.NewControlFrame(frame.StartGraph, tid, frame.Attribute(rate), nil)
	resp, err := s.transact(req)
	if err != nil {
		return err
	}
	if resp.Header.Type != frame.Accept {
		return ErrStreamingRejected
	}
	return nil
}

// StopGraph ends an active AdcQueue stream.
func (s *Session) StopGraph() error {
	tid := s.nextTransactionID()
	req := frame.NewControlFrame(frame.StopGraph, tid, 0, nil)
	_, err := s.transact(req)
	return err
}
