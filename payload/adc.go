package payload

import (
	"encoding/binary"
	"fmt"
)

// AdcSize is the fixed wire size of a single ADC sample.
const AdcSize = 44

// ErrAdcTooShort is returned by DecodeADC when fewer than AdcSize bytes are
// given.
var ErrAdcTooShort = fmt.Errorf("payload: ADC sample shorter than %d bytes", AdcSize)

// Adc is the decoded contents of one ADC logical packet: instantaneous and
// averaged bus measurements, USB CC/D+/D- line voltages, and the device's
// internal temperature and VDD rail.
//
// Ibus (and Power) are signed: positive means current flows from the
// meter's female (host-facing) connector to its male (device-facing) one,
// negative the reverse.
type Adc struct {
	VbusV    float64
	IbusA    float64
	PowerW   float64
	VbusAvgV float64
	IbusAvgA float64
	TempC    float64

	Vcc1V    float64
	Vcc2V    float64
	Vcc2AvgV float64
	VdpV     float64
	VdmV     float64
	VdpAvgV  float64
	VdmAvgV  float64

	InternalVddV float64

	SampleRate SampleRate
}

// DecodeADC parses a 44-byte ADC sample. An out-of-range sample-rate index
// is preserved in SampleRate rather than rejected; use SampleRate.AsHz to
// test validity.
func DecodeADC(b []byte) (Adc, error) {
	if len(b) < AdcSize {
		return Adc{}, ErrAdcTooShort
	}

	vbusUV := int32(binary.LittleEndian.Uint32(b[0:4]))
	ibusUA := int32(binary.LittleEndian.Uint32(b[4:8]))
	vbusAvgUV := int32(binary.LittleEndian.Uint32(b[8:12]))
	ibusAvgUA := int32(binary.LittleEndian.Uint32(b[12:16]))
	// b[16:20], b[20:24]: vbus_ori_avg_raw, ibus_ori_avg_raw -- uncalibrated,
	// not surfaced.
	tempRaw := int16(binary.LittleEndian.Uint16(b[24:26]))
	vcc1 := binary.LittleEndian.Uint16(b[26:28])
	vcc2 := binary.LittleEndian.Uint16(b[28:30])
	vdp := binary.LittleEndian.Uint16(b[30:32])
	vdm := binary.LittleEndian.Uint16(b[32:34])
	internalVdd := binary.LittleEndian.Uint16(b[34:36])
	rateRaw := b[36]
	// b[37]: reserved.
	vcc2Avg := binary.LittleEndian.Uint16(b[38:40])
	vdpAvg := binary.LittleEndian.Uint16(b[40:42])
	vdmAvg := binary.LittleEndian.Uint16(b[42:44])

	vbusV := float64(vbusUV) / 1e6
	ibusA := float64(ibusUA) / 1e6

	return Adc{
		VbusV:        vbusV,
		IbusA:        ibusA,
		PowerW:       vbusV * ibusA,
		VbusAvgV:     float64(vbusAvgUV) / 1e6,
		IbusAvgA:     float64(ibusAvgUA) / 1e6,
		TempC:        decodeTempC(tempRaw),
		Vcc1V:        float64(vcc1) / 1e4,
		Vcc2V:        float64(vcc2) / 1e4,
		Vcc2AvgV:     float64(vcc2Avg) / 1e4,
		VdpV:         float64(vdp) / 1e4,
		VdmV:         float64(vdm) / 1e4,
		VdpAvgV:      float64(vdpAvg) / 1e4,
		VdmAvgV:      float64(vdmAvg) / 1e4,
		InternalVddV: float64(internalVdd) / 1e4,
		SampleRate:   ParseSampleRate(rateRaw),
	}, nil
}

// decodeTempC applies the INA228/9 LSB formula (7.8125 m°C, i.e. 1000/128
// per low-byte count) to the raw 16-bit reading's low/high byte pair.
func decodeTempC(raw int16) float64 {
	b := []byte{byte(uint16(raw)), byte(uint16(raw) >> 8)}
	return float64((int32(b[1])*2000 + int32(b[0])*1000/128) / 1000)
}

// PowerAbsW returns the magnitude of PowerW regardless of flow direction.
func (a Adc) PowerAbsW() float64 {
	if a.PowerW < 0 {
		return -a.PowerW
	}
	return a.PowerW
}
