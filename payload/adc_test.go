package payload_test

import (
	"encoding/binary"
	"testing"

	"github.com/jpl-power/km003c/payload"
)

func encodeADCFixture() []byte {
	b := make([]byte, payload.AdcSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(int32(9_225_000)))  // vbus_uv
	binary.LittleEndian.PutUint32(b[4:8], uint32(int32(-150_000)))   // ibus_ua
	binary.LittleEndian.PutUint32(b[8:12], uint32(int32(9_200_000))) // vbus_avg_uv
	binary.LittleEndian.PutUint32(b[12:16], uint32(int32(-148_000))) // ibus_avg_ua
	// b[16:24]: uncalibrated averages, left zero.
	binary.LittleEndian.PutUint16(b[24:26], uint16(int16(6426))) // temp_raw
	binary.LittleEndian.PutUint16(b[26:28], 16600)               // vcc1
	binary.LittleEndian.PutUint16(b[28:30], 0)                   // vcc2
	binary.LittleEndian.PutUint16(b[30:32], 0)                   // vdp
	binary.LittleEndian.PutUint16(b[32:34], 0)                   // vdm
	binary.LittleEndian.PutUint16(b[34:36], 33000)               // internal_vdd
	b[36] = 2                                                    // rate_raw = Sps50
	b[37] = 0                                                    // reserved
	binary.LittleEndian.PutUint16(b[38:40], 0)                   // vcc2_avg
	binary.LittleEndian.PutUint16(b[40:42], 0)                   // vdp_avg
	binary.LittleEndian.PutUint16(b[42:44], 0)                   // vdm_avg
	return b
}

func TestDecodeADC(t *testing.T) {
	a, err := payload.DecodeADC(encodeADCFixture())
	if err != nil {
		t.Fatalf("DecodeADC: %v", err)
	}
	if got, want := a.VbusV, 9.225; got != want {
		t.Errorf("VbusV = %v, want %v", got, want)
	}
	if got, want := a.IbusA, -0.15; got != want {
		t.Errorf("IbusA = %v, want %v", got, want)
	}
	if a.PowerW >= 0 {
		t.Errorf("PowerW = %v, want negative (current flows male->female)", a.PowerW)
	}
	if a.SampleRate != payload.Sps50 {
		t.Errorf("SampleRate = %v, want Sps50", a.SampleRate)
	}
	if hz, ok := a.SampleRate.AsHz(); !ok || hz != 50 {
		t.Errorf("AsHz() = %d, %v, want 50, true", hz, ok)
	}
}

func TestDecodeADCTooShort(t *testing.T) {
	_, err := payload.DecodeADC(make([]byte, 10))
	if err != payload.ErrAdcTooShort {
		t.Errorf("err = %v, want ErrAdcTooShort", err)
	}
}

func TestDecodeADCUnknownSampleRate(t *testing.T) {
	b := encodeADCFixture()
	b[36] = 200
	a, err := payload.DecodeADC(b)
	if err != nil {
		t.Fatalf("DecodeADC: %v", err)
	}
	if _, ok := a.SampleRate.AsHz(); ok {
		t.Errorf("AsHz() ok = true for out-of-range index, want false")
	}
	if a.SampleRate.String() != "Unknown(200)" {
		t.Errorf("String() = %q, want Unknown(200)", a.SampleRate.String())
	}
}

func TestPowerAbsW(t *testing.T) {
	a, err := payload.DecodeADC(encodeADCFixture())
	if err != nil {
		t.Fatalf("DecodeADC: %v", err)
	}
	if got, want := a.PowerAbsW(), -a.PowerW; got != want {
		t.Errorf("PowerAbsW() = %v, want %v", got, want)
	}
}
