package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jpl-power/km003c/usbsession"
)

func TestWriteErrStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{usbsession.ErrDeviceNotFound, http.StatusServiceUnavailable},
		{usbsession.ErrDeviceBusy, http.StatusServiceUnavailable},
		{usbsession.ErrTimeout, http.StatusGatewayTimeout},
		{usbsession.ErrAuthRejected, http.StatusForbidden},
		{usbsession.ErrStreamingRejected, http.StatusForbidden},
		{usbsession.ErrUsbIO, http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeErr(rec, c.err)
		if rec.Code != c.want {
			t.Errorf("writeErr(%v) status = %d, want %d", c.err, rec.Code, c.want)
		}
	}
}
