package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jpl-power/km003c/httpapi"
	"github.com/jpl-power/km003c/usbsession"
)

func TestRouteTableHasExpectedRoutes(t *testing.T) {
	srv := httpapi.NewServer(&usbsession.Session{})
	rt := srv.RouteTable()

	want := []httpapi.MethodPath{
		{Method: http.MethodGet, Path: "/adc"},
		{Method: http.MethodGet, Path: "/pd"},
		{Method: http.MethodGet, Path: "/adc-pd"},
		{Method: http.MethodGet, Path: "/pd-events"},
		{Method: http.MethodGet, Path: "/adc-queue"},
		{Method: http.MethodGet, Path: "/device-info"},
		{Method: http.MethodPost, Path: "/graph/start"},
		{Method: http.MethodPost, Path: "/graph/stop"},
	}
	for _, mp := range want {
		if _, ok := rt[mp]; !ok {
			t.Errorf("RouteTable() missing %+v", mp)
		}
	}
	if len(rt) != len(want) {
		t.Errorf("len(RouteTable()) = %d, want %d", len(rt), len(want))
	}
}

func TestHandleDeviceInfoServesSessionState(t *testing.T) {
	sess := &usbsession.Session{}
	sess.DeviceInfo.Model = "KM003C"

	srv := httpapi.NewServer(sess)
	rt := srv.RouteTable()
	handler := rt[httpapi.MethodPath{Method: http.MethodGet, Path: "/device-info"}]

	req := httptest.NewRequest(http.MethodGet, "/device-info", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "KM003C") {
		t.Errorf("body = %q, want it to contain KM003C", rec.Body.String())
	}
}

func TestHandleStartGraphRejectsInvalidQueryRate(t *testing.T) {
	srv := httpapi.NewServer(&usbsession.Session{})
	rt := srv.RouteTable()
	handler := rt[httpapi.MethodPath{Method: http.MethodPost, Path: "/graph/start"}]

	req := httptest.NewRequest(http.MethodPost, "/graph/start?rate=not-a-number", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleStartGraphRejectsInvalidJSONBody(t *testing.T) {
	srv := httpapi.NewServer(&usbsession.Session{})
	rt := srv.RouteTable()
	handler := rt[httpapi.MethodPath{Method: http.MethodPost, Path: "/graph/start"}]

	req := httptest.NewRequest(http.MethodPost, "/graph/start", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
