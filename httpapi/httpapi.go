// Package httpapi is a thin, optional HTTP façade over a usbsession.Session,
// in the teacher's generichttp style: a route table of JSON handlers bound
// onto a chi.Router. The core session type has zero HTTP dependency --
// this package only imports it, never the reverse.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/jpl-power/km003c/payload"
	"github.com/jpl-power/km003c/usbsession"
)

// MethodPath is an HTTP method and a chi route pattern, used as a
// RouteTable key so callers can see at a glance what a server exposes.
type MethodPath struct {
	Method, Path string
}

// RouteTable maps a MethodPath to the handler that serves it, mirroring
// the teacher's generichttp.RouteTable2 but bound directly to chi rather
// than left router-agnostic.
type RouteTable map[MethodPath]http.HandlerFunc

// Bind registers every route in the table on r.
func (rt RouteTable) Bind(r chi.Router) {
	for mp, h := range rt {
		r.Method(mp.Method, mp.Path, h)
	}
}

// Server exposes one Session's request surface over HTTP.
type Server struct {
	Session *usbsession.Session
}

// NewServer wraps sess for HTTP exposure.
func NewServer(sess *usbsession.Session) *Server {
	return &Server{Session: sess}
}

// RouteTable builds this server's route table: ADC/PD/combined snapshots,
// device info, ADC-queue streaming control, and PD event polling.
func (s *Server) RouteTable() RouteTable {
	return RouteTable{
		{http.MethodGet, "/adc"}:          s.handleADC(),
		{http.MethodGet, "/pd"}:           s.handlePD(),
		{http.MethodGet, "/adc-pd"}:       s.handleADCWithPD(),
		{http.MethodGet, "/pd-events"}:    s.handlePDEvents(),
		{http.MethodGet, "/adc-queue"}:    s.handleADCQueue(),
		{http.MethodGet, "/device-info"}:  s.handleDeviceInfo(),
		{http.MethodPost, "/graph/start"}: s.handleStartGraph(),
		{http.MethodPost, "/graph/stop"}:  s.handleStopGraph(),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeErr(w http.ResponseWriter, err error) {
	switch err {
	case usbsession.ErrDeviceNotFound, usbsession.ErrDeviceBusy:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case usbsession.ErrTimeout:
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	case usbsession.ErrAuthRejected, usbsession.ErrStreamingRejected:
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleADC() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adc, err := s.Session.RequestADC()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, adc)
	}
}

func (s *Server) handlePD() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := s.Session.RequestPD()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, status)
	}
}

// adcWithPD is the combined response shape for /adc-pd.
type adcWithPD struct {
	ADC      payload.Adc      `json:"adc"`
	PDStatus payload.PdStatus `json:"pd_status"`
}

func (s *Server) handleADCWithPD() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adc, status, err := s.Session.RequestADCWithPD()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, adcWithPD{ADC: adc, PDStatus: status})
	}
}

func (s *Server) handlePDEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.Session.RequestPDEvents()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, events)
	}
}

// adcQueueResponse reports a streaming poll's samples plus any detected
// drops, since a caller polling /adc-queue needs both to reconstruct a
// continuous trace.
type adcQueueResponse struct {
	Samples []payload.AdcQueueSample `json:"samples"`
	Gaps    []payload.DroppedGap     `json:"gaps,omitempty"`
}

func (s *Server) handleADCQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		samples, gaps, err := s.Session.RequestADCQueue()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, adcQueueResponse{Samples: samples, Gaps: gaps})
	}
}

func (s *Server) handleDeviceInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.Session.DeviceInfo)
	}
}

// startGraphRequest is the JSON body accepted by POST /graph/start.
type startGraphRequest struct {
	Rate uint16 `json:"rate"`
}

func (s *Server) handleStartGraph() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body startGraphRequest
		if queryRate := r.URL.Query().Get("rate"); queryRate != "" {
			n, err := strconv.ParseUint(queryRate, 10, 16)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			body.Rate = uint16(n)
		} else {
			defer r.Body.Close()
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if err := s.Session.StartGraph(payload.GraphSampleRate(body.Rate)); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) handleStopGraph() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Session.StopGraph(); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
