package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"i4.energy/across/btgw/hm1x"
)

// Server handles incoming HTTP requests for interacting with the
// configured module. The module runs one exchange at a time, so every
// handler and the poll loop take mu for the whole operation.
type Server struct {
	Logger *slog.Logger
	Device *hm1x.Device

	mu     sync.Mutex
	once   sync.Once
	router chi.Router
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.once.Do(func() { s.router = s.Routes() })
	s.router.ServeHTTP(w, r)
}

// Routes builds the control API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/status", s.handleStatus)
	r.Get("/version", s.handleVersion)
	r.Get("/inbox", s.handleInbox)
	r.Get("/names", s.handleGetNames)
	r.Put("/names/{link}", s.handleSetName)
	r.Get("/addresses", s.handleAddresses)
	r.Post("/reset", s.handleReset)
	r.Post("/factory-defaults", s.handleFactoryDefaults)
	r.Put("/baud", s.handleSetBaud)
	r.Post("/baud/force", s.handleForceBaud)
	r.Put("/ibeacon", s.handleIBeacon)
	r.Get("/pio/{pin}", s.handleReadPIO)
	r.Put("/pio/{pin}", s.handleWritePIO)

	return r
}

// RunPoll polls the module every interval until ctx is done.
func (s *Server) RunPoll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			event, err := s.Device.Poll()
			state := s.Device.State()
			s.mu.Unlock()

			if err != nil {
				s.Logger.Warn("Poll failed", "error", err)
				continue
			}
			if event {
				s.Logger.Debug("Connection state changed", "state", state)
			}
		}
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	s.sendJSON(w, ErrorResponse{Message: message}, statusCode)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// sendDeviceError logs err and answers with the status its kind maps to.
func (s *Server) sendDeviceError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("Module operation failed", "op", op, "error", err)
	} else {
		s.Logger.Info("Module operation rejected", "op", op, "error", err)
	}
	s.sendError(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	// Checked before ErrUnexpectedResponse, which it wraps.
	case errors.Is(err, hm1x.ErrInvalidParameter), errors.Is(err, hm1x.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, hm1x.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, hm1x.ErrUnexpectedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type StatusResponse struct {
		Model     string               `json:"model"`
		Polling   bool                 `json:"polling"`
		State     hm1x.ConnectionState `json:"state"`
		LastEvent string               `json:"last_event"`
	}

	s.mu.Lock()
	resp := StatusResponse{
		Model:     s.Device.Model().String(),
		Polling:   s.Device.Polling(),
		State:     s.Device.State(),
		LastEvent: s.Device.LastEvent().Type.String(),
	}
	s.mu.Unlock()

	s.sendJSON(w, resp, http.StatusOK)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	version, err := s.Device.Version()
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "version", err)
		return
	}
	s.sendJSON(w, map[string]string{"version": version}, http.StatusOK)
}

// handleInbox drains everything received from the peer.
func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	var data []byte
	buf := make([]byte, 256)

	s.mu.Lock()
	for {
		n, err := s.Device.Read(buf)
		if err != nil {
			s.mu.Unlock()
			s.sendDeviceError(w, "inbox", err)
			return
		}
		if n == 0 {
			break
		}
		data = append(data, buf[:n]...)
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleGetNames(w http.ResponseWriter, r *http.Request) {
	type NamesResponse struct {
		EDR string `json:"edr,omitempty"`
		BLE string `json:"ble"`
	}

	var resp NamesResponse
	var err error

	s.mu.Lock()
	if s.Device.Capabilities().DualMode {
		resp.EDR, err = s.Device.EDRName()
	}
	if err == nil {
		resp.BLE, err = s.Device.BLEName()
	}
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "names", err)
		return
	}
	s.sendJSON(w, resp, http.StatusOK)
}

func (s *Server) handleSetName(w http.ResponseWriter, r *http.Request) {
	type NameRequest struct {
		Name string `json:"name"`
	}

	var req NameRequest
	if !s.decode(w, r, &req) {
		return
	}

	link := chi.URLParam(r, "link")
	var set func(string) error
	switch link {
	case "edr":
		set = s.Device.SetEDRName
	case "ble":
		set = s.Device.SetBLEName
	default:
		s.sendError(w, "link must be 'edr' or 'ble'", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err := set(req.Name)
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "set name", err)
		return
	}
	s.Logger.Info("Name changed", "link", link, "name", req.Name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddresses(w http.ResponseWriter, r *http.Request) {
	type AddressesResponse struct {
		EDR string `json:"edr,omitempty"`
		BLE string `json:"ble"`
	}

	var resp AddressesResponse
	var err error

	s.mu.Lock()
	if s.Device.Capabilities().DualMode {
		resp.EDR, err = s.Device.EDRAddress()
	}
	if err == nil {
		resp.BLE, err = s.Device.BLEAddress()
	}
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "addresses", err)
		return
	}
	s.sendJSON(w, resp, http.StatusOK)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.Device.Reset()
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "reset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFactoryDefaults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.Device.FactoryDefaults()
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "factory defaults", err)
		return
	}
	s.Logger.Warn("Module restored to factory defaults")
	w.WriteHeader(http.StatusNoContent)
}

type baudRequest struct {
	Baud int `json:"baud"`
}

func (s *Server) handleSetBaud(w http.ResponseWriter, r *http.Request) {
	var req baudRequest
	if !s.decode(w, r, &req) {
		return
	}

	b, err := hm1x.BaudFromRate(req.Baud)
	if err != nil {
		s.sendDeviceError(w, "set baud", err)
		return
	}

	s.mu.Lock()
	err = s.Device.SetBaud(b)
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "set baud", err)
		return
	}
	s.Logger.Info("Baud rate stored, effective after reset", "baud", req.Baud)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForceBaud(w http.ResponseWriter, r *http.Request) {
	var req baudRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	err := s.Device.ForceBaud(req.Baud)
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "force baud", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleIBeacon applies the fields present in the request, in the order
// UUID, major, minor, power, enabled.
func (s *Server) handleIBeacon(w http.ResponseWriter, r *http.Request) {
	type IBeaconRequest struct {
		Enabled *bool   `json:"enabled"`
		UUID    *string `json:"uuid"`
		Major   *uint16 `json:"major"`
		Minor   *uint16 `json:"minor"`
		Power   *uint8  `json:"power"`
	}

	var req IBeaconRequest
	if !s.decode(w, r, &req) {
		return
	}

	var id uuid.UUID
	if req.UUID != nil {
		var err error
		if id, err = uuid.Parse(*req.UUID); err != nil {
			s.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	s.mu.Lock()
	err := s.applyIBeacon(req.UUID != nil, id, req.Major, req.Minor, req.Power, req.Enabled)
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "ibeacon", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyIBeacon(setUUID bool, id uuid.UUID, major, minor *uint16, power *uint8, enabled *bool) error {
	if setUUID {
		if err := s.Device.SetIBeaconUUID(id); err != nil {
			return err
		}
	}
	if major != nil {
		if err := s.Device.SetIBeaconMajor(*major); err != nil {
			return err
		}
	}
	if minor != nil {
		if err := s.Device.SetIBeaconMinor(*minor); err != nil {
			return err
		}
	}
	if power != nil {
		if err := s.Device.SetIBeaconPower(*power); err != nil {
			return err
		}
	}
	if enabled != nil {
		return s.Device.EnableIBeacon(*enabled)
	}
	return nil
}

func (s *Server) pin(w http.ResponseWriter, r *http.Request) (int, bool) {
	pin, err := strconv.Atoi(chi.URLParam(r, "pin"))
	if err != nil {
		s.sendError(w, "pin must be a number", http.StatusBadRequest)
		return 0, false
	}
	return pin, true
}

func (s *Server) handleReadPIO(w http.ResponseWriter, r *http.Request) {
	pin, ok := s.pin(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	high, err := s.Device.ReadPIO(pin)
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "read pio", err)
		return
	}
	s.sendJSON(w, map[string]bool{"high": high}, http.StatusOK)
}

func (s *Server) handleWritePIO(w http.ResponseWriter, r *http.Request) {
	pin, ok := s.pin(w, r)
	if !ok {
		return
	}

	type PIORequest struct {
		High bool `json:"high"`
	}
	var req PIORequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	err := s.Device.WritePIO(pin, req.High)
	s.mu.Unlock()

	if err != nil {
		s.sendDeviceError(w, "write pio", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
