package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/talDoFlemis/health-hub/internal/auth"
	"github.com/talDoFlemis/health-hub/internal/clinic"
	"github.com/talDoFlemis/health-hub/internal/obs"
)

// ReadyProbe reports whether the service dependencies are reachable.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	auth       *auth.Service
	clinic     *clinic.Service
	validate   *validator.Validate
	origins    []string
}

// Option customizes the API.
type Option func(*API)

// WithAllowedOrigins sets the browser origins accepted by CORS.
func WithAllowedOrigins(origins []string) Option {
	return func(a *API) { a.origins = origins }
}

func New(authSvc *auth.Service, clinicSvc *clinic.Service, rp ReadyProbe, version string, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		auth:       authSvc,
		clinic:     clinicSvc,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(a)
	}

	m := a.mux

	// health/ready/info
	m.HandleFunc("GET /healthz", a.Healthz)
	m.HandleFunc("GET /readyz", a.Ready)
	m.HandleFunc("GET /api/info", a.Info)

	// Prometheus metrics
	m.Handle("GET /metrics", obs.Handler())

	// authentication
	m.HandleFunc("POST /api/auth/register", a.handleRegister)
	m.HandleFunc("POST /api/auth/authenticate", a.handleAuthenticate)
	m.HandleFunc("POST /api/auth/refresh", a.handleRefresh)
	m.HandleFunc("POST /api/auth/logout", a.handleLogout)
	m.HandleFunc("GET /api/auth/user", a.requireRole(a.handleCurrentUser))

	// patients
	anyStaffOrPatient := []auth.Role{auth.RoleAdmin, auth.RoleAttendant, auth.RolePatient}
	staff := []auth.Role{auth.RoleAdmin, auth.RoleAttendant}
	adminOnly := []auth.Role{auth.RoleAdmin}

	m.HandleFunc("GET /api/patient/me", a.requireRole(a.handlePatientMe, anyStaffOrPatient...))
	m.HandleFunc("GET /api/patient/me/appointments", a.requireRole(a.handlePatientMeAppointments, anyStaffOrPatient...))
	m.HandleFunc("GET /api/patient/all", a.requireRole(a.handlePatientList, staff...))
	m.HandleFunc("GET /api/patient/{id}", a.requireRole(a.handlePatientGet, staff...))
	m.HandleFunc("POST /api/patient/create", a.requireRole(a.handlePatientCreate, staff...))
	m.HandleFunc("PATCH /api/patient/update/{id}", a.requireRole(a.handlePatientUpdate, staff...))
	m.HandleFunc("DELETE /api/patient/{id}", a.requireRole(a.handlePatientDelete, staff...))

	// physicians
	m.HandleFunc("GET /api/physician", a.requireRole(a.handlePhysicianList, staff...))
	m.HandleFunc("POST /api/physician", a.requireRole(a.handlePhysicianCreate, adminOnly...))
	m.HandleFunc("PATCH /api/physician/{id}", a.requireRole(a.handlePhysicianUpdate, adminOnly...))
	m.HandleFunc("DELETE /api/physician/{id}", a.requireRole(a.handlePhysicianDelete, adminOnly...))

	// attendants
	m.HandleFunc("GET /api/attendant/me", a.requireRole(a.handleAttendantMe))
	m.HandleFunc("GET /api/attendant/all", a.requireRole(a.handleAttendantList, adminOnly...))
	m.HandleFunc("GET /api/attendant/{id}", a.requireRole(a.handleAttendantGet, adminOnly...))
	m.HandleFunc("POST /api/attendant/create", a.requireRole(a.handleAttendantCreate, adminOnly...))
	m.HandleFunc("PATCH /api/attendant/update/{id}", a.requireRole(a.handleAttendantUpdate, adminOnly...))
	m.HandleFunc("DELETE /api/attendant/{id}", a.requireRole(a.handleAttendantDelete, adminOnly...))

	// appointments
	m.HandleFunc("GET /api/appointment/all", a.requireRole(a.handleAppointmentList, staff...))
	m.HandleFunc("GET /api/appointment/between", a.requireRole(a.handleAppointmentBetween, staff...))
	m.HandleFunc("GET /api/appointment/patient/{id}", a.requireRole(a.handleAppointmentsByPatient, staff...))
	m.HandleFunc("GET /api/appointment/patient/between/{id}", a.requireRole(a.handleAppointmentsByPatientBetween, staff...))
	m.HandleFunc("GET /api/appointment/physician/{id}", a.requireRole(a.handleAppointmentsByPhysician, staff...))
	m.HandleFunc("GET /api/appointment/physician/between/{id}", a.requireRole(a.handleAppointmentsByPhysicianBetween, staff...))
	m.HandleFunc("POST /api/appointment/create", a.requireRole(a.handleAppointmentCreate, staff...))
	m.HandleFunc("PATCH /api/appointment/update/{id}", a.requireRole(a.handleAppointmentUpdate, staff...))
	m.HandleFunc("DELETE /api/appointment/delete/{id}", a.requireRole(a.handleAppointmentDelete, staff...))

	m.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, 50, 25)
	h = LoggingJSON(h)
	h = RequestID(h)
	h = CORS(h, a.origins)
	h = SecurityHeaders(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "health-hub-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "health-hub-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// decodeValid decodes the body and runs struct validation on it.
func (a *API) decodeValid(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	if err := a.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return errors.New("invalid field " + strings.ToLower(first.Field()))
		}
		return err
	}
	return nil
}

func handleClinicError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, clinic.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, clinic.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, clinic.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

const timeParamLayout = "2006-01-02T15:04:05"

// parseTimeParam accepts RFC 3339 or a local date-time without zone, the
// format the frontend date pickers emit.
func parseTimeParam(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing time parameter")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(timeParamLayout, raw)
}

func timeWindow(r *http.Request) (start, end time.Time, err error) {
	start, err = parseTimeParam(r.URL.Query().Get("start"))
	if err != nil {
		return start, end, errors.New("start must be an ISO date-time")
	}
	end, err = parseTimeParam(r.URL.Query().Get("end"))
	if err != nil {
		return start, end, errors.New("end must be an ISO date-time")
	}
	return start, end, nil
}
