package httpapi

import (
	"net/http"
	"time"

	"github.com/talDoFlemis/health-hub/internal/auth"
	"github.com/talDoFlemis/health-hub/internal/clinic"
)

const dateLayout = "2006-01-02"

type createPatientRequest struct {
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	DBO       string `json:"dbo" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type updatePatientRequest struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	DBO       *string `json:"dbo"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}

func (a *API) handlePatientMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	p, err := a.clinic.PatientByEmail(r.Context(), principal.User.Email)
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handlePatientMeAppointments(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	items, err := a.clinic.PatientAppointments(r.Context(), principal.User.Email)
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handlePatientList(w http.ResponseWriter, r *http.Request) {
	items, err := a.clinic.Patients(r.Context())
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handlePatientGet(w http.ResponseWriter, r *http.Request) {
	p, err := a.clinic.Patient(r.Context(), r.PathValue("id"))
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handlePatientCreate(w http.ResponseWriter, r *http.Request) {
	var req createPatientRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	dbo, err := parseDate(req.DBO)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "dbo must be a date in YYYY-MM-DD form")
		return
	}

	p, err := a.clinic.CreatePatient(r.Context(), clinic.CreatePatientInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		DBO:       dbo,
		Email:     req.Email,
	})
	if err != nil {
		handleClinicError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/patient/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) handlePatientUpdate(w http.ResponseWriter, r *http.Request) {
	var req updatePatientRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	in := clinic.UpdatePatientInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
	}
	if req.DBO != nil {
		dbo, err := parseDate(*req.DBO)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "dbo must be a date in YYYY-MM-DD form")
			return
		}
		in.DBO = &dbo
	}

	p, err := a.clinic.UpdatePatient(r.Context(), r.PathValue("id"), in)
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handlePatientDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.clinic.RemovePatient(r.Context(), r.PathValue("id")); err != nil {
		handleClinicError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
