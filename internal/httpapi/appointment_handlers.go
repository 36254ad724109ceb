package httpapi

import (
	"net/http"

	"github.com/talDoFlemis/health-hub/internal/clinic"
)

type createAppointmentRequest struct {
	Annotations string `json:"annotations"`
	Time        string `json:"time" validate:"required"`
	PatientID   string `json:"patient_id" validate:"required"`
	PhysicianID string `json:"physician_id" validate:"required"`
}

type updateAppointmentRequest struct {
	Annotations *string `json:"annotations"`
	Time        *string `json:"time"`
	PatientID   *string `json:"patient_id"`
	PhysicianID *string `json:"physician_id"`
}

func (a *API) handleAppointmentList(w http.ResponseWriter, r *http.Request) {
	items, err := a.clinic.Appointments(r.Context())
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleAppointmentBetween(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.clinic.AppointmentsBetween(r.Context(), start, end)
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleAppointmentsByPatient(w http.ResponseWriter, r *http.Request) {
	items, err := a.clinic.AppointmentsByPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleAppointmentsByPatientBetween(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.clinic.AppointmentsByPatientBetween(r.Context(), r.PathValue("id"), start, end)
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleAppointmentsByPhysician(w http.ResponseWriter, r *http.Request) {
	items, err := a.clinic.PhysicianAppointments(r.Context(), r.PathValue("id"))
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleAppointmentsByPhysicianBetween(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.clinic.AppointmentsByPhysicianBetween(r.Context(), r.PathValue("id"), start, end)
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleAppointmentCreate(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	at, err := parseTimeParam(req.Time)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "time must be an ISO date-time")
		return
	}

	appt, err := a.clinic.CreateAppointment(r.Context(), clinic.CreateAppointmentInput{
		Annotations: req.Annotations,
		Time:        at,
		PatientID:   req.PatientID,
		PhysicianID: req.PhysicianID,
	})
	if err != nil {
		handleClinicError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/appointment/"+appt.ID)
	writeJSON(w, http.StatusCreated, appt)
}

func (a *API) handleAppointmentUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateAppointmentRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	in := clinic.UpdateAppointmentInput{
		Annotations: req.Annotations,
		PatientID:   req.PatientID,
		PhysicianID: req.PhysicianID,
	}
	if req.Time != nil {
		at, err := parseTimeParam(*req.Time)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "time must be an ISO date-time")
			return
		}
		in.Time = &at
	}

	appt, err := a.clinic.UpdateAppointment(r.Context(), r.PathValue("id"), in)
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (a *API) handleAppointmentDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.clinic.RemoveAppointment(r.Context(), r.PathValue("id")); err != nil {
		handleClinicError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
