package httpapi

import (
	"net/http"

	"github.com/talDoFlemis/health-hub/internal/clinic"
)

type createPhysicianRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Specialty string `json:"specialty" validate:"required"`
}

type updatePhysicianRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Specialty *string `json:"specialty"`
}

func (a *API) handlePhysicianList(w http.ResponseWriter, r *http.Request) {
	items, err := a.clinic.Physicians(r.Context())
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handlePhysicianCreate(w http.ResponseWriter, r *http.Request) {
	var req createPhysicianRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := a.clinic.CreatePhysician(r.Context(), clinic.CreatePhysicianInput{
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
	})
	if err != nil {
		handleClinicError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/physician/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) handlePhysicianUpdate(w http.ResponseWriter, r *http.Request) {
	var req updatePhysicianRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := a.clinic.UpdatePhysician(r.Context(), r.PathValue("id"), clinic.UpdatePhysicianInput{
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
	})
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handlePhysicianDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.clinic.RemovePhysician(r.Context(), r.PathValue("id")); err != nil {
		handleClinicError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
