package httpapi

import (
	"net/http"

	"github.com/talDoFlemis/health-hub/internal/auth"
	"github.com/talDoFlemis/health-hub/internal/clinic"
)

type createAttendantRequest struct {
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	DBO       string `json:"dbo" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type updateAttendantRequest struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	DBO       *string `json:"dbo"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

func (a *API) handleAttendantMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	att, err := a.clinic.AttendantByEmail(r.Context(), principal.User.Email)
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

func (a *API) handleAttendantList(w http.ResponseWriter, r *http.Request) {
	items, err := a.clinic.Attendants(r.Context())
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleAttendantGet(w http.ResponseWriter, r *http.Request) {
	att, err := a.clinic.Attendant(r.Context(), r.PathValue("id"))
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

func (a *API) handleAttendantCreate(w http.ResponseWriter, r *http.Request) {
	var req createAttendantRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	dbo, err := parseDate(req.DBO)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "dbo must be a date in YYYY-MM-DD form")
		return
	}

	att, err := a.clinic.CreateAttendant(r.Context(), clinic.CreateAttendantInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		DBO:       dbo,
		Email:     req.Email,
	})
	if err != nil {
		handleClinicError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/attendant/"+att.ID)
	writeJSON(w, http.StatusCreated, att)
}

func (a *API) handleAttendantUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateAttendantRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	in := clinic.UpdateAttendantInput{
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

	att, err := a.clinic.UpdateAttendant(r.Context(), r.PathValue("id"), in)
	if err != nil {
		handleClinicError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

func (a *API) handleAttendantDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.clinic.RemoveAttendant(r.Context(), r.PathValue("id")); err != nil {
		handleClinicError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
