package httpapi

import (
	"net/http"

	"github.com/talDoFlemis/health-hub/internal/audit"
	"github.com/talDoFlemis/health-hub/internal/auth"
	"github.com/talDoFlemis/health-hub/internal/obs"
)

type registerRequest struct {
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=4"`
	Role      string `json:"role" validate:"required"`
}

type authenticateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := a.auth.Register(r.Context(), auth.RegisterInput{
		FirstName: req.Firstname,
		LastName:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
		Role:      role,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	obs.TokenIssued("access")
	obs.TokenIssued("refresh")
	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"email": req.Email,
		"role":  string(role),
	})

	writeJSON(w, http.StatusOK, pair)
}

func (a *API) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := a.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	obs.TokenIssued("access")
	obs.TokenIssued("refresh")
	obs.TokenRevoked("login_rotation")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"email": req.Email,
	})

	writeJSON(w, http.StatusOK, pair)
}

// handleRefresh exchanges a live refresh token for a fresh access token.
// When the presented token is missing or unusable the response is an empty
// 200, matching what the frontend expects from this endpoint.
func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	pair, ok, err := a.auth.Refresh(r.Context(), r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	obs.TokenIssued("access")
	obs.TokenRevoked("refresh_rotation")
	_ = audit.LogEvent(r.Context(), "auth.refresh", nil)

	writeJSON(w, http.StatusOK, pair)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.auth.Logout(r.Context(), r.Header.Get(authHeader)); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	obs.TokenRevoked("logout")
	_ = audit.LogEvent(r.Context(), "auth.logout", nil)

	w.WriteHeader(http.StatusOK)
}

func (a *API) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	user, err := a.auth.CurrentUser(r.Context(), principal.User.Email)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
