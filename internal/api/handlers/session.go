package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	apierrors "github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/api/errors"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// sessionResponse — состояние сессии консоли.
type sessionResponse struct {
	State         string      `json:"state"`
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) sessionState() sessionResponse {
	user := h.principal()
	return sessionResponse{
		State:         string(h.console.Session.State()),
		Authenticated: user != nil,
		User:          user,
	}
}

// GetSession — GET /api/v1/session.
func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.console.Session.WaitReady(r.Context()); err != nil {
		apierrors.InternalError(w, "Сессия ещё восстанавливается")
		return
	}
	writeJSON(w, http.StatusOK, h.sessionState())
}

// Login — POST /api/v1/session.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		apierrors.ValidationError(w, "Укажите email и пароль")
		return
	}

	if _, err := h.console.Session.Login(r.Context(), req.Email, req.Password); err != nil {
		apierrors.FromClientError(w, err, "Не удалось войти")
		return
	}
	writeJSON(w, http.StatusOK, h.sessionState())
}

// Logout — DELETE /api/v1/session. Идемпотентен.
func (h *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.console.Session.Logout()
	w.WriteHeader(http.StatusNoContent)
}
