// Пакет handlers — HTTP-обработчики локального сервера консоли.
// Сервер однопользовательский: все запросы работают с одной сессией консоли.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/api/errors"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/console"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// APIHandler — обработчики /api/v1.
type APIHandler struct {
	console  *console.Console
	pageSize int
	logger   *slog.Logger
}

// NewAPIHandler создаёт обработчики поверх собранной консоли.
// pageSize — размер страницы, если запрос его не указал.
func NewAPIHandler(c *console.Console, pageSize int, logger *slog.Logger) *APIHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &APIHandler{
		console:  c,
		pageSize: pageSize,
		logger:   logger.With(slog.String("component", "api")),
	}
}

// RequireSession пропускает запрос только при активной сессии.
// Истекающий access-токен обновляется до обращения к backend.
func (h *APIHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.console.Session.WaitReady(r.Context()); err != nil {
			apierrors.InternalError(w, "Сессия ещё восстанавливается")
			return
		}
		if err := h.console.Session.EnsureFresh(r.Context()); err != nil {
			apierrors.FromClientError(w, err, "Сессия истекла")
			return
		}
		if h.console.Session.Principal() == nil {
			apierrors.Unauthorized(w, "Требуется вход")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// principal возвращает текущего пользователя.
func (h *APIHandler) principal() *model.User {
	return h.console.Session.Principal()
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
