// Пакет errors — конструкторы стандартных ошибок локального сервера консоли.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/lifecycle"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/mutation"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/session"
)

// Коды ошибок.
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeBackendUnavailable   = "BACKEND_UNAVAILABLE"
	CodeInternalError        = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется вход.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// Conflict — 409 конфликт состояния.
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

// InvalidTransition — 409 недопустимый переход статуса записи.
func InvalidTransition(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeInvalidTransition, message)
}

// ConfirmationRequired — 428 разрушающее действие без confirm=true.
func ConfirmationRequired(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusPreconditionRequired, CodeConfirmationRequired, message)
}

// BackendUnavailable — 502 backend API недоступен или вернул ошибку сервера.
func BackendUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeBackendUnavailable, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}

// --- Ошибки клиента backend ---

// FromClientError переводит ошибку клиента backend, сессии или мутации
// в ответ стандартного формата. fallback — сообщение операции.
func FromClientError(w http.ResponseWriter, err error, fallback string) {
	msg := mutation.Message(err, fallback)

	var apiErr *apiclient.APIError
	var netErr *apiclient.NetworkError
	var authErr *session.AuthError
	var expired *session.SessionExpiredError
	var transErr *lifecycle.TransitionError

	switch {
	case errors.Is(err, mutation.ErrNotConfirmed):
		ConfirmationRequired(w, "Действие требует подтверждения: повторите запрос с confirm=true")
	case errors.Is(err, mutation.ErrForbidden):
		Forbidden(w, msg)
	case errors.Is(err, mutation.ErrRecordNotFound):
		NotFound(w, msg)
	case errors.As(err, &transErr):
		InvalidTransition(w, msg)
	case errors.As(err, &authErr), errors.As(err, &expired):
		Unauthorized(w, msg)
	case errors.Is(err, session.ErrLoginInProgress),
		errors.Is(err, session.ErrSessionReplaced),
		errors.Is(err, apiclient.ErrStaleSession):
		Conflict(w, msg)
	case errors.As(err, &apiErr):
		fromBackendStatus(w, apiErr.HTTPStatus, msg)
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		BackendUnavailable(w, msg)
	default:
		InternalError(w, msg)
	}
}

// fromBackendStatus сохраняет смысл статуса backend для клиентских ошибок.
func fromBackendStatus(w http.ResponseWriter, status int, msg string) {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		ValidationError(w, msg)
	case http.StatusUnauthorized:
		Unauthorized(w, msg)
	case http.StatusForbidden:
		Forbidden(w, msg)
	case http.StatusNotFound:
		NotFound(w, msg)
	case http.StatusConflict:
		Conflict(w, msg)
	default:
		BackendUnavailable(w, msg)
	}
}
