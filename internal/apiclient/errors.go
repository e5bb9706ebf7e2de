// errors.go — типизированные ошибки API-клиента.
package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrStaleSession — ответ получен после смены учётных данных (logout/login)
// и отброшен: результату запроса с устаревшим bearer доверять нельзя.
var ErrStaleSession = errors.New("учётные данные сессии изменились во время запроса")

// APIError — любой ответ backend со статусом вне 2xx.
type APIError struct {
	HTTPStatus int    // HTTP статус-код ответа
	Message    string // Сообщение сервера или fallback операции
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API вернул статус %d: %s", e.HTTPStatus, e.Message)
}

// IsUnauthorized — ответ 401.
func (e *APIError) IsUnauthorized() bool {
	return e.HTTPStatus == http.StatusUnauthorized
}

// NetworkError — сбой транспорта (соединение, TLS, таймаут, отмена контекста).
type NetworkError struct {
	Op  string // Операция, например "GET /transfers"
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("сетевая ошибка %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsStatus проверяет, что err — APIError с указанным статусом.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatus == status
}

// errorPayload — структурированное тело ошибки backend.
// Поддерживаются {"error": "..."} и {"error": {"code": "...", "message": "..."}}.
type errorPayload struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// errorMessage извлекает сообщение из тела ответа или возвращает fallback.
func errorMessage(body []byte, status int, fallback string) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Error) > 0 {
			var s string
			if json.Unmarshal(payload.Error, &s) == nil && strings.TrimSpace(s) != "" {
				return s
			}
			var detail struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(payload.Error, &detail) == nil && detail.Message != "" {
				return detail.Message
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if fallback != "" {
		return fallback
	}
	return http.StatusText(status)
}
