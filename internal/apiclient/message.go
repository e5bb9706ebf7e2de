package apiclient

import (
	"context"
	"errors"
)

// networkMessage — сообщение для сбоев транспорта.
const networkMessage = "Нет связи с сервером. Проверьте подключение и повторите попытку"

// DisplayMessage превращает ошибку API-клиента в строку для пользователя:
// сообщение сервера, иначе fallback операции.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	if errors.Is(err, ErrStaleSession) {
		return "Сессия изменилась, обновите данные"
	}
	if errors.Is(err, context.Canceled) {
		return "Операция отменена"
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if fallback != "" {
			return fallback + ": " + networkMessage
		}
		return networkMessage
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
