package session

import (
	"errors"
	"fmt"
)

// ErrLoginInProgress — вход уже выполняется; параллельные попытки отклоняются.
var ErrLoginInProgress = errors.New("вход уже выполняется")

// ErrSessionReplaced — сессия сменилась (logout или новый вход), пока
// выполнялся запрос; результат отброшен.
var ErrSessionReplaced = errors.New("сессия сменилась во время операции")

// defaultAuthMessage — сообщение при отказе во входе без текста от сервера.
const defaultAuthMessage = "Неверный email или пароль"

// AuthError — сервер отклонил учётные данные.
type AuthError struct {
	Message string // Сообщение для формы входа
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// SessionExpiredError — обновление access-токена не удалось;
// сессия завершена, требуется повторный вход.
type SessionExpiredError struct {
	Err error
}

func (e *SessionExpiredError) Error() string {
	if e.Err == nil {
		return "сессия истекла, требуется повторный вход"
	}
	return fmt.Sprintf("сессия истекла, требуется повторный вход: %v", e.Err)
}

func (e *SessionExpiredError) Unwrap() error {
	return e.Err
}
