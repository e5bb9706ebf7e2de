package mutation

import (
	"errors"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/lifecycle"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/session"
)

var (
	// ErrNotConfirmed — пользователь не подтвердил разрушающее действие.
	ErrNotConfirmed = errors.New("действие не подтверждено")
	// ErrForbidden — роль или состояние записи не допускают действие.
	ErrForbidden = errors.New("действие запрещено")
	// ErrRecordNotFound — записи нет в загруженном списке.
	ErrRecordNotFound = errors.New("запись не найдена")
)

// Message превращает ошибку мутации или загрузки в строку для пользователя.
// fallback — сообщение операции, если сервер не прислал своего.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var authErr *session.AuthError
	var expired *session.SessionExpiredError
	var transErr *lifecycle.TransitionError
	switch {
	case errors.Is(err, ErrNotConfirmed):
		return "Действие отменено"
	case errors.Is(err, ErrForbidden):
		return "Недостаточно прав для этого действия"
	case errors.Is(err, ErrRecordNotFound):
		return "Запись не найдена, обновите список"
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.As(err, &expired):
		return "Сессия истекла, войдите снова"
	case errors.Is(err, session.ErrLoginInProgress):
		return "Вход уже выполняется"
	case errors.As(err, &transErr):
		return "Действие недоступно для записи в статусе «" + transErr.From + "»"
	}
	return apiclient.DisplayMessage(err, fallback)
}
