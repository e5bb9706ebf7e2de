package session

import "fmt"

// State — состояние жизненного цикла сессии.
type State string

const (
	// StateUnauthenticated — нет учётных данных, principal == nil
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticating — выполняется вход или восстановление сессии
	StateAuthenticating State = "authenticating"
	// StateAuthenticated — principal установлен, bearer прикреплён к клиенту
	StateAuthenticated State = "authenticated"
	// StateExpired — обновление токена не удалось (переходное состояние)
	StateExpired State = "expired"
	// StateLoggedOut — явный выход (переходное состояние)
	StateLoggedOut State = "logged_out"
)

// validTransitions — матрица допустимых переходов сессии.
// expired и logged_out всегда сразу переходят в unauthenticated.
var validTransitions = map[State]map[State]bool{
	StateUnauthenticated: {StateAuthenticating: true},
	StateAuthenticating:  {StateAuthenticated: true, StateUnauthenticated: true, StateLoggedOut: true},
	StateAuthenticated:   {StateExpired: true, StateLoggedOut: true},
	StateExpired:         {StateUnauthenticated: true},
	StateLoggedOut:       {StateUnauthenticated: true},
}

// StateError — попытка недопустимого перехода состояния сессии.
type StateError struct {
	From State
	To   State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("переход сессии %s → %s недопустим", e.From, e.To)
}

// canTransition проверяет допустимость перехода.
func canTransition(from, to State) bool {
	return validTransitions[from][to]
}
