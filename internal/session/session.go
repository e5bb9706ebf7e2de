// Пакет session — хранилище сессии консоли: учётные данные, principal
// и их жизненный цикл.
//
// Store — единственный писатель bearer-токена API-клиента.
// Инвариант: нет access-токена ⇒ principal == nil.
// Автоматического refresh-and-retry на 401 нет: RefreshAccessToken
// вызывается явно (EnsureFresh перед командами CLI).
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/tokenstore"
)

// refreshLeeway — за сколько до истечения access-токена EnsureFresh обновляет его.
const refreshLeeway = 30 * time.Second

// AuthAPI — вызовы backend, необходимые сессии.
// Реализуется *apiclient.Client.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
	Profile(ctx context.Context) (*model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*apiclient.RefreshResponse, error)
	SetBearer(token string)
	ClearBearer()
}

// Listener получает нового principal (nil — сессия завершена).
type Listener func(*model.User)

// Store — хранилище сессии.
type Store struct {
	api    AuthAPI
	tokens tokenstore.Store
	logger *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	state     State
	principal *model.User
	creds     tokenstore.Credentials
	// gen увеличивается при каждом входе и выходе; результаты операций,
	// начатых в предыдущем поколении, не применяются.
	gen     uint64
	loading bool

	ready       chan struct{}
	restoreOnce sync.Once

	subsMu    sync.Mutex
	subs      map[int]Listener
	nextSubID int
}

// New создаёт хранилище сессии. До RestoreSession Loading() == true.
func New(api AuthAPI, tokens tokenstore.Store, logger *slog.Logger) *Store {
	return &Store{
		api:     api,
		tokens:  tokens,
		logger:  logger.With(slog.String("component", "session")),
		now:     time.Now,
		state:   StateUnauthenticated,
		loading: true,
		ready:   make(chan struct{}),
		subs:    make(map[int]Listener),
	}
}

// State возвращает текущее состояние сессии.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Principal возвращает копию текущего пользователя или nil.
func (s *Store) Principal() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil
	}
	u := *s.principal
	return &u
}

// Loading — true, пока RestoreSession не завершился.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// WaitReady блокируется до завершения RestoreSession или отмены ctx.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe регистрирует слушателя смены principal.
// Слушатели вызываются синхронно, в порядке регистрации не гарантируется.
// Возвращает функцию отписки.
func (s *Store) Subscribe(fn func(*model.User)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(user *model.User) {
	s.subsMu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range listeners {
		if user == nil {
			fn(nil)
			continue
		}
		u := *user
		fn(&u)
	}
}

// transition выполняет переход состояния. Вызывается под s.mu.
func (s *Store) transition(to State) error {
	if !canTransition(s.state, to) {
		return &StateError{From: s.state, To: to}
	}
	s.logger.Debug("Переход состояния сессии",
		slog.String("from", string(s.state)),
		slog.String("to", string(to)),
	)
	s.state = to
	return nil
}

// Login выполняет вход. Активная сессия предварительно завершается.
// При отказе сервера возвращает *AuthError, principal остаётся nil.
func (s *Store) Login(ctx context.Context, email, password string) (*model.User, error) {
	s.mu.Lock()
	if s.state == StateAuthenticating {
		s.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	s.mu.Unlock()

	if s.Principal() != nil {
		s.Logout()
	}

	s.mu.Lock()
	if err := s.transition(StateAuthenticating); err != nil {
		s.mu.Unlock()
		if s.State() == StateAuthenticating {
			return nil, ErrLoginInProgress
		}
		return nil, err
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	resp, err := s.api.Login(ctx, email, password)
	if err == nil {
		err = resp.User.Validate()
		if err != nil {
			err = &AuthError{Message: "Профиль пользователя некорректен: " + err.Error(), Err: err}
		}
	}
	if err != nil {
		s.mu.Lock()
		if s.gen == gen {
			_ = s.transition(StateUnauthenticated)
		}
		s.mu.Unlock()
		return nil, loginError(err)
	}

	creds := tokenstore.Credentials{AccessToken: resp.Token, RefreshToken: resp.RefreshToken}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil, ErrSessionReplaced
	}
	if err := s.tokens.Save(creds); err != nil {
		s.logger.Warn("Не удалось сохранить учётные данные, сессия не переживёт перезапуск",
			slog.String("error", err.Error()),
		)
	}
	s.api.SetBearer(creds.AccessToken)
	s.creds = creds
	user := resp.User
	s.principal = &user
	_ = s.transition(StateAuthenticated)
	s.mu.Unlock()

	s.logger.Info("Вход выполнен",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)
	s.notify(&user)
	return s.Principal(), nil
}

// loginError приводит ошибку входа к *AuthError, если сервер отклонил запрос.
func loginError(err error) error {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = defaultAuthMessage
		}
		return &AuthError{Message: msg, Err: err}
	}
	if errors.Is(err, apiclient.ErrStaleSession) {
		return ErrSessionReplaced
	}
	return err
}

// Logout завершает сессию: удаляет сохранённые учётные данные, снимает
// bearer с клиента, обнуляет principal и синхронно уведомляет слушателей.
// Никогда не возвращает ошибку: сбой хранилища только логируется.
func (s *Store) Logout() {
	s.endSession(StateLoggedOut)
	s.logger.Info("Выход выполнен")
}

// endSession очищает учётные данные и переводит сессию через
// переходное состояние reason в unauthenticated.
func (s *Store) endSession(reason State) {
	s.mu.Lock()
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("Не удалось удалить сохранённые учётные данные",
			slog.String("error", err.Error()),
		)
	}
	s.api.ClearBearer()
	s.creds = tokenstore.Credentials{}
	hadPrincipal := s.principal != nil
	s.principal = nil
	s.gen++
	if s.state != StateUnauthenticated {
		if err := s.transition(reason); err != nil {
			s.logger.Debug("Пропуск промежуточного состояния", slog.String("error", err.Error()))
		}
		s.state = StateUnauthenticated
	}
	s.mu.Unlock()

	if hadPrincipal {
		s.notify(nil)
	}
}

// RestoreSession восстанавливает сессию из сохранённых учётных данных.
// Выполняется один раз; повторные вызовы ничего не делают.
// Всегда завершается с Loading() == false.
func (s *Store) RestoreSession(ctx context.Context) {
	s.restoreOnce.Do(func() {
		defer func() {
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
			close(s.ready)
		}()
		s.restore(ctx)
	})
}

func (s *Store) restore(ctx context.Context) {
	creds, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("Не удалось прочитать сохранённые учётные данные",
			slog.String("error", err.Error()),
		)
		s.clearStored()
		return
	}
	if creds.AccessToken == "" {
		return
	}

	s.mu.Lock()
	if err := s.transition(StateAuthenticating); err != nil {
		s.mu.Unlock()
		s.logger.Warn("Восстановление сессии пропущено", slog.String("error", err.Error()))
		return
	}
	s.gen++
	gen := s.gen
	s.api.SetBearer(creds.AccessToken)
	s.mu.Unlock()

	user, err := s.api.Profile(ctx)
	if err == nil {
		err = user.Validate()
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.api.ClearBearer()
		if clearErr := s.tokens.Clear(); clearErr != nil {
			s.logger.Warn("Не удалось удалить сохранённые учётные данные",
				slog.String("error", clearErr.Error()),
			)
		}
		_ = s.transition(StateUnauthenticated)
		s.mu.Unlock()
		s.logger.Info("Сохранённая сессия недействительна, учётные данные удалены",
			slog.String("error", err.Error()),
		)
		return
	}
	s.creds = creds
	s.principal = user
	_ = s.transition(StateAuthenticated)
	u := *user
	s.mu.Unlock()

	s.logger.Info("Сессия восстановлена",
		slog.String("user_id", u.ID.String()),
		slog.String("role", string(u.Role)),
	)
	s.notify(&u)
}

func (s *Store) clearStored() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("Не удалось удалить сохранённые учётные данные",
			slog.String("error", err.Error()),
		)
	}
}

// RefreshAccessToken обменивает refresh-токен на новый access-токен.
// При неудаче сессия завершается и возвращается *SessionExpiredError.
func (s *Store) RefreshAccessToken(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.creds.RefreshToken
	authenticated := s.state == StateAuthenticated
	gen := s.gen
	s.mu.RUnlock()

	if !authenticated {
		return &SessionExpiredError{Err: errors.New("нет активной сессии")}
	}
	if refreshToken == "" {
		s.endSession(StateExpired)
		return &SessionExpiredError{Err: errors.New("refresh-токен отсутствует")}
	}

	resp, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, apiclient.ErrStaleSession) {
			return ErrSessionReplaced
		}
		s.logger.Warn("Не удалось обновить access-токен, сессия завершена",
			slog.String("error", err.Error()),
		)
		s.endSession(StateExpired)
		return &SessionExpiredError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return ErrSessionReplaced
	}
	s.creds.AccessToken = resp.Token
	if resp.RefreshToken != "" {
		s.creds.RefreshToken = resp.RefreshToken
	}
	if err := s.tokens.Save(s.creds); err != nil {
		s.logger.Warn("Не удалось сохранить обновлённые учётные данные",
			slog.String("error", err.Error()),
		)
	}
	s.api.SetBearer(s.creds.AccessToken)
	s.logger.Debug("Access-токен обновлён")
	return nil
}

// EnsureFresh обновляет access-токен, если это JWT, истекающий в течение
// 30 секунд. Непрозрачные токены не трогаются.
func (s *Store) EnsureFresh(ctx context.Context) error {
	s.mu.RLock()
	token := s.creds.AccessToken
	authenticated := s.state == StateAuthenticated
	s.mu.RUnlock()

	if !authenticated || token == "" {
		return nil
	}
	exp, ok := tokenExpiry(token)
	if !ok {
		return nil
	}
	if s.now().Add(refreshLeeway).Before(exp) {
		return nil
	}
	if err := s.RefreshAccessToken(ctx); err != nil {
		return fmt.Errorf("обновление истекающего токена: %w", err)
	}
	return nil
}

// tokenExpiry извлекает exp из JWT без проверки подписи: ключи подписи
// backend клиенту недоступны, подпись проверяет сервер.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
