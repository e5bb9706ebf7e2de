// Пакет server — локальный HTTP-сервер консоли с graceful shutdown.
// Слушает только localhost: сессия консоли одна на процесс.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/api/handlers"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/api/middleware"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/config"
)

// Server — HTTP-сервер консоли.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// NewRouter собирает маршруты и middleware.
// Health и metrics доступны без сессии.
func NewRouter(logger *slog.Logger, api *handlers.APIHandler, health *handlers.HealthHandler) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.Get("/health/live", health.HealthLive)
	router.Get("/health/ready", health.HealthReady)
	router.Get("/metrics", health.GetMetrics)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/session", api.GetSession)
		r.Post("/session", api.Login)
		r.Delete("/session", api.Logout)

		r.Group(func(r chi.Router) {
			r.Use(api.RequireSession)
			r.Get("/reference", api.GetReference)
			r.Get("/dashboard", api.GetDashboard)
			r.Get("/views/{resource}", api.ListView)
			r.Post("/views/{resource}/{id}/{action}", api.RecordAction)
			r.Delete("/views/{resource}/{id}", api.DeleteRecord)
		})
	})
	return router
}

// New создаёт HTTP-сервер на 127.0.0.1:cfg.Port.
func New(cfg *config.Config, logger *slog.Logger, handler http.Handler) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.APITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Addr возвращает адрес прослушивания.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM)
// или отмены ctx. После этого выполняется graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("Контекст сервера отменён")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
