// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Консоль мониторит одну зависимость:
//   - backend-api — HTTP checker к health endpoint backend учёта имущества (critical)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для backend API
	"github.com/prometheus/client_golang/prometheus"
)

// BackendDependency — имя зависимости backend API в метриках.
const BackendDependency = "backend-api"

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
//
// Параметры:
//   - serviceID — имя вершины графа текущего приложения ("asset-console")
//   - group — имя группы в метриках (MA_DEPHEALTH_GROUP)
//   - apiURL — базовый URL backend API (MA_API_URL)
//   - healthPath — путь health endpoint относительно apiURL (MA_API_HEALTH_PATH)
//   - checkInterval — интервал проверки (MA_DEPHEALTH_CHECK_INTERVAL)
func NewDephealthService(
	serviceID string,
	group string,
	apiURL string,
	healthPath string,
	checkInterval time.Duration,
	logger *slog.Logger,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, apiURL, healthPath, checkInterval, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	serviceID string,
	group string,
	apiURL string,
	healthPath string,
	checkInterval time.Duration,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, apiURL, healthPath, checkInterval, logger,
		dephealth.WithRegisterer(registerer))
}

func newDephealthService(
	serviceID string,
	group string,
	apiURL string,
	healthPath string,
	checkInterval time.Duration,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	fullPath, err := backendHealthPath(apiURL, healthPath)
	if err != nil {
		return nil, err
	}

	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.HTTP(BackendDependency,
			dephealth.FromURL(apiURL),
			dephealth.WithHTTPHealthPath(fullPath),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(true),
		),
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(serviceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// backendHealthPath объединяет путь базового URL backend и health-путь.
// https://host/api + /health → /api/health
func backendHealthPath(apiURL, healthPath string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("некорректный URL backend %q", apiURL)
	}
	if healthPath == "" {
		healthPath = "/health"
	}
	return strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(healthPath, "/"), nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (backend API)")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// CheckReady реализует проверку готовности для /health/ready.
func (ds *DephealthService) CheckReady() (string, string) {
	return readiness(ds.Health())
}

// readiness переводит состояние зависимостей в статус readiness.
// Пока проверка не выполнялась — degraded.
func readiness(health map[string]bool) (string, string) {
	if len(health) == 0 {
		return "degraded", "проверка backend API ещё не выполнялась"
	}
	for name, ok := range health {
		if strings.HasPrefix(name, BackendDependency) && !ok {
			return "fail", "backend API недоступен"
		}
	}
	return "ok", ""
}
