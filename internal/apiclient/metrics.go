// metrics.go — Prometheus метрики исходящих запросов к backend API.
// Регистрирует метрики: ma_api_requests_total, ma_api_request_duration_seconds.
package apiclient

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// apiRequestsTotal — количество запросов к backend по статусу ответа.
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ma_api_requests_total",
			Help: "Общее количество запросов консоли к backend API",
		},
		[]string{"method", "path", "status"},
	)

	// apiRequestDuration — гистограмма длительности запросов к backend.
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ma_api_request_duration_seconds",
			Help:    "Длительность запросов консоли к backend API в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// unscopedPrefixes — пути без идентификатора во втором сегменте.
var unscopedPrefixes = map[string]bool{
	"auth":      true,
	"dashboard": true,
}

// normalizePath заменяет идентификатор записи на {id}
// для предотвращения роста кардинальности метрик.
// /transfers/42/approve → /transfers/{id}/approve
func normalizePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && !unscopedPrefixes[parts[0]] {
		parts[1] = "{id}"
	}
	return "/" + strings.Join(parts, "/")
}
