// Пакет config — загрузка и валидация конфигурации консоли
// из переменных окружения (префикс MA_).
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации консоли.
type Config struct {
	// --- Backend API ---

	// Базовый URL backend API (без trailing slash)
	APIURL string
	// Таймаут HTTP-запросов к backend
	APITimeout time.Duration
	// Путь к CA-сертификату для TLS-соединений с backend (опционально)
	CACertPath string
	// Путь health endpoint backend для мониторинга зависимостей
	APIHealthPath string

	// --- Сессия ---

	// Файл, в котором хранятся access/refresh токены
	TokenFile string
	// Секрет шифрования файла токенов (пустой — файл не шифруется)
	TokenSecret string

	// --- Логирование ---

	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Списки и справочники ---

	// Лимит выборки справочников (базы, типы, имущество), считается «всё»
	ReferenceLimit int
	// Лимит выборки полной коллекции для списков
	ListLimit int
	// Размер страницы списков по умолчанию
	PageSize int
	// Время жизни кэша имён в справочниках
	LookupTTL time.Duration

	// --- Локальный сервер консоли ---

	// Порт HTTP-сервера (asset-console serve)
	Port int
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
	// Группа в метриках topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Backend API ---

	// MA_API_URL — обязательный
	cfg.APIURL, err = getEnvRequired("MA_API_URL")
	if err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if u, parseErr := url.Parse(cfg.APIURL); parseErr != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("MA_API_URL: некорректный URL %q", cfg.APIURL)
	}

	// MA_API_TIMEOUT — таймаут запросов (по умолчанию 30s)
	cfg.APITimeout, err = getEnvDuration("MA_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MA_API_TIMEOUT: %w", err)
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("MA_API_TIMEOUT: значение должно быть положительным")
	}

	// MA_CA_CERT_PATH — путь к CA-сертификату (опционально)
	cfg.CACertPath = getEnvDefault("MA_CA_CERT_PATH", "")

	// MA_API_HEALTH_PATH — health endpoint backend (по умолчанию /health)
	cfg.APIHealthPath = getEnvDefault("MA_API_HEALTH_PATH", "/health")
	if !strings.HasPrefix(cfg.APIHealthPath, "/") {
		return nil, fmt.Errorf("MA_API_HEALTH_PATH: путь должен начинаться с /")
	}

	// --- Сессия ---

	// MA_TOKEN_FILE — файл токенов (по умолчанию ~/.config/asset-console/session.json)
	cfg.TokenFile = getEnvDefault("MA_TOKEN_FILE", defaultTokenFile())

	// MA_TOKEN_SECRET — секрет шифрования файла токенов (опционально)
	cfg.TokenSecret = getEnvDefault("MA_TOKEN_SECRET", "")

	// --- Логирование ---

	// MA_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("MA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("MA_LOG_LEVEL: %w", err)
	}

	// MA_LOG_FORMAT — формат логов (по умолчанию text)
	cfg.LogFormat = getEnvDefault("MA_LOG_FORMAT", "text")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("MA_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Списки и справочники ---

	// MA_REFERENCE_LIMIT — лимит выборки справочников (по умолчанию 1000)
	cfg.ReferenceLimit, err = getEnvIntRange("MA_REFERENCE_LIMIT", 1000, 1, 10000)
	if err != nil {
		return nil, err
	}

	// MA_LIST_LIMIT — лимит выборки коллекций (по умолчанию 1000)
	cfg.ListLimit, err = getEnvIntRange("MA_LIST_LIMIT", 1000, 1, 10000)
	if err != nil {
		return nil, err
	}

	// MA_PAGE_SIZE — размер страницы (по умолчанию 10)
	cfg.PageSize, err = getEnvIntRange("MA_PAGE_SIZE", 10, 1, 500)
	if err != nil {
		return nil, err
	}

	// MA_LOOKUP_TTL — время жизни кэша имён (по умолчанию 30m)
	cfg.LookupTTL, err = getEnvDuration("MA_LOOKUP_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MA_LOOKUP_TTL: %w", err)
	}

	// --- Локальный сервер консоли ---

	// MA_PORT — порт HTTP-сервера (по умолчанию 8090)
	cfg.Port, err = getEnvIntRange("MA_PORT", 8090, 1, 65535)
	if err != nil {
		return nil, err
	}

	// MA_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("MA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MA_SHUTDOWN_TIMEOUT: %w", err)
	}

	// MA_DEPHEALTH_GROUP — группа topologymetrics (по умолчанию asset-console)
	cfg.DephealthGroup = getEnvDefault("MA_DEPHEALTH_GROUP", "asset-console")

	// MA_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("MA_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MA_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// APIHealthURL возвращает полный URL health endpoint backend.
func (c *Config) APIHealthURL() string {
	return c.APIURL + c.APIHealthPath
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
// Логи пишутся в w (для CLI — stderr, чтобы не смешиваться с выводом таблиц).
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// defaultTokenFile — путь файла токенов по умолчанию.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "asset-console", "session.json")
}

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvIntRange — getEnvInt с проверкой диапазона [lo, hi].
func getEnvIntRange(key string, defaultVal, lo, hi int) (int, error) {
	n, err := getEnvInt(key, defaultVal)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s: значение %d вне допустимого диапазона %d-%d", key, n, lo, hi)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
