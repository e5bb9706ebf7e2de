package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"MA_API_URL": "https://assets.example.mil/api/",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())
	t.Setenv("MA_TOKEN_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.APIURL != "https://assets.example.mil/api" {
		t.Errorf("APIURL = %q, trailing slash должен быть убран", cfg.APIURL)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("APITimeout = %v, ожидается 30s", cfg.APITimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, ожидается text", cfg.LogFormat)
	}
	if cfg.ReferenceLimit != 1000 || cfg.ListLimit != 1000 {
		t.Errorf("ReferenceLimit/ListLimit = %d/%d, ожидается 1000/1000", cfg.ReferenceLimit, cfg.ListLimit)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, ожидается 10", cfg.PageSize)
	}
	if cfg.Port != 8090 {
		t.Errorf("Port = %d, ожидается 8090", cfg.Port)
	}
	if !strings.HasSuffix(cfg.TokenFile, "session.json") {
		t.Errorf("TokenFile = %q, ожидается путь к session.json", cfg.TokenFile)
	}
	if cfg.APIHealthURL() != "https://assets.example.mil/api/health" {
		t.Errorf("APIHealthURL() = %q", cfg.APIHealthURL())
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envs := minimalEnvs()
	envs["MA_API_TIMEOUT"] = "5s"
	envs["MA_LOG_LEVEL"] = "debug"
	envs["MA_LOG_FORMAT"] = "json"
	envs["MA_TOKEN_FILE"] = "/tmp/tokens.json"
	envs["MA_TOKEN_SECRET"] = "s3cret"
	envs["MA_PAGE_SIZE"] = "25"
	envs["MA_LOOKUP_TTL"] = "1h"
	envs["MA_PORT"] = "9000"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.APITimeout != 5*time.Second {
		t.Errorf("APITimeout = %v, ожидается 5s", cfg.APITimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.TokenFile != "/tmp/tokens.json" || cfg.TokenSecret != "s3cret" {
		t.Errorf("TokenFile/TokenSecret = %q/%q", cfg.TokenFile, cfg.TokenSecret)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, ожидается 25", cfg.PageSize)
	}
	if cfg.LookupTTL != time.Hour {
		t.Errorf("LookupTTL = %v, ожидается 1h", cfg.LookupTTL)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, ожидается 9000", cfg.Port)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"нет API URL", "MA_API_URL", ""},
		{"некорректный URL", "MA_API_URL", "not a url"},
		{"некорректный таймаут", "MA_API_TIMEOUT", "soon"},
		{"отрицательный таймаут", "MA_API_TIMEOUT", "-1s"},
		{"неизвестный уровень логов", "MA_LOG_LEVEL", "verbose"},
		{"неизвестный формат логов", "MA_LOG_FORMAT", "xml"},
		{"страница вне диапазона", "MA_PAGE_SIZE", "0"},
		{"лимит вне диапазона", "MA_REFERENCE_LIMIT", "20000"},
		{"порт не число", "MA_PORT", "http"},
		{"health path без слэша", "MA_API_HEALTH_PATH", "health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, minimalEnvs())
			t.Setenv(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("ожидалась ошибка для %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: slog.LevelWarn, LogFormat: "json"}

	logger := SetupLogger(cfg, &buf)
	logger.Info("не должно попасть в вывод")
	logger.Warn("предупреждение")

	out := buf.String()
	if strings.Contains(out, "не должно попасть") {
		t.Error("сообщение уровня info не должно выводиться при уровне warn")
	}
	if !strings.Contains(out, `"msg":"предупреждение"`) {
		t.Errorf("ожидалась JSON-запись предупреждения, получено: %s", out)
	}
}
