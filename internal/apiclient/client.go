// Пакет apiclient — HTTP-клиент консоли к backend API учёта имущества.
//
// Единая точка вызова Do: добавляет Authorization: Bearer при наличии токена,
// X-Request-ID, нормализует ошибки в *APIError / *NetworkError.
// Автоматических повторов нет. Автоматического refresh-and-retry на 401 нет:
// обновление токена выполняет только Session Store по явному вызову.
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// maxErrorBody — сколько байт тела ошибки читается для извлечения сообщения.
const maxErrorBody = 64 << 10

// Request — параметры одного вызова backend API.
type Request struct {
	Method string
	// Path — путь относительно базового URL, например "/transfers/42/approve".
	Path string
	// Body — тело запроса (сериализуется в JSON), nil — без тела.
	Body any
	// Query — параметры строки запроса.
	Query url.Values
	// Fallback — сообщение об ошибке, если сервер не прислал своё.
	Fallback string
}

// Client — HTTP-клиент к backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	// Bearer-токен: единственный писатель — Session Store.
	mu     sync.RWMutex
	bearer string
	// epoch увеличивается при каждой смене bearer.
	epoch uint64

	purchases    *Resource[model.Purchase]
	transfers    *Resource[model.Transfer]
	assignments  *Resource[model.Assignment]
	expenditures *Resource[model.Expenditure]
}

// New создаёт клиент к backend API.
// baseURL — базовый URL (например, https://assets.example.mil/api).
// httpClient — HTTP-клиент (nil — стандартный с таймаутом 30s).
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "api_client")),
	}
	c.purchases = NewResource[model.Purchase](c, model.ResourcePurchases, "закупки")
	c.transfers = NewResource[model.Transfer](c, model.ResourceTransfers, "перемещения")
	c.assignments = NewResource[model.Assignment](c, model.ResourceAssignments, "закрепления")
	c.expenditures = NewResource[model.Expenditure](c, model.ResourceExpenditures, "списания")
	return c
}

// NewHTTPClient создаёт HTTP-клиент с таймаутом и, при необходимости,
// кастомным CA-сертификатом.
func NewHTTPClient(timeout time.Duration, caCertPath string) (*http.Client, error) {
	client := &http.Client{Timeout: timeout}
	if caCertPath == "" {
		return client, nil
	}

	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("CA-сертификат %s не содержит PEM-блоков", caCertPath)
	}

	client.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    caCertPool,
			MinVersion: tls.VersionTLS12,
		},
	}
	return client, nil
}

// BaseURL возвращает базовый URL backend.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetBearer устанавливает токен для всех последующих запросов.
func (c *Client) SetBearer(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = token
	c.epoch++
}

// ClearBearer убирает токен. Запросы, начатые до вызова, завершатся
// с ErrStaleSession.
func (c *Client) ClearBearer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = ""
	c.epoch++
}

// HasBearer — установлен ли токен.
func (c *Client) HasBearer() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer != ""
}

// credential возвращает текущий токен и эпоху.
func (c *Client) credential() (string, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer, c.epoch
}

// currentEpoch возвращает текущую эпоху учётных данных.
func (c *Client) currentEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// Do выполняет запрос и декодирует JSON-ответ в out (nil — тело игнорируется).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	token, epoch := c.credential()
	op := req.Method + " " + req.Path

	reqURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		reqURL += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("сериализация тела запроса %s: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("создание запроса %s: %w", op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	metricPath := normalizePath(req.Path)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	apiRequestDuration.WithLabelValues(req.Method, metricPath).Observe(time.Since(start).Seconds())
	if err != nil {
		apiRequestsTotal.WithLabelValues(req.Method, metricPath, "error").Inc()
		c.logger.Debug("Сетевая ошибка запроса к API",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	apiRequestsTotal.WithLabelValues(req.Method, metricPath, strconv.Itoa(resp.StatusCode)).Inc()

	// Ответ на запрос со сменившимися учётными данными не применяется
	if c.currentEpoch() != epoch {
		c.logger.Debug("Ответ отброшен: учётные данные сменились во время запроса",
			slog.String("op", op),
		)
		return ErrStaleSession
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			HTTPStatus: resp.StatusCode,
			Message:    errorMessage(body, resp.StatusCode, req.Fallback),
		}
		c.logger.Debug("API вернул ошибку",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("декодирование ответа %s: %w", op, err)
	}
	return nil
}

// unwrapEntity декодирует одиночную сущность, принимая как «голый» объект,
// так и обёртку {"data": {...}} или {"user": {...}}.
func unwrapEntity(raw json.RawMessage, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		for _, key := range []string{"data", "user"} {
			if inner, ok := envelope[key]; ok {
				inner = bytes.TrimSpace(inner)
				if len(inner) > 0 && inner[0] == '{' {
					return json.Unmarshal(inner, out)
				}
			}
		}
	}
	return json.Unmarshal(raw, out)
}
