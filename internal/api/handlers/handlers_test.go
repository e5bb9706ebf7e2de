package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/console"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/tokenstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// backend — поддельный backend API: командир базы B1, два перемещения.
type backend struct {
	mu      sync.Mutex
	status  string
	deleted bool
	expend  map[string]any
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodPost && r.URL.Path == "/auth/login" {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok",
			"user":  map[string]any{"id": 2, "name": "Cmd", "email": "cmd@army.mil", "role": "base_commander", "base_id": "B1"},
		})
		return
	}
	if r.Header.Get("Authorization") != "Bearer tok" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "No token"})
		return
	}

	switch r.Method + " " + r.URL.Path {
	case "GET /auth/profile":
		json.NewEncoder(w).Encode(map[string]any{"id": 2, "name": "Cmd", "email": "cmd@army.mil", "role": "base_commander", "base_id": "B1"})
	case "GET /bases":
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"id": "B1", "name": "Форт-Альфа"}}})
	case "GET /asset-types", "GET /assets", "GET /purchases", "GET /expenditures":
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	case "GET /assignments":
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"id": 7, "status": "active", "base_id": "B1", "asset_id": "A1", "quantity": 5},
		}})
	case "GET /transfers":
		items := []map[string]any{
			{"id": 2, "status": "approved", "from_base_id": "B3", "to_base_id": "B2"},
		}
		if !b.deleted {
			items = append([]map[string]any{{"id": 1, "status": b.status, "from_base_id": "B1", "to_base_id": "B2"}}, items...)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": items})
	case "POST /transfers/1/approve":
		b.status = "approved"
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	case "POST /assignments/7/expend":
		json.NewDecoder(r.Body).Decode(&b.expend)
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	case "DELETE /transfers/1":
		b.deleted = true
		w.WriteHeader(http.StatusNoContent)
	case "GET /dashboard/summary":
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"opening_balance": 10, "closing_balance": 12, "net_movement": 2}})
	case "GET /dashboard/movements":
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"type": "purchase", "asset_name": "Rifle", "base_id": "B1", "quantity": 2}}})
	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
	}
}

// setup собирает консоль поверх поддельного backend и маршрутизатор /api/v1.
func setup(t *testing.T, creds tokenstore.Credentials) (http.Handler, *backend) {
	t.Helper()
	be := &backend{status: "pending"}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	c := console.New(console.Options{
		APIURL:         srv.URL,
		HTTPClient:     srv.Client(),
		Tokens:         tokenstore.NewMemoryStore(creds),
		ReferenceLimit: 100,
		ListLimit:      100,
		PageSize:       10,
		LookupTTL:      time.Minute,
	}, testLogger())
	t.Cleanup(c.Close)
	c.Start(context.Background())

	h := NewAPIHandler(c, 10, testLogger())
	r := chi.NewRouter()
	r.Get("/api/v1/session", h.GetSession)
	r.Post("/api/v1/session", h.Login)
	r.Delete("/api/v1/session", h.Logout)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)
		r.Get("/api/v1/reference", h.GetReference)
		r.Get("/api/v1/dashboard", h.GetDashboard)
		r.Get("/api/v1/views/{resource}", h.ListView)
		r.Post("/api/v1/views/{resource}/{id}/{action}", h.RecordAction)
		r.Delete("/api/v1/views/{resource}/{id}", h.DeleteRecord)
	})
	return r, be
}

func loggedIn() tokenstore.Credentials {
	return tokenstore.Credentials{AccessToken: "tok", RefreshToken: "r"}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// errorCode извлекает код ошибки из стандартного тела ответа.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("тело ошибки не JSON: %v", err)
	}
	return body.Error.Code
}

type pageBody struct {
	Items []struct {
		Record  map[string]any `json:"record"`
		Actions []string       `json:"actions"`
	} `json:"items"`
	Total       int  `json:"total"`
	Unfiltered  int  `json:"unfiltered"`
	ShowActions bool `json:"show_actions"`
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) pageBody {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("статус %d: %s", rec.Code, rec.Body.String())
	}
	var p pageBody
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

// TestSession_LoginLogout проверяет вход, состояние и выход.
func TestSession_LoginLogout(t *testing.T) {
	h, _ := setup(t, tokenstore.Credentials{})

	rec := do(t, h, http.MethodGet, "/api/v1/views/transfers", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("без сессии статус %d, ожидался 401", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/session", `{"email":"cmd@army.mil","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "UNAUTHORIZED" {
		t.Fatalf("неверный пароль: статус %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/session", `{"email":"cmd@army.mil","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("вход: статус %d: %s", rec.Code, rec.Body.String())
	}
	var s sessionResponse
	json.NewDecoder(rec.Body).Decode(&s)
	if !s.Authenticated || s.State != "authenticated" || s.User == nil || s.User.Role != "base_commander" {
		t.Errorf("сессия после входа = %+v", s)
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/session", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("выход: статус %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/v1/session", "")
	json.NewDecoder(rec.Body).Decode(&s)
	if s.Authenticated || s.State != "unauthenticated" {
		t.Errorf("сессия после выхода = %+v", s)
	}
}

// TestLogin_Validation проверяет пустые поля и некорректное тело.
func TestLogin_Validation(t *testing.T) {
	h, _ := setup(t, tokenstore.Credentials{})
	for _, body := range []string{`{"email":"","password":"x"}`, `{"email":"a@b"}`, `not json`} {
		rec := do(t, h, http.MethodPost, "/api/v1/session", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("тело %q: статус %d, ожидался 400", body, rec.Code)
		}
	}
}

// TestListView проверяет фильтрацию и действия по записям.
func TestListView(t *testing.T) {
	h, _ := setup(t, loggedIn())

	p := decodePage(t, do(t, h, http.MethodGet, "/api/v1/views/transfers", ""))
	if p.Total != 2 || !p.ShowActions {
		t.Fatalf("страница = %+v", p)
	}
	if got := strings.Join(p.Items[0].Actions, ","); got != "edit,approve,reject,delete" {
		t.Errorf("действия первой записи = %s", got)
	}

	p = decodePage(t, do(t, h, http.MethodGet, "/api/v1/views/transfers?status=approved", ""))
	if p.Total != 1 || p.Unfiltered != 2 {
		t.Errorf("фильтр по статусу: total=%d unfiltered=%d", p.Total, p.Unfiltered)
	}
}

// TestListView_BadRequest проверяет ошибки параметров и неизвестный ресурс.
func TestListView_BadRequest(t *testing.T) {
	h, _ := setup(t, loggedIn())

	tests := []struct {
		target string
		status int
	}{
		{"/api/v1/views/rockets", http.StatusNotFound},
		{"/api/v1/views/transfers?from=yesterday", http.StatusBadRequest},
		{"/api/v1/views/transfers?size=0", http.StatusBadRequest},
		{"/api/v1/views/transfers?from=2024-02-01&to=2024-01-01", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, tt.target, "")
		if rec.Code != tt.status {
			t.Errorf("%s: статус %d, ожидался %d", tt.target, rec.Code, tt.status)
		}
	}
}

// TestRecordAction_Approve проверяет утверждение и обновлённый список.
func TestRecordAction_Approve(t *testing.T) {
	h, _ := setup(t, loggedIn())

	rec := do(t, h, http.MethodPost, "/api/v1/views/transfers/1/approve", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("approve: статус %d: %s", rec.Code, rec.Body.String())
	}
	p := decodePage(t, do(t, h, http.MethodGet, "/api/v1/views/transfers?status=approved", ""))
	if p.Total != 2 {
		t.Errorf("после утверждения approved записей %d, ожидалось 2", p.Total)
	}

	// Повторное утверждение: запись уже не pending.
	rec = do(t, h, http.MethodPost, "/api/v1/views/transfers/1/approve", "")
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "INVALID_TRANSITION" {
		t.Errorf("повторное утверждение: статус %d", rec.Code)
	}
}

// TestRecordAction_Errors проверяет неизвестное действие, чужую запись и
// ресурс только для просмотра.
func TestRecordAction_Errors(t *testing.T) {
	h, _ := setup(t, loggedIn())

	tests := []struct {
		target string
		status int
		code   string
	}{
		{"/api/v1/views/transfers/1/launch", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"/api/v1/views/transfers/1/delete", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"/api/v1/views/transfers/99/approve", http.StatusNotFound, "NOT_FOUND"},
		{"/api/v1/views/transfers/2/reject", http.StatusConflict, "INVALID_TRANSITION"},
		{"/api/v1/views/assets/1/approve", http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodPost, tt.target, "")
		if rec.Code != tt.status {
			t.Errorf("%s: статус %d, ожидался %d (%s)", tt.target, rec.Code, tt.status, rec.Body.String())
			continue
		}
		if code := errorCode(t, rec); code != tt.code {
			t.Errorf("%s: код %s, ожидался %s", tt.target, code, tt.code)
		}
	}
}

// TestRecordAction_Expend проверяет передачу тела списания.
func TestRecordAction_Expend(t *testing.T) {
	h, be := setup(t, loggedIn())

	rec := do(t, h, http.MethodPost, "/api/v1/views/assignments/7/expend?confirm=true", `{"quantity":3,"reason":"учения"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expend: статус %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPost, "/api/v1/views/assignments/7/expend?confirm=true", `{"quantity":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("нулевое количество: статус %d, ожидался 400", rec.Code)
	}

	be.mu.Lock()
	defer be.mu.Unlock()
	if be.expend["quantity"] != float64(3) || be.expend["reason"] != "учения" {
		t.Errorf("тело списания = %v", be.expend)
	}
}

// TestDeleteRecord проверяет требование подтверждения удаления.
func TestDeleteRecord(t *testing.T) {
	h, be := setup(t, loggedIn())

	rec := do(t, h, http.MethodDelete, "/api/v1/views/transfers/1", "")
	if rec.Code != http.StatusPreconditionRequired || errorCode(t, rec) != "CONFIRMATION_REQUIRED" {
		t.Fatalf("без confirm: статус %d", rec.Code)
	}
	be.mu.Lock()
	deleted := be.deleted
	be.mu.Unlock()
	if deleted {
		t.Fatal("запись удалена без подтверждения")
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/views/transfers/1?confirm=true", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("с confirm: статус %d: %s", rec.Code, rec.Body.String())
	}
	p := decodePage(t, do(t, h, http.MethodGet, "/api/v1/views/transfers", ""))
	if p.Total != 1 {
		t.Errorf("после удаления записей %d, ожидалась 1", p.Total)
	}
}

// TestReference проверяет выдачу справочников.
func TestReference(t *testing.T) {
	h, _ := setup(t, loggedIn())

	rec := do(t, h, http.MethodGet, "/api/v1/reference", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус %d", rec.Code)
	}
	var resp referenceResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Bases) != 1 || resp.Bases[0].Name != "Форт-Альфа" || resp.Error != "" {
		t.Errorf("справочники = %+v", resp)
	}
}

// TestDashboard проверяет объединение сводки и детализации.
func TestDashboard(t *testing.T) {
	h, _ := setup(t, loggedIn())

	rec := do(t, h, http.MethodGet, "/api/v1/dashboard?base_id=B1&from=2024-01-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус %d: %s", rec.Code, rec.Body.String())
	}
	var resp dashboardResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Summary == nil || resp.Summary.ClosingBalance != 12 {
		t.Errorf("сводка = %+v", resp.Summary)
	}
	if len(resp.Movements) != 1 || resp.Movements[0].AssetName != "Rifle" {
		t.Errorf("движение = %+v", resp.Movements)
	}
}

type stubChecker struct{ status, msg string }

func (s stubChecker) CheckReady() (string, string) { return s.status, s.msg }

// TestHealthReady проверяет статусы readiness.
func TestHealthReady(t *testing.T) {
	tests := []struct {
		name    string
		checker ReadinessChecker
		code    int
		status  string
	}{
		{"ok", stubChecker{"ok", ""}, http.StatusOK, "ok"},
		{"degraded", stubChecker{"degraded", "ещё не проверялся"}, http.StatusOK, "degraded"},
		{"fail", stubChecker{"fail", "недоступен"}, http.StatusServiceUnavailable, "fail"},
		{"nil", nil, http.StatusServiceUnavailable, "fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checker)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if rec.Code != tt.code {
				t.Errorf("код %d, ожидался %d", rec.Code, tt.code)
			}
			var resp healthReadyResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp.Status != tt.status || resp.Service != "asset-console" {
				t.Errorf("ответ = %+v", resp)
			}
		})
	}
}

// TestHealthLive проверяет liveness.
func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("код %d", rec.Code)
	}
}
