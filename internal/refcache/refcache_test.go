package refcache

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeAPI — фейковый backend справочников.
type fakeAPI struct {
	mu         sync.Mutex
	bases      []model.Base
	types      []model.AssetType
	assets     []model.Asset
	basesErr   error
	gate       chan struct{} // если не nil — ListBases ждёт закрытия
	lastLimit  int
	basesCalls int
}

func (f *fakeAPI) ListBases(ctx context.Context, limit int) ([]model.Base, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.basesCalls++
	gate := f.gate
	bases, err := f.bases, f.basesErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return bases, err
}

func (f *fakeAPI) ListAssetTypes(ctx context.Context, limit int) ([]model.AssetType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.types, nil
}

func (f *fakeAPI) ListAssets(ctx context.Context, q apiclient.AssetQuery) (*model.ListResponse[model.Asset], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.ListResponse[model.Asset]{Data: f.assets}, nil
}

// fakeSession — источник событий смены principal.
type fakeSession struct {
	principal *model.User
	listeners []func(*model.User)
}

func (s *fakeSession) Subscribe(fn func(*model.User)) func() {
	s.listeners = append(s.listeners, fn)
	return func() { s.listeners = nil }
}

func (s *fakeSession) Principal() *model.User { return s.principal }

func (s *fakeSession) set(u *model.User) {
	s.principal = u
	for _, fn := range s.listeners {
		fn(u)
	}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		bases:  []model.Base{{ID: "1", Name: "Форт-Альфа"}, {ID: "2", Name: "Форт-Браво"}},
		types:  []model.AssetType{{ID: "10", Name: "Стрелковое оружие"}},
		assets: []model.Asset{{ID: "100", Name: "Автомат", BaseID: "1"}},
	}
}

// TestCache_Load проверяет параллельную загрузку справочников.
func TestCache_Load(t *testing.T) {
	api := newFakeAPI()
	c := New(api, 1000, time.Minute, testLogger())

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Bases()) != 2 || len(c.AssetTypes()) != 1 || len(c.Assets()) != 1 {
		t.Errorf("справочники: %d/%d/%d", len(c.Bases()), len(c.AssetTypes()), len(c.Assets()))
	}
	if c.Loading() {
		t.Error("Loading() после загрузки должен быть false")
	}
	if api.lastLimit != 1000 {
		t.Errorf("limit = %d, ожидался 1000", api.lastLimit)
	}
}

// TestCache_PartialFailure проверяет применение успешных справочников.
func TestCache_PartialFailure(t *testing.T) {
	api := newFakeAPI()
	api.basesErr = errors.New("boom")
	c := New(api, 10, time.Minute, testLogger())

	if err := c.Load(context.Background()); err == nil {
		t.Fatal("ожидалась ошибка загрузки баз")
	}
	if c.Err() == nil {
		t.Error("Err() должен вернуть ошибку")
	}
	if len(c.Bases()) != 0 {
		t.Error("базы не должны загрузиться")
	}
	if len(c.AssetTypes()) != 1 || len(c.Assets()) != 1 {
		t.Error("остальные справочники должны загрузиться")
	}
}

// TestCache_AttachLifecycle проверяет загрузку при входе и очистку при выходе.
func TestCache_AttachLifecycle(t *testing.T) {
	api := newFakeAPI()
	c := New(api, 10, time.Minute, testLogger())
	sess := &fakeSession{}
	c.Attach(context.Background(), sess)

	sess.set(&model.User{ID: "1", Role: model.RoleAdmin})
	if err := c.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(c.Bases()) != 2 {
		t.Fatalf("базы не загружены: %v", c.Bases())
	}

	sess.set(nil)
	if len(c.Bases()) != 0 || len(c.AssetTypes()) != 0 || len(c.Assets()) != 0 {
		t.Error("после выхода справочники должны быть очищены синхронно")
	}
}

// TestCache_AttachAuthenticated проверяет загрузку, если principal уже есть.
func TestCache_AttachAuthenticated(t *testing.T) {
	api := newFakeAPI()
	c := New(api, 10, time.Minute, testLogger())
	c.Attach(context.Background(), &fakeSession{principal: &model.User{ID: "1", Role: model.RoleAdmin}})

	if err := c.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(c.Assets()) != 1 {
		t.Error("справочники должны загрузиться сразу")
	}
}

// TestCache_ClearDiscardsInflight проверяет, что загрузка, завершившаяся
// после очистки, не применяется.
func TestCache_ClearDiscardsInflight(t *testing.T) {
	api := newFakeAPI()
	api.gate = make(chan struct{})
	c := New(api, 10, time.Minute, testLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- c.Load(context.Background()) }()

	// Ждём, пока загрузка начнётся.
	for {
		api.mu.Lock()
		started := api.basesCalls > 0
		api.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	c.Clear()
	close(api.gate)
	if err := <-errCh; err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Bases()) != 0 || len(c.Assets()) != 0 {
		t.Error("результат загрузки после Clear должен быть отброшен")
	}
}

// TestCache_Lookups проверяет отображение идентификаторов в имена.
func TestCache_Lookups(t *testing.T) {
	api := newFakeAPI()
	c := New(api, 10, time.Minute, testLogger())
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := c.BaseName("1"); got != "Форт-Альфа" {
		t.Errorf("BaseName = %q", got)
	}
	if got := c.BaseName("1"); got != "Форт-Альфа" {
		t.Errorf("BaseName (повтор) = %q", got)
	}
	if got := c.AssetTypeName("10"); got != "Стрелковое оружие" {
		t.Errorf("AssetTypeName = %q", got)
	}
	if got := c.AssetName("100"); got != "Автомат" {
		t.Errorf("AssetName = %q", got)
	}
	if got := c.BaseName("999"); got != "999" {
		t.Errorf("неизвестная база = %q, ожидался сам идентификатор", got)
	}

	// Переименование видно после перезагрузки.
	api.mu.Lock()
	api.bases = []model.Base{{ID: "1", Name: "Форт-Чарли"}}
	api.mu.Unlock()
	if err := c.RefreshBases(context.Background()); err != nil {
		t.Fatalf("RefreshBases: %v", err)
	}
	if got := c.BaseName("1"); got != "Форт-Чарли" {
		t.Errorf("BaseName после обновления = %q", got)
	}

	c.Clear()
	if got := c.BaseName("1"); got != "1" {
		t.Errorf("BaseName после очистки = %q", got)
	}
}
