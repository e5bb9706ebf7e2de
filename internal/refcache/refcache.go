// Пакет refcache — общий кэш справочников консоли: базы, типы имущества,
// имущество. Загружается при появлении principal и очищается при выходе.
//
// Загрузки, начатые до очистки или до более новой загрузки, не применяются
// (счётчик эпох).
package refcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// lookupCacheSize — максимальное количество запомненных имён.
const lookupCacheSize = 4096

// API — вызовы backend для загрузки справочников.
type API interface {
	ListBases(ctx context.Context, limit int) ([]model.Base, error)
	ListAssetTypes(ctx context.Context, limit int) ([]model.AssetType, error)
	ListAssets(ctx context.Context, q apiclient.AssetQuery) (*model.ListResponse[model.Asset], error)
}

// Subscriber — источник событий смены principal (session.Store).
type Subscriber interface {
	Subscribe(fn func(*model.User)) func()
	Principal() *model.User
}

// Cache — кэш справочников.
type Cache struct {
	api    API
	limit  int
	logger *slog.Logger

	mu         sync.RWMutex
	bases      []model.Base
	assetTypes []model.AssetType
	assets     []model.Asset
	loading    bool
	err        error
	epoch      uint64
	done       chan struct{}

	// names — запомненные имена по ключу "<вид>:<id>".
	names *expirable.LRU[string, string]
}

// New создаёт кэш справочников.
// limit — параметр limit запросов справочников.
// lookupTTL — время жизни запомненных имён.
func New(api API, limit int, lookupTTL time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		api:    api,
		limit:  limit,
		logger: logger.With(slog.String("component", "refcache")),
		names:  expirable.NewLRU[string, string](lookupCacheSize, nil, lookupTTL),
	}
}

// Attach подписывает кэш на смену principal: новый principal запускает
// фоновую загрузку, nil синхронно очищает кэш.
// Если principal уже установлен, загрузка запускается сразу.
// Возвращает функцию отписки.
func (c *Cache) Attach(ctx context.Context, sub Subscriber) func() {
	unsubscribe := sub.Subscribe(func(u *model.User) {
		if u == nil {
			c.Clear()
			return
		}
		c.startLoad(ctx)
	})
	if sub.Principal() != nil {
		c.startLoad(ctx)
	}
	return unsubscribe
}

// startLoad запускает загрузку в фоне. Loading() становится true до возврата.
func (c *Cache) startLoad(ctx context.Context) {
	epoch, done := c.begin()
	go func() {
		if err := c.load(ctx, epoch, done); err != nil {
			c.logger.Warn("Не удалось загрузить справочники", slog.String("error", err.Error()))
		}
	}()
}

// begin открывает новую эпоху загрузки.
func (c *Cache) begin() (uint64, chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.loading = true
	c.done = make(chan struct{})
	return c.epoch, c.done
}

// Load синхронно загружает все три справочника параллельно.
// Успешно загруженные справочники применяются даже при ошибке остальных.
func (c *Cache) Load(ctx context.Context) error {
	epoch, done := c.begin()
	return c.load(ctx, epoch, done)
}

func (c *Cache) load(ctx context.Context, epoch uint64, done chan struct{}) error {
	defer close(done)

	var (
		bases      []model.Base
		assetTypes []model.AssetType
		assets     []model.Asset
		basesErr   error
		typesErr   error
		assetsErr  error
	)

	var g errgroup.Group
	g.SetLimit(3)
	g.Go(func() error {
		bases, basesErr = c.api.ListBases(ctx, c.limit)
		return basesErr
	})
	g.Go(func() error {
		assetTypes, typesErr = c.api.ListAssetTypes(ctx, c.limit)
		return typesErr
	})
	g.Go(func() error {
		resp, err := c.api.ListAssets(ctx, apiclient.AssetQuery{Limit: c.limit})
		if err != nil {
			assetsErr = err
			return err
		}
		assets = resp.Data
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.logger.Debug("Результат загрузки справочников отброшен")
		return nil
	}
	if basesErr == nil {
		c.bases = nonNil(bases)
	}
	if typesErr == nil {
		c.assetTypes = nonNil(assetTypes)
	}
	if assetsErr == nil {
		c.assets = nonNil(assets)
	}
	c.loading = false
	c.err = err
	c.names.Purge()

	if err == nil {
		c.logger.Debug("Справочники загружены",
			slog.Int("bases", len(c.bases)),
			slog.Int("asset_types", len(c.assetTypes)),
			slog.Int("assets", len(c.assets)),
		)
	}
	return err
}

// Wait блокируется до завершения текущей загрузки.
func (c *Cache) Wait(ctx context.Context) error {
	c.mu.RLock()
	done := c.done
	c.mu.RUnlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clear синхронно очищает все справочники. Загрузка в процессе отбрасывается.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.bases = nil
	c.assetTypes = nil
	c.assets = nil
	c.loading = false
	c.err = nil
	c.names.Purge()
}

// RefreshBases перезагружает справочник баз.
func (c *Cache) RefreshBases(ctx context.Context) error {
	epoch := c.currentEpoch()
	bases, err := c.api.ListBases(ctx, c.limit)
	return c.apply(epoch, err, func() { c.bases = nonNil(bases) })
}

// RefreshAssetTypes перезагружает справочник типов имущества.
func (c *Cache) RefreshAssetTypes(ctx context.Context) error {
	epoch := c.currentEpoch()
	types, err := c.api.ListAssetTypes(ctx, c.limit)
	return c.apply(epoch, err, func() { c.assetTypes = nonNil(types) })
}

// RefreshAssets перезагружает список имущества.
func (c *Cache) RefreshAssets(ctx context.Context) error {
	epoch := c.currentEpoch()
	resp, err := c.api.ListAssets(ctx, apiclient.AssetQuery{Limit: c.limit})
	return c.apply(epoch, err, func() { c.assets = nonNil(resp.Data) })
}

func (c *Cache) currentEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// apply применяет результат одиночной перезагрузки, если эпоха не сменилась.
func (c *Cache) apply(epoch uint64, err error, set func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil
	}
	if err != nil {
		c.err = err
		return err
	}
	set()
	c.err = nil
	c.names.Purge()
	return nil
}

// Bases возвращает копию справочника баз.
func (c *Cache) Bases() []model.Base {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Base(nil), c.bases...)
}

// AssetTypes возвращает копию справочника типов имущества.
func (c *Cache) AssetTypes() []model.AssetType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.AssetType(nil), c.assetTypes...)
}

// Assets возвращает копию списка имущества.
func (c *Cache) Assets() []model.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Asset(nil), c.assets...)
}

// Loading — выполняется ли загрузка.
func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err возвращает ошибку последней загрузки.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
