// lookup.go — отображение идентификаторов справочников в имена.
// Неизвестный идентификатор отображается как есть.
package refcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// Prometheus-метрики поиска имён.
var (
	lookupHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_refcache_lookup_hits_total",
		Help: "Общее количество попаданий в кэш имён справочников.",
	})
	lookupMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_refcache_lookup_misses_total",
		Help: "Общее количество промахов кэша имён справочников.",
	})
)

// BaseName возвращает название базы.
func (c *Cache) BaseName(id model.ID) string {
	return c.lookup("base:", id, func() (string, bool) {
		for _, b := range c.bases {
			if b.ID == id {
				return b.Name, true
			}
		}
		return "", false
	})
}

// AssetTypeName возвращает название типа имущества.
func (c *Cache) AssetTypeName(id model.ID) string {
	return c.lookup("type:", id, func() (string, bool) {
		for _, t := range c.assetTypes {
			if t.ID == id {
				return t.Name, true
			}
		}
		return "", false
	})
}

// AssetName возвращает название имущества.
func (c *Cache) AssetName(id model.ID) string {
	return c.lookup("asset:", id, func() (string, bool) {
		for _, a := range c.assets {
			if a.ID == id {
				return a.Name, true
			}
		}
		return "", false
	})
}

// lookup ищет имя в LRU, при промахе — линейным поиском по справочнику.
// Промахи по справочнику не запоминаются.
func (c *Cache) lookup(kind string, id model.ID, find func() (string, bool)) string {
	if id == "" {
		return ""
	}
	key := kind + id.String()
	if name, ok := c.names.Get(key); ok {
		lookupHitsTotal.Inc()
		return name
	}
	lookupMissesTotal.Inc()

	// Add под блокировкой чтения: Clear не может очистить LRU между поиском и записью.
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := find()
	if !ok {
		return id.String()
	}
	c.names.Add(key, name)
	return name
}
