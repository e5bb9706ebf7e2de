// Пакет console — сборка клиентских компонентов консоли в порядке
// инициализации: API-клиент → сессия → кэш справочников → списки → операции.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/config"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/listctl"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/mutation"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/refcache"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/session"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/tokenstore"
)

// Console — связанные между собой компоненты клиента.
type Console struct {
	Client  *apiclient.Client
	Session *session.Store
	Refs    *refcache.Cache

	bindings map[model.Resource]Binding
	logger   *slog.Logger
	detach   []func()
}

// Options — параметры сборки консоли.
type Options struct {
	APIURL         string
	HTTPClient     *http.Client
	Tokens         tokenstore.Store
	ReferenceLimit int
	ListLimit      int
	PageSize       int
	LookupTTL      time.Duration
	// Confirmer — подтверждение разрушающих действий (nil — всегда отказ).
	Confirmer mutation.Confirmer
}

// FromConfig строит Options из конфигурации.
func FromConfig(cfg *config.Config, httpClient *http.Client, tokens tokenstore.Store, confirmer mutation.Confirmer) Options {
	return Options{
		APIURL:         cfg.APIURL,
		HTTPClient:     httpClient,
		Tokens:         tokens,
		ReferenceLimit: cfg.ReferenceLimit,
		ListLimit:      cfg.ListLimit,
		PageSize:       cfg.PageSize,
		LookupTTL:      cfg.LookupTTL,
		Confirmer:      confirmer,
	}
}

// New собирает консоль. Сеть не используется до Start.
func New(opts Options, logger *slog.Logger) *Console {
	client := apiclient.New(opts.APIURL, opts.HTTPClient, logger)
	sess := session.New(client, opts.Tokens, logger)
	refs := refcache.New(client, opts.ReferenceLimit, opts.LookupTTL, logger)

	c := &Console{
		Client:   client,
		Session:  sess,
		Refs:     refs,
		bindings: make(map[model.Resource]Binding),
		logger:   logger.With(slog.String("component", "console")),
	}

	q := apiclient.ListQuery{Limit: opts.ListLimit}

	assets := listctl.New[model.Asset](model.ResourceAssets, func(ctx context.Context) ([]model.Asset, error) {
		resp, err := client.ListAssets(ctx, q)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	}, opts.PageSize, logger)
	c.bindings[model.ResourceAssets] = &binding[model.Asset]{resource: model.ResourceAssets, list: assets}

	register(c, client.Purchases(), q, opts, logger)
	register(c, client.Transfers(), q, opts, logger)
	register(c, client.Assignments(), q, opts, logger)
	register(c, client.Expenditures(), q, opts, logger)
	return c
}

// register создаёт список и операции ресурса.
// Изменения закупок, перемещений и закреплений меняют остатки имущества,
// поэтому после них перезагружается и кэш справочников.
func register[T model.Record](c *Console, res *apiclient.Resource[T], q apiclient.ListQuery, opts Options, logger *slog.Logger) {
	list := listctl.New[T](res.Name(), func(ctx context.Context) ([]T, error) {
		resp, err := res.List(ctx, q)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	}, opts.PageSize, logger)

	var reloaders []mutation.Reloader
	if res.Name() != model.ResourceExpenditures {
		reloaders = append(reloaders, assetsReloader{c.Refs})
	}
	flow := mutation.New[T](res.Name(), res, list, c.Session.Principal, opts.Confirmer, logger, reloaders...)
	c.bindings[res.Name()] = &binding[T]{resource: res.Name(), list: list, flow: flow}
}

// assetsReloader перезагружает только имущество в кэше справочников.
type assetsReloader struct {
	refs *refcache.Cache
}

func (r assetsReloader) Load(ctx context.Context) error {
	return r.refs.RefreshAssets(ctx)
}

// Start восстанавливает сессию и подписывает кэш и списки на смену
// пользователя. Блокируется до завершения восстановления.
func (c *Console) Start(ctx context.Context) {
	c.detach = append(c.detach,
		c.Refs.Attach(ctx, c.Session),
		c.Session.Subscribe(func(*model.User) {
			// Область видимости записей зависит от пользователя.
			for _, b := range c.bindings {
				b.Reset()
			}
		}),
	)
	c.Session.RestoreSession(ctx)
}

// Close отписывает компоненты и отключает списки.
func (c *Console) Close() {
	for _, fn := range c.detach {
		fn()
	}
	c.detach = nil
	for _, b := range c.bindings {
		b.Close()
	}
}

// Binding возвращает список и операции ресурса.
func (c *Console) Binding(resource model.Resource) (Binding, error) {
	b, ok := c.bindings[resource]
	if !ok {
		return nil, fmt.Errorf("неизвестный ресурс %q", resource)
	}
	return b, nil
}

// Resources возвращает ресурсы консоли в алфавитном порядке.
func (c *Console) Resources() []model.Resource {
	out := make([]model.Resource, 0, len(c.bindings))
	for r := range c.bindings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
