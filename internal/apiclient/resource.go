// resource.go — обобщённый CRUD-клиент доменных ресурсов
// (закупки, перемещения, закрепления, списания).
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// Resource — клиент коллекции /<resource>[/:id[/<action>]].
type Resource[T any] struct {
	client   *Client
	resource model.Resource
	// title — название коллекции в родительном падеже для сообщений об ошибках.
	title string
}

// NewResource создаёт клиент коллекции.
func NewResource[T any](c *Client, resource model.Resource, title string) *Resource[T] {
	return &Resource[T]{client: c, resource: resource, title: title}
}

// Name возвращает имя ресурса.
func (r *Resource[T]) Name() model.Resource {
	return r.resource
}

func (r *Resource[T]) collectionPath() string {
	return "/" + string(r.resource)
}

func (r *Resource[T]) itemPath(id model.ID) string {
	return r.collectionPath() + "/" + url.PathEscape(id.String())
}

// ListQuery — параметры запроса списка.
type ListQuery struct {
	BaseID model.ID
	Status string
	Limit  int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.BaseID != "" {
		v.Set("base_id", q.BaseID.String())
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// List возвращает коллекцию в области видимости текущего пользователя.
func (r *Resource[T]) List(ctx context.Context, q ListQuery) (*model.ListResponse[T], error) {
	var resp model.ListResponse[T]
	err := r.client.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     r.collectionPath(),
		Query:    q.values(),
		Fallback: "Не удалось загрузить " + r.title,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []T{}
	}
	return &resp, nil
}

// Get возвращает запись по идентификатору.
func (r *Resource[T]) Get(ctx context.Context, id model.ID) (*T, error) {
	return r.entity(ctx, Request{
		Method:   http.MethodGet,
		Path:     r.itemPath(id),
		Fallback: "Не удалось загрузить запись",
	})
}

// Create создаёт запись.
func (r *Resource[T]) Create(ctx context.Context, input any) (*T, error) {
	return r.entity(ctx, Request{
		Method:   http.MethodPost,
		Path:     r.collectionPath(),
		Body:     input,
		Fallback: "Не удалось создать запись",
	})
}

// Update изменяет запись.
func (r *Resource[T]) Update(ctx context.Context, id model.ID, input any) (*T, error) {
	return r.entity(ctx, Request{
		Method:   http.MethodPut,
		Path:     r.itemPath(id),
		Body:     input,
		Fallback: "Не удалось сохранить изменения",
	})
}

// Delete удаляет запись.
func (r *Resource[T]) Delete(ctx context.Context, id model.ID) error {
	return r.client.Do(ctx, Request{
		Method:   http.MethodDelete,
		Path:     r.itemPath(id),
		Fallback: "Не удалось удалить запись",
	}, nil)
}

// Action выполняет действие над записью: POST /<resource>/:id/<action>.
// body может быть nil.
func (r *Resource[T]) Action(ctx context.Context, id model.ID, action string, body any) error {
	return r.client.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     r.itemPath(id) + "/" + action,
		Body:     body,
		Fallback: fmt.Sprintf("Не удалось выполнить действие %s", action),
	}, nil)
}

func (r *Resource[T]) entity(ctx context.Context, req Request) (*T, error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, req, &raw); err != nil {
		return nil, err
	}
	var out T
	if err := unwrapEntity(raw, &out); err != nil {
		return nil, fmt.Errorf("декодирование записи %s: %w", r.resource, err)
	}
	return &out, nil
}

// Purchases — клиент закупок.
func (c *Client) Purchases() *Resource[model.Purchase] { return c.purchases }

// Transfers — клиент перемещений.
func (c *Client) Transfers() *Resource[model.Transfer] { return c.transfers }

// Assignments — клиент закреплений.
func (c *Client) Assignments() *Resource[model.Assignment] { return c.assignments }

// Expenditures — клиент списаний.
func (c *Client) Expenditures() *Resource[model.Expenditure] { return c.expenditures }
