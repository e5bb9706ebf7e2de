package console

import (
	"context"
	"fmt"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/rbac"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/listctl"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/mutation"
)

// Row — запись списка с доступными пользователю действиями.
type Row struct {
	Record  model.Record  `json:"record"`
	Actions []rbac.Action `json:"actions,omitempty"`
}

// Page — страница списка ресурса для отображения.
type Page struct {
	Resource    model.Resource `json:"resource"`
	Rows        []Row          `json:"items"`
	Page        int            `json:"page"`
	Size        int            `json:"size"`
	Pages       int            `json:"pages"`
	Total       int            `json:"total"`
	Unfiltered  int            `json:"unfiltered"`
	ShowActions bool           `json:"show_actions"`
	Loading     bool           `json:"loading"`
	Error       string         `json:"error,omitempty"`
}

// Binding — список и операции одного ресурса без параметра типа,
// для диспетчеризации по имени ресурса (CLI, HTTP).
type Binding interface {
	Resource() model.Resource
	// Load загружает полную коллекцию.
	Load(ctx context.Context) error
	// Loaded — была ли успешная загрузка.
	Loaded() bool
	// Query строит страницу с действиями для пользователя p.
	Query(p *model.User, criteria listctl.Criteria, page, size int) Page
	// Act выполняет действие над записью. confirmer заменяет способ
	// подтверждения для этого вызова (nil — подтверждение по умолчанию).
	Act(ctx context.Context, action rbac.Action, id model.ID, body any, confirmer mutation.Confirmer) error
	Reset()
	Close()
}

type binding[T model.Record] struct {
	resource model.Resource
	list     *listctl.Controller[T]
	flow     *mutation.Flow[T]
}

func (b *binding[T]) Resource() model.Resource { return b.resource }

func (b *binding[T]) Load(ctx context.Context) error { return b.list.Load(ctx) }

func (b *binding[T]) Loaded() bool { return b.list.Loaded() }

func (b *binding[T]) Reset() { b.list.Reset() }

func (b *binding[T]) Close() { b.list.Close() }

func (b *binding[T]) Query(p *model.User, criteria listctl.Criteria, page, size int) Page {
	v := b.list.Query(criteria, page, size)
	out := Page{
		Resource:   b.resource,
		Rows:       make([]Row, 0, len(v.Items)),
		Page:       v.Page,
		Size:       v.Size,
		Pages:      v.Pages,
		Total:      v.Total,
		Unfiltered: v.Unfiltered,
		Loading:    v.Loading,
		Error:      v.Err,
	}
	if p != nil {
		out.ShowActions = rbac.ShowActionsColumn(p.Role, b.resource)
	}
	for _, item := range v.Items {
		row := Row{Record: item}
		if out.ShowActions {
			row.Actions = rbac.Actions(p, b.resource, item)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func (b *binding[T]) Act(ctx context.Context, action rbac.Action, id model.ID, body any, confirmer mutation.Confirmer) error {
	if b.flow == nil {
		return fmt.Errorf("%w: ресурс %s только для просмотра", mutation.ErrForbidden, b.resource)
	}
	flow := b.flow
	if confirmer != nil {
		flow = flow.WithConfirmer(confirmer)
	}
	if !b.list.Loaded() {
		if err := b.list.Load(ctx); err != nil {
			return err
		}
	}
	if action == rbac.ActionEdit {
		_, err := flow.Update(ctx, id, body)
		return err
	}
	return flow.Do(ctx, action, id, body)
}
