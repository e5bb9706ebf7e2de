// Пакет mutation — операции изменения доменных записей: создание,
// изменение, удаление, утверждение, отклонение, отмена, списание.
//
// Каждая операция проверяет роль и предикат записи, допустимость перехода
// статуса, запрашивает подтверждение разрушающих действий, вызывает API
// и после успеха полностью перезагружает список.
package mutation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/lifecycle"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/rbac"
)

// Backend — вызовы API одного ресурса. Реализуется *apiclient.Resource[T].
type Backend[T any] interface {
	Create(ctx context.Context, input any) (*T, error)
	Update(ctx context.Context, id model.ID, input any) (*T, error)
	Delete(ctx context.Context, id model.ID) error
	Action(ctx context.Context, id model.ID, action string, body any) error
}

// List — загруженная коллекция ресурса. Реализуется *listctl.Controller[T].
type List[T any] interface {
	Find(id model.ID) (T, bool)
	Load(ctx context.Context) error
}

// Reloader — дополнительный потребитель, перезагружаемый после успешной
// мутации (например, кэш справочников).
type Reloader interface {
	Load(ctx context.Context) error
}

// Prompt — запрос подтверждения разрушающего действия.
type Prompt struct {
	Resource model.Resource
	Action   rbac.Action
	ID       model.ID
	Message  string
}

// Confirmer запрашивает подтверждение у пользователя.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc — адаптер функции к Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

// Confirm вызывает f.
func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// AlwaysConfirm подтверждает всё (флаг --yes, confirm=true в запросе).
var AlwaysConfirm = ConfirmFunc(func(context.Context, Prompt) (bool, error) { return true, nil })

// targetStatus — статус записи после действия.
var targetStatus = map[rbac.Action]string{
	rbac.ActionApprove: model.StatusApproved,
	rbac.ActionReject:  model.TransferRejected,
	rbac.ActionCancel:  model.PurchaseCancelled,
	rbac.ActionExpend:  model.AssignmentExpended,
}

// Flow — операции изменения одного ресурса.
type Flow[T model.Record] struct {
	resource  model.Resource
	api       Backend[T]
	list      List[T]
	principal func() *model.User
	confirmer Confirmer
	reloaders []Reloader
	logger    *slog.Logger
}

// New создаёт операции ресурса.
// principal возвращает текущего пользователя (session.Store.Principal).
// confirmer == nil отклоняет все разрушающие действия.
func New[T model.Record](
	resource model.Resource,
	api Backend[T],
	list List[T],
	principal func() *model.User,
	confirmer Confirmer,
	logger *slog.Logger,
	reloaders ...Reloader,
) *Flow[T] {
	return &Flow[T]{
		resource:  resource,
		api:       api,
		list:      list,
		principal: principal,
		confirmer: confirmer,
		reloaders: reloaders,
		logger:    logger.With(slog.String("component", "mutation"), slog.String("resource", string(resource))),
	}
}

// Resource возвращает ресурс.
func (f *Flow[T]) Resource() model.Resource {
	return f.resource
}

// WithConfirmer возвращает копию Flow с другим способом подтверждения.
func (f *Flow[T]) WithConfirmer(c Confirmer) *Flow[T] {
	cp := *f
	cp.confirmer = c
	return &cp
}

// Create создаёт запись.
func (f *Flow[T]) Create(ctx context.Context, input any) (*T, error) {
	p := f.principal()
	if p == nil || !rbac.RoleAllows(p.Role, f.resource, rbac.ActionCreate) {
		return nil, f.forbidden(rbac.ActionCreate, "")
	}
	created, err := f.api.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("создание %s: %w", f.resource, err)
	}
	f.logger.Info("Запись создана", slog.String("id", (*created).RecordID().String()))
	f.reload(ctx)
	return created, nil
}

// Update изменяет запись.
func (f *Flow[T]) Update(ctx context.Context, id model.ID, input any) (*T, error) {
	if _, err := f.authorize(ctx, rbac.ActionEdit, id); err != nil {
		return nil, err
	}
	updated, err := f.api.Update(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("изменение %s %s: %w", f.resource, id, err)
	}
	f.logger.Info("Запись изменена", slog.String("id", id.String()))
	f.reload(ctx)
	return updated, nil
}

// Delete удаляет запись после подтверждения.
func (f *Flow[T]) Delete(ctx context.Context, id model.ID) error {
	if _, err := f.authorize(ctx, rbac.ActionDelete, id); err != nil {
		return err
	}
	if err := f.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("удаление %s %s: %w", f.resource, id, err)
	}
	f.logger.Info("Запись удалена", slog.String("id", id.String()))
	f.reload(ctx)
	return nil
}

// Approve утверждает запись в статусе pending.
func (f *Flow[T]) Approve(ctx context.Context, id model.ID) error {
	return f.transition(ctx, rbac.ActionApprove, id, nil)
}

// Reject отклоняет перемещение в статусе pending.
func (f *Flow[T]) Reject(ctx context.Context, id model.ID) error {
	return f.transition(ctx, rbac.ActionReject, id, nil)
}

// Cancel отменяет закупку в статусе pending после подтверждения.
func (f *Flow[T]) Cancel(ctx context.Context, id model.ID) error {
	return f.transition(ctx, rbac.ActionCancel, id, nil)
}

// Expend списывает имущество по закреплению после подтверждения.
func (f *Flow[T]) Expend(ctx context.Context, id model.ID, input model.ExpendInput) error {
	if input.Quantity <= 0 {
		return fmt.Errorf("количество для списания должно быть положительным: %d", input.Quantity)
	}
	return f.transition(ctx, rbac.ActionExpend, id, input)
}

// Do выполняет действие по имени (approve, reject, cancel, expend, delete).
func (f *Flow[T]) Do(ctx context.Context, action rbac.Action, id model.ID, body any) error {
	switch action {
	case rbac.ActionDelete:
		return f.Delete(ctx, id)
	case rbac.ActionExpend:
		input, _ := body.(model.ExpendInput)
		return f.Expend(ctx, id, input)
	case rbac.ActionApprove, rbac.ActionReject, rbac.ActionCancel:
		return f.transition(ctx, action, id, body)
	default:
		return fmt.Errorf("%w: действие %s не выполняется над записью", ErrForbidden, action)
	}
}

func (f *Flow[T]) transition(ctx context.Context, action rbac.Action, id model.ID, body any) error {
	rec, err := f.authorize(ctx, action, id)
	if err != nil {
		return err
	}
	if err := lifecycle.Check(f.resource, rec.RecordStatus(), targetStatus[action]); err != nil {
		return err
	}
	if err := f.api.Action(ctx, id, string(action), body); err != nil {
		return fmt.Errorf("%s %s %s: %w", action, f.resource, id, err)
	}
	f.logger.Info("Действие выполнено",
		slog.String("action", string(action)),
		slog.String("id", id.String()),
	)
	f.reload(ctx)
	return nil
}

// authorize проверяет роль, предикат записи и подтверждение.
func (f *Flow[T]) authorize(ctx context.Context, action rbac.Action, id model.ID) (T, error) {
	var zero T
	p := f.principal()
	if p == nil || !rbac.RoleAllows(p.Role, f.resource, action) {
		return zero, f.forbidden(action, id)
	}
	rec, ok := f.list.Find(id)
	if !ok {
		return zero, fmt.Errorf("%w: %s %s", ErrRecordNotFound, f.resource, id)
	}
	if !rbac.Allowed(p, f.resource, action, rec) {
		// Предикат отклоняет действие из-за статуса — точнее сообщить о переходе.
		if to, ok := targetStatus[action]; ok && !lifecycle.CanTransition(f.resource, rec.RecordStatus(), to) {
			return zero, lifecycle.Check(f.resource, rec.RecordStatus(), to)
		}
		return zero, f.forbidden(action, id)
	}
	if action.IsDestructive() {
		if err := f.confirm(ctx, action, id); err != nil {
			return zero, err
		}
	}
	return rec, nil
}

func (f *Flow[T]) confirm(ctx context.Context, action rbac.Action, id model.ID) error {
	if f.confirmer == nil {
		return ErrNotConfirmed
	}
	ok, err := f.confirmer.Confirm(ctx, Prompt{
		Resource: f.resource,
		Action:   action,
		ID:       id,
		Message:  fmt.Sprintf("Подтвердите действие %s для записи %s #%s", action, f.resource, id),
	})
	if err != nil {
		return fmt.Errorf("запрос подтверждения: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}
	return nil
}

func (f *Flow[T]) forbidden(action rbac.Action, id model.ID) error {
	f.logger.Debug("Действие запрещено",
		slog.String("action", string(action)),
		slog.String("id", id.String()),
	)
	return fmt.Errorf("%w: %s над %s", ErrForbidden, action, f.resource)
}

// reload полностью перезагружает список и дополнительных потребителей.
// Ошибка перезагрузки не отменяет успех мутации: она видна в списке.
func (f *Flow[T]) reload(ctx context.Context) {
	if err := f.list.Load(ctx); err != nil {
		f.logger.Warn("Перезагрузка списка после изменения не удалась",
			slog.String("error", err.Error()),
		)
	}
	for _, r := range f.reloaders {
		if err := r.Load(ctx); err != nil {
			f.logger.Warn("Перезагрузка зависимых данных не удалась",
				slog.String("error", err.Error()),
			)
		}
	}
}
