// Пакет rbac — вычислитель прав доступа консоли.
// Чистые функции от (principal, запись): какие действия над записью доступны.
//
// Двухуровневая проверка:
//   - роль: RoleAllows — декларативная таблица «роль → действия» по ресурсу,
//     применяется вызывающей стороной до вызова действия;
//   - запись: CanEdit/CanDelete/CanApprove/CanExpend — статус записи
//     и совпадение базы пользователя с базами записи.
//
// Параметры записи задаются дескриптором ресурса (Descriptor).
package rbac

import (
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// Action — действие над записью.
type Action string

// Действия консоли.
const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionExpend  Action = "expend"
)

// recordActions — действия над конкретной записью в порядке отображения.
var recordActions = []Action{
	ActionEdit, ActionApprove, ActionReject, ActionCancel, ActionExpend, ActionDelete,
}

// ParseAction преобразует строку в Action.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionView, ActionCreate, ActionEdit, ActionDelete,
		ActionApprove, ActionReject, ActionCancel, ActionExpend:
		return a, true
	default:
		return "", false
	}
}

// IsDestructive — действия, требующие явного подтверждения перед вызовом API.
func (a Action) IsDestructive() bool {
	return a == ActionDelete || a == ActionExpend || a == ActionCancel
}

// Descriptor — параметры вычисления прав для одного ресурса.
type Descriptor struct {
	Resource model.Resource
	// OpenStatuses — статусы, в которых base_commander может редактировать запись.
	OpenStatuses []string
	// DeletableStatuses — статусы, в которых base_commander может удалить запись.
	DeletableStatuses []string
	// ExpendableStatuses — статусы, из которых допустимо списание.
	ExpendableStatuses []string
}

// descriptors — таблица дескрипторов по ресурсам.
// Базы записи берутся из model.Record.BaseRefs: для перемещений это
// from_base_id и to_base_id, для остальных — base_id.
var descriptors = map[model.Resource]Descriptor{
	model.ResourceTransfers: {
		Resource:          model.ResourceTransfers,
		OpenStatuses:      []string{model.StatusPending},
		DeletableStatuses: []string{model.StatusPending, model.TransferRejected},
	},
	model.ResourcePurchases: {
		Resource:          model.ResourcePurchases,
		OpenStatuses:      []string{model.StatusPending},
		DeletableStatuses: []string{model.StatusPending, model.PurchaseCancelled},
	},
	model.ResourceAssignments: {
		Resource:           model.ResourceAssignments,
		OpenStatuses:       []string{model.AssignmentActive},
		DeletableStatuses:  []string{model.AssignmentActive},
		ExpendableStatuses: []string{model.AssignmentActive, model.AssignmentPartiallyReturned},
	},
	model.ResourceExpenditures: {Resource: model.ResourceExpenditures},
	model.ResourceAssets:       {Resource: model.ResourceAssets},
}

// DescriptorFor возвращает дескриптор ресурса.
// Для неизвестного ресурса — пустой дескриптор (только admin).
func DescriptorFor(resource model.Resource) Descriptor {
	if d, ok := descriptors[resource]; ok {
		return d
	}
	return Descriptor{Resource: resource}
}

// CanApprove — запись ожидает решения (status == pending).
// Роль здесь не проверяется: это делает вызывающая сторона через RoleAllows.
func CanApprove(rec model.Record) bool {
	return rec.RecordStatus() == model.StatusPending
}

// CanEdit: admin — всегда; base_commander — статус открыт и база совпадает;
// остальные роли — нет.
func CanEdit(p *model.User, d Descriptor, rec model.Record) bool {
	return byStatusAndBase(p, d.OpenStatuses, rec)
}

// CanDelete: admin — всегда; base_commander — статус из DeletableStatuses
// и база совпадает; остальные роли — нет.
func CanDelete(p *model.User, d Descriptor, rec model.Record) bool {
	return byStatusAndBase(p, d.DeletableStatuses, rec)
}

// CanExpend: статус из ExpendableStatuses и (admin или base_commander своей базы).
func CanExpend(p *model.User, d Descriptor, rec model.Record) bool {
	if p == nil || !contains(d.ExpendableStatuses, rec.RecordStatus()) {
		return false
	}
	switch p.Role {
	case model.RoleAdmin:
		return true
	case model.RoleBaseCommander:
		return BaseMatches(p, rec)
	default:
		return false
	}
}

// byStatusAndBase — общая форма предикатов CanEdit/CanDelete/CanExpend.
func byStatusAndBase(p *model.User, statuses []string, rec model.Record) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case model.RoleAdmin:
		return true
	case model.RoleBaseCommander:
		return contains(statuses, rec.RecordStatus()) && BaseMatches(p, rec)
	default:
		return false
	}
}

// BaseMatches проверяет, что база пользователя совпадает с одной из баз записи.
func BaseMatches(p *model.User, rec model.Record) bool {
	base := p.Base()
	if base == "" {
		return false
	}
	for _, ref := range rec.BaseRefs() {
		if ref == base {
			return true
		}
	}
	return false
}

// contains проверяет вхождение строки в срез.
func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
