package rbac

import (
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// roleActions — какие роли могут вызывать действие над ресурсом.
// ActionView доступен всем ролям: видимость строк ограничивает сервер.
var roleActions = map[model.Resource]map[Action][]model.Role{
	model.ResourceAssets: {
		ActionCreate: {model.RoleAdmin},
		ActionEdit:   {model.RoleAdmin},
		ActionDelete: {model.RoleAdmin},
	},
	model.ResourcePurchases: {
		ActionCreate:  {model.RoleAdmin, model.RoleBaseCommander, model.RoleLogisticsOfficer},
		ActionEdit:    {model.RoleAdmin, model.RoleBaseCommander},
		ActionDelete:  {model.RoleAdmin, model.RoleBaseCommander},
		ActionApprove: {model.RoleAdmin, model.RoleBaseCommander},
		ActionCancel:  {model.RoleAdmin, model.RoleBaseCommander},
	},
	model.ResourceTransfers: {
		ActionCreate:  {model.RoleAdmin, model.RoleBaseCommander, model.RoleLogisticsOfficer},
		ActionEdit:    {model.RoleAdmin, model.RoleBaseCommander},
		ActionDelete:  {model.RoleAdmin, model.RoleBaseCommander},
		ActionApprove: {model.RoleAdmin, model.RoleBaseCommander},
		ActionReject:  {model.RoleAdmin, model.RoleBaseCommander},
	},
	model.ResourceAssignments: {
		ActionCreate: {model.RoleAdmin, model.RoleBaseCommander},
		ActionEdit:   {model.RoleAdmin, model.RoleBaseCommander},
		ActionDelete: {model.RoleAdmin, model.RoleBaseCommander},
		ActionExpend: {model.RoleAdmin, model.RoleBaseCommander},
	},
	model.ResourceExpenditures: {
		ActionDelete: {model.RoleAdmin},
	},
}

// RoleAllows проверяет, может ли роль вызывать действие над ресурсом.
func RoleAllows(role model.Role, resource model.Resource, action Action) bool {
	if !role.IsValid() {
		return false
	}
	if action == ActionView {
		return true
	}
	for _, r := range roleActions[resource][action] {
		if r == role {
			return true
		}
	}
	return false
}

// ShowActionsColumn — показывать ли колонку «Действия» в списке ресурса:
// роль может выполнить хотя бы одно действие над записью.
func ShowActionsColumn(role model.Role, resource model.Resource) bool {
	for _, a := range recordActions {
		if RoleAllows(role, resource, a) {
			return true
		}
	}
	return false
}

// Allowed проверяет одно действие над записью: роль и предикат записи.
func Allowed(p *model.User, resource model.Resource, action Action, rec model.Record) bool {
	if p == nil || !RoleAllows(p.Role, resource, action) {
		return false
	}
	d := DescriptorFor(resource)
	switch action {
	case ActionView, ActionCreate:
		return true
	case ActionEdit:
		return CanEdit(p, d, rec)
	case ActionDelete:
		return CanDelete(p, d, rec)
	case ActionApprove, ActionReject, ActionCancel:
		return CanApprove(rec)
	case ActionExpend:
		return CanExpend(p, d, rec)
	default:
		return false
	}
}

// Actions возвращает доступные действия над записью в порядке отображения.
func Actions(p *model.User, resource model.Resource, rec model.Record) []Action {
	var result []Action
	for _, a := range recordActions {
		if Allowed(p, resource, a, rec) {
			result = append(result, a)
		}
	}
	return result
}
