// Пакет lifecycle — конечные автоматы статусов доменных записей.
//
// Для каждого ресурса задана матрица допустимых переходов:
//   - purchases: pending → approved | cancelled
//   - transfers: pending → approved | rejected
//   - assignments: active → partially_returned | returned | lost | damaged | expended,
//     partially_returned → returned | expended
//   - expenditures, assets — переходы через консоль не выполняются
//
// Из конечного статуса переходов нет.
package lifecycle

import (
	"fmt"
	"sort"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// Коды ошибок перехода.
const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUnknownStatus     = "UNKNOWN_STATUS"
)

// matrix — матрица переходов одного ресурса.
// Ключ — текущий статус, значение — набор допустимых целевых статусов.
type matrix map[string]map[string]bool

// transitions — матрицы переходов по ресурсам.
var transitions = map[model.Resource]matrix{
	model.ResourcePurchases: {
		model.StatusPending:     {model.StatusApproved: true, model.PurchaseCancelled: true},
		model.StatusApproved:    {},
		model.PurchaseCancelled: {},
	},
	model.ResourceTransfers: {
		model.StatusPending:    {model.StatusApproved: true, model.TransferRejected: true},
		model.StatusApproved:   {},
		model.TransferRejected: {},
	},
	model.ResourceAssignments: {
		model.AssignmentActive: {
			model.AssignmentPartiallyReturned: true,
			model.AssignmentReturned:          true,
			model.AssignmentLost:              true,
			model.AssignmentDamaged:           true,
			model.AssignmentExpended:          true,
		},
		model.AssignmentPartiallyReturned: {
			model.AssignmentReturned: true,
			model.AssignmentExpended: true,
		},
		model.AssignmentReturned: {},
		model.AssignmentLost:     {},
		model.AssignmentDamaged:  {},
		model.AssignmentExpended: {},
	},
	model.ResourceExpenditures: {
		model.ExpenditureRecorded: {},
	},
	model.ResourceAssets: {
		model.AssetAvailable:   {},
		model.AssetAssigned:    {},
		model.AssetMaintenance: {},
		model.AssetExpended:    {},
	},
}

// TransitionError — ошибка перехода между статусами.
type TransitionError struct {
	Code     string         // Машиночитаемый код (INVALID_TRANSITION, UNKNOWN_STATUS)
	Resource model.Resource // Ресурс записи
	From     string
	To       string
}

func (e *TransitionError) Error() string {
	if e.Code == CodeUnknownStatus {
		return fmt.Sprintf("%s: неизвестный статус %q для %s", e.Code, e.From, e.Resource)
	}
	return fmt.Sprintf("%s: переход %s → %s недопустим для %s", e.Code, e.From, e.To, e.Resource)
}

// CanTransition проверяет, допустим ли переход from → to для ресурса.
func CanTransition(resource model.Resource, from, to string) bool {
	return Check(resource, from, to) == nil
}

// Check возвращает *TransitionError, если переход from → to недопустим.
func Check(resource model.Resource, from, to string) error {
	m, ok := transitions[resource]
	if !ok {
		return &TransitionError{Code: CodeInvalidTransition, Resource: resource, From: from, To: to}
	}
	targets, ok := m[from]
	if !ok {
		return &TransitionError{Code: CodeUnknownStatus, Resource: resource, From: from, To: to}
	}
	if !targets[to] {
		return &TransitionError{Code: CodeInvalidTransition, Resource: resource, From: from, To: to}
	}
	return nil
}

// IsTerminal проверяет, является ли статус конечным (без исходящих переходов).
// Неизвестный статус считается конечным.
func IsTerminal(resource model.Resource, status string) bool {
	return len(transitions[resource][status]) == 0
}

// Statuses возвращает известные статусы ресурса в алфавитном порядке.
func Statuses(resource model.Resource) []string {
	m := transitions[resource]
	result := make([]string, 0, len(m))
	for s := range m {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// IsValidStatus проверяет, известен ли статус для ресурса.
func IsValidStatus(resource model.Resource, status string) bool {
	_, ok := transitions[resource][status]
	return ok
}
