package rbac

import (
	"testing"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// principal создаёт пользователя с ролью и базой.
func principal(role model.Role, base string) *model.User {
	u := &model.User{ID: "u-1", Role: role, IsActive: true}
	if base != "" {
		id := model.ID(base)
		u.BaseID = &id
	}
	return u
}

// TestTruthTable_Transfers — полный перебор {роль} × {статус} × {совпадение базы}
// для перемещений.
func TestTruthTable_Transfers(t *testing.T) {
	d := DescriptorFor(model.ResourceTransfers)
	statuses := []string{model.StatusPending, model.StatusApproved, model.TransferRejected}

	for _, role := range model.Roles() {
		for _, status := range statuses {
			for _, match := range []bool{true, false} {
				p := principal(role, "B1")
				rec := model.Transfer{ID: "t-1", FromBaseID: "B2", ToBaseID: "B3", Status: status}
				if match {
					rec.ToBaseID = "B1"
				}

				wantApprove := status == model.StatusPending
				var wantEdit, wantDelete bool
				switch role {
				case model.RoleAdmin:
					wantEdit, wantDelete = true, true
				case model.RoleBaseCommander:
					wantEdit = status == model.StatusPending && match
					wantDelete = (status == model.StatusPending || status == model.TransferRejected) && match
				}

				if got := CanApprove(rec); got != wantApprove {
					t.Errorf("CanApprove(%s, %s, match=%v) = %v, ожидалось %v", role, status, match, got, wantApprove)
				}
				if got := CanEdit(p, d, rec); got != wantEdit {
					t.Errorf("CanEdit(%s, %s, match=%v) = %v, ожидалось %v", role, status, match, got, wantEdit)
				}
				if got := CanDelete(p, d, rec); got != wantDelete {
					t.Errorf("CanDelete(%s, %s, match=%v) = %v, ожидалось %v", role, status, match, got, wantDelete)
				}
			}
		}
	}
}

// TestTruthTable_Purchases — полный перебор для закупок (deletable: pending, cancelled).
func TestTruthTable_Purchases(t *testing.T) {
	d := DescriptorFor(model.ResourcePurchases)
	statuses := []string{model.StatusPending, model.StatusApproved, model.PurchaseCancelled}

	for _, role := range model.Roles() {
		for _, status := range statuses {
			for _, match := range []bool{true, false} {
				p := principal(role, "B1")
				rec := model.Purchase{ID: "p-1", BaseID: "B9", Status: status}
				if match {
					rec.BaseID = "B1"
				}

				var wantEdit, wantDelete bool
				switch role {
				case model.RoleAdmin:
					wantEdit, wantDelete = true, true
				case model.RoleBaseCommander:
					wantEdit = status == model.StatusPending && match
					wantDelete = status != model.StatusApproved && match
				}

				if got := CanEdit(p, d, rec); got != wantEdit {
					t.Errorf("CanEdit(%s, %s, match=%v) = %v, ожидалось %v", role, status, match, got, wantEdit)
				}
				if got := CanDelete(p, d, rec); got != wantDelete {
					t.Errorf("CanDelete(%s, %s, match=%v) = %v, ожидалось %v", role, status, match, got, wantDelete)
				}
			}
		}
	}
}

// TestCommanderApprovedTransfer — командир базы B1 и одобренное перемещение с B1.
func TestCommanderApprovedTransfer(t *testing.T) {
	p := principal(model.RoleBaseCommander, "B1")
	rec := model.Transfer{ID: "t-1", FromBaseID: "B1", ToBaseID: "B2", Status: model.StatusApproved}
	d := DescriptorFor(model.ResourceTransfers)

	if CanEdit(p, d, rec) {
		t.Error("CanEdit должен быть false: статус не pending")
	}
	if CanDelete(p, d, rec) {
		t.Error("CanDelete должен быть false: approved не удаляется")
	}
	if acts := Actions(p, model.ResourceTransfers, rec); len(acts) != 0 {
		t.Errorf("ожидалось отсутствие действий, получено %v", acts)
	}
}

// TestAdminPendingTransfer — admin видит колонку действий и может одобрить/изменить.
func TestAdminPendingTransfer(t *testing.T) {
	p := principal(model.RoleAdmin, "")
	rec := model.Transfer{ID: "t-1", FromBaseID: "B1", ToBaseID: "B2", Status: model.StatusPending}

	if !ShowActionsColumn(p.Role, model.ResourceTransfers) {
		t.Error("admin должен видеть колонку действий")
	}
	if !CanApprove(rec) || !CanEdit(p, DescriptorFor(model.ResourceTransfers), rec) {
		t.Error("admin должен иметь approve и edit для pending")
	}

	want := []Action{ActionEdit, ActionApprove, ActionReject, ActionDelete}
	got := Actions(p, model.ResourceTransfers, rec)
	if len(got) != len(want) {
		t.Fatalf("Actions() = %v, ожидалось %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Actions()[%d] = %s, ожидалось %s", i, got[i], want[i])
		}
	}
}

// TestLogisticsOfficer — логист не видит колонку действий на перемещениях.
func TestLogisticsOfficer(t *testing.T) {
	p := principal(model.RoleLogisticsOfficer, "B1")
	rec := model.Transfer{ID: "t-1", FromBaseID: "B1", Status: model.StatusPending}

	if ShowActionsColumn(p.Role, model.ResourceTransfers) {
		t.Error("логист не должен видеть колонку действий")
	}
	if !RoleAllows(p.Role, model.ResourceTransfers, ActionCreate) {
		t.Error("логист может создавать перемещения")
	}
	if acts := Actions(p, model.ResourceTransfers, rec); len(acts) != 0 {
		t.Errorf("ожидалось отсутствие действий, получено %v", acts)
	}
}

// TestCanExpend проверяет списание по закреплению.
func TestCanExpend(t *testing.T) {
	d := DescriptorFor(model.ResourceAssignments)

	tests := []struct {
		name   string
		p      *model.User
		status string
		base   model.ID
		want   bool
	}{
		{"admin active", principal(model.RoleAdmin, ""), model.AssignmentActive, "B2", true},
		{"admin returned", principal(model.RoleAdmin, ""), model.AssignmentReturned, "B2", false},
		{"командир своей базы", principal(model.RoleBaseCommander, "B1"), model.AssignmentPartiallyReturned, "B1", true},
		{"командир чужой базы", principal(model.RoleBaseCommander, "B1"), model.AssignmentActive, "B2", false},
		{"логист", principal(model.RoleLogisticsOfficer, "B1"), model.AssignmentActive, "B1", false},
		{"без пользователя", nil, model.AssignmentActive, "B1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := model.Assignment{ID: "a-1", BaseID: tt.base, Status: tt.status}
			if got := CanExpend(tt.p, d, rec); got != tt.want {
				t.Errorf("CanExpend() = %v, ожидалось %v", got, tt.want)
			}
		})
	}
}

// TestExpenditures — удаление списаний только для admin.
func TestExpenditures(t *testing.T) {
	rec := model.Expenditure{ID: "e-1", BaseID: "B1"}

	admin := principal(model.RoleAdmin, "")
	if !Allowed(admin, model.ResourceExpenditures, ActionDelete, rec) {
		t.Error("admin может удалять списания")
	}
	cmd := principal(model.RoleBaseCommander, "B1")
	if Allowed(cmd, model.ResourceExpenditures, ActionDelete, rec) {
		t.Error("командир не может удалять списания")
	}
	if !Allowed(cmd, model.ResourceExpenditures, ActionView, rec) {
		t.Error("просмотр доступен всем ролям")
	}
}

// TestParseAction проверяет разбор действий.
func TestParseAction(t *testing.T) {
	if a, ok := ParseAction("expend"); !ok || a != ActionExpend {
		t.Errorf("ParseAction(expend) = %q, %v", a, ok)
	}
	if _, ok := ParseAction("launch"); ok {
		t.Error("launch не является действием")
	}
	if !ActionDelete.IsDestructive() || ActionApprove.IsDestructive() {
		t.Error("неверная классификация разрушающих действий")
	}
}
