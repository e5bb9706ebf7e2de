package model

import (
	"fmt"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Role — роль пользователя системы.
type Role string

// Роли системы.
const (
	RoleAdmin            Role = "admin"
	RoleBaseCommander    Role = "base_commander"
	RoleLogisticsOfficer Role = "logistics_officer"
)

// IsValid проверяет, является ли роль допустимой.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleBaseCommander, RoleLogisticsOfficer:
		return true
	default:
		return false
	}
}

// Roles возвращает все роли в фиксированном порядке.
func Roles() []Role {
	return []Role{RoleAdmin, RoleBaseCommander, RoleLogisticsOfficer}
}

// User — аутентифицированный пользователь (principal) сессии.
type User struct {
	ID       ID                  `json:"id"`
	Name     string              `json:"name"`
	Email    openapi_types.Email `json:"email"`
	Role     Role                `json:"role"`
	BaseID   *ID                 `json:"base_id,omitempty"`
	IsActive bool                `json:"is_active"`
}

// Validate проверяет инварианты профиля: допустимая роль,
// base_id обязателен для всех ролей, кроме admin.
func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("профиль без идентификатора")
	}
	if !u.Role.IsValid() {
		return fmt.Errorf("недопустимая роль %q", u.Role)
	}
	if u.Role != RoleAdmin && (u.BaseID == nil || *u.BaseID == "") {
		return fmt.Errorf("для роли %s обязателен base_id", u.Role)
	}
	return nil
}

// Base возвращает базу пользователя или пустую строку.
func (u *User) Base() ID {
	if u == nil || u.BaseID == nil {
		return ""
	}
	return *u.BaseID
}
