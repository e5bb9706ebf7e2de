package model

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// PurchaseInput — тело запроса создания/изменения закупки.
type PurchaseInput struct {
	BaseID       ID                  `json:"base_id"`
	AssetTypeID  ID                  `json:"asset_type_id"`
	AssetName    string              `json:"asset_name"`
	Quantity     int                 `json:"quantity"`
	UnitCost     decimal.Decimal     `json:"unit_cost"`
	Supplier     string              `json:"supplier,omitempty"`
	PurchaseDate *openapi_types.Date `json:"purchase_date,omitempty"`
	Notes        string              `json:"notes,omitempty"`
}

// TransferInput — тело запроса создания/изменения перемещения.
type TransferInput struct {
	AssetID      ID                  `json:"asset_id"`
	FromBaseID   ID                  `json:"from_base_id"`
	ToBaseID     ID                  `json:"to_base_id"`
	Quantity     int                 `json:"quantity"`
	TransferDate *openapi_types.Date `json:"transfer_date,omitempty"`
	Notes        string              `json:"notes,omitempty"`
}

// AssignmentInput — тело запроса создания/изменения закрепления.
type AssignmentInput struct {
	AssetID        ID                  `json:"asset_id"`
	BaseID         ID                  `json:"base_id"`
	AssignedTo     string              `json:"assigned_to"`
	Quantity       int                 `json:"quantity"`
	AssignmentDate *openapi_types.Date `json:"assignment_date,omitempty"`
	Purpose        string              `json:"purpose,omitempty"`
}

// ExpendInput — тело запроса списания по закреплению (POST /assignments/:id/expend).
type ExpendInput struct {
	Quantity        int                 `json:"quantity"`
	Reason          string              `json:"reason,omitempty"`
	ExpenditureDate *openapi_types.Date `json:"expenditure_date,omitempty"`
}

// Total возвращает итоговую стоимость закупки.
func (p PurchaseInput) Total() decimal.Decimal {
	return p.UnitCost.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
