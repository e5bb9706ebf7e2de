package model

import openapi_types "github.com/oapi-codegen/runtime/types"

// DashboardSummary — сводка движения имущества (GET /dashboard/summary).
type DashboardSummary struct {
	OpeningBalance int `json:"opening_balance"`
	ClosingBalance int `json:"closing_balance"`
	NetMovement    int `json:"net_movement"`
	Purchases      int `json:"purchases"`
	TransferIn     int `json:"transfer_in"`
	TransferOut    int `json:"transfer_out"`
	Assigned       int `json:"assigned"`
	Expended       int `json:"expended"`
}

// Movement — строка детализации движения (GET /dashboard/movements).
type Movement struct {
	Type      string              `json:"type"`
	AssetName string              `json:"asset_name"`
	BaseID    ID                  `json:"base_id"`
	Quantity  int                 `json:"quantity"`
	Date      *openapi_types.Date `json:"date,omitempty"`
}
