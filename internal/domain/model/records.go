package model

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Resource — тип доменного ресурса; совпадает с сегментом пути API.
type Resource string

// Ресурсы системы.
const (
	ResourceAssets       Resource = "assets"
	ResourcePurchases    Resource = "purchases"
	ResourceTransfers    Resource = "transfers"
	ResourceAssignments  Resource = "assignments"
	ResourceExpenditures Resource = "expenditures"
)

// Resources возвращает все доменные ресурсы.
func Resources() []Resource {
	return []Resource{
		ResourceAssets, ResourcePurchases, ResourceTransfers,
		ResourceAssignments, ResourceExpenditures,
	}
}

// ParseResource преобразует строку в Resource.
func ParseResource(s string) (Resource, bool) {
	for _, r := range Resources() {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Статусы, общие для нескольких ресурсов.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Статусы закупок.
const (
	PurchaseCancelled = "cancelled"
)

// Статусы перемещений.
const (
	TransferRejected = "rejected"
)

// Статусы закреплений.
const (
	AssignmentActive            = "active"
	AssignmentPartiallyReturned = "partially_returned"
	AssignmentReturned          = "returned"
	AssignmentLost              = "lost"
	AssignmentDamaged           = "damaged"
	AssignmentExpended          = "expended"
)

// Статусы имущества.
const (
	AssetAvailable   = "available"
	AssetAssigned    = "assigned"
	AssetMaintenance = "maintenance"
	AssetExpended    = "expended"
)

// ExpenditureRecorded — единственный статус списания.
const ExpenditureRecorded = "recorded"

// dateTime возвращает time.Time для необязательной даты.
func dateTime(d *openapi_types.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

// Asset — единица (партия) имущества на базе.
type Asset struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number,omitempty"`
	AssetTypeID  ID     `json:"asset_type_id"`
	BaseID       ID     `json:"base_id"`
	Quantity     int    `json:"quantity"`
	Status       string `json:"status"`
	Audit
}

func (a Asset) RecordID() ID { return a.ID }
func (a Asset) RecordStatus() string { return a.Status }
func (a Asset) BaseRefs() []ID { return []ID{a.BaseID} }
func (a Asset) RecordDate() time.Time { return a.CreatedAt }

// SearchFields — название и серийный номер.
func (a Asset) SearchFields() []string { return []string{a.Name, a.SerialNumber} }

// Purchase — закупка имущества для базы.
type Purchase struct {
	ID           ID                  `json:"id"`
	BaseID       ID                  `json:"base_id"`
	AssetTypeID  ID                  `json:"asset_type_id"`
	AssetName    string              `json:"asset_name"`
	Quantity     int                 `json:"quantity"`
	UnitCost     decimal.Decimal     `json:"unit_cost"`
	TotalCost    decimal.Decimal     `json:"total_cost"`
	Supplier     string              `json:"supplier,omitempty"`
	PurchaseDate *openapi_types.Date `json:"purchase_date,omitempty"`
	Status       string              `json:"status"`
	Notes        string              `json:"notes,omitempty"`
	Audit
}

func (p Purchase) RecordID() ID { return p.ID }
func (p Purchase) RecordStatus() string { return p.Status }
func (p Purchase) BaseRefs() []ID { return []ID{p.BaseID} }
func (p Purchase) SearchFields() []string { return []string{p.AssetName, p.Supplier, p.Notes} }
func (p Purchase) RecordDate() time.Time { return dateTime(p.PurchaseDate) }

// Transfer — перемещение имущества между базами.
type Transfer struct {
	ID           ID                  `json:"id"`
	AssetID      ID                  `json:"asset_id"`
	AssetName    string              `json:"asset_name,omitempty"`
	FromBaseID   ID                  `json:"from_base_id"`
	ToBaseID     ID                  `json:"to_base_id"`
	Quantity     int                 `json:"quantity"`
	TransferDate *openapi_types.Date `json:"transfer_date,omitempty"`
	Status       string              `json:"status"`
	Notes        string              `json:"notes,omitempty"`
	ApprovedBy   ID                  `json:"approved_by,omitempty"`
	Audit
}

func (t Transfer) RecordID() ID { return t.ID }
func (t Transfer) RecordStatus() string { return t.Status }
func (t Transfer) BaseRefs() []ID { return []ID{t.FromBaseID, t.ToBaseID} }
func (t Transfer) SearchFields() []string { return []string{t.AssetName, t.Notes} }
func (t Transfer) RecordDate() time.Time { return dateTime(t.TransferDate) }

// Assignment — закрепление имущества за военнослужащим.
type Assignment struct {
	ID             ID                  `json:"id"`
	AssetID        ID                  `json:"asset_id"`
	AssetName      string              `json:"asset_name,omitempty"`
	BaseID         ID                  `json:"base_id"`
	AssignedTo     string              `json:"assigned_to"`
	Quantity       int                 `json:"quantity"`
	AssignmentDate *openapi_types.Date `json:"assignment_date,omitempty"`
	ReturnDate     *openapi_types.Date `json:"return_date,omitempty"`
	Purpose        string              `json:"purpose,omitempty"`
	Status         string              `json:"status"`
	Audit
}

func (a Assignment) RecordID() ID { return a.ID }
func (a Assignment) RecordStatus() string { return a.Status }
func (a Assignment) BaseRefs() []ID { return []ID{a.BaseID} }
func (a Assignment) RecordDate() time.Time { return dateTime(a.AssignmentDate) }

// SearchFields — имущество, получатель и цель закрепления.
func (a Assignment) SearchFields() []string {
	return []string{a.AssetName, a.AssignedTo, a.Purpose}
}

// Expenditure — списание израсходованного имущества.
type Expenditure struct {
	ID              ID                  `json:"id"`
	AssetID         ID                  `json:"asset_id"`
	AssetName       string              `json:"asset_name,omitempty"`
	BaseID          ID                  `json:"base_id"`
	AssignmentID    ID                  `json:"assignment_id,omitempty"`
	Quantity        int                 `json:"quantity"`
	ExpenditureDate *openapi_types.Date `json:"expenditure_date,omitempty"`
	Reason          string              `json:"reason,omitempty"`
	Status          string              `json:"status,omitempty"`
	Audit
}

func (e Expenditure) RecordID() ID { return e.ID }
func (e Expenditure) BaseRefs() []ID { return []ID{e.BaseID} }
func (e Expenditure) SearchFields() []string { return []string{e.AssetName, e.Reason} }
func (e Expenditure) RecordDate() time.Time { return dateTime(e.ExpenditureDate) }

// RecordStatus — пустой статус от сервера читается как recorded.
func (e Expenditure) RecordStatus() string {
	if e.Status == "" {
		return ExpenditureRecorded
	}
	return e.Status
}
