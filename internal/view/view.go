// Пакет view — табличный вывод списков консоли в терминал (lipgloss/table).
package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/console"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/rbac"
)

// Names — отображение идентификаторов справочников в имена (refcache.Cache).
type Names interface {
	BaseName(id model.ID) string
	AssetTypeName(id model.ID) string
	AssetName(id model.ID) string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// statusColors — цвета статусов.
var statusColors = map[string]lipgloss.Color{
	model.StatusPending:               "11",
	model.StatusApproved:              "10",
	model.PurchaseCancelled:           "8",
	model.TransferRejected:            "9",
	model.AssignmentActive:            "12",
	model.AssignmentPartiallyReturned: "14",
	model.AssignmentLost:              "9",
	model.AssignmentDamaged:           "9",
}

// RenderPage пишет страницу списка таблицей. Колонка «Действия»
// выводится, только если роль может выполнять действия над записями ресурса.
func RenderPage(w io.Writer, page console.Page, names Names) error {
	if page.Error != "" {
		if _, err := fmt.Fprintln(w, errorStyle.Render(page.Error)); err != nil {
			return err
		}
	}

	headers := Headers(page.Resource)
	if page.ShowActions {
		headers = append(headers, "Действия")
	}

	rows := make([][]string, 0, len(page.Rows))
	for _, row := range page.Rows {
		cells := Cells(row.Record, names)
		if page.ShowActions {
			cells = append(cells, formatActions(row.Actions))
		}
		rows = append(rows, cells)
	}

	statusCol := statusColumn(headers)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusCol && row >= 0 && row < len(rows) {
				if c, ok := statusColors[rows[row][col]]; ok {
					return cellStyle.Foreground(c)
				}
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}

	footer := fmt.Sprintf("Страница %d из %d · записей %d", page.Page+1, page.Pages, page.Total)
	if page.Total != page.Unfiltered {
		footer += fmt.Sprintf(" (всего загружено %d)", page.Unfiltered)
	}
	_, err := fmt.Fprintln(w, mutedStyle.Render(footer))
	return err
}

func statusColumn(headers []string) int {
	for i, h := range headers {
		if h == "Статус" {
			return i
		}
	}
	return -1
}

func formatActions(actions []rbac.Action) string {
	if len(actions) == 0 {
		return "—"
	}
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

// Headers возвращает заголовки колонок ресурса.
func Headers(resource model.Resource) []string {
	switch resource {
	case model.ResourceAssets:
		return []string{"ID", "Наименование", "Тип", "База", "Кол-во", "Статус"}
	case model.ResourcePurchases:
		return []string{"ID", "Дата", "Имущество", "База", "Кол-во", "Сумма", "Поставщик", "Статус"}
	case model.ResourceTransfers:
		return []string{"ID", "Дата", "Имущество", "Откуда", "Куда", "Кол-во", "Статус"}
	case model.ResourceAssignments:
		return []string{"ID", "Дата", "Имущество", "База", "Кому", "Кол-во", "Статус"}
	case model.ResourceExpenditures:
		return []string{"ID", "Дата", "Имущество", "База", "Кол-во", "Причина", "Статус"}
	default:
		return []string{"ID", "Статус"}
	}
}

// Cells возвращает значения колонок записи в порядке Headers.
func Cells(rec model.Record, names Names) []string {
	switch r := rec.(type) {
	case model.Asset:
		return []string{r.ID.String(), r.Name, names.AssetTypeName(r.AssetTypeID), names.BaseName(r.BaseID),
			strconv.Itoa(r.Quantity), r.Status}
	case model.Purchase:
		return []string{r.ID.String(), formatDate(r.PurchaseDate), r.AssetName, names.BaseName(r.BaseID),
			strconv.Itoa(r.Quantity), r.TotalCost.StringFixed(2), r.Supplier, r.Status}
	case model.Transfer:
		return []string{r.ID.String(), formatDate(r.TransferDate), assetLabel(r.AssetName, r.AssetID, names),
			names.BaseName(r.FromBaseID), names.BaseName(r.ToBaseID), strconv.Itoa(r.Quantity), r.Status}
	case model.Assignment:
		return []string{r.ID.String(), formatDate(r.AssignmentDate), assetLabel(r.AssetName, r.AssetID, names),
			names.BaseName(r.BaseID), r.AssignedTo, strconv.Itoa(r.Quantity), r.Status}
	case model.Expenditure:
		return []string{r.ID.String(), formatDate(r.ExpenditureDate), assetLabel(r.AssetName, r.AssetID, names),
			names.BaseName(r.BaseID), strconv.Itoa(r.Quantity), r.Reason, r.RecordStatus()}
	default:
		return []string{rec.RecordID().String(), rec.RecordStatus()}
	}
}

// assetLabel — название имущества из записи, иначе из справочника.
func assetLabel(name string, id model.ID, names Names) string {
	if name != "" {
		return name
	}
	return names.AssetName(id)
}

func formatDate(d *openapi_types.Date) string {
	if d == nil {
		return "—"
	}
	return d.Format("02.01.2006")
}
