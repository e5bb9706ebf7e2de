package view

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// RenderDashboard пишет сводку движения имущества и детализацию.
func RenderDashboard(w io.Writer, s *model.DashboardSummary, movements []model.Movement, names Names) error {
	summary := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Показатель", "Количество").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Row("Начальный остаток", strconv.Itoa(s.OpeningBalance)).
		Row("Закупки", strconv.Itoa(s.Purchases)).
		Row("Поступило (перемещения)", strconv.Itoa(s.TransferIn)).
		Row("Убыло (перемещения)", strconv.Itoa(s.TransferOut)).
		Row("Чистое движение", strconv.Itoa(s.NetMovement)).
		Row("Закреплено", strconv.Itoa(s.Assigned)).
		Row("Списано", strconv.Itoa(s.Expended)).
		Row("Конечный остаток", strconv.Itoa(s.ClosingBalance))
	if _, err := fmt.Fprintln(w, summary.String()); err != nil {
		return err
	}
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []string{formatDate(m.Date), m.Type, m.AssetName, names.BaseName(m.BaseID), strconv.Itoa(m.Quantity)})
	}
	details := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Дата", "Тип", "Имущество", "База", "Кол-во").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, details.String())
	return err
}
