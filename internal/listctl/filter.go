package listctl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// Criteria — критерии фильтрации списка. Нулевое значение не фильтрует.
type Criteria struct {
	BaseID model.ID
	Status string
	// Text — подстрока без учёта регистра по полям поиска записи.
	Text string
	// From, To — границы даты записи включительно.
	From *openapi_types.Date
	To   *openapi_types.Date
}

// IsZero — критерии пусты.
func (c Criteria) IsZero() bool {
	return c.BaseID == "" && c.Status == "" && strings.TrimSpace(c.Text) == "" &&
		c.From == nil && c.To == nil
}

// Filter возвращает записи, удовлетворяющие критериям, сохраняя порядок.
// Пустые критерии возвращают копию входа.
func Filter[T model.Record](items []T, c Criteria) []T {
	out := make([]T, 0, len(items))
	text := strings.ToLower(strings.TrimSpace(c.Text))
	for _, item := range items {
		if matches(item, c, text) {
			out = append(out, item)
		}
	}
	return out
}

func matches(r model.Record, c Criteria, text string) bool {
	if c.BaseID != "" && !hasBase(r.BaseRefs(), c.BaseID) {
		return false
	}
	if c.Status != "" && r.RecordStatus() != c.Status {
		return false
	}
	if text != "" && !containsText(r, text) {
		return false
	}
	if c.From != nil || c.To != nil {
		d := r.RecordDate()
		if d.IsZero() {
			return false
		}
		day := truncateDay(d)
		if c.From != nil && day.Before(truncateDay(c.From.Time)) {
			return false
		}
		if c.To != nil && day.After(truncateDay(c.To.Time)) {
			return false
		}
	}
	return true
}

func hasBase(refs []model.ID, base model.ID) bool {
	for _, ref := range refs {
		if ref == base {
			return true
		}
	}
	return false
}

func containsText(r model.Record, text string) bool {
	if strings.Contains(strings.ToLower(r.RecordID().String()), text) {
		return true
	}
	for _, field := range r.SearchFields() {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Paginate возвращает страницу index (с нуля) размера size.
// size <= 0 — без пагинации. Страница за пределами — пустой срез.
func Paginate[T any](items []T, index, size int) []T {
	if size <= 0 {
		return items
	}
	if index < 0 {
		index = 0
	}
	start := index * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// PageCount возвращает количество страниц для total записей.
func PageCount(total, size int) int {
	if size <= 0 || total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ParseCriteria разбирает критерии из параметров запроса:
// base_id, status, q, from, to (YYYY-MM-DD).
func ParseCriteria(v url.Values) (Criteria, error) {
	c := Criteria{
		BaseID: model.ID(strings.TrimSpace(v.Get("base_id"))),
		Status: strings.TrimSpace(v.Get("status")),
		Text:   v.Get("q"),
	}
	var err error
	if c.From, err = parseDate(v.Get("from")); err != nil {
		return Criteria{}, fmt.Errorf("параметр from: %w", err)
	}
	if c.To, err = parseDate(v.Get("to")); err != nil {
		return Criteria{}, fmt.Errorf("параметр to: %w", err)
	}
	if c.From != nil && c.To != nil && c.To.Before(c.From.Time) {
		return Criteria{}, fmt.Errorf("дата to раньше from")
	}
	return c, nil
}

// ParsePage разбирает page (с нуля) и size; пустые значения — defaults.
func ParsePage(v url.Values, defaultSize int) (int, int, error) {
	page, size := 0, defaultSize
	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("некорректный page: %q", s)
		}
		page = n
	}
	if s := v.Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			return 0, 0, fmt.Errorf("некорректный size: %q (допустимо 1..500)", s)
		}
		size = n
	}
	return page, size, nil
}

func parseDate(s string) (*openapi_types.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(openapi_types.DateFormat, s)
	if err != nil {
		return nil, fmt.Errorf("ожидается дата YYYY-MM-DD: %q", s)
	}
	return &openapi_types.Date{Time: t}, nil
}
