// Пакет model — доменные модели консоли учёта военного имущества.
// Типы повторяют формат ответов backend API (snake_case JSON).
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID — непрозрачный идентификатор записи.
// Backend может отдавать идентификаторы строкой или числом — оба варианта
// приводятся к строке.
type ID string

// UnmarshalJSON принимает строку, число или null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("некорректный идентификатор %s: %w", string(data), err)
		}
		*id = ID(n.String())
		return nil
	}
}

// String возвращает идентификатор как строку.
func (id ID) String() string {
	return string(id)
}

// Record — общий интерфейс доменных записей (имущество, закупки,
// перемещения, закрепления, списания). Используется фильтрами списков
// и вычислителем прав.
type Record interface {
	// RecordID — идентификатор записи.
	RecordID() ID
	// RecordStatus — текущий статус записи.
	RecordStatus() string
	// BaseRefs — базы, к которым относится запись
	// (base_id или from_base_id/to_base_id).
	BaseRefs() []ID
	// SearchFields — поля для свободного текстового поиска.
	SearchFields() []string
	// RecordDate — дата записи для фильтра по диапазону дат.
	RecordDate() time.Time
}

// Pagination — блок пагинации в ответах списков.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
	Pages int `json:"pages,omitempty"`
}

// ListResponse — формат ответа всех list-endpoints: {data, pagination}.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Audit — поля аудита, общие для доменных записей.
type Audit struct {
	CreatedBy ID        `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
