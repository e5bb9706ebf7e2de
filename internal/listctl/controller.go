// Пакет listctl — контроллеры списков доменных записей: загрузка полной
// коллекции, фильтрация и пагинация на клиенте.
//
// Фильтрация выполняется на клиенте для всех коллекций: сервер
// ограничивает выборку областью видимости пользователя, критерии
// применяются к загруженной копии.
package listctl

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/apiclient"
	"github.com/Anshumanv28/Military-Assets-Management-System-frontend/internal/domain/model"
)

// FetchFunc загружает полную коллекцию записей.
type FetchFunc[T model.Record] func(ctx context.Context) ([]T, error)

// View — отфильтрованная страница списка.
type View[T any] struct {
	Items []T
	// Page — индекс страницы с нуля.
	Page  int
	Size  int
	Pages int
	// Total — количество записей после фильтра.
	Total int
	// Unfiltered — количество загруженных записей.
	Unfiltered int
	Criteria   Criteria
	Loading    bool
	// Err — сообщение об ошибке последней загрузки.
	Err string
}

// Controller — контроллер списка одного ресурса.
type Controller[T model.Record] struct {
	resource model.Resource
	fetch    FetchFunc[T]
	logger   *slog.Logger

	mu       sync.RWMutex
	all      []T
	criteria Criteria
	page     int
	size     int
	loading  bool
	err      string
	// gen увеличивается при каждой загрузке и при Close;
	// результат загрузки предыдущего поколения отбрасывается.
	gen    uint64
	closed bool
	loaded bool
}

// New создаёт контроллер списка.
func New[T model.Record](resource model.Resource, fetch FetchFunc[T], pageSize int, logger *slog.Logger) *Controller[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Controller[T]{
		resource: resource,
		fetch:    fetch,
		size:     pageSize,
		logger:   logger.With(slog.String("component", "list"), slog.String("resource", string(resource))),
		all:      []T{},
	}
}

// Resource возвращает ресурс контроллера.
func (c *Controller[T]) Resource() model.Resource {
	return c.resource
}

// Load загружает полную коллекцию. При ошибке предыдущие данные сохраняются,
// сообщение доступно в View().Err. Результат устаревшей загрузки не применяется.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	c.loading = true
	c.mu.Unlock()

	items, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.closed {
		c.logger.Debug("Результат устаревшей загрузки отброшен")
		return nil
	}
	c.loading = false
	if err != nil {
		c.err = apiclient.DisplayMessage(err, "Не удалось загрузить список")
		c.logger.Warn("Ошибка загрузки списка", slog.String("error", err.Error()))
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.all = items
	c.err = ""
	c.loaded = true
	c.clampPage()
	return nil
}

// clampPage переводит на последнюю страницу, если текущая исчезла.
// Вызывается под c.mu.
func (c *Controller[T]) clampPage() {
	total := len(Filter(c.all, c.criteria))
	if last := PageCount(total, c.size) - 1; c.page > last {
		c.page = last
	}
}

// SetFilter заменяет критерии и сбрасывает страницу на первую.
func (c *Controller[T]) SetFilter(criteria Criteria) View[T] {
	c.mu.Lock()
	c.criteria = criteria
	c.page = 0
	c.mu.Unlock()
	return c.View()
}

// SetPage переключает страницу. size <= 0 сохраняет текущий размер;
// смена размера сбрасывает страницу на первую.
func (c *Controller[T]) SetPage(index, size int) View[T] {
	c.mu.Lock()
	if index < 0 {
		index = 0
	}
	if size > 0 && size != c.size {
		c.size = size
		index = 0
	}
	c.page = index
	c.mu.Unlock()
	return c.View()
}

// View возвращает текущую страницу отфильтрованного списка.
func (c *Controller[T]) View() View[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	filtered := Filter(c.all, c.criteria)
	items := Paginate(filtered, c.page, c.size)
	return View[T]{
		Items:      append([]T(nil), items...),
		Page:       c.page,
		Size:       c.size,
		Pages:      PageCount(len(filtered), c.size),
		Total:      len(filtered),
		Unfiltered: len(c.all),
		Criteria:   c.criteria,
		Loading:    c.loading,
		Err:        c.err,
	}
}

// Query строит страницу по произвольным критериям, не меняя состояние
// контроллера. Используется обработчиками HTTP, где каждый запрос несёт
// свои критерии.
func (c *Controller[T]) Query(criteria Criteria, page, size int) View[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if size <= 0 {
		size = c.size
	}
	if page < 0 {
		page = 0
	}
	filtered := Filter(c.all, criteria)
	return View[T]{
		Items:      append([]T(nil), Paginate(filtered, page, size)...),
		Page:       page,
		Size:       size,
		Pages:      PageCount(len(filtered), size),
		Total:      len(filtered),
		Unfiltered: len(c.all),
		Criteria:   criteria,
		Loading:    c.loading,
		Err:        c.err,
	}
}

// Find возвращает запись из загруженной коллекции.
func (c *Controller[T]) Find(id model.ID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.all {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Loaded — была ли хотя бы одна успешная загрузка.
func (c *Controller[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Reset очищает данные и ошибку, отбрасывая загрузку в процессе
// (смена пользователя).
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.all = []T{}
	c.err = ""
	c.loading = false
	c.loaded = false
	c.page = 0
}

// Close отключает контроллер: загрузка в процессе и последующие
// загрузки не применяются.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	c.loading = false
}
