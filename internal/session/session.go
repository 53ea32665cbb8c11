package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agamariel/orderdesk/internal/api"
	"github.com/agamariel/orderdesk/internal/clock"
	"github.com/agamariel/orderdesk/internal/models"
)

var (
	ErrDuplicateProduct = errors.New("product already added to order")
	ErrUnknownProduct   = errors.New("product not found in catalog")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrEmptyOrderNumber = errors.New("order number is required")
	ErrSaveInProgress   = errors.New("save already in progress")
	ErrNotLoaded        = errors.New("session is still loading")
)

// State состояние сессии редактирования.
type State int

const (
	// StateLoading сессия ждёт загрузки существующего заказа.
	StateLoading State = iota
	// StateReady сессия готова к редактированию.
	StateReady
	// StateSaving запрос на сохранение в полёте; повторное сохранение блокируется.
	StateSaving
	// StateSaved заказ сохранён, сессия завершена.
	StateSaved
)

// Session рабочая копия одного заказа: поля шапки, позиции и каталог для подбора.
// Все мутации происходят в памяти; бэкенд трогается только в Save.
type Session struct {
	orders api.OrdersClient
	clk    clock.Clock

	state       State
	id          int64 // 0 — заказ ещё не создан
	orderNumber string
	date        string
	status      models.OrderStatus
	items       []models.OrderItem
	catalog     []models.Product
}

// New создаёт сессию нового заказа: сегодняшняя дата, статус Pending, без позиций.
func New(orders api.OrdersClient, clk clock.Clock) *Session {
	return &Session{
		orders: orders,
		clk:    clk,
		state:  StateReady,
		date:   clk.Now().Format(models.DateLayout),
		status: models.OrderStatusPending,
	}
}

// NewForOrder создаёт сессию редактирования существующего заказа.
// Сессия остаётся в StateLoading, пока вызывающий не передаст загруженный заказ в Hydrate.
func NewForOrder(orders api.OrdersClient, clk clock.Clock, id int64) *Session {
	s := New(orders, clk)
	s.state = StateLoading
	s.id = id
	return s
}

// Hydrate заполняет сессию из загруженного заказа.
func (s *Session) Hydrate(order *models.Order) {
	s.id = order.ID
	s.orderNumber = order.OrderNumber
	s.date = models.NormalizeDate(order.Date)
	s.status = order.Status
	s.items = append([]models.OrderItem(nil), order.Items...)
	s.state = StateReady
}

// SetCatalog задаёт список товаров, доступных для добавления.
func (s *Session) SetCatalog(products []models.Product) {
	s.catalog = products
}

// Catalog возвращает загруженный каталог.
func (s *Session) Catalog() []models.Product {
	return s.catalog
}

func (s *Session) SetOrderNumber(number string) {
	s.orderNumber = number
}

// SetStatus задаёт статус. Значение не перепроверяется: выбор ограничен
// самим полем ввода тремя допустимыми статусами.
func (s *Session) SetStatus(status models.OrderStatus) {
	s.status = status
}

// AddItem добавляет позицию, снимая имя и цену товара из каталога.
// Повторный товар не добавляется (ErrDuplicateProduct), неизвестный — тоже (ErrUnknownProduct).
func (s *Session) AddItem(productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	for _, item := range s.items {
		if item.ProductID == productID {
			return ErrDuplicateProduct
		}
	}

	product, ok := s.findProduct(productID)
	if !ok {
		return ErrUnknownProduct
	}

	s.items = append(s.items, models.OrderItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		Quantity:  quantity,
	})
	return nil
}

// RemoveItem удаляет позицию по товару; отсутствующая позиция — не ошибка.
func (s *Session) RemoveItem(productID int64) {
	for i, item := range s.items {
		if item.ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Items возвращает копию позиций в порядке добавления.
func (s *Session) Items() []models.OrderItem {
	return append([]models.OrderItem(nil), s.items...)
}

// Total возвращает точную сумму по позициям.
func (s *Session) Total() decimal.Decimal {
	return models.SumItems(s.items)
}

// FormatTotal возвращает сумму для отображения, округлённую до двух знаков.
func (s *Session) FormatTotal() string {
	return s.Total().StringFixed(2)
}

// Payload собирает тело запроса на сохранение.
func (s *Session) Payload() *models.OrderPayload {
	return &models.OrderPayload{
		OrderNumber: s.orderNumber,
		Date:        s.date,
		Status:      s.status,
		Items:       s.Items(),
	}
}

// BeginSave проверяет сессию, переводит её в StateSaving и возвращает снимок
// тела запроса. Сетевой вызов выполняет вызывающий; сам снимок дальнейшими
// правками сессии уже не затрагивается.
func (s *Session) BeginSave() (*models.OrderPayload, error) {
	switch s.state {
	case StateSaving:
		return nil, ErrSaveInProgress
	case StateLoading:
		return nil, ErrNotLoaded
	}
	if strings.TrimSpace(s.orderNumber) == "" {
		return nil, ErrEmptyOrderNumber
	}

	s.state = StateSaving
	return s.Payload(), nil
}

// FinishSave применяет результат сохранения: StateSaved при успехе,
// возврат в StateReady при ошибке (поля сессии сохраняются для повтора).
func (s *Session) FinishSave(err error) {
	if s.state != StateSaving {
		return
	}
	if err != nil {
		s.state = StateReady
		return
	}
	s.state = StateSaved
}

// Save сохраняет заказ целиком: создание при отсутствии идентификатора, иначе
// обновление. При ошибке состояние сессии не меняется, и попытку можно повторить.
func (s *Session) Save(ctx context.Context) error {
	payload, err := s.BeginSave()
	if err != nil {
		return err
	}

	if s.id == 0 {
		_, err = s.orders.Create(ctx, payload)
	} else {
		_, err = s.orders.Update(ctx, s.id, payload)
	}
	s.FinishSave(err)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

// ID возвращает идентификатор заказа (0 для ещё не созданного).
func (s *Session) ID() int64 {
	return s.id
}

// IsNew сообщает, создаётся ли заказ впервые.
func (s *Session) IsNew() bool {
	return s.id == 0
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) OrderNumber() string {
	return s.orderNumber
}

func (s *Session) Date() string {
	return s.date
}

func (s *Session) Status() models.OrderStatus {
	return s.status
}

func (s *Session) findProduct(id int64) (models.Product, bool) {
	for _, p := range s.catalog {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
