package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agamariel/orderdesk/internal/api"
	"github.com/agamariel/orderdesk/internal/clock"
	"github.com/agamariel/orderdesk/internal/models"
)

// requestTimeout общий таймаут фоновых запросов интерфейса.
const requestTimeout = 10 * time.Second

// Deps зависимости интерфейса, передаются явно для подмены в тестах.
type Deps struct {
	Orders   api.OrdersClient
	Products api.ProductsClient
	Clock    clock.Clock
}

// Сообщения фоновых операций. Каждое несёт номер поколения экрана:
// ответ, пришедший после ухода с экрана, молча игнорируется.
type (
	ordersLoadedMsg struct {
		gen    int
		orders []models.Order
		err    error
	}

	orderDeletedMsg struct {
		gen int
		id  int64
		err error
	}

	catalogLoadedMsg struct {
		gen      int
		products []models.Product
		err      error
	}

	orderLoadedMsg struct {
		gen   int
		order *models.Order
		err   error
	}

	orderSavedMsg struct {
		gen int
		err error
	}

	// openFormMsg переключает на форму заказа (id == 0 — новый заказ).
	openFormMsg struct{ id int64 }

	// backToListMsg возвращает к списку заказов.
	backToListMsg struct{}
)

type genMsg interface{ msgGen() int }

func (m ordersLoadedMsg) msgGen() int  { return m.gen }
func (m orderDeletedMsg) msgGen() int  { return m.gen }
func (m catalogLoadedMsg) msgGen() int { return m.gen }
func (m orderLoadedMsg) msgGen() int   { return m.gen }
func (m orderSavedMsg) msgGen() int    { return m.gen }

// Model корневая модель: держит активный экран и счётчик поколений.
type Model struct {
	deps Deps
	gen  int
	list *listModel
	form *formModel
}

// New создаёт интерфейс, открытый на списке заказов.
func New(deps Deps) Model {
	return Model{
		deps: deps,
		list: newListModel(deps, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return m.list.load()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Ответ для уже закрытого экрана: не трогаем состояние
	if g, ok := msg.(genMsg); ok && g.msgGen() != m.gen {
		return m, nil
	}

	switch msg := msg.(type) {
	case openFormMsg:
		m.gen++
		m.form = newFormModel(m.deps, msg.id, m.gen)
		m.list = nil
		return m, m.form.load()
	case backToListMsg:
		m.gen++
		m.list = newListModel(m.deps, m.gen)
		m.form = nil
		return m, m.list.load()
	}

	if m.form != nil {
		cmd := m.form.update(msg)
		return m, cmd
	}
	cmd := m.list.update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.form != nil {
		return m.form.view()
	}
	return m.list.view()
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
