package ui

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agamariel/orderdesk/internal/models"
)

// listModel экран списка заказов.
type listModel struct {
	deps    Deps
	gen     int
	rows    []models.Order
	cursor  int
	loading bool
	// confirming — ожидается подтверждение удаления заказа под курсором
	confirming bool
	notice     string
}

func newListModel(deps Deps, gen int) *listModel {
	return &listModel{deps: deps, gen: gen, loading: true}
}

func (m *listModel) load() tea.Cmd {
	gen := m.gen
	orders := m.deps.Orders
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		list, err := orders.List(ctx)
		return ordersLoadedMsg{gen: gen, orders: list, err: err}
	}
}

func (m *listModel) deleteCmd(id int64) tea.Cmd {
	gen := m.gen
	orders := m.deps.Orders
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return orderDeletedMsg{gen: gen, id: id, err: orders.Delete(ctx, id)}
	}
}

func (m *listModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ordersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// Список остаётся пустым, интерфейс живёт дальше
			log.Printf("load orders: %v", msg.err)
			m.notice = "failed to load orders"
			return nil
		}
		m.rows = msg.orders
		if m.cursor >= len(m.rows) {
			m.cursor = 0
		}
		return nil

	case orderDeletedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("failed to delete order %d", msg.id)
			log.Printf("delete order %d: %v", msg.id, msg.err)
			return nil
		}
		// Строка убирается только после подтверждения сервером
		for i, row := range m.rows {
			if row.ID == msg.id {
				m.rows = append(m.rows[:i], m.rows[i+1:]...)
				break
			}
		}
		if m.cursor >= len(m.rows) && m.cursor > 0 {
			m.cursor--
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return nil
}

func (m *listModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirming {
		m.confirming = false
		if msg.String() == "y" && m.cursor < len(m.rows) {
			return m.deleteCmd(m.rows[m.cursor].ID)
		}
		// Любая другая клавиша — отказ, запрос не отправляется
		return nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "n":
		return func() tea.Msg { return openFormMsg{} }
	case "enter", "e":
		if m.cursor < len(m.rows) {
			id := m.rows[m.cursor].ID
			return func() tea.Msg { return openFormMsg{id: id} }
		}
	case "d":
		if m.cursor < len(m.rows) {
			m.confirming = true
			m.notice = ""
		}
	case "r":
		m.loading = true
		m.notice = ""
		return m.load()
	}
	return nil
}

func (m *listModel) view() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "My Orders")
	fmt.Fprintln(b, "")

	switch {
	case m.loading:
		fmt.Fprintln(b, "Loading...")
	case len(m.rows) == 0:
		fmt.Fprintln(b, "No orders yet. Press n to create one.")
	default:
		fmt.Fprintf(b, "  %-4s %-12s %-12s %-10s %-10s %s\n", "ID", "Order #", "Date", "Products", "Total", "Status")
		for i, row := range m.rows {
			marker := " "
			if i == m.cursor {
				marker = ">"
			}
			fmt.Fprintf(b, "%s %-4d %-12s %-12s %-10s %-10s %s\n",
				marker,
				row.ID,
				row.OrderNumber,
				models.NormalizeDate(row.Date),
				itemCount(row),
				row.TotalPrice.StringFixed(2),
				row.Status,
			)
		}
	}

	fmt.Fprintln(b, "")
	if m.confirming && m.cursor < len(m.rows) {
		fmt.Fprintf(b, "Delete order %d? (y/N)\n", m.rows[m.cursor].ID)
	} else if m.notice != "" {
		fmt.Fprintf(b, "! %s\n", m.notice)
	}
	fmt.Fprintln(b, "Controls: up/down select, enter edit, n new, d delete, r refresh, q quit")
	return b.String()
}

func itemCount(o models.Order) string {
	if o.Items == nil {
		return "N/A"
	}
	return strconv.Itoa(len(o.Items))
}
