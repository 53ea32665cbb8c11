package ui

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agamariel/orderdesk/internal/api"
	"github.com/agamariel/orderdesk/internal/models"
	"github.com/agamariel/orderdesk/internal/session"
)

// focusField активное поле формы.
type focusField int

const (
	focusNumber focusField = iota
	focusStatus
	focusProduct
	focusQty
	focusItems
)

// formModel экран создания/редактирования заказа поверх сессии.
type formModel struct {
	deps Deps
	gen  int
	sess *session.Session

	focus      focusField
	statusIdx  int
	productIdx int // -1 — товар не выбран
	qty        string
	itemCursor int

	loadingCatalog bool
	saving         bool
	notice         string
}

func newFormModel(deps Deps, id int64, gen int) *formModel {
	m := &formModel{
		deps:           deps,
		gen:            gen,
		productIdx:     -1,
		qty:            "1",
		loadingCatalog: true,
	}
	if id == 0 {
		m.sess = session.New(deps.Orders, deps.Clock)
	} else {
		m.sess = session.NewForOrder(deps.Orders, deps.Clock, id)
	}
	return m
}

func (m *formModel) load() tea.Cmd {
	cmds := []tea.Cmd{m.loadCatalogCmd()}
	if m.sess.State() == session.StateLoading {
		cmds = append(cmds, m.loadOrderCmd())
	}
	return tea.Batch(cmds...)
}

func (m *formModel) loadCatalogCmd() tea.Cmd {
	gen := m.gen
	products := m.deps.Products
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		list, err := products.ListProducts(ctx)
		return catalogLoadedMsg{gen: gen, products: list, err: err}
	}
}

func (m *formModel) loadOrderCmd() tea.Cmd {
	gen := m.gen
	orders := m.deps.Orders
	id := m.sess.ID()
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		order, err := orders.Get(ctx, id)
		return orderLoadedMsg{gen: gen, order: order, err: err}
	}
}

// saveCmd выполняет только сетевой вызов: команда работает в отдельной
// горутине и к сессии не обращается, весь её вход захвачен заранее.
func (m *formModel) saveCmd(id int64, payload *models.OrderPayload) tea.Cmd {
	gen := m.gen
	orders := m.deps.Orders
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		var err error
		if id == 0 {
			_, err = orders.Create(ctx, payload)
		} else {
			_, err = orders.Update(ctx, id, payload)
		}
		if err != nil {
			err = fmt.Errorf("save order: %w", err)
		}
		return orderSavedMsg{gen: gen, err: err}
	}
}

func (m *formModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		m.loadingCatalog = false
		if msg.err != nil {
			// Форма остаётся без каталога: добавить товар нельзя, остальное работает
			log.Printf("load products: %v", msg.err)
			m.notice = "failed to load products"
			return nil
		}
		m.sess.SetCatalog(msg.products)
		return nil

	case orderLoadedMsg:
		if msg.err != nil {
			log.Printf("load order: %v", msg.err)
			if errors.Is(msg.err, api.ErrNotFound) {
				m.notice = "order no longer exists"
			} else {
				m.notice = "failed to load order"
			}
			return nil
		}
		m.sess.Hydrate(msg.order)
		m.syncStatusIdx()
		return nil

	case orderSavedMsg:
		m.saving = false
		m.sess.FinishSave(msg.err)
		if msg.err != nil {
			log.Printf("save order: %v", msg.err)
			m.notice = saveNotice(msg.err)
			return nil
		}
		return func() tea.Msg { return backToListMsg{} }

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return nil
}

func (m *formModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		// Сессия просто выбрасывается, ничего не сохраняя
		return func() tea.Msg { return backToListMsg{} }
	case "ctrl+s":
		return m.save()
	case "tab":
		m.focus = (m.focus + 1) % 5
		return nil
	case "shift+tab":
		m.focus = (m.focus + 4) % 5
		return nil
	}

	// Редактирование доступно только в готовой сессии: во время загрузки
	// полей ещё нет, во время сохранения снимок запроса уже снят
	if m.sess.State() != session.StateReady {
		return nil
	}

	switch m.focus {
	case focusNumber:
		m.editNumber(msg)
	case focusStatus:
		m.cycleStatus(msg)
	case focusProduct, focusQty:
		return m.editPicker(msg)
	case focusItems:
		m.editItems(msg)
	}
	return nil
}

func (m *formModel) editNumber(msg tea.KeyMsg) {
	switch {
	case msg.String() == "backspace":
		number := m.sess.OrderNumber()
		if number != "" {
			// Срезается последняя руна, а не байт: ввод может быть не-ASCII
			_, size := utf8.DecodeLastRuneInString(number)
			m.sess.SetOrderNumber(number[:len(number)-size])
		}
	case msg.Type == tea.KeyRunes:
		m.sess.SetOrderNumber(m.sess.OrderNumber() + string(msg.Runes))
	}
}

func (m *formModel) cycleStatus(msg tea.KeyMsg) {
	switch msg.String() {
	case "left":
		m.statusIdx = (m.statusIdx + len(models.Statuses) - 1) % len(models.Statuses)
	case "right":
		m.statusIdx = (m.statusIdx + 1) % len(models.Statuses)
	default:
		return
	}
	m.sess.SetStatus(models.Statuses[m.statusIdx])
}

func (m *formModel) editPicker(msg tea.KeyMsg) tea.Cmd {
	catalog := m.sess.Catalog()
	switch {
	case msg.String() == "left" && m.focus == focusProduct:
		if m.productIdx >= 0 {
			m.productIdx--
		}
	case msg.String() == "right" && m.focus == focusProduct:
		if m.productIdx < len(catalog)-1 {
			m.productIdx++
		}
	case msg.String() == "enter":
		m.addItem()
	case msg.String() == "backspace" && m.focus == focusQty:
		if m.qty != "" {
			m.qty = m.qty[:len(m.qty)-1]
		}
	case msg.Type == tea.KeyRunes && m.focus == focusQty:
		for _, r := range msg.Runes {
			if r >= '0' && r <= '9' {
				m.qty += string(r)
			}
		}
	}
	return nil
}

// addItem переносит выбор из подборщика в позиции заказа.
func (m *formModel) addItem() {
	catalog := m.sess.Catalog()
	if m.productIdx < 0 || m.productIdx >= len(catalog) {
		return
	}

	qty, err := strconv.Atoi(m.qty)
	if err != nil {
		qty = 0
	}

	switch err := m.sess.AddItem(catalog[m.productIdx].ID, qty); {
	case errors.Is(err, session.ErrDuplicateProduct):
		m.notice = "product already added"
	case errors.Is(err, session.ErrInvalidQuantity):
		m.notice = "quantity must be at least 1"
	case errors.Is(err, session.ErrUnknownProduct):
		// каталог и подборщик разошлись; молча пропускаем
	case err == nil:
		// Подборщик сбрасывается после успешного добавления
		m.productIdx = -1
		m.qty = "1"
		m.notice = ""
	}
}

func (m *formModel) editItems(msg tea.KeyMsg) {
	items := m.sess.Items()
	switch msg.String() {
	case "up", "k":
		if m.itemCursor > 0 {
			m.itemCursor--
		}
	case "down", "j":
		if m.itemCursor < len(items)-1 {
			m.itemCursor++
		}
	case "d", "x":
		if m.itemCursor < len(items) {
			m.sess.RemoveItem(items[m.itemCursor].ProductID)
			if m.itemCursor > 0 {
				m.itemCursor--
			}
		}
	}
}

// save снимает снимок заказа и запускает сохранение, если оно ещё не идёт.
func (m *formModel) save() tea.Cmd {
	if m.saving {
		return nil
	}
	payload, err := m.sess.BeginSave()
	switch {
	case errors.Is(err, session.ErrEmptyOrderNumber):
		m.notice = "order number is required"
		return nil
	case err != nil:
		return nil
	}
	m.saving = true
	m.notice = ""
	return m.saveCmd(m.sess.ID(), payload)
}

func (m *formModel) syncStatusIdx() {
	for i, s := range models.Statuses {
		if s == m.sess.Status() {
			m.statusIdx = i
			return
		}
	}
}

func saveNotice(err error) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("error saving order: backend returned %d", statusErr.Code)
	}
	return "error saving order"
}

func (m *formModel) view() string {
	b := &strings.Builder{}
	if m.sess.IsNew() {
		fmt.Fprintln(b, "Create New Order")
	} else {
		fmt.Fprintf(b, "Edit Order %d\n", m.sess.ID())
	}
	fmt.Fprintln(b, "")

	if m.sess.State() == session.StateLoading {
		fmt.Fprintln(b, "Loading...")
		if m.notice != "" {
			fmt.Fprintf(b, "! %s\n", m.notice)
		}
		fmt.Fprintln(b, "Controls: esc back")
		return b.String()
	}

	fmt.Fprintf(b, "%s Order Number: %s\n", focusMarker(m.focus == focusNumber), m.sess.OrderNumber())
	fmt.Fprintf(b, "  Date:         %s (read-only)\n", m.sess.Date())
	fmt.Fprintf(b, "%s Status:       %s (left/right)\n", focusMarker(m.focus == focusStatus), m.sess.Status())
	fmt.Fprintln(b, "")

	fmt.Fprintln(b, "Add Product")
	fmt.Fprintf(b, "%s Product:  %s (left/right)\n", focusMarker(m.focus == focusProduct), m.pickerLabel())
	fmt.Fprintf(b, "%s Quantity: %s (enter to add)\n", focusMarker(m.focus == focusQty), m.qty)
	fmt.Fprintln(b, "")

	fmt.Fprintf(b, "%s Products in Order\n", focusMarker(m.focus == focusItems))
	items := m.sess.Items()
	if len(items) == 0 {
		fmt.Fprintln(b, "  (no products)")
	} else {
		fmt.Fprintf(b, "    %-20s %-10s %-5s %s\n", "Product", "Price", "Qty", "Total")
		for i, item := range items {
			marker := " "
			if m.focus == focusItems && i == m.itemCursor {
				marker = ">"
			}
			fmt.Fprintf(b, "  %s %-20s %-10s %-5d %s\n",
				marker, item.Name, item.UnitPrice.StringFixed(2), item.Quantity, item.Subtotal().StringFixed(2))
		}
	}
	fmt.Fprintf(b, "  Total: %s\n", m.sess.FormatTotal())
	fmt.Fprintln(b, "")

	if m.saving {
		fmt.Fprintln(b, "Saving...")
	}
	if m.notice != "" {
		fmt.Fprintf(b, "! %s\n", m.notice)
	}
	fmt.Fprintln(b, "Controls: tab next field, ctrl+s save, d remove item, esc back")
	return b.String()
}

func (m *formModel) pickerLabel() string {
	if m.loadingCatalog {
		return "loading..."
	}
	catalog := m.sess.Catalog()
	if m.productIdx < 0 || m.productIdx >= len(catalog) {
		return "select product"
	}
	p := catalog[m.productIdx]
	return fmt.Sprintf("%s (%s)", p.Name, p.UnitPrice.StringFixed(2))
}

func focusMarker(active bool) string {
	if active {
		return ">"
	}
	return " "
}
