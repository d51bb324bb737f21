// Package tui is the terminal storefront. It drives the same view model as
// the web storefront, one key press at a time.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/view"
	"github.com/niksmo/storefront/pkg/money"
)

type Model struct {
	ctx context.Context
	vm  *view.ViewModel

	search    textinput.Model
	searching bool

	items      []domain.CatalogItem
	cursor     int
	cart       domain.CartView
	cartCursor int

	status string
	err    error

	styles Styles
	width  int
}

func NewModel(ctx context.Context, vm *view.ViewModel) Model {
	ti := textinput.New()
	ti.Placeholder = "ค้นหา"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "/ "

	m := Model{
		ctx:    ctx,
		vm:     vm,
		search: ti,
		styles: DefaultStyles(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.search.Width = max(10, msg.Width-4)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.searching:
			return m.updateSearch(msg)
		case m.vm.DrawerOpen:
			return m.updateDrawer(msg)
		case m.vm.ActiveItemID != "":
			return m.updateDetail(msg)
		default:
			return m.updateGrid(msg)
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.apply(view.SearchChanged{Text: m.search.Value()})
	return m, cmd
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := m.vm.Query

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		m.cursor = min(len(m.items)-1, m.cursor+1)
		m.cursor = max(0, m.cursor)
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "t":
		m.apply(view.TypeChanged{Type: view.NextType(q.Type)})
	case "s":
		m.apply(view.SortChanged{Sort: view.NextSort(q.Sort)})
	case "d":
		m.apply(view.DigitalToggled{On: !q.OnlyDigital})
	case "a":
		if item, ok := m.selected(); ok {
			if m.apply(view.AddToCart{ItemID: item.ID}) {
				m.status = "เพิ่มลงตะกร้า: " + item.Title
			}
		}
	case "enter":
		if item, ok := m.selected(); ok {
			m.apply(view.OpenDetail{ItemID: item.ID})
		}
	case "c":
		m.apply(view.OpenDrawer{})
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "enter":
		m.apply(view.CloseDetail{})
	case "a":
		if m.apply(view.AddToCart{ItemID: m.vm.ActiveItemID}) {
			m.status = "เพิ่มลงตะกร้าแล้ว"
		}
	}
	return m, nil
}

func (m Model) updateDrawer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	line, hasLine := m.selectedLine()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "c":
		m.apply(view.CloseDrawer{})
	case "up", "k":
		m.cartCursor = max(0, m.cartCursor-1)
	case "down", "j":
		m.cartCursor = max(0, min(len(m.cart.Lines)-1, m.cartCursor+1))
	case "+", "=":
		if hasLine {
			m.apply(view.QuantityDelta{ItemID: line.Item.ID, Delta: 1})
		}
	case "-":
		if hasLine {
			m.apply(view.QuantityDelta{ItemID: line.Item.ID, Delta: -1})
		}
	case "x":
		if hasLine {
			m.apply(view.RemoveLine{ItemID: line.Item.ID})
		}
	case "C":
		m.apply(view.ClearCart{})
	case "p":
		eff, ok := m.applyEffect(view.Checkout{})
		if ok {
			m.status = "ชำระเงิน/กรอกข้อมูล: " + eff.Navigate
		}
	}
	return m, nil
}

func (m *Model) apply(e view.Event) bool {
	_, ok := m.applyEffect(e)
	return ok
}

// applyEffect forwards e to the view model and reloads what it shows.
func (m *Model) applyEffect(e view.Event) (view.Effect, bool) {
	m.status = ""
	eff, err := m.vm.Apply(m.ctx, e)
	m.err = err
	m.refresh()
	return eff, err == nil
}

func (m *Model) refresh() {
	m.items = m.vm.Items(m.ctx)
	m.cursor = clamp(m.cursor, len(m.items))

	cart, err := m.vm.Cart(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	m.cart = cart
	m.cartCursor = clamp(m.cartCursor, len(m.cart.Lines))
}

func clamp(i, n int) int {
	return max(0, min(i, n-1))
}

func (m Model) selected() (domain.CatalogItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return domain.CatalogItem{}, false
	}
	return m.items[m.cursor], true
}

func (m Model) selectedLine() (domain.CartViewLine, bool) {
	if m.cartCursor < 0 || m.cartCursor >= len(m.cart.Lines) {
		return domain.CartViewLine{}, false
	}
	return m.cart.Lines[m.cartCursor], true
}

func (m Model) View() string {
	var sb strings.Builder
	site := m.vm.Site()
	q := m.vm.Query

	sb.WriteString(m.styles.Brand.Render(site.Brand))
	sb.WriteString(fmt.Sprintf("  ตะกร้า (%d)\n", m.cart.Count))
	sb.WriteString(m.styles.Muted.Render(site.Tagline))
	sb.WriteString("\n\n")

	sb.WriteString(m.search.View())
	sb.WriteString("\n")
	digital := " "
	if q.OnlyDigital {
		digital = "x"
	}
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf(
		"[t] %s  [s] %s  [d] [%s] เฉพาะดิจิทัล",
		view.TypeLabel(q.Type), view.SortLabel(q.Sort), digital,
	)))
	sb.WriteString("\n\n")

	switch {
	case m.vm.DrawerOpen:
		sb.WriteString(m.viewDrawer(site))
	case m.vm.ActiveItemID != "":
		sb.WriteString(m.viewDetail())
	default:
		sb.WriteString(m.viewGrid())
	}

	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Error.Render(m.err.Error()))
	}
	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(m.status)
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render(m.help()))
	return sb.String()
}

func (m Model) viewGrid() string {
	if len(m.items) == 0 {
		return m.styles.Muted.Render("ไม่พบสินค้า") + "\n"
	}

	var sb strings.Builder
	for i, item := range m.items {
		style, marker := m.styles.Normal, "  "
		if i == m.cursor {
			style, marker = m.styles.Selected, "> "
		}
		sb.WriteString(style.Render(fmt.Sprintf(
			"%s%-36s %10s", marker, item.Title, money.Format(item.Price),
		)))
		if item.Bestseller {
			sb.WriteString(" " + m.styles.Badge.Render("ขายดี"))
		}
		if item.New {
			sb.WriteString(" " + m.styles.Badge.Render("ใหม่"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) viewDetail() string {
	item, ok := m.vm.ActiveItem(m.ctx)
	if !ok {
		return ""
	}

	body := strings.Join([]string{
		m.styles.Brand.Render(item.Title),
		item.Description,
		m.styles.Price.Render(money.Format(item.Price)),
	}, "\n")
	if item.DownloadSample != "" {
		body += "\n" + m.styles.Muted.Render("ตัวอย่าง: "+item.DownloadSample)
	}
	return m.styles.Panel.Render(body) + "\n"
}

func (m Model) viewDrawer(site domain.Site) string {
	var sb strings.Builder
	sb.WriteString(m.styles.Brand.Render("ตะกร้าสินค้า"))
	sb.WriteString("\n")

	if len(m.cart.Lines) == 0 {
		sb.WriteString(m.styles.Muted.Render("ยังไม่มีสินค้า"))
		sb.WriteString("\n")
	}
	for i, l := range m.cart.Lines {
		style, marker := m.styles.Normal, "  "
		if i == m.cartCursor {
			style, marker = m.styles.Selected, "> "
		}
		sb.WriteString(style.Render(fmt.Sprintf(
			"%s%-32s x%-3d %10s",
			marker, l.Item.Title, l.Quantity, money.Format(l.Subtotal),
		)))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("\nรวม %s\n", m.styles.Price.Render(money.Format(m.cart.Total))))
	sb.WriteString(m.styles.Muted.Render(site.Payment.HowTo))
	return m.styles.Panel.Render(sb.String()) + "\n"
}

func (m Model) help() string {
	switch {
	case m.searching:
		return "enter/esc: done"
	case m.vm.DrawerOpen:
		return "↑/↓: select  +/-: qty  x: remove  C: clear  p: checkout  esc: close  q: quit"
	case m.vm.ActiveItemID != "":
		return "a: add  esc: close  q: quit"
	default:
		return "↑/↓: move  /: search  t: type  s: sort  d: digital  a: add  enter: details  c: cart  q: quit"
	}
}
