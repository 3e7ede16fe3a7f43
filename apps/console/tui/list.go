package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/listing"
)

// Item is one list entry as sent by the API.
type Item = map[string]interface{}

type Column struct {
	Title string
	Key   string
	Width int
}

type ListOptions struct {
	Title   string
	Columns []Column
	// Facets are the set filters offered as toggles, fed by the facet values of each response.
	Facets []string
	// Detail is the markdown field shown by the view action.
	Detail string
	// Edit opens the edit wizard of an item; nil makes the list read-only.
	Edit func(ctx context.Context, item Item) (Form, Outline, error)
	// Delete removes an item; nil hides the action.
	Delete func(ctx context.Context, item Item) core.SyncResult
	Width  int
}

// Changes returns the OnChange hook of a listing.Controller and the channel it signals.
// A signal only says "something changed"; the model reads the latest state itself,
// so a signal dropped while another is pending loses nothing.
func Changes() (func(listing.State[Item]), <-chan struct{}) {
	ch := make(chan struct{}, 1)
	return func(listing.State[Item]) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}, ch
}

type changedMsg struct{}

type deletedMsg struct {
	res core.SyncResult
}

type facetRef struct {
	name  string
	value string
}

type ListModel struct {
	ctx     context.Context
	ctl     *listing.Controller[Item]
	changes <-chan struct{}
	opts    ListOptions
	styles  Styles

	table     table.Model
	search    textinput.Model
	searching bool
	facet     int // index into facetRefs
	items     []Item

	// menuOpenID is the id of the row whose action menu is open; empty when closed.
	// Any key outside the menu closes it.
	menuOpenID string

	wizard  *WizardModel
	detail  string
	notice  string
	message string // last error
	outcome Outcome
}

func NewList(ctx context.Context, ctl *listing.Controller[Item], changes <-chan struct{}, opts ListOptions) ListModel {
	if opts.Width <= 0 {
		opts.Width = 100
	}
	cols := make([]table.Column, 0, len(opts.Columns))
	for _, c := range opts.Columns {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	si := textinput.New()
	si.Placeholder = "search..."
	si.Prompt = "/ "
	si.Width = 40

	return ListModel{
		ctx:     ctx,
		ctl:     ctl,
		changes: changes,
		opts:    opts,
		styles:  DefaultStyles(),
		table:   t,
		search:  si,
	}
}

func (m ListModel) Outcome() Outcome { return m.outcome }

// MenuOpenID returns the id of the row whose menu is open, empty if none.
func (m ListModel) MenuOpenID() string { return m.menuOpenID }

func (m ListModel) Init() tea.Cmd {
	m.ctl.Refresh()
	return m.waitForChange()
}

func (m ListModel) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.wizard != nil {
		return m.updateWizard(msg)
	}

	switch msg := msg.(type) {
	case changedMsg:
		m.applyState()
		if m.outcome == LoginRequired {
			return m, tea.Quit
		}
		return m, m.waitForChange()

	case deletedMsg:
		if !msg.res.OK {
			if msg.res.Kind == core.AuthRequired {
				m.outcome = LoginRequired
				return m, tea.Quit
			}
			m.message = msg.res.Message
			return m, nil
		}
		m.message, m.notice = "", "Deleted."
		m.ctl.Refresh()
		return m, nil

	case tea.KeyMsg:
		if m.detail != "" {
			if msg.String() == "esc" || msg.String() == "q" {
				m.detail = ""
			}
			return m, nil
		}
		if m.menuOpenID != "" {
			return m.menuKey(msg)
		}
		if m.searching {
			return m.searchKey(msg)
		}
		return m.listKey(msg)
	}
	return m, nil
}

func (m ListModel) listKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	refs := m.facetRefs()
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.outcome = Cancelled
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "right", "n":
		if page := m.ctl.State().Result.Pagination; m.ctl.Page() < page.TotalPages {
			_ = m.ctl.SetPage(m.ctl.Page() + 1)
		}
		return m, nil
	case "left", "p":
		if m.ctl.Page() > 1 {
			_ = m.ctl.SetPage(m.ctl.Page() - 1)
		}
		return m, nil
	case "]":
		if len(refs) > 0 {
			m.facet = (m.facet + 1) % len(refs)
		}
		return m, nil
	case "[":
		if len(refs) > 0 {
			m.facet = (m.facet - 1 + len(refs)) % len(refs)
		}
		return m, nil
	case " ":
		if m.facet < len(refs) {
			ref := refs[m.facet]
			_ = m.ctl.ToggleSetMember(ref.name, ref.value)
		}
		return m, nil
	case "c":
		m.search.SetValue("")
		m.ctl.ClearAll()
		return m, nil
	case "r":
		m.ctl.Refresh()
		return m, nil
	case "enter":
		if item := m.selected(); item != nil {
			m.menuOpenID = itemID(item)
			m.message, m.notice = "", ""
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ListModel) searchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	_ = m.ctl.SetField("search", listing.Text(m.search.Value()))
	return m, cmd
}

// menuKey runs a menu action; any other key closes the menu.
func (m ListModel) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.itemByID(m.menuOpenID)
	m.menuOpenID = ""
	if item == nil {
		return m, nil
	}

	switch msg.String() {
	case "e":
		if m.opts.Edit == nil {
			return m, nil
		}
		form, outline, err := m.opts.Edit(m.ctx, item)
		if err != nil {
			m.message = err.Error()
			return m, nil
		}
		w := NewWizard(m.ctx, form, WizardOptions{
			Title:    "Edit " + itemTitle(item),
			Outline:  outline,
			Embedded: true,
			Width:    m.opts.Width,
		})
		m.wizard = &w
		return m, w.Init()
	case "d":
		if m.opts.Delete == nil {
			return m, nil
		}
		del, ctx := m.opts.Delete, m.ctx
		return m, func() tea.Msg { return deletedMsg{res: del(ctx, item)} }
	case "v":
		m.detail = m.renderDetail(item)
		return m, nil
	}
	return m, nil
}

// updateWizard forwards to the open edit wizard. Once saved, the wizard closes and the list refetches.
func (m ListModel) updateWizard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(changedMsg); ok {
		// keep listening while the wizard is open
		m.applyState()
		return m, m.waitForChange()
	}
	w, cmd := m.wizard.update(msg)
	switch w.Outcome() {
	case Saved:
		m.wizard = nil
		m.message, m.notice = "", "Saved."
		m.ctl.Refresh()
		return m, nil
	case Cancelled:
		m.wizard = nil
		return m, nil
	case LoginRequired:
		m.wizard = nil
		m.outcome = LoginRequired
		return m, tea.Quit
	}
	m.wizard = &w
	return m, cmd
}

func (m *ListModel) applyState() {
	state := m.ctl.State()
	if state.LastError != nil {
		if listing.IsAuthError(state.LastError) {
			m.outcome = LoginRequired
			return
		}
		m.message = state.LastError.Error()
	} else {
		m.message = ""
	}
	m.items = state.Result.Items
	rows := make([]table.Row, 0, len(m.items))
	for _, item := range m.items {
		row := make(table.Row, 0, len(m.opts.Columns))
		for _, c := range m.opts.Columns {
			row = append(row, cell(item[c.Key]))
		}
		rows = append(rows, row)
	}
	m.table.SetRows(rows)
	if refs := m.facetRefs(); m.facet >= len(refs) {
		m.facet = 0
	}
}

func (m ListModel) facetRefs() []facetRef {
	facets := m.ctl.State().Result.Facets
	var refs []facetRef
	for _, name := range m.opts.Facets {
		for _, fv := range facets[name] {
			refs = append(refs, facetRef{name: name, value: fv.Value})
		}
	}
	return refs
}

func (m ListModel) selected() Item {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return nil
	}
	return m.items[i]
}

func (m ListModel) itemByID(id string) Item {
	for _, item := range m.items {
		if itemID(item) == id {
			return item
		}
	}
	return nil
}

func (m ListModel) renderDetail(item Item) string {
	md := "# " + itemTitle(item) + "\n\n"
	if m.opts.Detail != "" {
		md += cell(item[m.opts.Detail])
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(m.opts.Width-4))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func itemID(item Item) string {
	id, _ := item["id"].(string)
	return id
}

func itemTitle(item Item) string {
	for _, key := range []string{"title", "name", "full_name", "site_name"} {
		if s, ok := item[key].(string); ok && s != "" {
			return s
		}
	}
	return itemID(item)
}

func cell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", val), "0"), ".")
	case []interface{}:
		return fmt.Sprintf("%d", len(val))
	}
	return fmt.Sprint(v)
}

func (m ListModel) View() string {
	if m.wizard != nil {
		return m.wizard.View()
	}
	if m.detail != "" {
		return m.detail + "\n" + m.styles.Muted.Render("esc: back")
	}

	state := m.ctl.State()
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.opts.Title) + "\n")
	b.WriteString(m.search.View() + "\n\n")

	if refs := m.facetRefs(); len(refs) > 0 {
		counts := map[facetRef]int{}
		for name, values := range state.Result.Facets {
			for _, fv := range values {
				counts[facetRef{name, fv.Value}] = fv.Count
			}
		}
		cur := ""
		var line []string
		for i, ref := range refs {
			if ref.name != cur {
				if len(line) > 0 {
					b.WriteString(strings.Join(line, " ") + "\n")
				}
				cur = ref.name
				line = []string{m.styles.Label.Render(ref.name + ":")}
			}
			text := fmt.Sprintf("%s (%d)", ref.value, counts[ref])
			if state.Fields[ref.name].Has(ref.value) {
				text = "[x] " + text
			}
			style := m.styles.Facet
			if i == m.facet {
				style = m.styles.FacetActive
			}
			line = append(line, style.Render(text))
		}
		b.WriteString(strings.Join(line, " ") + "\n\n")
	}

	b.WriteString(m.table.View() + "\n")
	pag := state.Result.Pagination
	status := fmt.Sprintf("page %d/%d • %d results", state.Page, max(pag.TotalPages, 1), pag.Total)
	if state.Loading {
		status += " • loading..."
	}
	b.WriteString(m.styles.Muted.Render(status) + "\n")

	if m.menuOpenID != "" {
		actions := []string{"v: view"}
		if m.opts.Edit != nil {
			actions = append(actions, "e: edit")
		}
		if m.opts.Delete != nil {
			actions = append(actions, "d: delete")
		}
		b.WriteString(m.styles.Menu.Render(strings.Join(actions, "  ")) + "\n")
	}
	if m.message != "" {
		b.WriteString(m.styles.Error.Render(m.message) + "\n")
	} else if m.notice != "" {
		b.WriteString(m.styles.Success.Render(m.notice) + "\n")
	}
	b.WriteString(m.styles.Muted.Render("/: search • [ ]: pick facet • space: toggle • ←/→: page • enter: actions • c: clear • q: quit"))
	return b.String()
}
