package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/forwarder/internal/provision"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateSearch
	listStateEdit
)

var provisionFilters = []*provision.State{
	nil,
	new(provision.StatePendiente),
	new(provision.StateProvisionada),
	new(provision.StateDisputada),
	new(provision.StateRevision),
	new(provision.StateAnulada),
}

// ListModel browses work orders and edits their shipment references.
type ListModel struct {
	CommonModel
	workOrders *workorder.Service

	state  listState
	table  table.Model
	search textinput.Model
	wos    []*workorder.WorkOrder
	form   *huh.Form

	provisionFilterIdx int

	filter  workorder.ListFilter
	loading bool
	err     error
	status  string

	// Form bindings
	formMBL        string
	formHBLs       string
	formContainers string
}

func NewListModel(woSvc *workorder.Service) ListModel {
	columns := []table.Column{
		{Title: "OT", Width: 10},
		{Title: "Client", Width: 24},
		{Title: "Provider", Width: 18},
		{Title: "Op", Width: 6},
		{Title: "MBL", Width: 16},
		{Title: "Containers", Width: 26},
		{Title: "Provision", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	search := textinput.New()
	search.Placeholder = "OT, client, MBL or container"
	search.Prompt = "/ "
	search.Width = 40

	return ListModel{
		workOrders: woSvc,
		table:      t,
		search:     search,
		filter:     workorder.ListFilter{Limit: 200},
		loading:    true,
	}
}

func (m ListModel) Title() string { return "Work Orders" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateEdit:
		return "Navigate form | Esc: cancel"
	case listStateSearch:
		return "Enter: search | Esc: cancel"
	}

	return "Esc: back | /: search | e: edit refs | p: provision filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.wos = msg.wos
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = "Saved."
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateSearch:
		return m.updateSearch(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "/":
			m.state = listStateSearch
			m.table.Blur()
			m.search.Focus()

			return m, textinput.Blink
		case "p":
			m.provisionFilterIdx = (m.provisionFilterIdx + 1) % len(provisionFilters)
			m.filter.EstadoProvision = provisionFilters[m.provisionFilterIdx]

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = listStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			m.state = listStateBrowse
			m.search.Blur()
			m.table.Focus()
			m.filter.Search = strings.TrimSpace(m.search.Value())

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.wos) {
		return m, nil
	}

	wo := m.wos[idx]
	m.formMBL = wo.MasterBL
	m.formHBLs = strings.Join(wo.HouseBLs, ", ")
	m.formContainers = strings.Join(wo.Containers, ", ")

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("master_bl").
				Title("Master BL").
				Value(&m.formMBL),

			huh.NewInput().
				Key("house_bls").
				Title("House BLs").
				Placeholder("comma separated").
				Value(&m.formHBLs),

			huh.NewInput().
				Key("containers").
				Title("Containers").
				Placeholder("MSCU1234567, ...").
				Value(&m.formContainers),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.formMBL = m.form.GetString("master_bl")
	m.formHBLs = m.form.GetString("house_bls")
	m.formContainers = m.form.GetString("containers")

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading work orders...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	provisionLabel := "All"
	if st := provisionFilters[m.provisionFilterIdx]; st != nil {
		provisionLabel = string(*st)
	}

	searchLabel := m.filter.Search
	if searchLabel == "" {
		searchLabel = "-"
	}

	header := fmt.Sprintf(
		"Filter: [p] Provision: %s | [/] Search: %s | %d shown",
		activeStyle(provisionLabel), activeStyle(searchLabel), len(m.wos),
	)

	if m.state == listStateSearch {
		header = m.search.View()
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateEdit && m.form != nil {
		number := ""
		if idx := m.table.Cursor(); idx >= 0 && idx < len(m.wos) {
			number = m.wos[idx].Number
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Edit %s\n\nSaved values are marked manual.\n\n%s", number, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.wos))

	for _, wo := range m.wos {
		rows = append(rows, table.Row{
			wo.Number,
			Truncate(wo.ClientName, 24),
			Truncate(wo.ProviderName, 18),
			string(wo.TipoOperacion),
			wo.MasterBL,
			Truncate(strings.Join(wo.Containers, " "), 26),
			string(wo.EstadoProvision),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	wos []*workorder.WorkOrder
	err error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		wos, err := m.workOrders.List(ctx, filter)

		return loadListMsg{wos: wos, err: err}
	}
}

type listSaveMsg struct {
	err error
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func (m ListModel) saveCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.wos) {
		return nil
	}

	wo := m.wos[idx]
	params := workorder.UpdateParams{}

	if mbl := strings.TrimSpace(m.formMBL); mbl != wo.MasterBL {
		params.MasterBL = &mbl
	}

	if hbls := splitList(m.formHBLs); strings.Join(hbls, ",") != strings.Join(wo.HouseBLs, ",") {
		params.HouseBLs = &hbls
	}

	if containers := strings.TrimSpace(m.formContainers); containers != strings.Join(wo.Containers, ", ") {
		params.Containers = &containers
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.workOrders.Update(ctx, wo.ID, params)

		return listSaveMsg{err: err}
	}
}
