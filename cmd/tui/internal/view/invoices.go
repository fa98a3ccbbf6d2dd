package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/forwarder/internal/invoice"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

type invoiceState int

const (
	invoiceStateBrowse invoiceState = iota
	invoiceStateTransition
)

// InvoiceModel browses supplier invoices, moves their provision state and
// re-runs extraction over their documents.
type InvoiceModel struct {
	CommonModel
	invoices *invoice.Service

	state invoiceState
	table table.Model
	form  *huh.Form
	items []*invoice.Invoice

	provisionFilterIdx int
	dueOnly            bool
	overdueOnly        bool

	loading bool
	err     error
	status  string
}

func NewInvoiceModel(invSvc *invoice.Service) InvoiceModel {
	columns := []table.Column{
		{Title: "Numero", Width: 14},
		{Title: "Provider", Width: 18},
		{Title: "OT", Width: 10},
		{Title: "Emitted", Width: 10},
		{Title: "Due", Width: 10},
		{Title: "Amount", Width: 14},
		{Title: "Pending", Width: 14},
		{Title: "Provision", Width: 13},
		{Title: "!", Width: 1},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	return InvoiceModel{
		invoices: invSvc,
		table:    t,
		loading:  true,
	}
}

func (m InvoiceModel) Title() string { return "Invoices" }

func (m InvoiceModel) ShortHelp() string {
	if m.state == invoiceStateTransition {
		return "Enter: apply | Esc: cancel"
	}

	return "Esc: back | p: provision | a: due soon | o: overdue | t: transition | x: reparse | r: refresh"
}

func (m InvoiceModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.items = msg.invoices
		m.refreshTable()

		return m, nil

	case invoiceActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = ErrorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		}

		m.state = invoiceStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 14)
		return m, nil
	}

	if m.state == invoiceStateTransition {
		return m.updateTransition(msg)
	}

	return m.updateBrowse(msg)
}

func (m InvoiceModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "q":
			return m, Back
		case "p":
			m.provisionFilterIdx = (m.provisionFilterIdx + 1) % len(provisionFilters)
			return m, m.loadCmd()
		case "a":
			m.dueOnly = !m.dueOnly
			return m, m.loadCmd()
		case "o":
			m.overdueOnly = !m.overdueOnly
			return m, m.loadCmd()
		case "r":
			m.status = ""
			return m, m.loadCmd()
		case "t":
			return m.enterTransition()
		case "x":
			if inv := m.selected(); inv != nil {
				return m, m.reparseCmd(inv)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoiceModel) enterTransition() (tea.Model, tea.Cmd) {
	inv := m.selected()
	if inv == nil {
		return m, nil
	}

	next := provision.Next(inv.EstadoProvision)
	if len(next) == 0 {
		m.status = fmt.Sprintf("%s is %s and cannot move.", inv.Numero, inv.EstadoProvision)
		return m, nil
	}

	options := make([]huh.Option[string], 0, len(next))
	for _, st := range next {
		options = append(options, huh.NewOption(string(st), string(st)))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("to").
				Title("Move to").
				Options(options...),

			huh.NewInput().
				Key("fecha").
				Title("Provision date").
				Placeholder("YYYY-MM-DD, empty for today").
				Validate(func(s string) error {
					if s == "" {
						return nil
					}

					_, err := time.Parse(time.DateOnly, s)

					return err
				}),
		),
	).WithWidth(40).WithShowHelp(false)

	m.state = invoiceStateTransition
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoiceModel) updateTransition(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoiceStateBrowse
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

	params := invoice.TransitionParams{To: provision.State(m.form.GetString("to"))}
	if raw := m.form.GetString("fecha"); raw != "" {
		if fecha, err := time.Parse(time.DateOnly, raw); err == nil {
			params.FechaProvision = &fecha
		}
	}

	return m, m.transitionCmd(m.selected(), params)
}

func (m InvoiceModel) selected() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}

	return m.items[idx]
}

func (m InvoiceModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	provisionLabel := "All"
	if st := provisionFilters[m.provisionFilterIdx]; st != nil {
		provisionLabel = string(*st)
	}

	header := fmt.Sprintf(
		"Filter: [p] Provision: %s | [a] Due soon: %s | [o] Overdue: %s | %d shown",
		activeStyle(provisionLabel), activeStyle(onOff(m.dueOnly)), activeStyle(onOff(m.overdueOnly)), len(m.items),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if inv := m.selected(); inv != nil {
		side := m.detail(inv)
		if m.state == invoiceStateTransition && m.form != nil {
			side = fmt.Sprintf("Transition %s\n\n%s", inv.Numero, m.form.View())
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(44).
			Render(side)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m InvoiceModel) detail(inv *invoice.Invoice) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Invoice %s", orDash(inv.Numero))))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Provider", orDash(inv.ProviderName)},
		{"Work order", orDash(inv.WorkOrderNumber)},
		{"Cost type", orDash(inv.CostTypeCode)},
		{"Source", string(inv.Source)},
		{"Payment", fmt.Sprintf("%s (%s)", inv.EstadoPago, orDash(string(inv.TipoPago)))},
		{"Applicable", FormatMoney(inv.MontoAplicable, inv.Moneda)},
		{"Paid", FormatMoney(inv.MontoPagado, inv.Moneda)},
		{"Provisioned", FormatDate(inv.FechaProvision)},
		{"Billed", FormatDate(inv.FechaFacturacion)},
		{"MBL", orDash(inv.MBL)},
		{"HBL", orDash(inv.HBL)},
		{"Container", orDash(inv.Contenedor)},
	}

	for _, r := range rows {
		fmt.Fprintf(&b, "%-12s %s\n", r[0]+":", r[1])
	}

	if inv.Linked() {
		b.WriteString("\nMirrors its work order's provision.")
	}

	if inv.AlertaVencimiento {
		b.WriteString("\n" + ErrorStyle.Render("Due soon."))
	}

	return b.String()
}

func (m *InvoiceModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.items))

	for _, inv := range m.items {
		alert := ""
		if inv.AlertaVencimiento {
			alert = "!"
		}

		rows = append(rows, table.Row{
			Truncate(orDash(inv.Numero), 14),
			Truncate(inv.ProviderName, 18),
			inv.WorkOrderNumber,
			FormatDate(inv.FechaEmision),
			FormatDate(inv.FechaVencimiento),
			FormatMoney(inv.Monto, inv.Moneda),
			FormatMoney(inv.Pendiente(), inv.Moneda),
			string(inv.EstadoProvision),
			alert,
		})
	}

	m.table.SetRows(rows)
}

func (m InvoiceModel) filter() invoice.ListFilter {
	filter := invoice.ListFilter{
		EstadoProvision: provisionFilters[m.provisionFilterIdx],
		Overdue:         m.overdueOnly,
		Limit:           500,
	}

	if m.dueOnly {
		filter.DueAlert = new(true)
	}

	return filter
}

type loadInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

type invoiceActionMsg struct {
	status string
	err    error
}

func (m InvoiceModel) loadCmd() tea.Cmd {
	filter := m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invs, err := m.invoices.List(ctx, filter)

		return loadInvoicesMsg{invoices: invs, err: err}
	}
}

func (m InvoiceModel) transitionCmd(inv *invoice.Invoice, params invoice.TransitionParams) tea.Cmd {
	if inv == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.invoices.Transition(ctx, inv.ID, params); err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: fmt.Sprintf("%s moved to %s.", orDash(inv.Numero), params.To)}
	}
}

const reparseTimeout = time.Minute

func (m InvoiceModel) reparseCmd(inv *invoice.Invoice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reparseTimeout)
		defer cancel()

		res, err := m.invoices.Reparse(ctx, inv.ID)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		if len(res.Extracted) == 0 {
			return invoiceActionMsg{status: "Nothing new extracted."}
		}

		return invoiceActionMsg{status: "Extracted: " + strings.Join(res.Extracted, ", ")}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}

	return "off"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
