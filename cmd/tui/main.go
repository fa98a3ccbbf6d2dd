package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/forwarder/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/forwarder/internal/app"
	"github.com/MrJamesThe3rd/forwarder/internal/config"
)

type screen struct {
	key   string
	title string
	open  func(a *app.App) view.View
}

var screens = []screen{
	{"1", "Import Work Orders", func(a *app.App) view.View { return view.NewImportModel(a.Importer) }},
	{"2", "Review Client Matches", func(a *app.App) view.View { return view.NewReviewModel(a.Clients) }},
	{"3", "Work Orders", func(a *app.App) view.View { return view.NewListModel(a.WorkOrders) }},
	{"4", "Invoices", func(a *app.App) view.View { return view.NewInvoiceModel(a.Invoices) }},
	{"5", "Export Invoice Documents", func(a *app.App) view.View { return view.NewExportModel(a.Export) }},
}

var helpStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(1)

// model shows the menu until a screen is opened; each screen starts fresh.
type model struct {
	app    *app.App
	active view.View
	size   tea.WindowSizeMsg
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case view.BackMsg:
		m.active = nil
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.active == nil {
			return m.updateMenu(msg)
		}
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	m.active = next.(view.View)

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return m, tea.Quit
	}

	for _, s := range screens {
		if msg.String() != s.key {
			continue
		}

		m.active = s.open(m.app)
		cmd := m.active.Init()

		if m.size.Width > 0 {
			resized, sizeCmd := m.active.Update(m.size)
			m.active = resized.(view.View)
			cmd = tea.Batch(cmd, sizeCmd)
		}

		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	if m.active != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			view.HeaderStyle.PaddingLeft(1).Render(m.active.Title()),
			m.active.View(),
			helpStyle.Render(m.active.ShortHelp()),
		)
	}

	menu := view.HeaderStyle.Render(m.app.Config.App.Name) + "\n\n"
	for _, s := range screens {
		menu += s.key + ". " + s.title + "\n"
	}

	return lipgloss.NewStyle().Padding(2).Render(menu + "\nq. Quit")
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file when one is set.
	logger := slog.New(slog.DiscardHandler)
	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()

		logger = slog.New(slog.NewTextHandler(f, nil))
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Bootstrap(context.Background()); err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model{app: a}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
