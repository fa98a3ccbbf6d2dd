package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/client"
)

// ReviewModel walks the pending client similarity matches one at a time.
type ReviewModel struct {
	CommonModel
	clients *client.Service

	queue   []*client.Match
	current *client.Match

	notesInput textinput.Model
	rejecting  bool

	status     string
	loading    bool
	totalCount int
	merged     int
	rejected   int
}

func NewReviewModel(clients *client.Service) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Why these are different clients (optional)"
	ti.Width = 60

	return ReviewModel{
		clients:    clients,
		notesInput: ti,
		loading:    true,
	}
}

func (m ReviewModel) Title() string { return "Client Matches" }

func (m ReviewModel) ShortHelp() string {
	if m.rejecting {
		return "Enter: reject | Esc: cancel"
	}

	return "1/2: keep that name | r: reject | s: skip | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadMatchesCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		if m.rejecting {
			return m.updateRejecting(msg)
		}

		switch msg.String() {
		case "esc", "q":
			return m, Back
		}

		if m.current == nil {
			return m, nil
		}

		switch msg.String() {
		case "1":
			return m, m.acceptCmd(m.current, m.current.AliasA)
		case "2":
			return m, m.acceptCmd(m.current, m.current.AliasB)
		case "r":
			m.rejecting = true
			m.notesInput.SetValue("")
			m.notesInput.Focus()

			return m, textinput.Blink
		case "s":
			m.next()
		}

	case loadMatchesMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading matches: %v", msg.err)
			break
		}

		m.queue = msg.matches
		m.totalCount = len(m.queue)

		if len(m.queue) == 0 {
			m.status = "No pending client matches."
			break
		}

		m.next()

	case reviewResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			break
		}

		if msg.merged {
			m.merged++
		} else {
			m.rejected++
		}

		m.next()
	}

	return m, nil
}

func (m ReviewModel) updateRejecting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.rejecting = false
		m.notesInput.Blur()

		return m, nil
	case tea.KeyEnter:
		m.rejecting = false
		m.notesInput.Blur()

		return m, m.rejectCmd(m.current, m.notesInput.Value())
	}

	var cmd tea.Cmd
	m.notesInput, cmd = m.notesInput.Update(msg)

	return m, cmd
}

func (m *ReviewModel) next() {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = fmt.Sprintf("All done: %d merged, %d rejected.", m.merged, m.rejected)

		return
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)
}

func (m ReviewModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	switch {
	case m.loading:
		return style.Render("Loading matches...")
	case m.current == nil:
		return style.Render(m.status + "\n\n(Esc to back)")
	}

	mt := m.current
	info := fmt.Sprintf(
		"Similarity: %d\n\n  1) %s\n  2) %s\n",
		mt.Score, HeaderStyle.Render(mt.NameA), HeaderStyle.Render(mt.NameB),
	)

	help := "1/2: keep that name and merge the other into it | r: different clients | s: skip | Esc: back"
	if m.rejecting {
		help = "Notes:\n" + m.notesInput.View() + "\n\n(Enter to reject, Esc to cancel)"
	}

	return style.Render(fmt.Sprintf("%s\n\n%s\n%s", m.status, info, help))
}

type loadMatchesMsg struct {
	matches []*client.Match
	err     error
}

type reviewResultMsg struct {
	merged bool
	err    error
}

func (m ReviewModel) loadMatchesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		matches, err := m.clients.ListMatches(ctx, client.MatchPending)

		return loadMatchesMsg{matches: matches, err: err}
	}
}

func (m ReviewModel) acceptCmd(mt *client.Match, keep uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.clients.AcceptMatch(ctx, mt.ID, keep)

		return reviewResultMsg{merged: true, err: err}
	}
}

func (m ReviewModel) rejectCmd(mt *client.Match, notes string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return reviewResultMsg{err: m.clients.RejectMatch(ctx, mt.ID, notes)}
	}
}
