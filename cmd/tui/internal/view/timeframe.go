package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Period is a closing range an accountant reports on.
type Period int

const (
	PeriodThisMonth Period = iota
	PeriodLastMonth
	PeriodThisQuarter
	PeriodLastQuarter
	PeriodThisYear
	PeriodAll
	PeriodCustom
)

var periodLabels = map[Period]string{
	PeriodThisMonth:   "This Month",
	PeriodLastMonth:   "Last Month",
	PeriodThisQuarter: "This Quarter",
	PeriodLastQuarter: "Last Quarter",
	PeriodThisYear:    "This Year",
	PeriodAll:         "All Time",
	PeriodCustom:      "Custom Range",
}

func (p Period) String() string {
	if l, ok := periodLabels[p]; ok {
		return l
	}

	return "Unknown"
}

// Bounds returns the first and last day of the period relative to now. It
// is undefined for PeriodAll and PeriodCustom.
func (p Period) Bounds(now time.Time) (time.Time, time.Time) {
	y, mo, _ := now.Date()
	month := time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC)
	quarter := time.Date(y, time.Month((int(mo)-1)/3*3+1), 1, 0, 0, 0, 0, time.UTC)

	switch p {
	case PeriodThisMonth:
		return month, month.AddDate(0, 1, -1)
	case PeriodLastMonth:
		return month.AddDate(0, -1, 0), month.AddDate(0, 0, -1)
	case PeriodThisQuarter:
		return quarter, quarter.AddDate(0, 3, -1)
	case PeriodLastQuarter:
		return quarter.AddDate(0, -3, 0), quarter.AddDate(0, 0, -1)
	case PeriodThisYear:
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(y, 12, 31, 0, 0, 0, 0, time.UTC)
	}

	return time.Time{}, time.Time{}
}

// TimeframeSelectedMsg carries the chosen range. Start and End are whole
// dates; both are zero when All is set.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

// TimeframePicker lets the user pick a Period or type a custom range.
type TimeframePicker struct {
	custom   bool
	selected Period
	initial  Period
	now      func() time.Time

	inputs [2]textinput.Model
	focus  int

	err error
}

func NewTimeframePicker(initial Period) TimeframePicker {
	var inputs [2]textinput.Model

	for i, prompt := range []string{"From: ", "To:   "} {
		in := textinput.New()
		in.Placeholder = "YYYY-MM-DD"
		in.CharLimit = 10
		in.Width = 12
		in.Prompt = prompt
		inputs[i] = in
	}

	return TimeframePicker{
		selected: initial,
		initial:  initial,
		now:      time.Now,
		inputs:   inputs,
	}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	if !m.custom {
		if isKey {
			return m.updateSelect(keyMsg)
		}

		return m, nil
	}

	if isKey {
		switch keyMsg.String() {
		case "tab", "shift+tab":
			return m.toggleFocus()
		case "enter":
			return m.submitCustom()
		case "esc":
			m.custom = false
			m.err = nil

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	return m, cmd
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > PeriodThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < PeriodCustom {
			m.selected++
		}
	case tea.KeyEnter:
		switch m.selected {
		case PeriodCustom:
			m.custom = true
			m.focus = 0
			m.inputs[1].Blur()

			return m, m.inputs[0].Focus()
		case PeriodAll:
			return m, emit(TimeframeSelectedMsg{All: true})
		}

		start, end := m.selected.Bounds(m.now())

		return m, emit(TimeframeSelectedMsg{Start: start, End: end})
	}

	return m, nil
}

func (m TimeframePicker) toggleFocus() (TimeframePicker, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = 1 - m.focus

	return m, m.inputs[m.focus].Focus()
}

func (m TimeframePicker) submitCustom() (TimeframePicker, tea.Cmd) {
	start, end, err := parseRange(m.inputs[0].Value(), m.inputs[1].Value())
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil

	return m, emit(TimeframeSelectedMsg{Start: start, End: end})
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(from))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.Parse(time.DateOnly, strings.TrimSpace(to))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date is before start date")
	}

	return start, end, nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m TimeframePicker) View() string {
	var b strings.Builder

	if m.custom {
		b.WriteString("Emission date range:\n\n")
		b.WriteString(m.inputs[0].View() + "\n")
		b.WriteString(m.inputs[1].View() + "\n\n")
		b.WriteString("(Enter to confirm, Tab to switch, Esc to go back)")
	} else {
		b.WriteString("Invoices emitted in:\n\n")

		for p := PeriodThisMonth; p <= PeriodCustom; p++ {
			cursor := "  "
			label := p.String()

			if p == m.selected {
				cursor = "> "
				label = activeStyle(label)
			}

			b.WriteString(cursor + label + "\n")
		}

		b.WriteString("\n(Enter to select, Esc to go back)")
	}

	if m.err != nil {
		b.WriteString("\n\n" + ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return b.String()
}

// IsSelecting reports whether the picker shows the period list rather than
// the custom range inputs.
func (m TimeframePicker) IsSelecting() bool {
	return !m.custom
}

func (m *TimeframePicker) Reset() {
	m.custom = false
	m.selected = m.initial
	m.err = nil
	m.focus = 0

	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
}
