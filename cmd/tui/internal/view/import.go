package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateOperationSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

var operationTypes = []string{"import", "export"}

type ImportModel struct {
	CommonModel
	importService *importer.Service

	state           importState
	filePicker      filepicker.Model
	operationCursor int

	batchID      uuid.UUID
	conflicts    []importer.Conflict
	conflictList list.Model
	// selected marks conflicts where the sheet value should win.
	selected map[int]bool

	status   string
	warnings []importer.Warning
	err      error
}

func NewImportModel(impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".xlsx", ".xlsm"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		filePicker:    fp,
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Work Orders" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateConflicts:
		return "Space: use sheet value | a: all | n: none | Enter: confirm | Esc: keep batch pending"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateOperationSelect {
			return m.updateOperationSelect(msg)
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if !msg.result.Pending() {
			m.state = importStateResult
			m.status = summarize(msg.result)
			m.warnings = msg.result.Warnings

			return m, nil
		}

		m.batchID = *msg.result.BatchID
		m.conflicts = msg.result.Conflicts
		m.warnings = msg.result.Warnings
		m.selected = make(map[int]bool)
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, c := range m.conflicts {
			items[i] = conflictItem{conflict: c, index: i}
		}

		delegate := conflictDelegate{selected: &m.selected}
		m.conflictList = list.New(items, delegate, 80, 20)
		m.conflictList.Title = "Values changed since a stronger source wrote them"
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = summarize(msg.result)
		m.warnings = msg.result.Warnings

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path, operationTypes[m.operationCursor])
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateOperationSelect
		return m, nil
	case importStateResult:
		m.state = importStateOperationSelect
		m.err = nil
		m.status = ""
		m.warnings = nil

		return m, nil
	case importStateConflicts:
		// The batch stays pending until it expires or is resolved elsewhere.
		m.state = importStateResult
		m.status = fmt.Sprintf("Batch %s left pending.", m.batchID)
		m.conflicts = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateOperationSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.operationCursor > 0 {
			m.operationCursor--
		}
	case tea.KeyDown:
		if m.operationCursor < len(operationTypes)-1 {
			m.operationCursor++
		}
	case tea.KeyEnter:
		m.state = importStateFilePick
		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateOperationSelect:
		return m.viewOperationSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewOperationSelect() string {
	s := "Operation type of the sheet:\n\n"

	for i, op := range operationTypes {
		cursor := " "
		if i == m.operationCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, op)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select sheet to import (%s):\n\n%s", operationTypes[m.operationCursor], m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(ErrorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	var b strings.Builder
	b.WriteString(SuccessStyle.Render(m.status))

	if len(m.warnings) > 0 {
		b.WriteString("\n\nWarnings:\n")

		for i, w := range m.warnings {
			if i == 15 {
				fmt.Fprintf(&b, "  ... and %d more\n", len(m.warnings)-i)
				break
			}

			fmt.Fprintf(&b, "  %s\n", formatWarning(w))
		}
	}

	b.WriteString("\n\n(Esc to go back)")

	return style.Render(b.String())
}

func summarize(r *importer.Result) string {
	if r.FileSkipped {
		return "File already imported, nothing changed."
	}

	return fmt.Sprintf("Created %d, updated %d, skipped %d work orders.", r.Created, r.Updated, r.Skipped)
}

func formatWarning(w importer.Warning) string {
	switch {
	case w.Line > 0 && w.OT != "":
		return fmt.Sprintf("line %d (%s): %s", w.Line, w.OT, w.Message)
	case w.Line > 0:
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	case w.OT != "":
		return fmt.Sprintf("%s: %s", w.OT, w.Message)
	}

	return w.Message
}

// Messages

type importResultMsg struct {
	result *importer.Result
	err    error
}

type confirmResultMsg struct {
	result *importer.Result
	err    error
}

func operator() string {
	if u := os.Getenv("USER"); u != "" {
		return "tui:" + u
	}

	return "tui"
}

func (m ImportModel) importCmd(path, operationType string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importService.Import(ctx, importer.ImportParams{
			Filename:      filepath.Base(path),
			Data:          data,
			OperationType: operationType,
			ProcessedBy:   operator(),
		})
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	batchID := m.batchID
	conflicts := m.conflicts
	selected := m.selected

	return func() tea.Msg {
		inputs := make([]importer.ResolutionInput, len(conflicts))

		for i, c := range conflicts {
			res := importer.KeepCurrent
			if selected[i] {
				res = importer.UseNew
			}

			inputs[i] = importer.ResolutionInput{OT: c.OT, Field: c.Field, Resolution: res}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importService.ResolveBatch(ctx, batchID, inputs)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{result: result}
	}
}

// Conflict list item

type conflictItem struct {
	conflict importer.Conflict
	index    int
}

func (i conflictItem) Title() string       { return "" }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return "" }

// Conflict list delegate

type conflictDelegate struct {
	selected *map[int]bool
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	c := item.conflict

	line1 := fmt.Sprintf("%s%s %s  %s", cursor, checkbox, c.OT, c.Field)
	line2 := fmt.Sprintf("      Current (%s): %s", c.CurrentSource, Truncate(c.CurrentValue, 60))
	line3 := fmt.Sprintf("      Sheet:         %s", Truncate(c.NewValue, 60))

	fmt.Fprintf(w, "%s\n%s\n%s", line1, line2, line3)
}
