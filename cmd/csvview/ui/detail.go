package ui

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"csvview/internal/dataset"
	"csvview/internal/logging"
)

// clipboardWriteAll is swapped out in tests.
var clipboardWriteAll = clipboard.WriteAll

const copiedMark = "✓ copied"

// detailIDs numbers modals so copy messages reach only the modal that sent them.
var detailIDs atomic.Int64

// copiedMsg reports the outcome of a clipboard write for one field.
type copiedMsg struct {
	modal int64
	field int
	seq   int
	err   error
}

// copyResetMsg clears a copied mark once its feedback period ends.
type copyResetMsg struct {
	modal int64
	field int
	seq   int
}

// detailClosedMsg asks the parent to drop the modal.
type detailClosedMsg struct{}

// DetailModel shows every field of one row with per-field copy.
type DetailModel struct {
	id       int64
	fields   []dataset.Field
	rowNum   int
	total    int
	cursor   int
	copied   map[int]int // field -> seq of the copy that set the mark
	seq      int
	feedback time.Duration
	errMsg   string

	viewport viewport.Model
	help     help.Model
	keys     DetailKeyMap
	styles   Styles
	width    int
	height   int
}

// NewDetailModel builds the modal for row rowNum (1-based) of total.
func NewDetailModel(fields []dataset.Field, rowNum, total int, feedback time.Duration, styles Styles) DetailModel {
	if feedback <= 0 {
		feedback = 2 * time.Second
	}
	m := DetailModel{
		id:       detailIDs.Add(1),
		fields:   fields,
		rowNum:   rowNum,
		total:    total,
		copied:   make(map[int]int),
		feedback: feedback,
		viewport: viewport.New(60, 10),
		help:     help.New(),
		keys:     DefaultDetailKeyMap(),
		styles:   styles,
	}
	m.refresh()
	return m
}

// SetSize sizes the modal to the space it is given.
func (m *DetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(20, width-4)
	m.viewport.Height = max(3, height-6)
	m.refresh()
}

// Cursor returns the selected field index.
func (m DetailModel) Cursor() int {
	return m.cursor
}

// Copied reports whether field i currently shows the copied mark.
func (m DetailModel) Copied(i int) bool {
	_, ok := m.copied[i]
	return ok
}

// Update handles modal input.
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Close):
			return m, func() tea.Msg { return detailClosedMsg{} }
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.fields)-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			return m.copyField(m.cursor)
		}

	case copiedMsg:
		if msg.modal != m.id {
			return m, nil
		}
		if msg.err != nil {
			logging.UIWarn("Clipboard write failed: %v", msg.err)
			m.errMsg = fmt.Sprintf("copy failed: %v", msg.err)
			m.refresh()
			return m, nil
		}
		m.errMsg = ""
		m.copied[msg.field] = msg.seq
		m.refresh()
		id, field, seq := m.id, msg.field, msg.seq
		return m, tea.Tick(m.feedback, func(time.Time) tea.Msg {
			return copyResetMsg{modal: id, field: field, seq: seq}
		})

	case copyResetMsg:
		// A later copy of the same field restarts its timer.
		if msg.modal != m.id {
			return m, nil
		}
		if seq, ok := m.copied[msg.field]; ok && seq == msg.seq {
			delete(m.copied, msg.field)
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DetailModel) copyField(i int) (DetailModel, tea.Cmd) {
	if i < 0 || i >= len(m.fields) {
		return m, nil
	}
	m.seq++
	id, seq := m.id, m.seq
	value := m.fields[i].Value
	logging.UIDebug("Copying field %q (%d bytes)", m.fields[i].Label, len(value))
	return m, func() tea.Msg {
		return copiedMsg{modal: id, field: i, seq: seq, err: clipboardWriteAll(value)}
	}
}

func (m *DetailModel) refresh() {
	width := m.viewport.Width
	var sb strings.Builder
	cursorLine := 0
	line := 0
	for i, f := range m.fields {
		if i == m.cursor {
			cursorLine = line
		}
		label := m.styles.FieldLabel.Render(f.Label)
		if _, ok := m.copied[i]; ok {
			label += "  " + m.styles.Success.Render(copiedMark)
		}
		value := f.Value
		if value == "" {
			value = m.styles.Muted.Render("(empty)")
		}
		valueStyle := m.styles.FieldValue.Width(max(1, width-2))
		if i == m.cursor {
			valueStyle = m.styles.FieldSelected.Width(max(1, width-2))
			label = m.styles.Prompt.Render("▸ ") + label
		} else {
			label = "  " + label
		}
		block := label + "\n" + lipgloss.NewStyle().PaddingLeft(2).Render(valueStyle.Render(value))
		sb.WriteString(block)
		sb.WriteString("\n")
		line += lipgloss.Height(block)
		if i < len(m.fields)-1 {
			sb.WriteString("\n")
			line++
		}
	}
	m.viewport.SetContent(sb.String())

	// Keep the selected field on screen.
	if cursorLine < m.viewport.YOffset {
		m.viewport.SetYOffset(cursorLine)
	} else if bottom := m.viewport.YOffset + m.viewport.Height; cursorLine >= bottom {
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 2)
	}
}

// View renders the modal.
func (m DetailModel) View() string {
	title := m.styles.Title.Render(fmt.Sprintf("Row %d of %d", m.rowNum, m.total))
	body := m.viewport.View()
	footer := m.help.View(m.keys)
	if m.errMsg != "" {
		footer = m.styles.Error.Render(m.errMsg) + "\n" + footer
	}
	box := m.styles.Modal
	if m.width > 0 {
		box = box.Width(max(20, m.width-2))
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", footer))
}
