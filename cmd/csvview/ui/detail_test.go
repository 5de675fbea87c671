package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvview/internal/dataset"
)

func testFields() []dataset.Field {
	return []dataset.Field{
		{Label: "id", Value: "7"},
		{Label: "name", Value: "Ada Lovelace"},
		{Label: "note", Value: ""},
	}
}

func TestDetailModel_CursorBounds(t *testing.T) {
	d := NewDetailModel(testFields(), 7, 10, time.Second, DefaultStyles())

	d, _ = d.Update(keyRunes("k"))
	assert.Equal(t, 0, d.Cursor())

	for i := 0; i < 5; i++ {
		d, _ = d.Update(keyRunes("j"))
	}
	assert.Equal(t, 2, d.Cursor())

	view := d.View()
	assert.Contains(t, view, "Row 7 of 10")
	assert.Contains(t, view, "Ada Lovelace")
	assert.Contains(t, view, "(empty)")
}

func TestDetailModel_CopyMarksPerField(t *testing.T) {
	var copied []string
	oldClipboard := clipboardWriteAll
	clipboardWriteAll = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	defer func() { clipboardWriteAll = oldClipboard }()

	d := NewDetailModel(testFields(), 1, 1, time.Second, DefaultStyles())

	d, cmd := d.Update(keyRunes("y"))
	require.NotNil(t, cmd)
	first := cmd().(copiedMsg)

	d, _ = d.Update(keyRunes("j"))
	d, cmd = d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	second := cmd().(copiedMsg)

	assert.Equal(t, []string{"7", "Ada Lovelace"}, copied)

	d, _ = d.Update(first)
	d, _ = d.Update(second)
	assert.True(t, d.Copied(0))
	assert.True(t, d.Copied(1), "each field keeps its own mark")

	d, _ = d.Update(copyResetMsg{modal: d.id, field: 0, seq: first.seq})
	assert.False(t, d.Copied(0))
	assert.True(t, d.Copied(1))
}

func TestDetailModel_RecopyRestartsTimer(t *testing.T) {
	oldClipboard := clipboardWriteAll
	clipboardWriteAll = func(string) error { return nil }
	defer func() { clipboardWriteAll = oldClipboard }()

	d := NewDetailModel(testFields(), 1, 1, time.Second, DefaultStyles())

	d, cmd := d.Update(keyRunes("c"))
	first := cmd().(copiedMsg)
	d, _ = d.Update(first)

	d, cmd = d.Update(keyRunes("c"))
	second := cmd().(copiedMsg)
	d, _ = d.Update(second)

	require.NotEqual(t, first.seq, second.seq)
	d, _ = d.Update(copyResetMsg{modal: d.id, field: 0, seq: first.seq})
	assert.True(t, d.Copied(0), "stale reset must not clear a newer mark")

	d, _ = d.Update(copyResetMsg{modal: d.id, field: 0, seq: second.seq})
	assert.False(t, d.Copied(0))
}

func TestDetailModel_CopyFailure(t *testing.T) {
	oldClipboard := clipboardWriteAll
	clipboardWriteAll = func(string) error { return errors.New("no clipboard utility") }
	defer func() { clipboardWriteAll = oldClipboard }()

	d := NewDetailModel(testFields(), 1, 1, time.Second, DefaultStyles())
	_, cmd := d.Update(keyRunes("c"))
	d, cmd = d.Update(cmd())

	assert.Nil(t, cmd)
	assert.False(t, d.Copied(0))
	assert.Contains(t, d.View(), "copy failed")
}

func TestDetailModel_Close(t *testing.T) {
	d := NewDetailModel(testFields(), 1, 1, time.Second, DefaultStyles())

	_, cmd := d.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, detailClosedMsg{}, cmd())
}

func TestDetailModel_EmptyFieldsCopyIsNoop(t *testing.T) {
	d := NewDetailModel(nil, 1, 1, 0, DefaultStyles())

	_, cmd := d.Update(keyRunes("c"))
	assert.Nil(t, cmd)
	assert.Equal(t, 2*time.Second, d.feedback)
}
