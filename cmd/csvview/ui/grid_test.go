package ui

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	csvtable "csvview/internal/table"
)

func TestGridColumnsCapWidth(t *testing.T) {
	v := csvtable.View{
		Headers:    []string{"a", "description"},
		Rows:       [][]string{{"x", "a rather long value that goes past the cap"}},
		FirstIndex: 1,
	}

	cols := gridColumns(v, 10)
	assert.Len(t, cols, 3)
	assert.Equal(t, rowNumberTitle, cols[0].Title)
	assert.Equal(t, 1, cols[1].Width)
	assert.Equal(t, 10, cols[2].Width)
	assert.Equal(t, "descripti…", cols[2].Title)
}

func TestGridRowsNumberedAndFlattened(t *testing.T) {
	v := csvtable.View{
		Headers:    []string{"a", "b"},
		Rows:       [][]string{{"1", "line\none"}, {"2"}},
		FirstIndex: 51,
	}

	got := gridRows(v)
	want := [][]string{{"51", "1", "line one"}, {"52", "2", ""}}
	for i := range want {
		if diff := cmp.Diff(want[i], []string(got[i])); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestCleanCell(t *testing.T) {
	assert.Equal(t, "a b c d", cleanCell("a\r\nb\tc\rd"))
	assert.Equal(t, "", truncateCell("abc", 0))
	assert.Equal(t, "ab…", truncateCell("abcdef", 3))
}
