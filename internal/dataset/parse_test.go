package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString_HeaderMode(t *testing.T) {
	ds, err := ParseString("name,city\nAna,Lisbon\nBo,Oslo\n", Options{Source: "people.csv"})
	require.NoError(t, err)

	assert.Equal(t, "people.csv", ds.Source)
	assert.Equal(t, ',', ds.Delimiter)
	if diff := cmp.Diff([]string{"name", "city"}, ds.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "Oslo", ds.Records[1].Get(ds.Headers, "city"))
}

func TestParseString_SkipsEmptyLines(t *testing.T) {
	ds, err := ParseString("a,b\n\n1,2\n\n\n3,4\n", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestParseString_Empty(t *testing.T) {
	ds, err := ParseString("", Options{})
	require.NoError(t, err)
	assert.Empty(t, ds.Headers)
	assert.Zero(t, ds.Len())
}

func TestParseString_HeaderOnly(t *testing.T) {
	ds, err := ParseString("a,b,c\n", Options{})
	require.NoError(t, err)
	assert.Len(t, ds.Headers, 3)
	assert.Zero(t, ds.Len())
}

func TestParseString_StripsBOM(t *testing.T) {
	ds, err := ParseString("\ufeffid,val\n1,x\n", Options{})
	require.NoError(t, err)
	assert.Equal(t, "id", ds.Headers[0])
}

func TestParseString_ShortAndLongRows(t *testing.T) {
	ds, err := ParseString("a,b,c\n1\n1,2,3,4,5\n", Options{})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	short := ds.Records[0]
	assert.Equal(t, []string{"1", "", ""}, short.Values)
	assert.Equal(t, 2, short.Missing)

	long := ds.Records[1]
	assert.Equal(t, []string{"1", "2", "3"}, long.Values)
	assert.Equal(t, []string{"4", "5"}, long.Extra)

	fields := long.Fields(ds.Headers)
	want := []Field{
		{Label: "a", Value: "1"},
		{Label: "b", Value: "2"},
		{Label: "c", Value: "3"},
		{Label: ExtraLabel, Value: "4,5"},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParseString_DuplicateHeaders(t *testing.T) {
	ds, err := ParseString("id,name,name,id,name_1\n1,2,3,4,5\n", Options{})
	require.NoError(t, err)
	want := []string{"id", "name", "name_1", "id_1", "name_1_1"}
	if diff := cmp.Diff(want, ds.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestParseString_QuotedFields(t *testing.T) {
	text := "id,notes\n1,\"multi\nline, with comma\"\n2,\"say \"\"hi\"\"\"\n"
	ds, err := ParseString(text, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "multi\nline, with comma", ds.Records[0].Values[1])
	assert.Equal(t, `say "hi"`, ds.Records[1].Values[1])
}

func TestParseString_LazyQuotes(t *testing.T) {
	ds, err := ParseString("a,b\n1,he said \"ok\n", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestParseString_ForcedDelimiter(t *testing.T) {
	ds, err := ParseString("a;b\n1;2\n", Options{Delimiter: ','})
	require.NoError(t, err)
	assert.Equal(t, []string{"a;b"}, ds.Headers)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParse_ReadError(t *testing.T) {
	_, err := Parse(failingReader{}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestParse_Reader(t *testing.T) {
	ds, err := Parse(strings.NewReader("x\ty\n1\t2\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, '\t', ds.Delimiter)
	assert.Equal(t, []string{"x", "y"}, ds.Headers)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
		{"semicolon", "a;b\n1;2\n", ';'},
		{"single column falls back", "only\n1\n2\n", ','},
		{"empty falls back", "", ','},
		{"quoted semicolons do not win", "name,notes\nx,\"a;b;c\"\ny,\"d;e\"\n", ','},
		{"stable count beats wide count", "a,b;c;d\n1,2;3\n4,5;6;7;8\n", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, string(tt.want), string(DetectDelimiter(tt.sample)))
		})
	}
}
