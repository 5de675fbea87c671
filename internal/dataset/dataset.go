package dataset

import (
	"strings"

	"golang.org/x/text/cases"
)

// ExtraLabel names the pseudo-column that holds fields past the header count.
const ExtraLabel = "__parsed_extra"

// Dataset is a parsed CSV file.
type Dataset struct {
	Source    string
	Headers   []string
	Records   []Record
	Delimiter rune
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Record is one data row aligned with Dataset.Headers.
type Record struct {
	Values  []string
	Missing int      // trailing values padded because the row was short
	Extra   []string // fields beyond the header count
}

// Field is a (label, value) pair shown in the row detail view.
type Field struct {
	Label string
	Value string
}

// Get returns the value under header, or "" when absent.
func (r Record) Get(headers []string, header string) string {
	for i, h := range headers {
		if h == header && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return ""
}

// Fields returns the record as ordered label/value pairs.
func (r Record) Fields(headers []string) []Field {
	fields := make([]Field, 0, len(headers)+1)
	for i, h := range headers {
		v := ""
		if i < len(r.Values) {
			v = r.Values[i]
		}
		fields = append(fields, Field{Label: h, Value: v})
	}
	if len(r.Extra) > 0 {
		fields = append(fields, Field{Label: ExtraLabel, Value: strings.Join(r.Extra, ",")})
	}
	return fields
}

// Matcher performs case-insensitive substring matching against records.
// A Matcher is not safe for concurrent use.
type Matcher struct {
	term   string
	folder cases.Caser
}

// NewMatcher folds term once for repeated matching.
func NewMatcher(term string) *Matcher {
	m := &Matcher{folder: cases.Fold()}
	m.term = m.folder.String(term)
	return m
}

// Empty reports whether the matcher accepts everything.
func (m *Matcher) Empty() bool {
	return m.term == ""
}

// Match reports whether any value or extra field of r contains the term.
func (m *Matcher) Match(r Record) bool {
	if m.term == "" {
		return true
	}
	for _, v := range r.Values {
		if strings.Contains(m.folder.String(v), m.term) {
			return true
		}
	}
	if len(r.Extra) > 0 && strings.Contains(m.folder.String(strings.Join(r.Extra, ",")), m.term) {
		return true
	}
	return false
}

// Matches is a convenience wrapper for one-off checks.
func (r Record) Matches(term string) bool {
	return NewMatcher(term).Match(r)
}
