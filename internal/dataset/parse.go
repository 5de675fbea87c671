package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Candidates tried by DetectDelimiter, in preference order.
var Candidates = []rune{',', '\t', '|', ';'}

const (
	bom          = "\ufeff"
	detectRows   = 10
	minAvgFields = 1.99
)

// Options control parsing.
type Options struct {
	// Source is a display name for the data, usually the file name.
	Source string

	// Delimiter forces a separator; zero means auto-detect.
	Delimiter rune
}

// ParseString parses CSV text.
func ParseString(text string, opts Options) (*Dataset, error) {
	text = strings.TrimPrefix(text, bom)

	delim := opts.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(text)
	}

	ds := &Dataset{Source: opts.Source, Delimiter: delim}

	r := newReader(strings.NewReader(text), delim)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return ds, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	ds.Headers = uniqueHeaders(header)

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(ds.Records)+1, err)
		}
		ds.Records = append(ds.Records, align(row, len(ds.Headers)))
	}
	return ds, nil
}

// Parse reads all of r and parses it as CSV.
func Parse(r io.Reader, opts Options) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseString(string(data), opts)
}

func newReader(r io.Reader, delim rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// align pads or splits a raw row against the header width.
func align(row []string, width int) Record {
	rec := Record{}
	switch {
	case len(row) == width:
		rec.Values = row
	case len(row) < width:
		rec.Values = make([]string, width)
		copy(rec.Values, row)
		rec.Missing = width - len(row)
	default:
		rec.Values = row[:width:width]
		rec.Extra = append([]string(nil), row[width:]...)
	}
	return rec
}

// uniqueHeaders renames repeated column names to name_1, name_2, ...
func uniqueHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := h
		for used[name] {
			seen[h]++
			name = h + "_" + strconv.Itoa(seen[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// DetectDelimiter guesses the field separator from the first rows of sample.
// The winner has the most stable field count across rows with an average
// above one field; ties go to the wider split. Defaults to ','.
func DetectDelimiter(sample string) rune {
	best := ','
	bestDelta := math.MaxInt
	bestAvg := 0.0

	for _, delim := range Candidates {
		r := newReader(strings.NewReader(sample), delim)
		var counts []int
		for len(counts) < detectRows {
			row, err := r.Read()
			if err != nil {
				break
			}
			counts = append(counts, len(row))
		}
		if len(counts) == 0 {
			continue
		}

		total, delta := 0, 0
		for i, c := range counts {
			total += c
			if i > 0 {
				d := c - counts[i-1]
				if d < 0 {
					d = -d
				}
				delta += d
			}
		}
		avg := float64(total) / float64(len(counts))
		if avg <= minAvgFields {
			continue
		}
		if delta < bestDelta || (delta == bestDelta && avg > bestAvg) {
			best, bestDelta, bestAvg = delim, delta, avg
		}
	}
	return best
}
