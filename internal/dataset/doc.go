// Package dataset parses CSV text into a header-keyed Dataset.
//
// Parsing runs in header mode: the first non-empty row names the columns and
// every following row becomes a Record aligned with those names. Short rows
// are padded, long rows keep their surplus fields in Record.Extra, and
// completely empty lines are skipped.
package dataset
