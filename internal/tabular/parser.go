// Package tabular recovers ordered rows and usable field names from the
// loosely-schematized spreadsheet export.
//
// The export is produced by an externally-edited sheet: column order and
// header text are not guaranteed, quoting is loose, and downstream consumers
// expect raw extracted substrings. encoding/csv is deliberately not used
// here; it unescapes doubled quotes and rejects bare quotes, both of which
// would change the substrings consumers depend on.
package tabular

import (
	"fmt"
	"strings"

	"github.com/apexfield/clientsync/pkg/types"
)

// Row is an ordered sequence of field strings.
type Row []string

// At returns the field at zero-based index i, or "" if out of range. The
// source routinely has ragged rows, so absence is not an error.
func (r Row) At(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Parse turns raw comma-delimited text into ordered rows.
//
// A field whose first non-space character is a quote is quoted: it runs until
// a quote immediately followed by a delimiter, row break, or end of input.
// Embedded delimiters and newlines inside an open quote are field content.
// Quote characters are stripped only at those quoting boundaries; doubled
// quotes inside a quoted field stay raw (compatibility contract with the
// legacy consumers of this export).
//
// Unquoted fields are trimmed of surrounding whitespace. A trailing empty
// line is dropped. Empty input yields no rows and no error; the only failure
// is an unterminated quoted field, reported as types.ErrParse.
func Parse(raw string) ([]Row, error) {
	if raw == "" {
		return nil, nil
	}

	var (
		rows []Row
		row  Row
	)
	i := 0
	n := len(raw)
	for i < n {
		field, next, err := scanField(raw, i)
		if err != nil {
			return nil, err
		}
		row = append(row, field)

		if next >= n {
			rows = append(rows, row)
			row = nil
			break
		}
		switch raw[next] {
		case ',':
			i = next + 1
			if i >= n {
				// Trailing delimiter at end of input closes an empty field.
				row = append(row, "")
				rows = append(rows, row)
				row = nil
			}
		case '\r':
			if next+1 < n && raw[next+1] == '\n' {
				i = next + 2
			} else {
				i = next + 1
			}
			rows = append(rows, row)
			row = nil
		case '\n':
			i = next + 1
			rows = append(rows, row)
			row = nil
		}
	}

	// A terminal newline plus stray whitespace leaves an empty single-field
	// row behind; drop it.
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		if len(last) == 1 && last[0] == "" {
			rows = rows[:len(rows)-1]
		}
	}
	return rows, nil
}

// scanField extracts one field starting at i and returns it together with the
// position of the separator (or end of input) that terminated it.
func scanField(raw string, i int) (string, int, error) {
	n := len(raw)
	start := i
	for i < n && (raw[i] == ' ' || raw[i] == '\t') {
		i++
	}

	if i < n && raw[i] == '"' {
		i++ // opening quote
		var b strings.Builder
		for i < n {
			if raw[i] == '"' && closesQuote(raw, i+1) {
				i++
				// Anything between the closing quote and the separator is
				// stray and ignored.
				for i < n && raw[i] != ',' && raw[i] != '\n' && raw[i] != '\r' {
					i++
				}
				return b.String(), i, nil
			}
			b.WriteByte(raw[i])
			i++
		}
		return "", i, fmt.Errorf("%w: unterminated quote at offset %d", types.ErrParse, start)
	}

	j := i
	for j < n && raw[j] != ',' && raw[j] != '\n' && raw[j] != '\r' {
		j++
	}
	return strings.TrimSpace(raw[start:j]), j, nil
}

// closesQuote reports whether position i (just past a quote character) is a
// legal place for a quoted field to end: a separator, end of input, or only
// spaces before one of those. A quote anywhere else is field content.
func closesQuote(raw string, i int) bool {
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t') {
		i++
	}
	if i >= len(raw) {
		return true
	}
	return raw[i] == ',' || raw[i] == '\n' || raw[i] == '\r'
}
