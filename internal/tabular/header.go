package tabular

import "strings"

// Trusted column offsets. Header text for these fields is unreliable in the
// observed export (the cells mix header text with sample data), so positional
// access is the stronger contract. Kept separate from name-based lookup on
// purpose; do not unify them.
const (
	ColFullName = 10
	ColEmail    = 11
	ColPhone    = 14
)

// Header is the best-effort field-name list recovered from the export's
// header row. It serves name-based lookups only; the trusted offsets above
// bypass it entirely.
type Header struct {
	names []string
}

// RecoverHeader derives field names from the first parsed row. Header cells
// may contain header text concatenated with sample data ("Company_Name Acme
// Corp"), so each name is the token preceding the first whitespace.
func RecoverHeader(row Row) Header {
	names := make([]string, len(row))
	for i, cell := range row {
		fields := strings.Fields(cell)
		if len(fields) > 0 {
			names[i] = fields[0]
		}
	}
	return Header{names: names}
}

// Names returns the recovered field names in column order.
func (h Header) Names() []string {
	return h.names
}

// Value looks up a field by partial name: a case-insensitive substring match
// against the recovered headers, returning the first matching column's value
// from row, or "" when nothing matches.
func (h Header) Value(row Row, partial string) string {
	if partial == "" {
		return ""
	}
	needle := strings.ToLower(partial)
	for i, name := range h.names {
		if strings.Contains(strings.ToLower(name), needle) {
			return row.At(i)
		}
	}
	return ""
}

// Index returns the column index of the first header matching partial, or -1.
func (h Header) Index(partial string) int {
	if partial == "" {
		return -1
	}
	needle := strings.ToLower(partial)
	for i, name := range h.names {
		if strings.Contains(strings.ToLower(name), needle) {
			return i
		}
	}
	return -1
}
