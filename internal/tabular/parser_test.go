package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexfield/clientsync/pkg/types"
)

func TestParse_Empty(t *testing.T) {
	rows, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParse_SimpleRows(t *testing.T) {
	rows, err := Parse("a,b,c\nd,e,f\n")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"a", "b", "c"}, rows[0])
	assert.Equal(t, Row{"d", "e", "f"}, rows[1])
}

func TestParse_TrimsUnquotedFields(t *testing.T) {
	rows, err := Parse("  a , b\t,c \n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"a", "b", "c"}, rows[0])
}

func TestParse_QuotedCommaAndNewline(t *testing.T) {
	rows, err := Parse("name,notes\n\"Smith, John\nSpecial notes\",ok\n")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Smith, John\nSpecial notes", rows[1][0])
	assert.Equal(t, "ok", rows[1][1])
}

func TestParse_DoubledQuotesStayRaw(t *testing.T) {
	// Quotes are stripped at quoting boundaries only. Internal doubled
	// quotes are returned as-is; legacy consumers expect the raw substring.
	rows, err := Parse("\"say \"\"hi\"\" now\",x\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `say ""hi"" now`, rows[0][0])
	assert.Equal(t, "x", rows[0][1])
}

func TestParse_QuotedFieldPreservesSpaces(t *testing.T) {
	rows, err := Parse("\" padded \",b\n")
	require.NoError(t, err)
	assert.Equal(t, " padded ", rows[0][0])
}

func TestParse_CRLF(t *testing.T) {
	rows, err := Parse("a,b\r\nc,d\r\n")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"c", "d"}, rows[1])
}

func TestParse_TrailingEmptyLineDropped(t *testing.T) {
	rows, err := Parse("a,b\n\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestParse_NoTrailingNewline(t *testing.T) {
	rows, err := Parse("a,b")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"a", "b"}, rows[0])
}

func TestParse_TrailingDelimiter(t *testing.T) {
	rows, err := Parse("a,b,")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"a", "b", ""}, rows[0])
}

func TestParse_EmptyFields(t *testing.T) {
	rows, err := Parse("a,,c\n")
	require.NoError(t, err)
	assert.Equal(t, Row{"a", "", "c"}, rows[0])
}

func TestParse_UnterminatedQuote(t *testing.T) {
	_, err := Parse("a,\"never closed\nb,c\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)
}

func TestParse_QuotedFinalFieldAtEOF(t *testing.T) {
	rows, err := Parse("a,\"end, here\"")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "end, here", rows[0][1])
}

func TestRowAt_OutOfRange(t *testing.T) {
	r := Row{"only"}
	assert.Equal(t, "only", r.At(0))
	assert.Equal(t, "", r.At(5))
	assert.Equal(t, "", r.At(-1))
}
