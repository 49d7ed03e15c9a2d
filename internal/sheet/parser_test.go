package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRows(t *testing.T) {
	csv := "Timestamp,Name,Address\n" +
		"2024-01-01T00:00:00Z,Rahul Sharma,\"Sector 42, Mumbai\"\n" +
		"2024-02-01T00:00:00Z,Priya Verma,Andheri West"

	rows := ParseRows(csv)
	require.Len(t, rows, 2)

	assert.Equal(t, "Rahul Sharma", rows[0]["name"])
	assert.Equal(t, "Sector 42, Mumbai", rows[0]["address"], "comma inside quotes is literal")
	assert.Equal(t, "Andheri West", rows[1]["address"])
}

func TestParseRowsLowercasesHeaders(t *testing.T) {
	rows := ParseRows("WhatsApp Number,NAME\n919,Amit")
	require.Len(t, rows, 1)
	assert.Equal(t, "919", rows[0]["whatsapp number"])
	assert.Equal(t, "Amit", rows[0]["name"])
}

func TestParseRowsHeaderOnly(t *testing.T) {
	assert.Empty(t, ParseRows("timestamp,name"))
	assert.Empty(t, ParseRows(""))
}

func TestParseRowsSkipsBlankLines(t *testing.T) {
	rows := ParseRows("name,phone\nAmit,919\n\n   \nPriya,918\n")
	require.Len(t, rows, 2)
	assert.Equal(t, "Amit", rows[0]["name"])
	assert.Equal(t, "Priya", rows[1]["name"])
}

func TestParseRowsMissingTrailingFields(t *testing.T) {
	rows := ParseRows("name,phone,address\nAmit,919")
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["address"])
}

func TestParseRowsCRLF(t *testing.T) {
	rows := ParseRows("name,phone\r\nAmit,919\r\n")
	require.Len(t, rows, 1)
	assert.Equal(t, "919", rows[0]["phone"])
}

func TestParseRowsStripsQuotes(t *testing.T) {
	rows := ParseRows("\"name\",\"phone\"\n\"Amit\",\"919\"")
	require.Len(t, rows, 1)
	assert.Equal(t, "Amit", rows[0]["name"])
	assert.Equal(t, "919", rows[0]["phone"])
}

func TestParseRowsUnterminatedQuote(t *testing.T) {
	// Malformed quoting must not fail; the open quote swallows the
	// rest of the line.
	rows := ParseRows("name,notes\nAmit,\"fever, cough")
	require.Len(t, rows, 1)
	assert.Equal(t, "fever, cough", rows[0]["notes"])
}
