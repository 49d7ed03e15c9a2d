// Package sheet turns the published Google Sheet CSV export into the
// canonical patient set: a best-effort tokenizer, then an aggregation
// pass that groups form submissions per WhatsApp number.
package sheet

import "strings"

// Row is one form submission, keyed by lower-cased trimmed header name.
// It stays an untyped string map on purpose: typed values only appear
// after the explicit field-mapping in aggregate.go.
type Row map[string]string

// ParseRows tokenizes raw CSV text. The format is the sheet export's
// loose dialect, not RFC 4180: a double quote toggles quoting and is
// dropped, a comma inside quotes is literal, and there is no escape
// sequence for an embedded quote. Malformed quoting never fails; the
// toggle just runs to end of line.
//
// The first line is the header. Fewer than two lines yields no rows.
// Blank lines are skipped and missing trailing fields default to "".
func ParseRows(csvText string) []Row {
	lines := splitLines(csvText)
	if len(lines) < 2 {
		return nil
	}

	headers := parseLine(lines[0])
	for i, h := range headers {
		headers[i] = strings.ToLower(h)
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := parseLine(line)
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(values) {
				row[header] = values[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// parseLine splits one line on unquoted commas. Quote characters flip
// the in-quotes state and are stripped from the output; every field is
// trimmed of surrounding whitespace.
func parseLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	result = append(result, strings.TrimSpace(current.String()))
	return result
}
