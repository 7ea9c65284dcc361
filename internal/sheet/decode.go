// Package sheet decodes the spreadsheet CSV export and maps rows onto
// candidate records.
package sheet

import "strings"

// Decode parses delimited text into rows of cells. It is total: malformed
// input yields a partial or empty result, never an error. Quoted cells may
// contain commas, escaped quotes ("") and embedded newlines.
func Decode(text string) [][]string {
	// Collapse all line-ending variants to a single \n before scanning.
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				cell.WriteByte('"')
				i++ // consume the escaped quote
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			row = append(row, cell.String())
			cell.Reset()
		case ch == '\n' && !inQuotes:
			row = append(row, cell.String())
			rows = append(rows, row)
			row = nil
			cell.Reset()
		default:
			cell.WriteByte(ch)
		}
	}

	// Commit the final record for files without a trailing line terminator.
	if cell.Len() > 0 || len(row) > 0 {
		row = append(row, cell.String())
		rows = append(rows, row)
	}

	return rows
}
