// Package csvcodec writes report rows as CSV text and reads recipient
// lists from uploaded CSV files.
package csvcodec

import "strings"

// EscapeField quotes value and doubles its inner quotes when it contains
// a comma, a double quote or a newline. Anything else is returned as is.
func EscapeField(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// ToCSV joins cells with ',' and rows with '\n'. There is no trailing
// newline.
func ToCSV(rows [][]string) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EscapeField(cell))
		}
	}
	return b.String()
}
