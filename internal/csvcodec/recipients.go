package csvcodec

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// DefaultMaxRows caps ParseEmails when the caller passes maxRows <= 0.
const DefaultMaxRows = 1000

// ParseEmails reads a CSV with a header row containing an "Email" column
// (case-insensitive) and returns the non-empty addresses in file order.
// Rows whose width differs from the header are skipped. Address format is
// not checked here.
//
// maxRows limits how many data rows are read (excluding header).
func ParseEmails(r io.Reader, maxRows int) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, err
	}

	emailIdx := -1
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), "email") {
			emailIdx = i
			break
		}
	}
	if emailIdx == -1 {
		return nil, errors.New("csv must contain an Email column")
	}

	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	emails := make([]string, 0)
	for read := 0; read < maxRows; read++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(headers) {
			// skip malformed row
			continue
		}

		email := strings.TrimSpace(record[emailIdx])
		if email == "" {
			continue
		}
		emails = append(emails, email)
	}

	if len(emails) == 0 {
		return nil, errors.New("csv must contain at least one data row")
	}

	return emails, nil
}
