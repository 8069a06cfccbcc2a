package campaign

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Recipient is one row of the recipient list. Every column of the CSV is
// kept as a merge field; the send loop itself only depends on Email.
type Recipient struct {
	Email  string
	Fields map[string]string
}

// LoadRecipients reads the recipient list from a CSV file with a header
// row. The header must contain an "email" column; all other columns are
// carried along as merge fields.
func LoadRecipients(path string) ([]Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipients file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read recipients header: %w", err)
	}

	emailCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "email") {
			emailCol = i
			break
		}
	}
	if emailCol < 0 {
		return nil, fmt.Errorf("recipients file %s has no email column", path)
	}

	var recipients []Recipient
	for line := 2; ; line++ {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read recipients row: %w", err)
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[strings.TrimSpace(name)] = row[i]
			}
		}

		addr := strings.TrimSpace(row[emailCol])
		if addr == "" {
			return nil, fmt.Errorf("recipients file %s: empty email on line %d", path, line)
		}

		recipients = append(recipients, Recipient{Email: addr, Fields: fields})
	}

	return recipients, nil
}
