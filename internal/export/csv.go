// Package export moves transaction data in and out of the system:
// CSV download/upload for users and a Google Sheets statement feed.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"fintrack/internal/core"
)

const csvDateLayout = "2006-01-02"

var csvHeader = []string{"date", "description", "category", "amount", "type"}

// WriteTransactions renders the owner's transactions as CSV. Category
// IDs are resolved to names; an unknown category renders as its ID.
func WriteTransactions(w io.Writer, txns []core.Transaction, categories []core.Category) error {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txns {
		name, ok := names[t.CategoryID]
		if !ok {
			name = fmt.Sprintf("%d", t.CategoryID)
		}
		kind := "expense"
		if t.Income {
			kind = "income"
		}
		record := []string{
			t.Date.Format(csvDateLayout),
			t.Description,
			name,
			core.FormatAmount(t.Amount),
			kind,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTransactions parses an uploaded CSV into transactions for the
// owner. Categories are matched by name; rows referencing unknown
// categories fail the whole import.
func ReadTransactions(r io.Reader, ownerID int64, categories []core.Category) ([]core.Transaction, error) {
	ids := make(map[string]int64, len(categories))
	for _, c := range categories {
		ids[c.Name] = c.ID
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected header column %d: got %q, want %q", i, header[i], want)
		}
	}

	var txns []core.Transaction
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := time.Parse(csvDateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, record[0])
		}
		categoryID, ok := ids[record[2]]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown category %q", line, record[2])
		}
		amount, err := core.ParseAmount(record[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount %q: %w", line, record[3], err)
		}
		var income bool
		switch record[4] {
		case "income":
			income = true
		case "expense":
			income = false
		default:
			return nil, fmt.Errorf("line %d: invalid type %q", line, record[4])
		}

		txn := core.Transaction{
			OwnerID:     ownerID,
			CategoryID:  categoryID,
			Amount:      amount,
			Date:        date,
			Description: record[1],
			Income:      income,
		}
		if err := txn.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
