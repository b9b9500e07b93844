package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var testCategories = []core.Category{
	{ID: 3, Name: "Food", Type: core.CategoryVariable},
	{ID: 7, Name: "Income", Type: core.CategoryIncome},
}

func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q) error = %v", s, err)
	}
	return d
}

func TestWriteTransactions(t *testing.T) {
	txns := []core.Transaction{
		{
			OwnerID:     1,
			CategoryID:  3,
			Amount:      amount(t, "12.5"),
			Date:        time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC),
			Description: "lunch",
		},
		{
			OwnerID:     1,
			CategoryID:  7,
			Amount:      amount(t, "900.00"),
			Date:        time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
			Description: "stipend",
			Income:      true,
		},
	}

	var buf bytes.Buffer
	if err := WriteTransactions(&buf, txns, testCategories); err != nil {
		t.Fatalf("WriteTransactions() error = %v", err)
	}

	want := "date,description,category,amount,type\n" +
		"2026-04-02,lunch,Food,12.50,expense\n" +
		"2026-04-01,stipend,Income,900.00,income\n"
	if buf.String() != want {
		t.Fatalf("WriteTransactions() output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestReadTransactionsRoundTrip(t *testing.T) {
	input := "date,description,category,amount,type\n" +
		"2026-04-02,lunch,Food,12.50,expense\n" +
		"2026-04-01,stipend,Income,900.00,income\n"

	txns, err := ReadTransactions(strings.NewReader(input), 5, testCategories)
	if err != nil {
		t.Fatalf("ReadTransactions() error = %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	if txns[0].OwnerID != 5 || txns[0].CategoryID != 3 {
		t.Fatalf("first transaction = %+v, want owner 5 category 3", txns[0])
	}
	if !txns[0].Amount.Equal(amount(t, "12.50")) {
		t.Fatalf("first amount = %s, want 12.50", txns[0].Amount)
	}
	if !txns[1].Income {
		t.Fatal("second transaction should be income")
	}
}

func TestReadTransactionsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "wrong header",
			input: "when,what,cat,amt,kind\n",
		},
		{
			name: "unknown category",
			input: "date,description,category,amount,type\n" +
				"2026-04-02,lunch,Yachts,12.50,expense\n",
		},
		{
			name: "bad date",
			input: "date,description,category,amount,type\n" +
				"02/04/2026,lunch,Food,12.50,expense\n",
		},
		{
			name: "bad amount",
			input: "date,description,category,amount,type\n" +
				"2026-04-02,lunch,Food,twelve,expense\n",
		},
		{
			name: "bad type",
			input: "date,description,category,amount,type\n" +
				"2026-04-02,lunch,Food,12.50,transfer\n",
		},
		{
			name: "empty description",
			input: "date,description,category,amount,type\n" +
				"2026-04-02,,Food,12.50,expense\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadTransactions(strings.NewReader(tt.input), 1, testCategories); err == nil {
				t.Fatal("ReadTransactions() expected error")
			}
		})
	}
}
