// Package ledger turns paystubs into balanced double-entry transactions and
// renders them in Beancount syntax.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a double-entry accounting transaction.
type Transaction struct {
	ID        string            // Backend transaction id, empty until recorded
	Date      time.Time         // Pay date
	Narration string            // Transaction description
	Payee     string            // Payee name (optional)
	Tags      []string          // Tags (e.g., ["payroll"])
	Metadata  map[string]string // Metadata key-value pairs
	Postings  []Posting         // Transaction postings
}

// Posting is one leg of a transaction.
type Posting struct {
	Account  string          // Account name (e.g., "Liabilities:Payroll:CPP")
	Amount   decimal.Decimal // Positive for debit, negative for credit
	Currency string          // Currency code (e.g., "CAD")
	Comment  string          // Posting comment (optional)
}

// Total returns the sum of every posting amount.
func (t Transaction) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Postings {
		total = total.Add(p.Amount)
	}
	return total
}

// Balanced reports whether debits equal credits.
func (t Transaction) Balanced() bool {
	return t.Total().IsZero()
}

// YearMonth returns the YYYY-MM key of the transaction date.
func (t Transaction) YearMonth() string {
	return t.Date.Format("2006-01")
}
