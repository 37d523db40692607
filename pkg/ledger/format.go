package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
)

// Format renders a transaction in Beancount syntax.
func Format(txn Transaction) string {
	var sb strings.Builder

	sb.WriteString(txn.Date.Format("2006-01-02"))
	sb.WriteString(" *")
	if txn.Payee != "" {
		sb.WriteString(fmt.Sprintf(" %q", txn.Payee))
	}
	sb.WriteString(fmt.Sprintf(" %q", txn.Narration))
	if len(txn.Tags) > 0 {
		sb.WriteString(" #")
		sb.WriteString(strings.Join(txn.Tags, " #"))
	}
	sb.WriteString("\n")

	keys := make([]string, 0, len(txn.Metadata))
	for k := range txn.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %s: %q\n", k, txn.Metadata[k]))
	}

	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		// Right-align amount
		amount := money.Format(posting.Amount)
		spaces := max(1, 60-len(posting.Account)-len(amount))
		sb.WriteString(strings.Repeat(" ", spaces))
		sb.WriteString(amount)
		sb.WriteString(" ")
		sb.WriteString(posting.Currency)

		if posting.Comment != "" {
			sb.WriteString(fmt.Sprintf(" ; %s", posting.Comment))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
