// Package export writes the payroll book as CSV and spreadsheet reports.
package export

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

// GrossIncomeColumn is the column every row carries for the paystub's gross.
const GrossIncomeColumn = "gross income"

// Row is one paystub flattened for export. Values holds one entry per
// line label found on the paystub.
type Row struct {
	Employee      string
	Date          string
	TransactionID string
	Serial        int
	Values        map[string]decimal.Decimal
}

// Rows flattens every paystub in the book, in payday order.
func Rows(book *payroll.Book) ([]Row, error) {
	var rows []Row
	for _, p := range book.Paydays() {
		for _, s := range p.Paystubs {
			row, err := paystubRow(s)
			if err != nil {
				return nil, fmt.Errorf("failed to export %s on %s: %w", s.EmployeeName, p.Key(), err)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func paystubRow(s *payroll.Paystub) (Row, error) {
	row := Row{
		Employee:      s.EmployeeName,
		Date:          s.Date().Format("2006-01-02"),
		TransactionID: s.TransactionID,
		Serial:        s.Payday().Serial,
		Values:        map[string]decimal.Decimal{GrossIncomeColumn: s.GrossIncome()},
	}
	for _, l := range s.Lines {
		v, err := s.Value(l)
		if err != nil {
			return Row{}, err
		}
		row.Values[l.Label()] = row.Values[l.Label()].Add(v)
	}
	return row, nil
}

// Header returns the fixed prefix followed by the sorted value columns.
// The payday-serial column only appears when some row has a nonzero serial.
func Header(rows []Row) []string {
	header := []string{"employee", "date", "transaction-id"}
	if hasSerial(rows) {
		header = append(header, "payday-serial")
	}
	return append(header, valueColumns(rows)...)
}

func hasSerial(rows []Row) bool {
	for _, r := range rows {
		if r.Serial != 0 {
			return true
		}
	}
	return false
}

func valueColumns(rows []Row) []string {
	seen := map[string]bool{}
	var cols []string
	for _, r := range rows {
		for k := range r.Values {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// Record renders a row under header. Columns the row lacks are empty.
func (r Row) Record(header []string) []string {
	out := make([]string, len(header))
	for i, col := range header {
		switch col {
		case "employee":
			out[i] = r.Employee
		case "date":
			out[i] = r.Date
		case "transaction-id":
			out[i] = r.TransactionID
		case "payday-serial":
			out[i] = fmt.Sprint(r.Serial)
		default:
			if v, ok := r.Values[col]; ok {
				out[i] = money.Format(v)
			}
		}
	}
	return out
}

// ByEmployee orders rows by employee name, then chronologically.
func ByEmployee(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Employee < out[j].Employee
	})
	return out
}
