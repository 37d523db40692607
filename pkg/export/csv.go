package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

// WriteCSV writes two blocks: paystubs by payday, a blank row, then the same
// paystubs by employee. Each block starts with its own header.
func WriteCSV(w io.Writer, book *payroll.Book) error {
	rows, err := Rows(book)
	if err != nil {
		return err
	}
	header := Header(rows)

	out := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	writeBlock := func(block []Row) error {
		if err := out.Write(header); err != nil {
			return err
		}
		for _, r := range block {
			if err := out.Write(r.Record(header)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeBlock(rows); err != nil {
		return fmt.Errorf("failed to write payday block: %w", err)
	}
	if err := out.Write([]string{}); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}
	if err := writeBlock(ByEmployee(rows)); err != nil {
		return fmt.Errorf("failed to write employee block: %w", err)
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// PaydaySummary is one payday's totals.
type PaydaySummary struct {
	Date                  string `csv:"date"`
	Serial                int    `csv:"serial"`
	Period                string `csv:"rule_period"`
	Posted                bool   `csv:"posted"`
	Paystubs              int    `csv:"paystubs"`
	Gross                 string `csv:"gross"`
	Deductions            string `csv:"deductions"`
	EmployerContributions string `csv:"employer_contributions"`
	NetPay                string `csv:"net_pay"`
}

// Summaries totals every payday in the book.
func Summaries(book *payroll.Book) ([]PaydaySummary, error) {
	var out []PaydaySummary
	for _, p := range book.Paydays() {
		var gross, deductions, contributions, net []decimal.Decimal
		for _, s := range p.Paystubs {
			d, err := s.Deductions()
			if err != nil {
				return nil, fmt.Errorf("failed to total deductions for %s: %w", s.EmployeeName, err)
			}
			c, err := s.EmployerContributions()
			if err != nil {
				return nil, fmt.Errorf("failed to total contributions for %s: %w", s.EmployeeName, err)
			}
			n, err := s.NetPay()
			if err != nil {
				return nil, fmt.Errorf("failed to total net pay for %s: %w", s.EmployeeName, err)
			}
			gross = append(gross, s.GrossIncome())
			deductions = append(deductions, d)
			contributions = append(contributions, c)
			net = append(net, n)
		}
		out = append(out, PaydaySummary{
			Date:                  p.Date.Format("2006-01-02"),
			Serial:                p.Serial,
			Period:                p.Period().ID,
			Posted:                p.Posted,
			Paystubs:              len(p.Paystubs),
			Gross:                 money.Format(money.Sum(gross...)),
			Deductions:            money.Format(money.Sum(deductions...)),
			EmployerContributions: money.Format(money.Sum(contributions...)),
			NetPay:                money.Format(money.Sum(net...)),
		})
	}
	return out, nil
}

// WriteSummaryCSV writes one row per payday.
func WriteSummaryCSV(w io.Writer, book *payroll.Book) error {
	summaries, err := Summaries(book)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(summaries, w); err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return nil
}
