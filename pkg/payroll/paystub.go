package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

// Paystub is one employee's pay for one payday.
type Paystub struct {
	EmployeeName  string `json:"employee"`
	Lines         []Line `json:"lines"`
	TransactionID string `json:"transaction_id,omitempty"`

	employee *Employee
	payday   *Payday
}

// Employee returns the employee the paystub belongs to.
func (s *Paystub) Employee() *Employee {
	return s.employee
}

// Payday returns the payday the paystub belongs to.
func (s *Paystub) Payday() *Payday {
	return s.payday
}

// Date returns the pay date.
func (s *Paystub) Date() time.Time {
	if s.payday == nil {
		return time.Time{}
	}
	return s.payday.Date
}

// Year returns the calendar year of the pay date.
func (s *Paystub) Year() int {
	return s.Date().Year()
}

// Period returns the rule period in force on the pay date.
func (s *Paystub) Period() rules.Period {
	if s.payday == nil {
		return rules.Period{}
	}
	return s.payday.period
}

// Posted reports whether the owning payday has been posted.
func (s *Paystub) Posted() bool {
	return s.payday != nil && s.payday.Posted
}

// AddLine appends a line to the paystub.
func (s *Paystub) AddLine(l Line) {
	s.Lines = append(s.Lines, l)
}

// LinesOf returns the lines of the given kinds, in order.
func (s *Paystub) LinesOf(kinds ...LineKind) []Line {
	var out []Line
	for _, l := range s.Lines {
		for _, k := range kinds {
			if l.Kind == k {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// Tagged returns the lines carrying tag, in order.
func (s *Paystub) Tagged(tag string) []Line {
	var out []Line
	for _, l := range s.Lines {
		if l.HasTag(tag) {
			out = append(out, l)
		}
	}
	return out
}

// Value returns the monetary value of a line on this paystub.
func (s *Paystub) Value(l Line) (decimal.Decimal, error) {
	if l.Frozen {
		return l.Amount, nil
	}
	switch {
	case l.Kind == LineNetPay:
		return s.NetPay()
	case l.Calc != CalcNone:
		return s.calculate(l)
	}
	return fixedValue(l), nil
}

// fixedValue is the value of a line that needs no paystub context.
func fixedValue(l Line) decimal.Decimal {
	switch l.Kind {
	case LineWage:
		return money.RoundTwoPlaceUsingThirdDigit(l.Hours.Mul(l.Rate))
	case LineOvertime:
		return money.RoundTwoPlaceUsingThirdDigit(l.Hours.Mul(l.Rate).Mul(l.Multiplier))
	}
	return l.Amount
}

func (s *Paystub) calculate(l Line) (decimal.Decimal, error) {
	switch {
	case l.Calc == CalcCPP && l.Kind == LineDeduction:
		return CPP.Deduction(s)
	case l.Calc == CalcCPP && l.Kind == LineEmployerContribution:
		return CPP.EmployerContribution(s)
	case l.Calc == CalcEI && l.Kind == LineDeduction:
		return EI.Deduction(s)
	case l.Calc == CalcEI && l.Kind == LineEmployerContribution:
		return EI.EmployerContribution(s)
	case l.Calc == CalcIncomeTax && l.Kind == LineDeduction:
		return IncomeTax.Deduction(s)
	case l.Calc == CalcVacationPay && l.Kind == LineVacationPay:
		return VacationPay(s)
	}
	return decimal.Zero, fmt.Errorf("%w: %s on %s line", ErrUnknownCalculation, l.Calc, l.Kind)
}

func (s *Paystub) sum(match func(Line) bool) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range s.Lines {
		if !match(l) {
			continue
		}
		v, err := s.Value(l)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return total, nil
}

// GrossIncome sums income, wage and overtime lines.
func (s *Paystub) GrossIncome() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		if l.Kind.IsIncome() {
			if l.Frozen {
				total = total.Add(l.Amount)
			} else {
				total = total.Add(fixedValue(l))
			}
		}
	}
	return total
}

// Deductions sums every deduction line, calculated or not.
func (s *Paystub) Deductions() (decimal.Decimal, error) {
	return s.sum(func(l Line) bool { return l.Kind == LineDeduction })
}

// EmployerContributions sums every employer contribution line.
func (s *Paystub) EmployerContributions() (decimal.Decimal, error) {
	return s.sum(func(l Line) bool { return l.Kind == LineEmployerContribution })
}

// VacationPayouts sums the vacation payouts that are paid out on this stub.
func (s *Paystub) VacationPayouts() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		if l.Kind == LineVacationPayout && l.Paid {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// VacationAccrued sums the vacation pay accrued on this stub.
func (s *Paystub) VacationAccrued() (decimal.Decimal, error) {
	return s.sum(func(l Line) bool { return l.Kind == LineVacationPay })
}

// NetPay is gross income less deductions plus paid vacation payouts.
// The result may be negative.
func (s *Paystub) NetPay() (decimal.Decimal, error) {
	deductions, err := s.Deductions()
	if err != nil {
		return decimal.Zero, err
	}
	return s.GrossIncome().Sub(deductions).Add(s.VacationPayouts()), nil
}

// Total sums the lines of one kind produced by one calculation.
func (s *Paystub) Total(kind LineKind, calc Calculation) (decimal.Decimal, error) {
	return s.sum(func(l Line) bool { return l.Kind == kind && l.Calc == calc })
}
