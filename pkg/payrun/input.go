package payrun

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

// ErrInvalidInput is returned for a pay-run file that can not be built.
var ErrInvalidInput = errors.New("invalid pay-run input")

// Input is a pay-run file: one payday and the pay of each employee on it.
type Input struct {
	Date     string         `yaml:"date"`   // YYYY-MM-DD
	Serial   *int           `yaml:"serial"` // Next free serial when omitted
	Paystubs []PaystubInput `yaml:"paystubs"`
}

// PaystubInput is one employee's entered amounts.
type PaystubInput struct {
	Employee              string        `yaml:"employee"`
	Income                []AmountInput `yaml:"income"`
	Wages                 []HoursInput  `yaml:"wages"`
	Overtime              []HoursInput  `yaml:"overtime"`
	Deductions            []AmountInput `yaml:"deductions"`
	EmployerContributions []AmountInput `yaml:"employer_contributions"`
	VacationPayouts       []AmountInput `yaml:"vacation_payouts"`
	// Exempt lists calculations to leave off the stub (cpp, ei, income_tax).
	Exempt []string `yaml:"exempt"`
}

// AmountInput is a fixed-amount line.
type AmountInput struct {
	Description string          `yaml:"description"`
	Amount      decimal.Decimal `yaml:"amount"`
	Tags        []string        `yaml:"tags"`
	Paid        bool            `yaml:"paid"`
}

// HoursInput is an hourly line.
type HoursInput struct {
	Description string          `yaml:"description"`
	Hours       decimal.Decimal `yaml:"hours"`
	Rate        decimal.Decimal `yaml:"rate"`
	Multiplier  decimal.Decimal `yaml:"multiplier"`
	Tags        []string        `yaml:"tags"`
}

// LoadInput reads a pay-run file.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pay-run file: %w", err)
	}
	return ParseInput(data)
}

// ParseInput decodes a pay-run file.
func ParseInput(data []byte) (*Input, error) {
	var in Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if _, err := in.PayDate(); err != nil {
		return nil, err
	}
	if len(in.Paystubs) == 0 {
		return nil, fmt.Errorf("%w: no paystubs", ErrInvalidInput)
	}
	for _, s := range in.Paystubs {
		for _, calc := range s.Exempt {
			switch payroll.Calculation(calc) {
			case payroll.CalcCPP, payroll.CalcEI, payroll.CalcIncomeTax:
			default:
				return nil, fmt.Errorf("%w: %s can not be exempt from %q", ErrInvalidInput, s.Employee, calc)
			}
		}
	}
	return &in, nil
}

// PayDate parses the input date.
func (in *Input) PayDate() (time.Time, error) {
	d, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrInvalidInput, in.Date, err)
	}
	return d, nil
}

// Build adds the payday to book, with one paystub per entry carrying the
// entered lines plus the calculated CPP, EI, income tax, employer
// contributions, vacation pay and net pay lines.
func (in *Input) Build(book *payroll.Book) (*payroll.Payday, error) {
	date, err := in.PayDate()
	if err != nil {
		return nil, err
	}
	serial := book.NextSerial(date)
	if in.Serial != nil {
		serial = *in.Serial
	}

	employees := make([]*payroll.Employee, len(in.Paystubs))
	for i, s := range in.Paystubs {
		e, err := book.Employee(s.Employee)
		if err != nil {
			return nil, err
		}
		employees[i] = e
	}

	p, err := book.NewPayday(date, serial)
	if err != nil {
		return nil, err
	}
	for i, s := range in.Paystubs {
		s.build(p.NewPaystub(employees[i]), employees[i])
	}
	return p, nil
}

func (s PaystubInput) build(stub *payroll.Paystub, e *payroll.Employee) {
	for _, l := range s.Income {
		stub.AddLine(payroll.Income(l.Amount, l.Description, l.Tags...))
	}
	for _, l := range s.Wages {
		stub.AddLine(payroll.Wage(l.Hours, l.Rate, l.Description, l.Tags...))
	}
	for _, l := range s.Overtime {
		m := l.Multiplier
		if m.IsZero() {
			m = decimal.RequireFromString("1.5")
		}
		stub.AddLine(payroll.Overtime(l.Hours, l.Rate, m, l.Description, l.Tags...))
	}

	cpp := !slices.Contains(s.Exempt, string(payroll.CalcCPP))
	ei := !slices.Contains(s.Exempt, string(payroll.CalcEI))
	if cpp {
		stub.AddLine(payroll.CPPDeductionLine())
	}
	if ei {
		stub.AddLine(payroll.EIDeductionLine())
	}
	if !slices.Contains(s.Exempt, string(payroll.CalcIncomeTax)) {
		stub.AddLine(payroll.IncomeTaxLine())
	}
	for _, l := range s.Deductions {
		stub.AddLine(payroll.Deduction(l.Amount, l.Description, l.Tags...))
	}

	if cpp {
		stub.AddLine(payroll.CPPEmployerLine())
	}
	if ei {
		stub.AddLine(payroll.EIEmployerLine())
	}
	for _, l := range s.EmployerContributions {
		stub.AddLine(payroll.EmployerContribution(l.Amount, l.Description, l.Tags...))
	}

	if e.VacationRate.IsPositive() {
		stub.AddLine(payroll.VacationPayLine())
	}
	for _, l := range s.VacationPayouts {
		stub.AddLine(payroll.VacationPayout(l.Amount, l.Paid, l.Description))
	}
	stub.AddLine(payroll.NetPayLine())
}
