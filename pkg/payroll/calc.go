package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

// DeductionCalculator computes an employee deduction for a paystub.
type DeductionCalculator interface {
	Deduction(s *Paystub) (decimal.Decimal, error)
}

// ContributionCalculator also computes the matching employer contribution.
type ContributionCalculator interface {
	DeductionCalculator
	EmployerContribution(s *Paystub) (decimal.Decimal, error)
}

// Calculators bound to paystubs.
var (
	CPP       ContributionCalculator = cppCalculator{}
	EI        ContributionCalculator = eiCalculator{}
	IncomeTax incomeTaxCalculator
)

// CPPDeduction returns the per-period CPP contribution on gross earnings.
// ytd is the employee's contribution so far this year.
func CPPDeduction(gross, ytd decimal.Decimal, periodsPerYear int, r rules.CPPRates) decimal.Decimal {
	return money.RoundTwoPlaceUsingThirdDigit(cppUnrounded(gross, ytd, periodsPerYear, r))
}

// CPPEmployerContribution returns the employer's matching CPP contribution.
func CPPEmployerContribution(gross, ytd decimal.Decimal, periodsPerYear int, r rules.CPPRates) decimal.Decimal {
	d := cppUnrounded(gross, ytd, periodsPerYear, r)
	return money.RoundTwoPlaceUsingThirdDigit(d.Mul(r.EmployerMultiplier))
}

func cppUnrounded(gross, ytd decimal.Decimal, periodsPerYear int, r rules.CPPRates) decimal.Decimal {
	exemption := money.TruncateTwoPlace(r.BasicExemption.Div(decimal.NewFromInt(int64(periodsPerYear))))
	base := gross.Sub(exemption)
	if !base.IsPositive() {
		return decimal.Zero
	}
	return capped(r.Rate.Mul(base), ytd, r.MaxContribution)
}

// EIDeduction returns the per-period EI premium on gross earnings.
func EIDeduction(gross, ytd decimal.Decimal, r rules.EIRates) decimal.Decimal {
	return money.RoundTwoPlaceUsingThirdDigit(eiUnrounded(gross, ytd, r))
}

// EIEmployerContribution returns the employer's EI premium.
func EIEmployerContribution(gross, ytd decimal.Decimal, r rules.EIRates) decimal.Decimal {
	return money.RoundTwoPlaceUsingThirdDigit(eiUnrounded(gross, ytd, r).Mul(r.EmployerMultiplier))
}

func eiUnrounded(gross, ytd decimal.Decimal, r rules.EIRates) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return capped(r.Rate.Mul(gross), ytd, r.MaxContribution)
}

// capped limits amount to what is left of max after ytd, never below zero.
func capped(amount, ytd, max decimal.Decimal) decimal.Decimal {
	remaining := max.Sub(ytd)
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	return money.Min(amount, remaining)
}

// TaxInput is everything the income tax formula needs for one pay period.
type TaxInput struct {
	Gross             decimal.Decimal
	PeriodsPerYear    int
	CPP               decimal.Decimal
	EI                decimal.Decimal
	FederalCredits    decimal.Decimal
	ProvincialCredits decimal.Decimal
}

func (in TaxInput) annualIncome() decimal.Decimal {
	return in.Gross.Mul(decimal.NewFromInt(int64(in.PeriodsPerYear)))
}

// contributionCredit is the annualized CPP and EI amount eligible for credit.
func (in TaxInput) contributionCredit(p rules.Period) decimal.Decimal {
	n := decimal.NewFromInt(int64(in.PeriodsPerYear))
	cpp := money.Min(in.CPP.Mul(n), p.CPP.MaxContribution)
	ei := money.Min(in.EI.Mul(n), p.EI.MaxContribution)
	return cpp.Add(ei)
}

// FederalTax returns the annual basic federal tax (T3), never negative.
func FederalTax(in TaxInput, p rules.Period) decimal.Decimal {
	t := p.Federal
	a := in.annualIncome()
	low := t.LowestRate()
	k1 := low.Mul(in.FederalCredits)
	k2 := low.Mul(in.contributionCredit(p))
	k4 := money.Min(low.Mul(a), low.Mul(t.EmploymentAmount))
	return reduce(t.BasicTax(a).Sub(k1).Sub(k2).Sub(k4), t.ReductionFactor)
}

// ProvincialTax returns the annual basic provincial tax (T4), never negative.
func ProvincialTax(in TaxInput, p rules.Period) decimal.Decimal {
	t := p.Provincial
	a := in.annualIncome()
	low := t.LowestRate()
	k1 := low.Mul(in.ProvincialCredits)
	k2 := low.Mul(in.contributionCredit(p))
	return reduce(t.BasicTax(a).Sub(k1).Sub(k2), t.ReductionFactor)
}

func reduce(tax, factor decimal.Decimal) decimal.Decimal {
	if !tax.IsPositive() {
		return decimal.Zero
	}
	return tax.Mul(decimal.NewFromInt(1).Sub(factor))
}

// IncomeTaxDeduction returns the per-period combined tax and its federal part.
func IncomeTaxDeduction(in TaxInput, p rules.Period) (combined, federal decimal.Decimal) {
	n := decimal.NewFromInt(int64(in.PeriodsPerYear))
	t3 := FederalTax(in, p)
	t4 := ProvincialTax(in, p)
	combined = money.RoundTwoPlaceUsingThirdDigit(t3.Add(t4).Div(n))
	federal = money.RoundTwoPlaceUsingThirdDigit(t3.Div(n))
	return combined, federal
}

// VacationPay returns the vacation pay accrued on the paystub's gross income.
func VacationPay(s *Paystub) (decimal.Decimal, error) {
	emp, err := stubContext(s)
	if err != nil {
		return decimal.Zero, err
	}
	if emp.VacationRate.IsNegative() {
		return decimal.Zero, &ConfigError{Employee: emp.Name, Err: ErrInvalidVacationRate}
	}
	return money.TruncateTwoPlace(emp.VacationRate.Mul(s.GrossIncome())), nil
}

func stubContext(s *Paystub) (*Employee, error) {
	if s.payday == nil || s.employee == nil {
		return nil, ErrPaystubWithoutPayday
	}
	if s.employee.PayPeriodsPerYear <= 0 {
		return nil, &ConfigError{Employee: s.employee.Name, Err: ErrInvalidPayPeriods}
	}
	return s.employee, nil
}

type cppCalculator struct{}

func (cppCalculator) Deduction(s *Paystub) (decimal.Decimal, error) {
	emp, err := stubContext(s)
	if err != nil {
		return decimal.Zero, err
	}
	ytd := emp.YTDValue(s.Year(), YTDCPP)
	return CPPDeduction(s.GrossIncome(), ytd, emp.PayPeriodsPerYear, s.Period().CPP), nil
}

func (cppCalculator) EmployerContribution(s *Paystub) (decimal.Decimal, error) {
	emp, err := stubContext(s)
	if err != nil {
		return decimal.Zero, err
	}
	ytd := emp.YTDValue(s.Year(), YTDCPP)
	return CPPEmployerContribution(s.GrossIncome(), ytd, emp.PayPeriodsPerYear, s.Period().CPP), nil
}

type eiCalculator struct{}

func (eiCalculator) Deduction(s *Paystub) (decimal.Decimal, error) {
	emp, err := stubContext(s)
	if err != nil {
		return decimal.Zero, err
	}
	return EIDeduction(s.GrossIncome(), emp.YTDValue(s.Year(), YTDEI), s.Period().EI), nil
}

func (eiCalculator) EmployerContribution(s *Paystub) (decimal.Decimal, error) {
	emp, err := stubContext(s)
	if err != nil {
		return decimal.Zero, err
	}
	return EIEmployerContribution(s.GrossIncome(), emp.YTDValue(s.Year(), YTDEI), s.Period().EI), nil
}

type incomeTaxCalculator struct{}

// Input gathers the tax formula inputs from a paystub. The CPP and EI
// amounts are the stub's own deduction lines, so an exempt employee with no
// CPP line gets no CPP credit.
func (incomeTaxCalculator) Input(s *Paystub) (TaxInput, error) {
	emp, err := stubContext(s)
	if err != nil {
		return TaxInput{}, err
	}
	p := s.Period()
	fed, err := emp.creditTotal(emp.FederalCredits, p.Federal, "federal")
	if err != nil {
		return TaxInput{}, err
	}
	prov, err := emp.creditTotal(emp.ProvincialCredits, p.Provincial, "provincial")
	if err != nil {
		return TaxInput{}, err
	}
	cpp, err := s.Total(LineDeduction, CalcCPP)
	if err != nil {
		return TaxInput{}, fmt.Errorf("failed to calculate CPP for tax credit: %w", err)
	}
	ei, err := s.Total(LineDeduction, CalcEI)
	if err != nil {
		return TaxInput{}, fmt.Errorf("failed to calculate EI for tax credit: %w", err)
	}
	return TaxInput{
		Gross:             s.GrossIncome(),
		PeriodsPerYear:    emp.PayPeriodsPerYear,
		CPP:               cpp,
		EI:                ei,
		FederalCredits:    fed,
		ProvincialCredits: prov,
	}, nil
}

// Deduction returns the combined federal and provincial tax for the stub.
func (c incomeTaxCalculator) Deduction(s *Paystub) (decimal.Decimal, error) {
	in, err := c.Input(s)
	if err != nil {
		return decimal.Zero, err
	}
	combined, _ := IncomeTaxDeduction(in, s.Period())
	return combined, nil
}

// Federal returns the federal component of the stub's tax.
func (c incomeTaxCalculator) Federal(s *Paystub) (decimal.Decimal, error) {
	in, err := c.Input(s)
	if err != nil {
		return decimal.Zero, err
	}
	_, federal := IncomeTaxDeduction(in, s.Period())
	return federal, nil
}
