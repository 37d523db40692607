// Package rules holds the versioned statutory rate tables used by the payroll
// calculators and resolves a pay date to the rule period in force.
package rules

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CPPRates are the Canada Pension Plan parameters for one rule period.
type CPPRates struct {
	Rate                   decimal.Decimal `yaml:"rate"`
	BasicExemption         decimal.Decimal `yaml:"basic_exemption"`
	MaxPensionableEarnings decimal.Decimal `yaml:"max_pensionable_earnings"`
	MaxContribution        decimal.Decimal `yaml:"max_contribution"`
	EmployerMultiplier     decimal.Decimal `yaml:"employer_multiplier"`
}

// EIRates are the Employment Insurance parameters for one rule period.
type EIRates struct {
	Rate                 decimal.Decimal `yaml:"rate"`
	MaxInsurableEarnings decimal.Decimal `yaml:"max_insurable_earnings"`
	MaxContribution      decimal.Decimal `yaml:"max_contribution"`
	EmployerMultiplier   decimal.Decimal `yaml:"employer_multiplier"`
}

// Bracket is one marginal-rate band of an income tax table.
// Constant is the K value for the band, derived when the table is loaded.
type Bracket struct {
	LowerBound decimal.Decimal `yaml:"lower_bound"`
	Rate       decimal.Decimal `yaml:"rate"`
	Constant   decimal.Decimal `yaml:"-"`
}

// TaxTable is a federal or provincial income tax table.
type TaxTable struct {
	Jurisdiction        string          `yaml:"jurisdiction"`
	BasicPersonalAmount decimal.Decimal `yaml:"basic_personal_amount"`
	EmploymentAmount    decimal.Decimal `yaml:"employment_amount"`
	ReductionFactor     decimal.Decimal `yaml:"reduction_factor"`
	Brackets            []Bracket       `yaml:"brackets"`
}

// Bracket returns the band whose lower bound is the greatest bound <= income.
// Income below the first bound falls into the first band.
func (t TaxTable) Bracket(income decimal.Decimal) Bracket {
	i := sort.Search(len(t.Brackets), func(i int) bool {
		return t.Brackets[i].LowerBound.GreaterThan(income)
	})
	if i == 0 {
		return t.Brackets[0]
	}
	return t.Brackets[i-1]
}

// LowestRate returns the rate of the first band, used for non-refundable credits.
func (t TaxTable) LowestRate() decimal.Decimal {
	return t.Brackets[0].Rate
}

// BasicTax returns the annual tax on income before any credits (R × A − K).
func (t TaxTable) BasicTax(income decimal.Decimal) decimal.Decimal {
	b := t.Bracket(income)
	return b.Rate.Mul(income).Sub(b.Constant)
}

// deriveConstants fills in the K value of every band.
func (t *TaxTable) deriveConstants() {
	k := decimal.Zero
	for i := range t.Brackets {
		if i > 0 {
			step := t.Brackets[i].Rate.Sub(t.Brackets[i-1].Rate)
			k = k.Add(step.Mul(t.Brackets[i].LowerBound))
		}
		t.Brackets[i].Constant = k
	}
}

// Period is one version of the statutory rates.
type Period struct {
	ID         string   `yaml:"id"`
	Effective  string   `yaml:"effective"` // YYYY-MM
	CPP        CPPRates `yaml:"cpp"`
	EI         EIRates  `yaml:"ei"`
	Federal    TaxTable `yaml:"federal"`
	Provincial TaxTable `yaml:"provincial"`

	start time.Time
}

// Start returns the first day of the effective month.
func (p Period) Start() time.Time {
	return p.start
}

// Year returns the calendar year the period belongs to.
func (p Period) Year() int {
	return p.start.Year()
}

// Resolution is the outcome of resolving a pay date.
type Resolution struct {
	Period Period
	// Fallback is set when the date is not covered by the table and the
	// nearest known period was substituted.
	Fallback bool
	Reason   string
}

var one = decimal.NewFromInt(1)
