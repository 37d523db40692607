package payroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

// YTDKey names a year-to-date accumulator.
type YTDKey string

const (
	YTDGross           YTDKey = "gross"
	YTDCPP             YTDKey = "cpp"
	YTDCPPEmployer     YTDKey = "cpp_employer"
	YTDEI              YTDKey = "ei"
	YTDEIEmployer      YTDKey = "ei_employer"
	YTDIncomeTax       YTDKey = "income_tax"
	YTDVacationAccrued YTDKey = "vacation_accrued"
	YTDVacationPaid    YTDKey = "vacation_paid"
	YTDNetPay          YTDKey = "net_pay"
)

// TaxCreditKind is the kind of a TD1 claim entry.
type TaxCreditKind string

const (
	// CreditBasicPersonal claims the basic personal amount of the period in force.
	CreditBasicPersonal TaxCreditKind = "basic_personal"
	// CreditAmount claims a fixed dollar amount.
	CreditAmount TaxCreditKind = "amount"
)

// TaxCredit is one non-refundable credit claimed by an employee.
type TaxCredit struct {
	Kind   TaxCreditKind   `json:"kind" yaml:"kind"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// BasicPersonal returns a claim for the basic personal amount.
func BasicPersonal() TaxCredit {
	return TaxCredit{Kind: CreditBasicPersonal}
}

// Value returns the claimed amount under the given tax table.
func (c TaxCredit) Value(t rules.TaxTable) (decimal.Decimal, error) {
	switch c.Kind {
	case CreditBasicPersonal:
		return t.BasicPersonalAmount, nil
	case CreditAmount:
		if c.Amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: negative amount %s", ErrInvalidTaxCredit, c.Amount)
		}
		return c.Amount, nil
	}
	return decimal.Zero, fmt.Errorf("%w: unknown kind %q", ErrInvalidTaxCredit, c.Kind)
}

// Employee is a person on the payroll.
type Employee struct {
	Name              string          `json:"name"`
	PayPeriodsPerYear int             `json:"pay_periods_per_year"`
	FederalCredits    []TaxCredit     `json:"federal_credits"`
	ProvincialCredits []TaxCredit     `json:"provincial_credits"`
	VacationRate      decimal.Decimal `json:"vacation_rate"`

	YTD map[int]map[YTDKey]decimal.Decimal `json:"ytd,omitempty"`

	ROEInitialized bool         `json:"roe_initialized,omitempty"`
	ROEPeriods     []WorkPeriod `json:"roe_work_periods,omitempty"`

	paystubs []*Paystub
}

// NewEmployee creates a new Employee paid periodsPerYear times a year.
func NewEmployee(name string, periodsPerYear int) *Employee {
	return &Employee{
		Name:              name,
		PayPeriodsPerYear: periodsPerYear,
		YTD:               make(map[int]map[YTDKey]decimal.Decimal),
	}
}

// Validate checks the settings that the calculators depend on.
func (e *Employee) Validate() error {
	if e.PayPeriodsPerYear <= 0 {
		return &ConfigError{Employee: e.Name, Err: ErrInvalidPayPeriods}
	}
	if e.VacationRate.IsNegative() {
		return &ConfigError{Employee: e.Name, Err: ErrInvalidVacationRate}
	}
	if len(e.FederalCredits) == 0 {
		return &ConfigError{Employee: e.Name, Err: fmt.Errorf("%w: federal", ErrMissingTaxCredits)}
	}
	if len(e.ProvincialCredits) == 0 {
		return &ConfigError{Employee: e.Name, Err: fmt.Errorf("%w: provincial", ErrMissingTaxCredits)}
	}
	return nil
}

// creditTotal sums a credit list under table. An empty list is a
// configuration error; claiming nothing is spelled as an explicit zero amount.
func (e *Employee) creditTotal(credits []TaxCredit, t rules.TaxTable, scope string) (decimal.Decimal, error) {
	if len(credits) == 0 {
		return decimal.Zero, &ConfigError{Employee: e.Name, Err: fmt.Errorf("%w: %s", ErrMissingTaxCredits, scope)}
	}
	total := decimal.Zero
	for _, c := range credits {
		v, err := c.Value(t)
		if err != nil {
			return decimal.Zero, &ConfigError{Employee: e.Name, Err: err}
		}
		total = total.Add(v)
	}
	return total, nil
}

// YTDValue returns an accumulator for a calendar year; missing is zero.
func (e *Employee) YTDValue(year int, key YTDKey) decimal.Decimal {
	return e.YTD[year][key]
}

func (e *Employee) addYTD(year int, key YTDKey, delta decimal.Decimal) {
	if e.YTD == nil {
		e.YTD = make(map[int]map[YTDKey]decimal.Decimal)
	}
	if e.YTD[year] == nil {
		e.YTD[year] = make(map[YTDKey]decimal.Decimal)
	}
	e.YTD[year][key] = e.YTD[year][key].Add(delta)
}

// Paystubs returns the employee's paystubs in chronological order.
func (e *Employee) Paystubs() []*Paystub {
	out := make([]*Paystub, len(e.paystubs))
	copy(out, e.paystubs)
	return out
}

// PaystubsBetween returns the paystubs paid within [from, to], inclusive.
func (e *Employee) PaystubsBetween(from, to time.Time) []*Paystub {
	var out []*Paystub
	for _, s := range e.paystubs {
		d := s.Date()
		if !d.Before(from) && !d.After(to) {
			out = append(out, s)
		}
	}
	return out
}

// PaystubsInYear returns the paystubs paid in a calendar year.
func (e *Employee) PaystubsInYear(year int) []*Paystub {
	return e.PaystubsBetween(Date(year, time.January, 1), Date(year, time.December, 31))
}

// attach inserts a paystub keeping chronological order by payday key.
func (e *Employee) attach(s *Paystub) {
	s.employee = e
	e.paystubs = append(e.paystubs, s)
	sort.SliceStable(e.paystubs, func(i, j int) bool {
		return e.paystubs[i].payday.Key().Less(e.paystubs[j].payday.Key())
	})
}

func (e *Employee) detach(s *Paystub) {
	for i, p := range e.paystubs {
		if p == s {
			e.paystubs = append(e.paystubs[:i], e.paystubs[i+1:]...)
			return
		}
	}
}

// Date returns midnight UTC of a calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day drops the time of day from t.
func Day(t time.Time) time.Time {
	return Date(t.Date())
}
