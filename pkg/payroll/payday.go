package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

// PaydayKey identifies a payday. Serial distinguishes several paydays on
// the same date.
type PaydayKey struct {
	Date   time.Time
	Serial int
}

// Less orders keys by date then serial.
func (k PaydayKey) Less(o PaydayKey) bool {
	if !k.Date.Equal(o.Date) {
		return k.Date.Before(o.Date)
	}
	return k.Serial < o.Serial
}

func (k PaydayKey) String() string {
	return fmt.Sprintf("%s#%d", k.Date.Format("2006-01-02"), k.Serial)
}

// Payday is a pay date and the paystubs paid on it.
type Payday struct {
	Date         time.Time  `json:"date"`
	Serial       int        `json:"serial"`
	PeriodID     string     `json:"period_id"`
	RuleFallback bool       `json:"rule_fallback,omitempty"`
	Posted       bool       `json:"posted"`
	Paystubs     []*Paystub `json:"paystubs"`

	period rules.Period
}

// NewPayday creates a new Payday and resolves the rule period in force.
func NewPayday(date time.Time, serial int, table *rules.Table) *Payday {
	p := &Payday{Date: Day(date), Serial: serial}
	p.resolve(table)
	return p
}

func (p *Payday) resolve(table *rules.Table) {
	res := table.Resolve(p.Date)
	p.period = res.Period
	p.RuleFallback = res.Fallback
	p.PeriodID = res.Period.ID
}

// Key returns the payday's identity.
func (p *Payday) Key() PaydayKey {
	return PaydayKey{Date: p.Date, Serial: p.Serial}
}

// Period returns the rule period the payday was resolved to.
func (p *Payday) Period() rules.Period {
	return p.period
}

// Fallback reports whether the pay date lies outside the rule table.
func (p *Payday) Fallback() bool {
	return p.RuleFallback
}

// NewPaystub creates a paystub for emp on this payday.
func (p *Payday) NewPaystub(emp *Employee) *Paystub {
	s := &Paystub{EmployeeName: emp.Name, payday: p}
	p.Paystubs = append(p.Paystubs, s)
	emp.attach(s)
	return s
}

// Paystub returns the first paystub of the named employee.
func (p *Payday) Paystub(employee string) (*Paystub, bool) {
	for _, s := range p.Paystubs {
		if s.EmployeeName == employee {
			return s, true
		}
	}
	return nil, false
}

// YTDChange is one accumulator adjustment made by posting or unposting.
type YTDChange struct {
	Employee string
	Year     int
	Key      YTDKey
	Delta    decimal.Decimal
}

// Post freezes every line value and adds the paystubs to their employees'
// year-to-date accumulators. Either every paystub is posted or none is.
func (p *Payday) Post() ([]YTDChange, error) {
	if p.Posted {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPosted, p.Key())
	}
	for _, s := range p.Paystubs {
		if err := s.employee.Validate(); err != nil {
			return nil, err
		}
		if err := checkPostingOrder(s); err != nil {
			return nil, &PaystubError{Employee: s.EmployeeName, Err: err}
		}
	}

	var changes []YTDChange
	var frozen []*Paystub
	rollback := func() {
		for _, s := range frozen {
			s.thaw()
		}
		applyYTD(p.Paystubs, negate(changes))
	}
	for _, s := range p.Paystubs {
		values, err := s.values()
		if err != nil {
			rollback()
			return nil, &PaystubError{Employee: s.EmployeeName, Err: err}
		}
		s.freeze(values)
		frozen = append(frozen, s)
		delta, err := s.ytdDelta()
		if err != nil {
			rollback()
			return nil, &PaystubError{Employee: s.EmployeeName, Err: err}
		}
		// A later stub for the same employee on this payday sees this one.
		applyYTD(p.Paystubs, delta)
		changes = append(changes, delta...)
	}
	p.Posted = true
	return changes, nil
}

// CheckUnpost reports whether Unpost would succeed. A payday can only be
// unposted while no later payday holds a posted paystub for the same
// employee in the same year, since that stub's frozen CPP and EI depend on
// this one's YTD.
func (p *Payday) CheckUnpost() error {
	if !p.Posted {
		return fmt.Errorf("%w: %s", ErrNotPosted, p.Key())
	}
	for _, s := range p.Paystubs {
		if err := checkUnpostingOrder(s); err != nil {
			return &PaystubError{Employee: s.EmployeeName, Err: err}
		}
	}
	return nil
}

// Unpost reverses Post, subtracting the frozen values from YTD and turning
// calculated lines back into formulas.
func (p *Payday) Unpost() ([]YTDChange, error) {
	if err := p.CheckUnpost(); err != nil {
		return nil, err
	}
	var changes []YTDChange
	for _, s := range p.Paystubs {
		delta, err := s.ytdDelta()
		if err != nil {
			return nil, err
		}
		changes = append(changes, negate(delta)...)
	}
	applyYTD(p.Paystubs, changes)
	for _, s := range p.Paystubs {
		s.thaw()
	}
	p.Posted = false
	return changes, nil
}

func checkPostingOrder(s *Paystub) error {
	for _, other := range s.employee.paystubs {
		if other == s || !other.Posted() || other.Year() != s.Year() {
			continue
		}
		if s.payday.Key().Less(other.payday.Key()) {
			return fmt.Errorf("%w: %s after %s", ErrPostingOutOfOrder, s.payday.Key(), other.payday.Key())
		}
	}
	return nil
}

func checkUnpostingOrder(s *Paystub) error {
	for _, other := range s.employee.paystubs {
		if other.payday == s.payday || !other.Posted() || other.Year() != s.Year() {
			continue
		}
		if s.payday.Key().Less(other.payday.Key()) {
			return fmt.Errorf("%w: %s before %s", ErrUnpostingOutOfOrder, s.payday.Key(), other.payday.Key())
		}
	}
	return nil
}

func (s *Paystub) values() ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(s.Lines))
	for i, l := range s.Lines {
		v, err := s.Value(l)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *Paystub) freeze(values []decimal.Decimal) {
	for i := range s.Lines {
		s.Lines[i].Amount = values[i]
		s.Lines[i].Frozen = true
	}
}

func (s *Paystub) thaw() {
	for i := range s.Lines {
		s.Lines[i].Frozen = false
		if s.Lines[i].Calculated() {
			s.Lines[i].Amount = decimal.Zero
		}
	}
}

// ytdDelta returns what this (frozen) paystub adds to the accumulators.
func (s *Paystub) ytdDelta() ([]YTDChange, error) {
	year := s.Year()
	change := func(key YTDKey, v decimal.Decimal) YTDChange {
		return YTDChange{Employee: s.EmployeeName, Year: year, Key: key, Delta: v}
	}
	total := func(kind LineKind, calc Calculation) decimal.Decimal {
		v, _ := s.Total(kind, calc)
		return v
	}
	accrued, err := s.VacationAccrued()
	if err != nil {
		return nil, err
	}
	net, err := s.NetPay()
	if err != nil {
		return nil, err
	}
	return []YTDChange{
		change(YTDGross, s.GrossIncome()),
		change(YTDCPP, total(LineDeduction, CalcCPP)),
		change(YTDCPPEmployer, total(LineEmployerContribution, CalcCPP)),
		change(YTDEI, total(LineDeduction, CalcEI)),
		change(YTDEIEmployer, total(LineEmployerContribution, CalcEI)),
		change(YTDIncomeTax, total(LineDeduction, CalcIncomeTax)),
		change(YTDVacationAccrued, accrued),
		change(YTDVacationPaid, s.VacationPayouts()),
		change(YTDNetPay, net),
	}, nil
}

func applyYTD(stubs []*Paystub, changes []YTDChange) {
	employees := make(map[string]*Employee)
	for _, s := range stubs {
		employees[s.EmployeeName] = s.employee
	}
	for _, c := range changes {
		employees[c.Employee].addYTD(c.Year, c.Key, c.Delta)
	}
}

func negate(changes []YTDChange) []YTDChange {
	out := make([]YTDChange, len(changes))
	for i, c := range changes {
		c.Delta = c.Delta.Neg()
		out[i] = c
	}
	return out
}
