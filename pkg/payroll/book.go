package payroll

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

// EmployeeDB looks up employees by name.
type EmployeeDB interface {
	Employee(name string) (*Employee, error)
	EmployeeNames() []string
}

// PaydayDB stores paydays keyed by date and serial.
type PaydayDB interface {
	AddPayday(p *Payday) error
	Payday(date time.Time, serial int) (*Payday, error)
	Paydays() []*Payday
}

// Book is the in-memory payroll book: the employee and payday databases.
type Book struct {
	rules     *rules.Table
	employees map[string]*Employee
	paydays   map[PaydayKey]*Payday
	logger    *slog.Logger
}

var (
	_ EmployeeDB = (*Book)(nil)
	_ PaydayDB   = (*Book)(nil)
)

// NewBook creates a new, empty Book using the given rule table.
func NewBook(table *rules.Table) *Book {
	return &Book{
		rules:     table,
		employees: make(map[string]*Employee),
		paydays:   make(map[PaydayKey]*Payday),
	}
}

// WithLogger sets the logger used when relinking loaded paydays.
func (b *Book) WithLogger(l *slog.Logger) *Book {
	b.logger = l
	return b
}

// Rules returns the book's rule table.
func (b *Book) Rules() *rules.Table {
	return b.rules
}

// AddEmployee adds an employee to the book.
func (b *Book) AddEmployee(e *Employee) error {
	if _, ok := b.employees[e.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEmployee, e.Name)
	}
	if e.YTD == nil {
		e.YTD = make(map[int]map[YTDKey]decimal.Decimal)
	}
	b.employees[e.Name] = e
	return nil
}

// Employee returns the named employee.
func (b *Book) Employee(name string) (*Employee, error) {
	e, ok := b.employees[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, name)
	}
	return e, nil
}

// EmployeeNames returns every employee name, sorted.
func (b *Book) EmployeeNames() []string {
	names := make([]string, 0, len(b.employees))
	for name := range b.employees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Employees returns every employee sorted by name.
func (b *Book) Employees() []*Employee {
	names := b.EmployeeNames()
	out := make([]*Employee, len(names))
	for i, name := range names {
		out[i] = b.employees[name]
	}
	return out
}

// NewPayday creates and stores a payday for date and serial.
func (b *Book) NewPayday(date time.Time, serial int) (*Payday, error) {
	p := NewPayday(date, serial, b.rules)
	if err := b.AddPayday(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddPayday stores a payday. Paydays loaded from storage are relinked to the
// book's employees and rule table.
func (b *Book) AddPayday(p *Payday) error {
	p.Date = Day(p.Date)
	key := p.Key()
	if _, ok := b.paydays[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePayday, key)
	}
	if err := b.link(p); err != nil {
		return err
	}
	b.paydays[key] = p
	return nil
}

// link attaches a payday's paystubs to their employees and restores the
// payday's rule period.
func (b *Book) link(p *Payday) error {
	if p.period.ID == "" {
		if period, ok := b.rules.Period(p.PeriodID); ok {
			p.period = period
		} else {
			b.log().Warn("Stored rule period not in table, resolving by date",
				"payday", p.Key().String(),
				"period", p.PeriodID,
			)
			p.resolve(b.rules)
		}
	}
	for _, s := range p.Paystubs {
		if s.employee != nil && s.payday == p {
			continue
		}
		e, err := b.Employee(s.EmployeeName)
		if err != nil {
			return fmt.Errorf("failed to link paystub on %s: %w", p.Key(), err)
		}
		s.payday = p
		e.attach(s)
	}
	return nil
}

// Payday returns the payday for date and serial.
func (b *Book) Payday(date time.Time, serial int) (*Payday, error) {
	key := PaydayKey{Date: Day(date), Serial: serial}
	p, ok := b.paydays[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPaydayNotFound, key)
	}
	return p, nil
}

// Paydays returns every payday ordered by date then serial.
func (b *Book) Paydays() []*Payday {
	out := make([]*Payday, 0, len(b.paydays))
	for _, p := range b.paydays {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().Less(out[j].Key())
	})
	return out
}

// NextSerial returns the first unused serial for date.
func (b *Book) NextSerial(date time.Time) int {
	serial := 0
	for {
		if _, ok := b.paydays[PaydayKey{Date: Day(date), Serial: serial}]; !ok {
			return serial
		}
		serial++
	}
}

// RemovePayday deletes an unposted payday and detaches its paystubs.
func (b *Book) RemovePayday(date time.Time, serial int) error {
	p, err := b.Payday(date, serial)
	if err != nil {
		return err
	}
	if p.Posted {
		return fmt.Errorf("failed to remove payday %s: %w", p.Key(), ErrAlreadyPosted)
	}
	for _, s := range p.Paystubs {
		if s.employee != nil {
			s.employee.detach(s)
		}
	}
	delete(b.paydays, p.Key())
	return nil
}

func (b *Book) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.Default()
}
