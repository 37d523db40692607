package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

// ErrNotMappable is returned when a paystub can not be expressed as a
// balanced transaction.
var ErrNotMappable = errors.New("paystub not mappable to a transaction")

// MappingError identifies the paystub and role that failed to map.
type MappingError struct {
	Employee string
	Payday   string
	Role     Role
	Reason   string
}

func (e *MappingError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("failed to map paystub for %s on %s: no account for %s", e.Employee, e.Payday, e.Role)
	}
	return fmt.Sprintf("failed to map paystub for %s on %s: %s", e.Employee, e.Payday, e.Reason)
}

func (e *MappingError) Unwrap() error {
	return ErrNotMappable
}

// Converter converts paystubs to ledger transactions.
type Converter struct {
	accounts *AccountMap
	currency string
}

// NewConverter creates a new Converter.
func NewConverter(accounts *AccountMap) *Converter {
	currency := accounts.Currency
	if currency == "" {
		currency = "CAD"
	}
	return &Converter{
		accounts: accounts,
		currency: currency,
	}
}

// postingSet accumulates amounts per account, keeping first-seen order.
type postingSet struct {
	order  []string
	amount map[string]decimal.Decimal
}

func (p *postingSet) add(account string, amount decimal.Decimal) {
	if p.amount == nil {
		p.amount = make(map[string]decimal.Decimal)
	}
	if _, ok := p.amount[account]; !ok {
		p.order = append(p.order, account)
	}
	p.amount[account] = p.amount[account].Add(amount)
}

// FromPaystub builds the transaction for one paystub.
//
// Income and employer expenses are debits; employee deductions, employer
// liabilities and net pay are credits. Vacation pay accrues from expense to
// liability and paid payouts draw the liability down.
func (c *Converter) FromPaystub(s *payroll.Paystub) (Transaction, error) {
	payday := ""
	if p := s.Payday(); p != nil {
		payday = p.Key().String()
	}
	fail := func(role Role, reason string) (Transaction, error) {
		return Transaction{}, &MappingError{Employee: s.EmployeeName, Payday: payday, Role: role, Reason: reason}
	}

	var set postingSet
	post := func(role Role, tags []string, amount decimal.Decimal) error {
		if amount.IsZero() {
			return nil
		}
		account, ok := c.accounts.AccountFor(role, tags)
		if !ok {
			return &MappingError{Employee: s.EmployeeName, Payday: payday, Role: role}
		}
		set.add(account, amount)
		return nil
	}

	for _, l := range s.Lines {
		v, err := s.Value(l)
		if err != nil {
			return Transaction{}, fmt.Errorf("failed to value %s line for %s: %w", l.Label(), s.EmployeeName, err)
		}
		switch {
		case l.Kind.IsIncome():
			err = post(RoleWages, l.Tags, v)
		case l.Kind == payroll.LineDeduction:
			err = post(deductionRole(l.Calc), l.Tags, v.Neg())
		case l.Kind == payroll.LineEmployerContribution:
			expense, payable := employerRoles(l.Calc)
			if err = post(expense, nil, v); err == nil {
				err = post(payable, l.Tags, v.Neg())
			}
		case l.Kind == payroll.LineVacationPay:
			if err = post(RoleVacationPayExpense, l.Tags, v); err == nil {
				err = post(RoleVacationPayPayable, nil, v.Neg())
			}
		case l.Kind == payroll.LineVacationPayout && l.Paid:
			err = post(RoleVacationPayPayable, l.Tags, v)
		}
		if err != nil {
			return Transaction{}, err
		}
	}

	net, err := s.NetPay()
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to calculate net pay for %s: %w", s.EmployeeName, err)
	}
	if err := post(RoleNetPay, nil, net.Neg()); err != nil {
		return Transaction{}, err
	}

	txn := Transaction{
		Date:      s.Date(),
		Narration: fmt.Sprintf("Payroll %s", s.EmployeeName),
		Payee:     s.EmployeeName,
		Tags:      []string{"payroll"},
		Metadata: map[string]string{
			"employee": s.EmployeeName,
			"payday":   payday,
		},
	}
	for _, account := range set.order {
		amount := set.amount[account]
		if amount.IsZero() {
			continue
		}
		txn.Postings = append(txn.Postings, Posting{
			Account:  account,
			Amount:   amount,
			Currency: c.currency,
		})
	}

	if len(txn.Postings) == 0 {
		return fail("", "paystub has no amounts")
	}
	if !txn.Balanced() {
		return fail("", fmt.Sprintf("postings do not balance (off by %s)", txn.Total()))
	}
	return txn, nil
}

// FromPayday builds one transaction per paystub, in paystub order.
func (c *Converter) FromPayday(p *payroll.Payday) ([]Transaction, error) {
	txns := make([]Transaction, 0, len(p.Paystubs))
	for _, s := range p.Paystubs {
		txn, err := c.FromPaystub(s)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func deductionRole(calc payroll.Calculation) Role {
	switch calc {
	case payroll.CalcCPP:
		return RoleCPPPayable
	case payroll.CalcEI:
		return RoleEIPayable
	case payroll.CalcIncomeTax:
		return RoleIncomeTaxPayable
	}
	return RoleDeductionsPayable
}

func employerRoles(calc payroll.Calculation) (expense, payable Role) {
	switch calc {
	case payroll.CalcCPP:
		return RoleEmployerCPP, RoleCPPPayable
	case payroll.CalcEI:
		return RoleEmployerEI, RoleEIPayable
	}
	return RoleEmployerContributions, RoleEmployerContributionsPayable
}
