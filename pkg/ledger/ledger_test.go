package ledger

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

func newStub(t *testing.T, date time.Time, vacationRate string) *payroll.Paystub {
	t.Helper()
	table, err := rules.Default()
	if err != nil {
		t.Fatalf("rules.Default() error = %v", err)
	}
	book := payroll.NewBook(table)
	e := payroll.NewEmployee("alice", 26)
	e.FederalCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
	e.ProvincialCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
	e.VacationRate = money.MustParse(vacationRate)
	if err := book.AddEmployee(e); err != nil {
		t.Fatalf("AddEmployee() error = %v", err)
	}
	p, err := book.NewPayday(date, 0)
	if err != nil {
		t.Fatalf("NewPayday() error = %v", err)
	}
	return p.NewPaystub(e)
}

func defaultConverter(t *testing.T) *Converter {
	t.Helper()
	accounts, err := DefaultAccountMap()
	if err != nil {
		t.Fatalf("DefaultAccountMap() error = %v", err)
	}
	return NewConverter(accounts)
}

type wantPosting struct {
	account string
	amount  string
}

func checkPostings(t *testing.T, txn Transaction, want []wantPosting) {
	t.Helper()
	if len(txn.Postings) != len(want) {
		t.Fatalf("got %d postings, expected %d: %+v", len(txn.Postings), len(want), txn.Postings)
	}
	for i, w := range want {
		p := txn.Postings[i]
		if p.Account != w.account || !p.Amount.Equal(money.MustParse(w.amount)) {
			t.Errorf("posting %d = %s %s, expected %s %s", i, p.Account, p.Amount, w.account, w.amount)
		}
	}
	if !txn.Balanced() {
		t.Errorf("transaction not balanced: total %s", txn.Total())
	}
}

func TestFromPaystub(t *testing.T) {
	s := newStub(t, payroll.Date(2011, time.July, 15), "0")
	s.AddLine(payroll.Income(money.MustParse("480"), "Salary"))
	s.AddLine(payroll.Deduction(money.MustParse("10"), "Union dues", "union-dues"))
	s.AddLine(payroll.CPPDeductionLine())
	s.AddLine(payroll.EIDeductionLine())
	s.AddLine(payroll.IncomeTaxLine())
	s.AddLine(payroll.CPPEmployerLine())
	s.AddLine(payroll.EIEmployerLine())
	s.AddLine(payroll.NetPayLine())

	txn, err := defaultConverter(t).FromPaystub(s)
	if err != nil {
		t.Fatalf("FromPaystub() error = %v", err)
	}
	checkPostings(t, txn, []wantPosting{
		{"Expenses:Payroll:Wages", "480"},
		{"Liabilities:Payroll:UnionDues", "-10"},
		{"Liabilities:Payroll:CPP", "-34.20"},
		{"Liabilities:Payroll:EI", "-20.50"},
		{"Liabilities:Payroll:IncomeTax", "-14.48"},
		{"Expenses:Payroll:EmployerCPP", "17.10"},
		{"Expenses:Payroll:EmployerEI", "11.96"},
		{"Assets:Bank:Chequing", "-429.88"},
	})
	if txn.Payee != "alice" || txn.Metadata["payday"] != "2011-07-15#0" {
		t.Errorf("transaction header = %q %v, expected alice on 2011-07-15#0", txn.Payee, txn.Metadata)
	}
}

func TestFromPaystubVacation(t *testing.T) {
	s := newStub(t, payroll.Date(2016, time.June, 10), "0.04")
	s.AddLine(payroll.Income(money.MustParse("480"), "Salary"))
	s.AddLine(payroll.VacationPayLine())
	s.AddLine(payroll.VacationPayout(money.MustParse("50"), true, "Vacation"))
	s.AddLine(payroll.VacationPayout(money.MustParse("80"), false, "Banked"))

	txn, err := defaultConverter(t).FromPaystub(s)
	if err != nil {
		t.Fatalf("FromPaystub() error = %v", err)
	}
	checkPostings(t, txn, []wantPosting{
		{"Expenses:Payroll:Wages", "480"},
		{"Expenses:Payroll:VacationPay", "19.20"},
		{"Liabilities:Payroll:VacationPay", "30.80"},
		{"Assets:Bank:Chequing", "-530"},
	})
}

func TestFromPaystubErrors(t *testing.T) {
	t.Run("zero amounts", func(t *testing.T) {
		s := newStub(t, payroll.Date(2016, time.June, 10), "0")
		s.AddLine(payroll.NetPayLine())
		_, err := defaultConverter(t).FromPaystub(s)
		if !errors.Is(err, ErrNotMappable) {
			t.Errorf("FromPaystub() error = %v, expected ErrNotMappable", err)
		}
	})

	t.Run("missing account", func(t *testing.T) {
		accounts, err := ParseAccountMap([]byte("accounts:\n  wages: Expenses:Wages\n"))
		if err != nil {
			t.Fatalf("ParseAccountMap() error = %v", err)
		}
		s := newStub(t, payroll.Date(2016, time.June, 10), "0")
		s.AddLine(payroll.Income(money.MustParse("100"), "Salary"))

		_, err = NewConverter(accounts).FromPaystub(s)
		var mapping *MappingError
		if !errors.As(err, &mapping) || mapping.Role != RoleNetPay {
			t.Errorf("FromPaystub() error = %v, expected missing %s", err, RoleNetPay)
		}
		if !errors.Is(err, ErrNotMappable) {
			t.Errorf("FromPaystub() error = %v, expected ErrNotMappable", err)
		}
	})
}

func TestAccountForPrefersTags(t *testing.T) {
	m, err := DefaultAccountMap()
	if err != nil {
		t.Fatalf("DefaultAccountMap() error = %v", err)
	}
	tests := []struct {
		role Role
		tags []string
		want string
	}{
		{RoleDeductionsPayable, nil, "Liabilities:Payroll:Deductions"},
		{RoleDeductionsPayable, []string{"other", "group-rrsp"}, "Liabilities:Payroll:GroupRRSP"},
		{RoleWages, []string{"bonus"}, "Expenses:Payroll:Bonuses"},
	}
	for _, tt := range tests {
		got, ok := m.AccountFor(tt.role, tt.tags)
		if !ok || got != tt.want {
			t.Errorf("AccountFor(%s, %v) = %q, expected %q", tt.role, tt.tags, got, tt.want)
		}
	}
	if m.Currency != "CAD" {
		t.Errorf("Currency = %q, expected CAD", m.Currency)
	}
}

func TestFormat(t *testing.T) {
	txn := Transaction{
		Date:      payroll.Date(2016, time.January, 15),
		Narration: "Payroll alice",
		Payee:     "alice",
		Tags:      []string{"payroll"},
		Metadata:  map[string]string{"payday": "2016-01-15#0", "employee": "alice"},
		Postings: []Posting{
			{Account: "Expenses:Payroll:Wages", Amount: money.MustParse("480"), Currency: "CAD"},
			{Account: "Assets:Bank:Chequing", Amount: money.MustParse("-480"), Currency: "CAD", Comment: "direct deposit"},
		},
	}

	got := Format(txn)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	want := []string{
		`2016-01-15 * "alice" "Payroll alice" #payroll`,
		`  employee: "alice"`,
		`  payday: "2016-01-15#0"`,
		"  Expenses:Payroll:Wages" + strings.Repeat(" ", 32) + "480.00 CAD",
		"  Assets:Bank:Chequing" + strings.Repeat(" ", 33) + "-480.00 CAD ; direct deposit",
	}
	if len(lines) != len(want) {
		t.Fatalf("Format() = %q, expected %d lines", got, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Format() line %d = %q, expected %q", i, lines[i], want[i])
		}
	}
}
