package payroll

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
)

func TestBookEmployees(t *testing.T) {
	b := newTestBook(t)
	for _, name := range []string{"zoe", "adam"} {
		if err := b.AddEmployee(newTestEmployee(name)); err != nil {
			t.Fatalf("AddEmployee(%q) error = %v", name, err)
		}
	}
	if err := b.AddEmployee(newTestEmployee("adam")); !errors.Is(err, ErrDuplicateEmployee) {
		t.Errorf("AddEmployee(duplicate) error = %v, expected ErrDuplicateEmployee", err)
	}
	if _, err := b.Employee("nobody"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("Employee(%q) error = %v, expected ErrEmployeeNotFound", "nobody", err)
	}
	names := b.EmployeeNames()
	if len(names) != 2 || names[0] != "adam" || names[1] != "zoe" {
		t.Errorf("EmployeeNames() = %v, expected [adam zoe]", names)
	}
}

func TestBookPaydays(t *testing.T) {
	b := newTestBook(t)
	date := Date(2016, time.January, 15)
	if _, err := b.NewPayday(date, 0); err != nil {
		t.Fatalf("NewPayday() error = %v", err)
	}
	if _, err := b.NewPayday(date, 0); !errors.Is(err, ErrDuplicatePayday) {
		t.Errorf("NewPayday(duplicate) error = %v, expected ErrDuplicatePayday", err)
	}
	if got := b.NextSerial(date); got != 1 {
		t.Errorf("NextSerial() = %d, expected 1", got)
	}
	if _, err := b.NewPayday(date, 1); err != nil {
		t.Fatalf("NewPayday(serial 1) error = %v", err)
	}
	if _, err := b.NewPayday(Date(2016, time.January, 1), 0); err != nil {
		t.Fatalf("NewPayday() error = %v", err)
	}

	paydays := b.Paydays()
	want := []string{"2016-01-01#0", "2016-01-15#0", "2016-01-15#1"}
	for i, p := range paydays {
		if p.Key().String() != want[i] {
			t.Errorf("Paydays()[%d] = %s, expected %s", i, p.Key(), want[i])
		}
	}
	if got := paydays[0].Period().ID; got != "2016-01" {
		t.Errorf("Period().ID = %q, expected %q", got, "2016-01")
	}
	if _, err := b.Payday(Date(2020, time.May, 1), 0); !errors.Is(err, ErrPaydayNotFound) {
		t.Errorf("Payday(missing) error = %v, expected ErrPaydayNotFound", err)
	}
}

func TestBookRemovePayday(t *testing.T) {
	b := newTestBook(t)
	e := newTestEmployee("lena")
	_ = b.AddEmployee(e)
	s := newStub(t, b, e, Date(2016, time.April, 8), "480")

	if _, err := s.Payday().Post(); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if err := b.RemovePayday(s.Date(), 0); !errors.Is(err, ErrAlreadyPosted) {
		t.Errorf("RemovePayday(posted) error = %v, expected ErrAlreadyPosted", err)
	}
	if _, err := s.Payday().Unpost(); err != nil {
		t.Fatalf("Unpost() error = %v", err)
	}
	if err := b.RemovePayday(s.Date(), 0); err != nil {
		t.Fatalf("RemovePayday() error = %v", err)
	}
	if len(e.Paystubs()) != 0 {
		t.Errorf("Paystubs() after RemovePayday = %d, expected 0", len(e.Paystubs()))
	}
}

func TestPaydayRelinksAfterJSON(t *testing.T) {
	b := newTestBook(t)
	e := newTestEmployee("mona")
	_ = b.AddEmployee(e)
	s := newStub(t, b, e, Date(2011, time.July, 15), "480")
	if _, err := s.Payday().Post(); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	empData, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("json.Marshal(employee) error = %v", err)
	}
	paydayData, err := json.Marshal(s.Payday())
	if err != nil {
		t.Fatalf("json.Marshal(payday) error = %v", err)
	}

	loaded := newTestBook(t)
	var e2 Employee
	if err := json.Unmarshal(empData, &e2); err != nil {
		t.Fatalf("json.Unmarshal(employee) error = %v", err)
	}
	if err := loaded.AddEmployee(&e2); err != nil {
		t.Fatalf("AddEmployee() error = %v", err)
	}
	var p2 Payday
	if err := json.Unmarshal(paydayData, &p2); err != nil {
		t.Fatalf("json.Unmarshal(payday) error = %v", err)
	}
	if err := loaded.AddPayday(&p2); err != nil {
		t.Fatalf("AddPayday() error = %v", err)
	}

	if got := p2.Period().ID; got != "2011-07" {
		t.Errorf("Period().ID = %q, expected 2011-07", got)
	}
	stubs := e2.Paystubs()
	if len(stubs) != 1 || stubs[0].Payday() != &p2 {
		t.Fatalf("Paystubs() = %v, expected the loaded stub", stubs)
	}
	if got := mustTotal(t, stubs[0], LineDeduction, CalcIncomeTax); !got.Equal(money.MustParse("14.48")) {
		t.Errorf("loaded tax = %s, expected 14.48", got)
	}
	if got := e2.YTDValue(2011, YTDEI); !got.Equal(money.MustParse("8.54")) {
		t.Errorf("loaded YTD ei = %s, expected 8.54", got)
	}
}

func TestPaydayKeepsRuleFallbackAfterJSON(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		fallback bool
	}{
		{"past the rule table", Date(2030, time.March, 1), true},
		{"inside the rule table", Date(2016, time.March, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBook(t)
			p, err := b.NewPayday(tt.date, 0)
			if err != nil {
				t.Fatalf("NewPayday() error = %v", err)
			}
			if p.Fallback() != tt.fallback {
				t.Fatalf("Fallback() = %v, expected %v", p.Fallback(), tt.fallback)
			}

			data, err := json.Marshal(p)
			if err != nil {
				t.Fatalf("json.Marshal(payday) error = %v", err)
			}
			var p2 Payday
			if err := json.Unmarshal(data, &p2); err != nil {
				t.Fatalf("json.Unmarshal(payday) error = %v", err)
			}
			loaded := newTestBook(t)
			if err := loaded.AddPayday(&p2); err != nil {
				t.Fatalf("AddPayday() error = %v", err)
			}

			if got := p2.Fallback(); got != tt.fallback {
				t.Errorf("loaded Fallback() = %v, expected %v", got, tt.fallback)
			}
			if got := p2.Period().ID; got != p.Period().ID {
				t.Errorf("loaded Period().ID = %q, expected %q", got, p.Period().ID)
			}
		})
	}
}
