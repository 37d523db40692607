package rules

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDefaultTableLoads(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	periods := table.Periods()
	if len(periods) == 0 {
		t.Fatal("Default() returned no periods")
	}
	for i := 1; i < len(periods); i++ {
		if !periods[i-1].Start().Before(periods[i].Start()) {
			t.Errorf("periods not ordered: %s before %s", periods[i-1].ID, periods[i].ID)
		}
	}

	if _, ok := table.Period("2011-07"); !ok {
		t.Error("Period(2011-07) not found")
	}
}

func TestResolve(t *testing.T) {
	var logs bytes.Buffer
	table, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	table = table.WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	tests := []struct {
		name     string
		date     time.Time
		expected string
		fallback bool
	}{
		{"first day of period", date(2011, 1, 1), "2011-01", false},
		{"before july reissue", date(2011, 6, 30), "2011-01", false},
		{"july reissue", date(2011, 7, 15), "2011-07", false},
		{"later in 2011", date(2011, 12, 31), "2011-07", false},
		{"2016", date(2016, 1, 8), "2016-01", false},
		{"within last year", date(2017, 11, 3), "2017-01", false},
		{"last day of last year", date(2017, 12, 31), "2017-01", false},
		{"first day after last year", date(2018, 1, 1), "2017-01", true},
		{"after last year", date(2019, 3, 1), "2017-01", true},
		{"before first period", date(2009, 5, 1), "2011-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := table.Resolve(tt.date)
			if res.Period.ID != tt.expected {
				t.Errorf("Resolve(%s) = %s, expected %s", tt.date.Format("2006-01-02"), res.Period.ID, tt.expected)
			}
			if res.Fallback != tt.fallback {
				t.Errorf("Resolve(%s).Fallback = %v, expected %v", tt.date.Format("2006-01-02"), res.Fallback, tt.fallback)
			}
		})
	}

	if !strings.Contains(logs.String(), "Rule period fallback") {
		t.Errorf("fallback was not logged, got %q", logs.String())
	}
}

func TestBracketLookup(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	p, _ := table.Period("2016-01")

	tests := []struct {
		income   string
		expected string
	}{
		{"0", "0.15"},
		{"12480", "0.15"},
		{"45282", "0.205"},
		{"45281.99", "0.15"},
		{"90563", "0.26"},
		{"250000", "0.33"},
	}

	for _, tt := range tests {
		t.Run(tt.income, func(t *testing.T) {
			b := p.Federal.Bracket(decimal.RequireFromString(tt.income))
			if !b.Rate.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("Bracket(%s).Rate = %s, expected %s", tt.income, b.Rate, tt.expected)
			}
		})
	}
}

func TestBasicTaxMatchesMarginalSum(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	p, _ := table.Period("2016-01")

	// 45282 × 0.15 + (60000 − 45282) × 0.205
	expected := decimal.RequireFromString("9809.49")
	got := p.Federal.BasicTax(decimal.NewFromInt(60000))
	if !got.Equal(expected) {
		t.Errorf("BasicTax(60000) = %s, expected %s", got, expected)
	}
}

func TestParseRejectsMalformedTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "periods: []"},
		{"bad month", `
periods:
  - id: x
    effective: "2011-13"
`},
		{"missing rates", `
periods:
  - id: x
    effective: "2011-01"
`},
		{"not yaml", "periods: [ {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidTable) {
				t.Errorf("Parse() error = %v, expected ErrInvalidTable", err)
			}
		})
	}
}

func TestParseRejectsUnorderedPeriods(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	periods := table.Periods()

	// Swap the effective months of the first two periods in the embedded YAML.
	data := strings.Replace(string(defaultTable), `effective: "2011-07"`, `effective: "2010-07"`, 1)
	if _, err := Parse([]byte(data)); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("Parse() with %s out of order: error = %v, expected ErrInvalidTable", periods[1].ID, err)
	}
}
