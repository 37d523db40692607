package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed canada.yaml
var defaultTable []byte

// ErrInvalidTable is returned when a rate table is malformed.
var ErrInvalidTable = errors.New("invalid rule table")

// Table is an immutable, date-ordered set of rule periods.
type Table struct {
	periods []Period
	logger  *slog.Logger
}

type tableFile struct {
	Periods []Period `yaml:"periods"`
}

// Default returns the embedded rate table.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Load reads a rate table from a YAML file.
// An empty path loads the embedded table.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule table: %w", err)
	}

	return Parse(data)
}

// Parse parses and validates a YAML rate table.
func Parse(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidTable, err)
	}

	if len(file.Periods) == 0 {
		return nil, fmt.Errorf("%w: no periods defined", ErrInvalidTable)
	}

	seen := make(map[string]bool, len(file.Periods))
	for i := range file.Periods {
		p := &file.Periods[i]
		if p.ID == "" {
			return nil, fmt.Errorf("%w: period %d has no id", ErrInvalidTable, i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate period %s", ErrInvalidTable, p.ID)
		}
		seen[p.ID] = true

		start, err := time.Parse("2006-01", p.Effective)
		if err != nil {
			return nil, fmt.Errorf("%w: period %s: invalid effective month %q", ErrInvalidTable, p.ID, p.Effective)
		}
		p.start = start

		if i > 0 && !file.Periods[i-1].start.Before(start) {
			return nil, fmt.Errorf("%w: period %s is not after %s", ErrInvalidTable, p.ID, file.Periods[i-1].ID)
		}

		if err := validatePeriod(p); err != nil {
			return nil, fmt.Errorf("%w: period %s: %v", ErrInvalidTable, p.ID, err)
		}

		p.Federal.deriveConstants()
		p.Provincial.deriveConstants()
	}

	return &Table{periods: file.Periods}, nil
}

func validatePeriod(p *Period) error {
	if !p.CPP.Rate.IsPositive() || !p.CPP.MaxContribution.IsPositive() || !p.CPP.EmployerMultiplier.IsPositive() {
		return errors.New("cpp rate, max_contribution and employer_multiplier are required")
	}
	if p.CPP.BasicExemption.IsNegative() {
		return errors.New("cpp basic_exemption must not be negative")
	}
	if !p.EI.Rate.IsPositive() || !p.EI.MaxContribution.IsPositive() || !p.EI.EmployerMultiplier.IsPositive() {
		return errors.New("ei rate, max_contribution and employer_multiplier are required")
	}
	if err := validateTaxTable("federal", p.Federal); err != nil {
		return err
	}
	return validateTaxTable("provincial", p.Provincial)
}

func validateTaxTable(name string, t TaxTable) error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("%s table has no brackets", name)
	}
	if !t.Brackets[0].LowerBound.IsZero() {
		return fmt.Errorf("%s table must start at 0", name)
	}
	for i, b := range t.Brackets {
		if !b.Rate.IsPositive() {
			return fmt.Errorf("%s bracket %d has no rate", name, i)
		}
		if i > 0 && !b.LowerBound.GreaterThan(t.Brackets[i-1].LowerBound) {
			return fmt.Errorf("%s brackets are not ascending at %d", name, i)
		}
	}
	if t.BasicPersonalAmount.IsNegative() || t.EmploymentAmount.IsNegative() {
		return fmt.Errorf("%s credit amounts must not be negative", name)
	}
	if t.ReductionFactor.IsNegative() || t.ReductionFactor.GreaterThan(one) {
		return fmt.Errorf("%s reduction_factor must be between 0 and 1", name)
	}
	return nil
}

// WithLogger returns a table sharing the same periods that logs through l.
func (t *Table) WithLogger(l *slog.Logger) *Table {
	return &Table{periods: t.periods, logger: l}
}

// Periods returns a copy of every period in effective-date order.
func (t *Table) Periods() []Period {
	out := make([]Period, len(t.periods))
	copy(out, t.periods)
	return out
}

// Period looks up a period by id.
func (t *Table) Period(id string) (Period, bool) {
	for _, p := range t.periods {
		if p.ID == id {
			return p, true
		}
	}
	return Period{}, false
}

// Resolve maps a pay date to the period in force on that date.
// Dates outside the table fall back to the nearest period; the fallback is
// logged and flagged on the Resolution rather than returned as an error.
//
// Tables are issued per calendar year, so the last period covers the rest
// of its year. A date is past the table only from January 1 of the
// following year.
func (t *Table) Resolve(date time.Time) Resolution {
	month := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	i := sort.Search(len(t.periods), func(i int) bool {
		return t.periods[i].start.After(month)
	})

	var res Resolution
	switch {
	case i == 0:
		res = Resolution{Period: t.periods[0], Fallback: true, Reason: "pay date precedes the first rule period"}
	case i == len(t.periods) && date.Year() > t.periods[i-1].Year():
		res = Resolution{Period: t.periods[i-1], Fallback: true, Reason: "pay date is past the last rule period"}
	default:
		res = Resolution{Period: t.periods[i-1]}
	}

	if res.Fallback {
		t.log().Warn("Rule period fallback",
			"pay_date", date.Format("2006-01-02"),
			"period", res.Period.ID,
			"reason", res.Reason,
		)
	}

	return res
}

func (t *Table) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.Default()
}
