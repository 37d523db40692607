package ledger

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed accounts.yaml
var defaultAccounts []byte

// Role is the part a posting plays in a payroll transaction.
type Role string

const (
	RoleWages                        Role = "wages"
	RoleEmployerCPP                  Role = "employer_cpp"
	RoleEmployerEI                   Role = "employer_ei"
	RoleEmployerContributions        Role = "employer_contributions"
	RoleVacationPayExpense           Role = "vacation_pay_expense"
	RoleVacationPayPayable           Role = "vacation_pay_payable"
	RoleCPPPayable                   Role = "cpp_payable"
	RoleEIPayable                    Role = "ei_payable"
	RoleIncomeTaxPayable             Role = "income_tax_payable"
	RoleDeductionsPayable            Role = "deductions_payable"
	RoleEmployerContributionsPayable Role = "employer_contributions_payable"
	RoleNetPay                       Role = "net_pay"
)

// AccountMap maps payroll roles and line tags to ledger account names.
type AccountMap struct {
	Currency string            `yaml:"currency"`
	Accounts map[Role]string   `yaml:"accounts"`
	Tags     map[string]string `yaml:"tags"`
}

// DefaultAccountMap returns the embedded account map.
func DefaultAccountMap() (*AccountMap, error) {
	return ParseAccountMap(defaultAccounts)
}

// LoadAccountMap reads an account map from a YAML file.
// An empty path returns the embedded default.
func LoadAccountMap(path string) (*AccountMap, error) {
	if path == "" {
		return DefaultAccountMap()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read account map: %w", err)
	}
	return ParseAccountMap(data)
}

// ParseAccountMap decodes an account map from YAML.
func ParseAccountMap(data []byte) (*AccountMap, error) {
	var m AccountMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if m.Currency == "" {
		m.Currency = "CAD"
	}
	if m.Accounts == nil {
		m.Accounts = make(map[Role]string)
	}
	return &m, nil
}

// Account returns the account for a role.
func (m *AccountMap) Account(role Role) (string, bool) {
	a, ok := m.Accounts[role]
	return a, ok && a != ""
}

// AccountFor returns the first tag override among tags, falling back to role.
func (m *AccountMap) AccountFor(role Role, tags []string) (string, bool) {
	for _, tag := range tags {
		if a := m.Tags[tag]; a != "" {
			return a, true
		}
	}
	return m.Account(role)
}

// Roles returns the mapped roles, sorted.
func (m *AccountMap) Roles() []Role {
	roles := make([]Role, 0, len(m.Accounts))
	for r := range m.Accounts {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
