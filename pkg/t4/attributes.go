package t4

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Address is a mailing address as entered in the attributes file.
type Address struct {
	Line1      string `yaml:"line1"`
	Line2      string `yaml:"line2"`
	City       string `yaml:"city"`
	Province   string `yaml:"province"`
	Country    string `yaml:"country"`
	PostalCode string `yaml:"postal_code"`
}

func (a Address) element() AddressElement {
	return AddressElement{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Province:   a.Province,
		Country:    a.Country,
		PostalCode: strings.ReplaceAll(a.PostalCode, " ", ""),
	}
}

// EmployeeAttributes are the slip fields the payroll book does not hold.
type EmployeeAttributes struct {
	Surname              string  `yaml:"surname"`
	GivenName            string  `yaml:"given_name"`
	Initial              string  `yaml:"initial"`
	SIN                  string  `yaml:"sin"`
	EmployeeNumber       string  `yaml:"employee_number"`
	ProvinceOfEmployment string  `yaml:"province_of_employment"`
	CPPExempt            bool    `yaml:"cpp_exempt"`
	EIExempt             bool    `yaml:"ei_exempt"`
	Address              Address `yaml:"address"`
}

func (a EmployeeAttributes) missing() []string {
	var out []string
	for _, f := range []struct{ name, value string }{
		{"surname", a.Surname},
		{"given_name", a.GivenName},
		{"sin", a.SIN},
		{"province_of_employment", a.ProvinceOfEmployment},
	} {
		if f.value == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// SummaryAttributes identify the employer on the summary.
type SummaryAttributes struct {
	BusinessNumber  string  `yaml:"business_number"`
	EmployerName    string  `yaml:"employer_name"`
	Address         Address `yaml:"address"`
	ContactName     string  `yaml:"contact_name"`
	ContactAreaCode string  `yaml:"contact_area_code"`
	ContactPhone    string  `yaml:"contact_phone"`
}

// SubmissionAttributes identify the transmitter.
type SubmissionAttributes struct {
	ReferenceID       string  `yaml:"reference_id"`
	TransmitterNumber string  `yaml:"transmitter_number"`
	TransmitterType   string  `yaml:"transmitter_type"`
	Language          string  `yaml:"language"`
	TransmitterName   string  `yaml:"transmitter_name"`
	Address           Address `yaml:"address"`
	ContactName       string  `yaml:"contact_name"`
	ContactAreaCode   string  `yaml:"contact_area_code"`
	ContactPhone      string  `yaml:"contact_phone"`
	ContactEmail      string  `yaml:"contact_email"`
}

// Attributes is the attributes file: everything a filing needs beyond the book.
type Attributes struct {
	Submission SubmissionAttributes          `yaml:"submission"`
	Summary    SummaryAttributes             `yaml:"summary"`
	Employees  map[string]EmployeeAttributes `yaml:"employees"`
}

// LoadAttributes reads an attributes file.
func LoadAttributes(path string) (*Attributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes file: %w", err)
	}
	var a Attributes
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &a, nil
}
