// Package t4 builds the year-end T4 slips and summary for electronic filing
// in the CRA T619 XML layout.
package t4

import "encoding/xml"

// Submission is the root of a T619 electronic filing.
type Submission struct {
	XMLName        xml.Name `xml:"Submission"`
	XSI            string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:noNamespaceSchemaLocation,attr"`
	T619           T619     `xml:"T619"`
	Return         Return   `xml:"Return"`
}

// T619 is the transmitter record.
type T619 struct {
	ReferenceID       string         `xml:"sbmt_ref_id"`
	ReportType        string         `xml:"rpt_tcd"`
	TransmitterNumber string         `xml:"trnmtr_nbr"`
	TransmitterType   string         `xml:"trnmtr_tcd"`
	SummaryCount      int            `xml:"summ_cnt"`
	Language          string         `xml:"lang_cd"`
	Name              OrgName        `xml:"TRNMTR_NM"`
	Address           AddressElement `xml:"TRNMTR_ADDR"`
	Contact           Contact        `xml:"CNTC"`
}

// Return wraps the T4 return.
type Return struct {
	T4 T4 `xml:"T4"`
}

// T4 holds every slip followed by the summary.
type T4 struct {
	Slips   []Slip  `xml:"T4Slip"`
	Summary Summary `xml:"T4Summary"`
}

// Slip is one employee's T4.
type Slip struct {
	Name                 PersonName     `xml:"EMPE_NM"`
	Address              AddressElement `xml:"EMPE_ADDR"`
	SIN                  string         `xml:"sin"`
	EmployeeNumber       string         `xml:"empe_nbr,omitempty"`
	BusinessNumber       string         `xml:"bn"`
	CPPExempt            string         `xml:"cpp_qpp_xmpt_cd"`
	EIExempt             string         `xml:"ei_xmpt_cd"`
	ReportType           string         `xml:"rpt_tcd"`
	ProvinceOfEmployment string         `xml:"empt_prov_cd"`
	Amounts              SlipAmounts    `xml:"T4_AMT"`
}

// SlipAmounts are the dollar boxes of a slip. Boxes other than employment
// income are omitted when zero.
type SlipAmounts struct {
	EmploymentIncome    string `xml:"empt_incamt"`
	CPPContributions    string `xml:"cpp_cntrb_amt,omitempty"`
	EIPremiums          string `xml:"empe_eip_amt,omitempty"`
	IncomeTax           string `xml:"itx_ddct_amt,omitempty"`
	InsurableEarnings   string `xml:"ei_insu_ern_amt,omitempty"`
	PensionableEarnings string `xml:"cpp_qpp_ern_amt,omitempty"`
}

// Summary is the employer's T4 summary.
type Summary struct {
	BusinessNumber string         `xml:"bn"`
	EmployerName   OrgName        `xml:"EMPR_NM"`
	Address        AddressElement `xml:"EMPR_ADDR"`
	Contact        Contact        `xml:"CNTC"`
	TaxYear        int            `xml:"tx_yr"`
	SlipCount      int            `xml:"slp_cnt"`
	ReportType     string         `xml:"rpt_tcd"`
	Totals         SummaryTotals  `xml:"T4_TAMT"`
}

// SummaryTotals are the summary's dollar totals.
type SummaryTotals struct {
	EmploymentIncome string `xml:"tot_empt_incamt"`
	CPPContributions string `xml:"tot_empe_cpp_amt"`
	EIPremiums       string `xml:"tot_empe_eip_amt"`
	IncomeTax        string `xml:"tot_itx_ddct_amt"`
	EmployerCPP      string `xml:"tot_empr_cpp_amt"`
	EmployerEI       string `xml:"tot_empr_eip_amt"`
}

// PersonName is an employee name.
type PersonName struct {
	Surname   string `xml:"snm"`
	GivenName string `xml:"gvn_nm"`
	Initial   string `xml:"init,omitempty"`
}

// OrgName is an employer or transmitter name.
type OrgName struct {
	Line1 string `xml:"l1_nm"`
	Line2 string `xml:"l2_nm,omitempty"`
}

// AddressElement is a mailing address.
type AddressElement struct {
	Line1      string `xml:"addr_l1_txt,omitempty"`
	Line2      string `xml:"addr_l2_txt,omitempty"`
	City       string `xml:"cty_nm,omitempty"`
	Province   string `xml:"prov_cd,omitempty"`
	Country    string `xml:"cntry_cd,omitempty"`
	PostalCode string `xml:"pstl_cd,omitempty"`
}

// Contact is the person CRA may call about the filing.
type Contact struct {
	Name     string `xml:"cntc_nm"`
	AreaCode string `xml:"cntc_area_cd"`
	Phone    string `xml:"cntc_phn_nbr"`
	Email    string `xml:"cntc_email_area,omitempty"`
}
