package types

// SOPRule is the expected-behaviour policy for one salesperson. A customer
// row is only validated when its salesperson has an active rule.
type SOPRule struct {
	DueDay    int      `json:"jatuh_tempo"`
	Incentive []int    `json:"insentif"`
	Locations []string `json:"lokasi"`
	Active    bool     `json:"active"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// Violation severities are fixed per violation type.
const (
	ViolationDueDay    = "jatuh_tempo"
	ViolationIncentive = "insentif"
	ViolationLocation  = "lokasi"

	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

type Violation struct {
	Type     string `json:"type"`
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Severity string `json:"severity"`
}

// CustomerViolations groups every failed check for one customer. Customers
// with zero violations are never reported.
type CustomerViolations struct {
	CustomerID string      `json:"id_pelanggan"`
	Name       string      `json:"nama_pelanggan"`
	Sales      string      `json:"nama_sales"`
	Phone      string      `json:"telepon"`
	Package    string      `json:"paket"`
	Violations []Violation `json:"violations"`
}
