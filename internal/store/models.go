package store

import "regexp"

// Severity levels used across the pipeline.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// Incident lifecycle statuses.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// idPattern matches well-formed incident IDs such as INC-1718000000000.
var idPattern = regexp.MustCompile(`^INC-\d+$`)

// IncidentRecord is the persisted shape of a single incident. Optional
// fields stay empty strings and serialize as such, keeping the mirror
// file stable across partial updates.
type IncidentRecord struct {
	IncidentID        string `json:"incident_id"`
	ServiceName       string `json:"service_name"`
	Severity          string `json:"severity"`
	Status            string `json:"status"`
	Timestamp         string `json:"timestamp"`
	Commander         string `json:"commander"`
	CommunicationLead string `json:"communication_lead"`
	PlaybookApplied   string `json:"playbook_applied"`
	Timeline          string `json:"timeline"`
	ResolutionDetails string `json:"resolution_details"`
	ResolvedAt        string `json:"resolved_at,omitempty"`
	FirstResponseAt   string `json:"first_response_at,omitempty"`
	CreatedAt         string `json:"created_at"`
	LastUpdated       string `json:"last_updated"`
}

// Fields carries an incident patch. Nil pointers mean "leave unchanged";
// for Create they mean "use the default".
type Fields struct {
	ServiceName       *string
	Severity          *string
	Status            *string
	Timestamp         *string
	Commander         *string
	CommunicationLead *string
	PlaybookApplied   *string
	Timeline          *string
	ResolutionDetails *string
	ResolvedAt        *string
	FirstResponseAt   *string
}

// String returns a pointer to s, for building Fields literals.
func String(s string) *string {
	return &s
}
