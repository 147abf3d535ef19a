package domain

import "time"

// ProblemType classifies the diagnosed cause recorded at closure.
type ProblemType string

const (
	ProblemTypeHardware ProblemType = "hardware"
	ProblemTypeSoftware ProblemType = "software"
	ProblemTypeNetwork  ProblemType = "network"
	ProblemTypeOther    ProblemType = "other"
)

// Category maps the diagnosed problem type onto the ticket category used
// for reporting. Closing a ticket reclassifies it with this value.
func (p ProblemType) Category() TicketCategory {
	switch p {
	case ProblemTypeHardware:
		return TicketCategoryHardware
	case ProblemTypeSoftware:
		return TicketCategorySoftware
	case ProblemTypeNetwork:
		return TicketCategoryNetwork
	default:
		return TicketCategoryOther
	}
}

// ValidProblemType reports whether the value is a known problem type.
func ValidProblemType(p ProblemType) bool {
	switch p {
	case ProblemTypeHardware, ProblemTypeSoftware, ProblemTypeNetwork, ProblemTypeOther:
		return true
	}
	return false
}

// ClosureReport is the structured resolution record required before a
// ticket transitions to closed. A ticket reopened and closed again gets a
// new report; the latest one is authoritative for reporting.
type ClosureReport struct {
	ID                 string
	TicketID           string
	ProblemType        ProblemType
	ProblemSubtype     string
	RootCause          string
	SolutionApplied    string
	PartsUsed          string
	TechnicalNotes     string
	Recommendations    string
	IsRecurringProblem bool
	ReplacedParts      []ReplacedPart
	CreatedBy          string
	CreatedAt          time.Time
}

// ReplacedPart records a hardware part swapped during resolution.
type ReplacedPart struct {
	ID              string
	ClosureReportID string
	PartName        string
	SerialNumber    string
	CreatedAt       time.Time
}
