package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueryFilter narrows an audit trail query. Zero-valued fields do not
// filter. Time boundaries are inclusive and expected in UTC.
type QueryFilter struct {
	EventTypes   []EventType
	Severities   []Severity
	ActorID      string
	ResourceID   *uuid.UUID
	ResourceType string
	ContainsPII  *bool
	ContainsPHI  *bool
	From         *time.Time
	To           *time.Time
}

// ComplianceSummary aggregates the compliance posture of a query result.
// OldestEntryAt is nil when nothing matched.
type ComplianceSummary struct {
	TotalEntries  int64          `json:"total_entries"`
	PIIEntries    int64          `json:"pii_entries"`
	PHIEntries    int64          `json:"phi_entries"`
	OldestEntryAt *time.Time     `json:"oldest_entry_at,omitempty"`
	Jurisdictions []Jurisdiction `json:"jurisdictions"`
}
