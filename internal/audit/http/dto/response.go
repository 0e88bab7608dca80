// Package dto provides data transfer objects for audit trail API responses.
package dto

import (
	"encoding/json"
	"time"

	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
)

// AuditLogEntryResponse represents an audit entry in API responses.
// Signatures are exposed so external verifiers can walk the chain.
type AuditLogEntryResponse struct {
	ID                 string          `json:"id"`
	Timestamp          time.Time       `json:"timestamp"`
	EventType          string          `json:"event_type"`
	Severity           string          `json:"severity"`
	ActorID            string          `json:"actor_id"`
	ResourceID         string          `json:"resource_id,omitempty"`
	ResourceType       string          `json:"resource_type,omitempty"`
	SourceIP           string          `json:"source_ip,omitempty"`
	UserAgent          string          `json:"user_agent,omitempty"`
	RequestID          string          `json:"request_id,omitempty"`
	Details            json.RawMessage `json:"details,omitempty"`
	ContainsPII        bool            `json:"contains_pii"`
	ContainsPHI        bool            `json:"contains_phi"`
	Jurisdictions      []string        `json:"jurisdictions"`
	Signature          []byte          `json:"signature"`
	PrevSignature      []byte          `json:"prev_signature,omitempty"`
	RetentionExpiresAt time.Time       `json:"retention_expires_at"`
}

// QueryAuditLogsResponse is one page of audit entries with totals and the
// compliance summary over everything the filter matched.
type QueryAuditLogsResponse struct {
	Data    []AuditLogEntryResponse       `json:"data"`
	Total   int64                         `json:"total"`
	Summary auditDomain.ComplianceSummary `json:"summary"`
}

// MapEntryToResponse converts a domain audit entry to an API response.
func MapEntryToResponse(entry *auditDomain.AuditLogEntry) AuditLogEntryResponse {
	response := AuditLogEntryResponse{
		ID:                 entry.ID.String(),
		Timestamp:          entry.Timestamp,
		EventType:          string(entry.EventType),
		Severity:           string(entry.Severity),
		ActorID:            entry.ActorID,
		ResourceType:       entry.ResourceType,
		SourceIP:           entry.SourceIP,
		UserAgent:          entry.UserAgent,
		RequestID:          entry.RequestID,
		ContainsPII:        entry.Flags.ContainsPII,
		ContainsPHI:        entry.Flags.ContainsPHI,
		Signature:          entry.Signature,
		PrevSignature:      entry.PrevSignature,
		RetentionExpiresAt: entry.RetentionExpiresAt,
	}

	if entry.ResourceID != nil {
		response.ResourceID = entry.ResourceID.String()
	}

	response.Jurisdictions = make([]string, 0, len(entry.Flags.Jurisdictions))
	for _, jurisdiction := range entry.Flags.Jurisdictions {
		response.Jurisdictions = append(response.Jurisdictions, string(jurisdiction))
	}

	if entry.Details != nil {
		if raw, err := auditDomain.MarshalDetails(entry.Details); err == nil {
			response.Details = raw
		}
	}

	return response
}

// MapEntriesToQueryResponse converts a query result page to an API response.
func MapEntriesToQueryResponse(
	entries []*auditDomain.AuditLogEntry,
	total int64,
	summary auditDomain.ComplianceSummary,
) QueryAuditLogsResponse {
	data := make([]AuditLogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, MapEntryToResponse(entry))
	}

	return QueryAuditLogsResponse{
		Data:    data,
		Total:   total,
		Summary: summary,
	}
}
