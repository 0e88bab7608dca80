// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
)

// ListDocumentsResponse represents a paginated list of documents in API responses.
type ListDocumentsResponse struct {
	Data []DocumentResponse `json:"data"`
}

// MapDocumentsToListResponse converts a slice of domain records to a list response.
func MapDocumentsToListResponse(records []*docDomain.DocumentRecord) ListDocumentsResponse {
	data := make([]DocumentResponse, 0, len(records))
	for _, record := range records {
		data = append(data, MapDocumentToResponse(record))
	}

	return ListDocumentsResponse{
		Data: data,
	}
}
