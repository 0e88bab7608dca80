// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
)

// DocumentResponse represents document metadata in API responses. The
// storage key and key version stay server-side.
type DocumentResponse struct {
	ID                 string     `json:"id"`
	OwnerID            string     `json:"owner_id"`
	FileName           string     `json:"file_name"`
	ContentType        string     `json:"content_type"`
	Classification     string     `json:"classification"`
	AccessLevel        string     `json:"access_level"`
	Checksum           string     `json:"checksum"`
	SizeBytes          uint64     `json:"size_bytes"`
	Archived           bool       `json:"archived"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	LastAccessedAt     *time.Time `json:"last_accessed_at,omitempty"`
	RetentionExpiresAt time.Time  `json:"retention_expires_at"`
}

// DownloadDocumentResponse carries document metadata plus the decrypted
// content. Content is base64-encoded by the JSON encoder. Must be transmitted
// over HTTPS in production.
type DownloadDocumentResponse struct {
	DocumentResponse
	Content []byte `json:"content"`
}

// MapDocumentToResponse converts a domain document record to an API response.
func MapDocumentToResponse(record *docDomain.DocumentRecord) DocumentResponse {
	return DocumentResponse{
		ID:                 record.ID.String(),
		OwnerID:            record.OwnerID.String(),
		FileName:           record.FileName,
		ContentType:        record.ContentType,
		Classification:     string(record.Classification),
		AccessLevel:        string(record.AccessLevel),
		Checksum:           record.Checksum,
		SizeBytes:          record.SizeBytes,
		Archived:           record.Archived,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
		LastAccessedAt:     record.LastAccessedAt,
		RetentionExpiresAt: record.RetentionExpiresAt,
	}
}

// MapDocumentToDownloadResponse converts a record plus decrypted content to
// a download response.
func MapDocumentToDownloadResponse(record *docDomain.DocumentRecord, content []byte) DownloadDocumentResponse {
	return DownloadDocumentResponse{
		DocumentResponse: MapDocumentToResponse(record),
		Content:          content,
	}
}
