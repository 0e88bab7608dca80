// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/keeplegacy/docvault/internal/validation"
)

// UploadDocumentRequest contains the parameters for uploading a new document.
// Content is base64-encoded; the handler decodes it before calling the use case.
type UploadDocumentRequest struct {
	FileName       string `json:"file_name" binding:"required"`
	ContentType    string `json:"content_type" binding:"required"`
	Classification string `json:"classification" binding:"required"`
	AccessLevel    string `json:"access_level" binding:"required"`
	Content        string `json:"content" binding:"required"`
}

// ArchiveDocumentRequest carries the optional retention override for an
// archive operation. Zero days means the classification's configured window
// applies from the archive time.
type ArchiveDocumentRequest struct {
	RetentionPeriodDays int `json:"retention_period_days"`
}

// Validate checks if the archive request is valid.
func (r *ArchiveDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RetentionPeriodDays,
			validation.Min(0),
		),
	)
}

// Validate checks if the upload request is valid. Size and content-type
// allow-list limits are enforced by the use case, not here.
func (r *UploadDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FileName,
			validation.Required,
			customValidation.FileName,
		),
		validation.Field(&r.ContentType,
			validation.Required,
			customValidation.ContentType,
		),
		validation.Field(&r.Classification,
			validation.Required,
			customValidation.Classification,
		),
		validation.Field(&r.AccessLevel,
			validation.Required,
			customValidation.AccessLevel,
		),
		validation.Field(&r.Content,
			validation.Required,
		),
	)
}
