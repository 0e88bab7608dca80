// Package http provides HTTP handlers for document vault operations.
// Documents are encrypted at rest using envelope encryption; every mutation
// and read is audited by the use case layer.
package http

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keeplegacy/docvault/internal/access"
	cryptoDomain "github.com/keeplegacy/docvault/internal/crypto/domain"
	docDomain "github.com/keeplegacy/docvault/internal/documents/domain"
	"github.com/keeplegacy/docvault/internal/documents/http/dto"
	docUsecase "github.com/keeplegacy/docvault/internal/documents/usecase"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
	"github.com/keeplegacy/docvault/internal/httputil"
	customValidation "github.com/keeplegacy/docvault/internal/validation"
)

// DocumentHandler handles HTTP requests for document vault operations.
// It maps requests onto the DocumentUseCase; access control and audit
// logging happen inside the use case on every call.
type DocumentHandler struct {
	documentUseCase docUsecase.DocumentUseCase
	logger          *slog.Logger
}

// NewDocumentHandler creates a new document handler with required dependencies.
func NewDocumentHandler(
	documentUseCase docUsecase.DocumentUseCase,
	logger *slog.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		documentUseCase: documentUseCase,
		logger:          logger,
	}
}

// UploadHandler encrypts and stores a new document owned by the caller.
// POST /v1/documents
// Returns 201 Created with document metadata (never the stored content).
func (h *DocumentHandler) UploadHandler(c *gin.Context) {
	principal, ok := access.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid base64 content: %w", err),
			h.logger,
		)
		return
	}

	input := docUsecase.UploadInput{
		FileName:       req.FileName,
		ContentType:    req.ContentType,
		Classification: docDomain.Classification(req.Classification),
		AccessLevel:    docDomain.AccessLevel(req.AccessLevel),
		Content:        content,
	}

	record, err := h.documentUseCase.Upload(c.Request.Context(), principal, input, requestMeta(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapDocumentToResponse(record))
}

// DownloadHandler retrieves, decrypts, and integrity-checks a document.
// GET /v1/documents/:id/content
// Returns 200 OK with metadata plus base64 content.
// SECURITY: Plaintext is zeroed after the response is written.
func (h *DocumentHandler) DownloadHandler(c *gin.Context) {
	principal, ok := access.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	documentID, err := parseDocumentID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	result, err := h.documentUseCase.Download(c.Request.Context(), principal, documentID, requestMeta(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// SECURITY: Zero plaintext after mapping to response
	defer cryptoDomain.Zero(result.Content)

	c.JSON(http.StatusOK, dto.MapDocumentToDownloadResponse(result.Record, result.Content))
}

// GetMetadataHandler returns a document record without touching the payload.
// GET /v1/documents/:id
// Returns 200 OK with document metadata.
func (h *DocumentHandler) GetMetadataHandler(c *gin.Context) {
	principal, ok := access.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	documentID, err := parseDocumentID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	record, err := h.documentUseCase.GetMetadata(c.Request.Context(), principal, documentID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDocumentToResponse(record))
}

// ListHandler retrieves the caller's documents with pagination support.
// GET /v1/documents?offset=0&limit=50&owner_id=<uuid>
// The owner_id parameter defaults to the caller; only admins may list
// another owner's documents (enforced by the use case).
// Returns 200 OK with a paginated document list.
func (h *DocumentHandler) ListHandler(c *gin.Context) {
	principal, ok := access.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	ownerID := principal.ID
	if ownerParam := c.Query("owner_id"); ownerParam != "" {
		ownerID, err = uuid.Parse(ownerParam)
		if err != nil {
			httputil.HandleValidationErrorGin(
				c,
				fmt.Errorf("invalid owner_id parameter: %w", err),
				h.logger,
			)
			return
		}
	}

	records, err := h.documentUseCase.List(c.Request.Context(), principal, ownerID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDocumentsToListResponse(records))
}

// DeleteHandler permanently removes a document and its stored payload.
// DELETE /v1/documents/:id?reason=<text>
// The optional reason is carried into the deletion's audit entry.
// Returns 204 No Content.
func (h *DocumentHandler) DeleteHandler(c *gin.Context) {
	principal, ok := access.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	documentID, err := parseDocumentID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.documentUseCase.Delete(c.Request.Context(), principal, documentID, c.Query("reason"), requestMeta(c)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ArchiveHandler moves a document into the archive namespace and resets its
// retention deadline.
// POST /v1/documents/:id/archive
// The body is optional; retention_period_days overrides the classification's
// configured window. Archiving an archived document is a no-op.
// Returns 200 OK with metadata.
func (h *DocumentHandler) ArchiveHandler(c *gin.Context) {
	principal, ok := access.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	documentID, err := parseDocumentID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.ArchiveDocumentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleValidationErrorGin(c, err, h.logger)
			return
		}
		if err := req.Validate(); err != nil {
			httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
			return
		}
	}

	record, err := h.documentUseCase.Archive(c.Request.Context(), principal, documentID, req.RetentionPeriodDays, requestMeta(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDocumentToResponse(record))
}

// parseDocumentID extracts the document ID from the URL parameter.
func parseDocumentID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid document id: %w", err)
	}
	return id, nil
}

// requestMeta collects request provenance for audit entries.
func requestMeta(c *gin.Context) docUsecase.RequestMeta {
	return docUsecase.RequestMeta{
		SourceIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: requestid.Get(c),
	}
}
