// Package http provides the HTTP handler for compliance audit queries.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keeplegacy/docvault/internal/access"
	auditDomain "github.com/keeplegacy/docvault/internal/audit/domain"
	"github.com/keeplegacy/docvault/internal/audit/http/dto"
	auditUsecase "github.com/keeplegacy/docvault/internal/audit/usecase"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
	"github.com/keeplegacy/docvault/internal/httputil"
)

// AuditLogHandler handles HTTP requests for compliance audit queries.
// The trail itself is written by the document use case; this surface is
// read-only and restricted to admins.
type AuditLogHandler struct {
	auditTrailUseCase auditUsecase.AuditTrailUseCase
	logger            *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(
	auditTrailUseCase auditUsecase.AuditTrailUseCase,
	logger *slog.Logger,
) *AuditLogHandler {
	return &AuditLogHandler{
		auditTrailUseCase: auditTrailUseCase,
		logger:            logger,
	}
}

// QueryHandler retrieves audit entries matching the query filters.
// GET /v1/audit-logs?event_type=upload,download&severity=warning&actor_id=<id>
// &resource_id=<uuid>&resource_type=document&contains_pii=true&contains_phi=false
// &from=<RFC3339>&to=<RFC3339>&offset=0&limit=50
//
// Admin-only. Returns 200 OK with one page of entries, the total match
// count, and a compliance summary over the whole match set.
func (h *AuditLogHandler) QueryHandler(c *gin.Context) {
	principal, ok := access.PrincipalFromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if principal.Role != access.RoleAdmin {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrForbidden, "insufficient permissions"), h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter, err := parseQueryFilter(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	result, err := h.auditTrailUseCase.Query(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEntriesToQueryResponse(result.Entries, result.Total, result.Summary))
}

// parseQueryFilter builds a QueryFilter from the request's query parameters.
func parseQueryFilter(c *gin.Context) (auditDomain.QueryFilter, error) {
	var filter auditDomain.QueryFilter

	if raw := c.Query("event_type"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			eventType := auditDomain.EventType(strings.TrimSpace(part))
			if !eventType.Valid() {
				return filter, fmt.Errorf("invalid event_type parameter: %q", part)
			}
			filter.EventTypes = append(filter.EventTypes, eventType)
		}
	}

	if raw := c.Query("severity"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			severity := auditDomain.Severity(strings.TrimSpace(part))
			if !severity.Valid() {
				return filter, fmt.Errorf("invalid severity parameter: %q", part)
			}
			filter.Severities = append(filter.Severities, severity)
		}
	}

	filter.ActorID = c.Query("actor_id")
	filter.ResourceType = c.Query("resource_type")

	if raw := c.Query("resource_id"); raw != "" {
		resourceID, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid resource_id parameter: %w", err)
		}
		filter.ResourceID = &resourceID
	}

	var err error
	if filter.ContainsPII, err = parseBoolParam(c, "contains_pii"); err != nil {
		return filter, err
	}
	if filter.ContainsPHI, err = parseBoolParam(c, "contains_phi"); err != nil {
		return filter, err
	}

	if filter.From, err = parseTimeParam(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseTimeParam(c, "to"); err != nil {
		return filter, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, fmt.Errorf("invalid time range: to precedes from")
	}

	return filter, nil
}

// parseBoolParam parses an optional boolean query parameter.
func parseBoolParam(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: must be a boolean", name)
	}
	return &value, nil
}

// parseTimeParam parses an optional RFC3339 time query parameter.
func parseTimeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: must be RFC3339", name)
	}
	value = value.UTC()
	return &value, nil
}
