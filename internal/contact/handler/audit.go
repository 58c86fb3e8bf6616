package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/audit"
	"contactbook/pkg/platform/httputil"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// AuditReader reads back the recorded audit trail.
type AuditReader interface {
	List(ctx context.Context, contactID string) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

type AuditEventResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	ContactID string    `json:"contact_id"`
	Action    string    `json:"action"`
	Fields    []string  `json:"fields,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type AuditEventsResponse struct {
	Events []AuditEventResponse `json:"events"`
	Count  int                  `json:"count"`
}

func toAuditEventsResponse(events []audit.Event) AuditEventsResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, AuditEventResponse{
			ID:        ev.ID.String(),
			Category:  string(ev.Category),
			Timestamp: ev.Timestamp,
			ContactID: ev.ContactID,
			Action:    ev.Action,
			Fields:    ev.Fields,
			RequestID: ev.RequestID,
		})
	}
	return AuditEventsResponse{Events: out, Count: len(out)}
}

// handleContactAudit lists the trail of one contact. Deleted contacts keep
// their trail, so an unknown ID yields an empty list rather than 404.
func (h *Handler) handleContactAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.audit.List(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list contact audit events", dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditEventsResponse(events))
}

func (h *Handler) handleRecentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := parseAuditLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.audit.ListRecent(ctx, limit)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list recent audit events", dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditEventsResponse(events))
}

func parseAuditLimit(raw string) (int, error) {
	if raw == "" {
		return defaultAuditLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxAuditLimit {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 1000")
	}
	return limit, nil
}
