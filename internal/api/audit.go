package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

const defaultAuditLimit = 100

// AuditHandler exposes the audit log.
type AuditHandler struct {
	Store *store.Store
}

// List handles GET /api/audit.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	entity := q.Get("entity")
	switch entity {
	case "", model.EntityCostume, model.EntityCustomer, model.EntityRental:
	default:
		jsonError(w, http.StatusBadRequest, "invalid entity")
		return
	}

	entityID, ok := queryID(r, "entity_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid entity_id")
		return
	}

	limit := uint(defaultAuditLimit)
	if l := q.Get("limit"); l != "" {
		n, err := strconv.ParseUint(l, 10, 32)
		if err != nil || n == 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = uint(n)
	}

	events, err := h.Store.ListAuditEvents(r.Context(), entity, entityID, limit)
	if err != nil {
		writeError(w, "list audit events", err)
		return
	}
	if events == nil {
		events = []model.AuditEvent{}
	}
	jsonResponse(w, http.StatusOK, events)
}
