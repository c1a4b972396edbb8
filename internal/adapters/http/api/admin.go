package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// AdminHandler handles maintenance requests.
type AdminHandler struct {
	deps     AdminDependencies
	maxLimit int
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps AdminDependencies, maxLimit int) *AdminHandler {
	return &AdminHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleReanalyze handles POST /admin/reanalyze?limit=N requests. Without a
// limit the service default applies.
func (h *AdminHandler) HandleReanalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.reanalyze"
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", badRequest(op, nil))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", badRequest(op, fmt.Errorf("limit above %d", h.maxLimit)))
			return
		}
		limit = n
	}
	report, err := h.deps.BatchAnalyze(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
