package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/salaryqa/internal/domain/model"
)

// EntriesHandler handles submission, lookup and analysis of entries.
type EntriesHandler struct {
	deps EntryDependencies
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps EntryDependencies) *EntriesHandler {
	return &EntriesHandler{deps: deps}
}

// HandleSubmit handles POST /entries requests.
func (h *EntriesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_entry"
	e, err := decodeEntry(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", badRequest(op, err))
		return
	}
	report, err := h.deps.Submit(r.Context(), e)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// HandleAnalyze handles POST /entries/analyze requests. Nothing is stored.
func (h *EntriesHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_entry"
	e, err := decodeEntry(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", badRequest(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Analyze(r.Context(), e))
}

// HandleGet handles GET /entries/{id} requests.
func (h *EntriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleDuplicates handles GET /entries/{id}/duplicates requests.
func (h *EntriesHandler) HandleDuplicates(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	matches, err := h.deps.FindDuplicates(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// decodeEntry reads an entry from the request body. Review fields are
// assigned by the server and ignored when present.
func decodeEntry(w http.ResponseWriter, r *http.Request) (model.Entry, error) {
	var e model.Entry
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		return model.Entry{}, err
	}
	e.ID = ""
	e.ReviewStatus = ""
	e.AnomalyScore = nil
	e.AnomalyReason = ""
	e.CreatedAt = time.Time{}
	return e, validateEntry(&e)
}

func validateEntry(e *model.Entry) error {
	if strings.TrimSpace(e.Country) == "" {
		return errors.New("missing country")
	}
	if e.GrossSalary != nil && *e.GrossSalary <= 0 {
		return errors.New("gross_salary must be positive")
	}
	ints := []struct {
		name string
		v    *int
	}{
		{"age", e.Age},
		{"work_experience", e.WorkExperience},
		{"seniority", e.Seniority},
		{"vacation_days", e.VacationDays},
		{"telework_days", e.TeleworkDays},
		{"dependents", e.Dependents},
		{"reports", e.Reports},
	}
	for _, f := range ints {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%s must not be negative", f.name)
		}
	}
	floats := []struct {
		name string
		v    *float64
	}{
		{"net_salary", e.NetSalary},
		{"net_compensation", e.NetCompensation},
		{"official_hours", e.OfficialHours},
		{"average_hours", e.AverageHours},
		{"meal_vouchers", e.MealVouchers},
		{"eco_cheques", e.EcoCheques},
	}
	for _, f := range floats {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%s must not be negative", f.name)
		}
	}
	return nil
}
