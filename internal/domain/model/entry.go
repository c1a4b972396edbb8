// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// ReviewStatus is the moderation state assigned to an entry from its anomaly score.
type ReviewStatus string

// Review states.
const (
	StatusApproved    ReviewStatus = "APPROVED"
	StatusPending     ReviewStatus = "PENDING"
	StatusNeedsReview ReviewStatus = "NEEDS_REVIEW"
)

// Valid reports whether s is one of the known review states.
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusApproved, StatusPending, StatusNeedsReview:
		return true
	}
	return false
}

// ParseReviewStatus parses a status case-insensitively.
func ParseReviewStatus(s string) (ReviewStatus, bool) {
	st := ReviewStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Entry is an anonymous compensation record. Absent numeric attributes are
// nil; absent categorical attributes are empty strings.
type Entry struct {
	ID string `json:"id,omitempty"`

	Country       string `json:"country,omitempty"`
	Sector        string `json:"sector,omitempty"`
	Education     string `json:"education,omitempty"`
	CivilStatus   string `json:"civil_status,omitempty"`
	EmployeeCount string `json:"employee_count,omitempty"`
	JobTitle      string `json:"job_title,omitempty"`
	WorkCity      string `json:"work_city,omitempty"`
	Currency      string `json:"currency,omitempty"`

	Age             *int     `json:"age,omitempty"`
	WorkExperience  *int     `json:"work_experience,omitempty"`
	Seniority       *int     `json:"seniority,omitempty"`
	GrossSalary     *float64 `json:"gross_salary,omitempty"`
	NetSalary       *float64 `json:"net_salary,omitempty"`
	NetCompensation *float64 `json:"net_compensation,omitempty"`
	OfficialHours   *float64 `json:"official_hours,omitempty"`
	AverageHours    *float64 `json:"average_hours,omitempty"`
	VacationDays    *int     `json:"vacation_days,omitempty"`
	TeleworkDays    *int     `json:"telework_days,omitempty"`
	MealVouchers    *float64 `json:"meal_vouchers,omitempty"`
	EcoCheques      *float64 `json:"eco_cheques,omitempty"`
	Dependents      *int     `json:"dependents,omitempty"`
	Reports         *int     `json:"reports,omitempty"`

	Multinational *bool `json:"multinational,omitempty"`

	ReviewStatus  ReviewStatus `json:"review_status,omitempty"`
	AnomalyScore  *int         `json:"anomaly_score,omitempty"`
	AnomalyReason string       `json:"anomaly_reason,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Comparable reports whether e may serve as a comparator for other entries.
func (e *Entry) Comparable() bool {
	return e.ReviewStatus == StatusApproved && e.GrossSalary != nil
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
