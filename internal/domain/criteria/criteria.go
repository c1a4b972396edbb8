// Package criteria defines typed query predicates interpreted by record store adapters.
package criteria

import (
	"fmt"
	"strings"

	"github.com/okian/salaryqa/internal/domain/model"
)

// Field names an entry attribute a predicate can target.
type Field string

// Queryable fields.
const (
	FieldID             Field = "id"
	FieldCountry        Field = "country"
	FieldSector         Field = "sector"
	FieldWorkExperience Field = "work_experience"
	FieldAge            Field = "age"
	FieldReviewStatus   Field = "review_status"
	FieldGrossSalary    Field = "gross_salary"
)

// Predicate is one of Eq, NotEqual, Range or NotNull.
type Predicate interface {
	fmt.Stringer
	isPredicate()
}

// Eq matches entries whose field equals Value.
type Eq struct {
	Field Field
	Value string
}

// NotEqual matches entries whose field differs from Value.
type NotEqual struct {
	Field Field
	Value string
}

// Range matches numeric fields within [Min, Max] inclusive.
type Range struct {
	Field Field
	Min   float64
	Max   float64
}

// NotNull matches entries where the field is present.
type NotNull struct {
	Field Field
}

func (Eq) isPredicate()       {}
func (NotEqual) isPredicate() {}
func (Range) isPredicate()    {}
func (NotNull) isPredicate()  {}

func (p Eq) String() string       { return fmt.Sprintf("%s = %q", p.Field, p.Value) }
func (p NotEqual) String() string { return fmt.Sprintf("%s != %q", p.Field, p.Value) }
func (p Range) String() string    { return fmt.Sprintf("%s in [%g, %g]", p.Field, p.Min, p.Max) }
func (p NotNull) String() string  { return fmt.Sprintf("%s is not null", p.Field) }

// Criteria is a conjunction of predicates with an optional row cap.
type Criteria struct {
	Predicates []Predicate
	// Limit caps the number of returned rows; 0 means no cap.
	Limit int
}

// Where returns criteria with the given predicates.
func Where(preds ...Predicate) Criteria {
	return Criteria{Predicates: preds}
}

// And returns a copy of c with more predicates appended.
func (c Criteria) And(preds ...Predicate) Criteria {
	out := Criteria{Limit: c.Limit, Predicates: make([]Predicate, 0, len(c.Predicates)+len(preds))}
	out.Predicates = append(out.Predicates, c.Predicates...)
	out.Predicates = append(out.Predicates, preds...)
	return out
}

// WithLimit returns a copy of c capped at n rows.
func (c Criteria) WithLimit(n int) Criteria {
	c.Predicates = append([]Predicate(nil), c.Predicates...)
	c.Limit = n
	return c
}

func (c Criteria) String() string {
	parts := make([]string, len(c.Predicates))
	for i, p := range c.Predicates {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}

// Match evaluates c against an entry in memory. Limit is not applied.
func (c Criteria) Match(e *model.Entry) bool {
	for _, p := range c.Predicates {
		if !matchOne(p, e) {
			return false
		}
	}
	return true
}

func matchOne(p Predicate, e *model.Entry) bool {
	switch p := p.(type) {
	case Eq:
		v, ok := StringValue(e, p.Field)
		return ok && v == p.Value
	case NotEqual:
		v, ok := StringValue(e, p.Field)
		return !ok || v != p.Value
	case Range:
		v, ok := NumericValue(e, p.Field)
		return ok && v >= p.Min && v <= p.Max
	case NotNull:
		switch p.Field {
		case FieldWorkExperience, FieldAge, FieldGrossSalary:
			_, ok := NumericValue(e, p.Field)
			return ok
		default:
			_, ok := StringValue(e, p.Field)
			return ok
		}
	}
	return false
}

// StringValue reads a categorical field; ok is false when the field is absent.
func StringValue(e *model.Entry, f Field) (string, bool) {
	var v string
	switch f {
	case FieldID:
		v = e.ID
	case FieldCountry:
		v = e.Country
	case FieldSector:
		v = e.Sector
	case FieldReviewStatus:
		v = string(e.ReviewStatus)
	default:
		return "", false
	}
	return v, v != ""
}

// NumericValue reads a numeric field; ok is false when the field is absent.
func NumericValue(e *model.Entry, f Field) (float64, bool) {
	switch f {
	case FieldWorkExperience:
		if e.WorkExperience != nil {
			return float64(*e.WorkExperience), true
		}
	case FieldAge:
		if e.Age != nil {
			return float64(*e.Age), true
		}
	case FieldGrossSalary:
		if e.GrossSalary != nil {
			return *e.GrossSalary, true
		}
	}
	return 0, false
}
