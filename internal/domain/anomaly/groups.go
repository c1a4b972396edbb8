package anomaly

import (
	"fmt"
	"strings"

	"github.com/okian/salaryqa/internal/domain/criteria"
	"github.com/okian/salaryqa/internal/domain/model"
)

// MinSampleSize is the smallest comparison group that can be scored.
const MinSampleSize = 5

// Comparison level names.
const (
	LevelStrict   = "strict"
	LevelModerate = "moderate"
	LevelLoose    = "loose"
)

const (
	strictExperienceSpan   = 3
	strictAgeSpan          = 5
	moderateExperienceSpan = 5

	strictFloor   = 30
	moderateFloor = 15

	generalComparison = "General comparison"
)

// Group is a comparison group query and its human-readable description.
type Group struct {
	Level       string
	Criteria    criteria.Criteria
	Description string
}

// Level builds one comparison group for an entry. A level is accepted when
// its query returns at least MinSample comparators.
type Level struct {
	Name      string
	MinSample int
	Build     func(e *model.Entry) Group
}

// Levels returns the comparison levels from most to least specific.
func Levels() []Level {
	return []Level{
		{Name: LevelStrict, MinSample: strictFloor, Build: strictGroup},
		{Name: LevelModerate, MinSample: moderateFloor, Build: moderateGroup},
		{Name: LevelLoose, MinSample: MinSampleSize, Build: looseGroup},
	}
}

// groupBuilder accumulates predicates and their description.
type groupBuilder struct {
	preds []criteria.Predicate
	parts []string
}

func (b *groupBuilder) eq(f criteria.Field, v string) {
	b.preds = append(b.preds, criteria.Eq{Field: f, Value: v})
	b.parts = append(b.parts, v)
}

func (b *groupBuilder) around(f criteria.Field, center, span int, unit string) {
	lo, hi := center-span, center+span
	b.preds = append(b.preds, criteria.Range{Field: f, Min: float64(lo), Max: float64(hi)})
	b.parts = append(b.parts, fmt.Sprintf("%d-%d %s", lo, hi, unit))
}

// build appends the comparator eligibility predicates shared by every level.
func (b *groupBuilder) build(level string, e *model.Entry) Group {
	preds := append(b.preds,
		criteria.Eq{Field: criteria.FieldReviewStatus, Value: string(model.StatusApproved)},
		criteria.NotNull{Field: criteria.FieldGrossSalary},
	)
	if e.ID != "" {
		preds = append(preds, criteria.NotEqual{Field: criteria.FieldID, Value: e.ID})
	}
	desc := generalComparison
	if len(b.parts) > 0 {
		desc = strings.Join(b.parts, ", ")
	}
	return Group{Level: level, Criteria: criteria.Where(preds...), Description: desc}
}

func strictGroup(e *model.Entry) Group {
	var b groupBuilder
	if e.Country != "" {
		b.eq(criteria.FieldCountry, e.Country)
	}
	if e.Sector != "" {
		b.eq(criteria.FieldSector, e.Sector)
	}
	if e.WorkExperience != nil {
		b.around(criteria.FieldWorkExperience, *e.WorkExperience, strictExperienceSpan, "years experience")
	}
	if e.Age != nil {
		b.around(criteria.FieldAge, *e.Age, strictAgeSpan, "years old")
	}
	return b.build(LevelStrict, e)
}

func moderateGroup(e *model.Entry) Group {
	var b groupBuilder
	if e.Country != "" {
		b.eq(criteria.FieldCountry, e.Country)
	}
	switch {
	case e.Sector != "":
		b.eq(criteria.FieldSector, e.Sector)
	case e.WorkExperience != nil:
		b.around(criteria.FieldWorkExperience, *e.WorkExperience, moderateExperienceSpan, "years experience")
	}
	return b.build(LevelModerate, e)
}

func looseGroup(e *model.Entry) Group {
	var b groupBuilder
	if e.Country != "" {
		b.eq(criteria.FieldCountry, e.Country)
	}
	return b.build(LevelLoose, e)
}
