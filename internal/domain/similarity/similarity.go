// Package similarity computes weighted, type-aware field similarity between
// two compensation entries.
package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/okian/salaryqa/internal/domain/model"
)

// Default comparator parameters.
const (
	defaultSalaryTolerance = 0.05
	defaultFuzzyThreshold  = 0.8
	percent                = 100
)

// Kind selects the comparator applied to a field.
type Kind int

// Comparator kinds.
const (
	// Salary matches when the relative difference is within tolerance.
	Salary Kind = iota
	// Number matches on exact equality.
	Number
	// Text matches on normalized (trimmed, lowercased) equality.
	Text
	// FuzzyText matches like Text, or when edit-distance similarity exceeds the threshold.
	FuzzyText
	// Flag matches on boolean equality.
	Flag
)

// value is a field reading; ok is false when the field is absent.
type value struct {
	num  float64
	str  string
	flag bool
	ok   bool
}

func numInt(p *int) value {
	if p == nil {
		return value{}
	}
	return value{num: float64(*p), ok: true}
}

func numFloat(p *float64) value {
	if p == nil {
		return value{}
	}
	return value{num: *p, ok: true}
}

func text(s string) value {
	n := normalize(s)
	return value{str: n, ok: n != ""}
}

func flag(p *bool) value {
	if p == nil {
		return value{}
	}
	return value{flag: *p, ok: true}
}

// field describes one compared attribute.
type field struct {
	name   string
	kind   Kind
	weight int
	get    func(e *model.Entry) value
}

// Field names reported in match details and accepted by WithWeights.
const (
	FieldGrossSalary     = "grossSalary"
	FieldJobTitle        = "jobTitle"
	FieldWorkCity        = "workCity"
	FieldSector          = "sector"
	FieldAge             = "age"
	FieldEducation       = "education"
	FieldSeniority       = "seniority"
	FieldNetSalary       = "netSalary"
	FieldWorkExperience  = "workExperience"
	FieldEmployeeCount   = "employeeCount"
	FieldOfficialHours   = "officialHours"
	FieldVacationDays    = "vacationDays"
	FieldTeleworkDays    = "teleworkDays"
	FieldMealVouchers    = "mealVouchers"
	FieldEcoCheques      = "ecoCheques"
	FieldNetCompensation = "netCompensation"
	FieldMultinational   = "multinational"
)

// defaultFields lists every comparable field. Fields with weight 0 are
// available but ignored unless enabled through WithWeights.
func defaultFields() []field {
	return []field{
		{FieldGrossSalary, Salary, 20, func(e *model.Entry) value { return numFloat(e.GrossSalary) }},
		{FieldJobTitle, FuzzyText, 15, func(e *model.Entry) value { return text(e.JobTitle) }},
		{FieldWorkCity, Text, 15, func(e *model.Entry) value { return text(e.WorkCity) }},
		{FieldSector, Text, 10, func(e *model.Entry) value { return text(e.Sector) }},
		{FieldAge, Number, 8, func(e *model.Entry) value { return numInt(e.Age) }},
		{FieldEducation, FuzzyText, 7, func(e *model.Entry) value { return text(e.Education) }},
		{FieldSeniority, Number, 7, func(e *model.Entry) value { return numInt(e.Seniority) }},
		{FieldNetSalary, Salary, 7, func(e *model.Entry) value { return numFloat(e.NetSalary) }},
		{FieldWorkExperience, Number, 5, func(e *model.Entry) value { return numInt(e.WorkExperience) }},
		{FieldEmployeeCount, Text, 4, func(e *model.Entry) value { return text(e.EmployeeCount) }},
		{FieldOfficialHours, Number, 3, func(e *model.Entry) value { return numFloat(e.OfficialHours) }},
		{FieldVacationDays, Number, 3, func(e *model.Entry) value { return numInt(e.VacationDays) }},
		{FieldTeleworkDays, Number, 3, func(e *model.Entry) value { return numInt(e.TeleworkDays) }},
		{FieldMealVouchers, Number, 2, func(e *model.Entry) value { return numFloat(e.MealVouchers) }},
		{FieldEcoCheques, Number, 2, func(e *model.Entry) value { return numFloat(e.EcoCheques) }},
		{FieldNetCompensation, Salary, 0, func(e *model.Entry) value { return numFloat(e.NetCompensation) }},
		{FieldMultinational, Flag, 0, func(e *model.Entry) value { return flag(e.Multinational) }},
	}
}

// DefaultWeights returns the default weight of every known field.
func DefaultWeights() map[string]int {
	fs := defaultFields()
	out := make(map[string]int, len(fs))
	for _, f := range fs {
		out[f.name] = f.weight
	}
	return out
}

// Match is the similarity between two entries.
type Match struct {
	// Score is round(matched weight / shared weight * 100), 0 when no field is shared.
	Score int
	// Matched lists matched field names in field order.
	Matched []string
}

// Scorer compares entries field by field.
type Scorer struct {
	fields          []field
	salaryTolerance float64
	fuzzyThreshold  float64
}

// NewScorer creates a Scorer with the default field weights.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		fields:          defaultFields(),
		salaryTolerance: defaultSalaryTolerance,
		fuzzyThreshold:  defaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compare scores b against a. A field counts toward the denominator only
// when both entries carry a value for it.
func (s *Scorer) Compare(a, b *model.Entry) Match {
	var matched, total int
	var names []string
	for _, f := range s.fields {
		if f.weight <= 0 {
			continue
		}
		va, vb := f.get(a), f.get(b)
		if !va.ok || !vb.ok {
			continue
		}
		total += f.weight
		if s.equal(f.kind, va, vb) {
			matched += f.weight
			names = append(names, f.name)
		}
	}
	if total == 0 {
		return Match{}
	}
	score := int(math.Round(float64(matched) / float64(total) * percent))
	return Match{Score: score, Matched: names}
}

func (s *Scorer) equal(k Kind, a, b value) bool {
	switch k {
	case Salary:
		return SalaryClose(a.num, b.num, s.salaryTolerance)
	case Number:
		return a.num == b.num
	case Text:
		return a.str == b.str
	case FuzzyText:
		return a.str == b.str || TextSimilarity(a.str, b.str) > s.fuzzyThreshold
	case Flag:
		return a.flag == b.flag
	}
	return false
}

// SalaryClose reports whether |a-b| / max(a,b) is within tolerance.
func SalaryClose(a, b, tolerance float64) bool {
	hi := math.Max(math.Abs(a), math.Abs(b))
	if hi == 0 {
		return true
	}
	return math.Abs(a-b)/hi <= tolerance
}

// TextSimilarity returns 1 - levenshtein(a, b) / len(longer), in runes.
func TextSimilarity(a, b string) float64 {
	longer := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longer {
		longer = n
	}
	if longer == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longer)
}

// Fields returns the enabled field names sorted by descending weight.
func (s *Scorer) Fields() []string {
	enabled := make([]field, 0, len(s.fields))
	for _, f := range s.fields {
		if f.weight > 0 {
			enabled = append(enabled, f)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool { return enabled[i].weight > enabled[j].weight })
	out := make([]string, len(enabled))
	for i, f := range enabled {
		out[i] = f.name
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
