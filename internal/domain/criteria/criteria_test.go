package criteria_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/salaryqa/internal/domain/criteria"
	"github.com/okian/salaryqa/internal/domain/model"
)

func TestCriteria_Match(t *testing.T) {
	convey.Convey("Given an approved Belgian entry", t, func() {
		e := model.Entry{
			ID:             "a",
			Country:        "Belgium",
			Sector:         "Technology",
			Age:            model.Int(30),
			WorkExperience: model.Int(5),
			GrossSalary:    model.Float(4200),
			ReviewStatus:   model.StatusApproved,
		}

		convey.Convey("Equality and ranges match inclusively", func() {
			c := criteria.Where(
				criteria.Eq{Field: criteria.FieldCountry, Value: "Belgium"},
				criteria.Range{Field: criteria.FieldAge, Min: 25, Max: 30},
				criteria.Range{Field: criteria.FieldWorkExperience, Min: 5, Max: 8},
			)
			convey.So(c.Match(&e), convey.ShouldBeTrue)
		})

		convey.Convey("Any failing predicate rejects the entry", func() {
			c := criteria.Where(
				criteria.Eq{Field: criteria.FieldCountry, Value: "Belgium"},
				criteria.Eq{Field: criteria.FieldSector, Value: "Finance"},
			)
			convey.So(c.Match(&e), convey.ShouldBeFalse)
		})

		convey.Convey("NotEqual excludes the given ID", func() {
			convey.So(criteria.Where(criteria.NotEqual{Field: criteria.FieldID, Value: "a"}).Match(&e), convey.ShouldBeFalse)
			convey.So(criteria.Where(criteria.NotEqual{Field: criteria.FieldID, Value: "b"}).Match(&e), convey.ShouldBeTrue)
		})

		convey.Convey("Absent fields fail equality, ranges and NotNull", func() {
			bare := model.Entry{ID: "x"}
			convey.So(criteria.Where(criteria.Eq{Field: criteria.FieldCountry, Value: ""}).Match(&bare), convey.ShouldBeFalse)
			convey.So(criteria.Where(criteria.Range{Field: criteria.FieldAge, Min: 0, Max: 100}).Match(&bare), convey.ShouldBeFalse)
			convey.So(criteria.Where(criteria.NotNull{Field: criteria.FieldGrossSalary}).Match(&bare), convey.ShouldBeFalse)
			convey.So(criteria.Where(criteria.NotNull{Field: criteria.FieldGrossSalary}).Match(&e), convey.ShouldBeTrue)
			convey.So(criteria.Where(criteria.NotEqual{Field: criteria.FieldSector, Value: "Finance"}).Match(&bare), convey.ShouldBeTrue)
		})

		convey.Convey("Empty criteria match everything", func() {
			convey.So(criteria.Criteria{}.Match(&e), convey.ShouldBeTrue)
		})
	})
}

func TestCriteria_Builders(t *testing.T) {
	convey.Convey("Given base criteria", t, func() {
		base := criteria.Where(criteria.Eq{Field: criteria.FieldCountry, Value: "Belgium"})

		convey.Convey("WithLimit and And return copies", func() {
			limited := base.WithLimit(10)
			more := limited.And(criteria.NotNull{Field: criteria.FieldGrossSalary})

			convey.So(base.Limit, convey.ShouldEqual, 0)
			convey.So(limited.Limit, convey.ShouldEqual, 10)
			convey.So(more.Limit, convey.ShouldEqual, 10)
			convey.So(len(base.Predicates), convey.ShouldEqual, 1)
			convey.So(len(more.Predicates), convey.ShouldEqual, 2)
		})

		convey.Convey("String renders a readable conjunction", func() {
			c := base.And(criteria.Range{Field: criteria.FieldAge, Min: 25, Max: 35})
			convey.So(c.String(), convey.ShouldEqual, `country = "Belgium" AND age in [25, 35]`)
		})
	})
}
