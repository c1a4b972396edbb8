package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/salaryqa/internal/adapters/repository"
	service "github.com/okian/salaryqa/internal/app"
	"github.com/okian/salaryqa/internal/domain/anomaly"
	"github.com/okian/salaryqa/internal/domain/criteria"
	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var errStoreDown = errors.New("store down")

// flakyStore fails selected operations on top of an in-memory store.
type flakyStore struct {
	*repository.MemoryStore
	failApproved bool
	failCountry  bool
	failUpdate   bool
}

func (f *flakyStore) FindApproved(ctx context.Context, c criteria.Criteria) ([]model.Entry, error) {
	if f.failApproved {
		return nil, errStoreDown
	}
	return f.MemoryStore.FindApproved(ctx, c)
}

func (f *flakyStore) FindByCountry(ctx context.Context, country, excludeID string, limit int) ([]model.Entry, error) {
	if f.failCountry {
		return nil, errStoreDown
	}
	return f.MemoryStore.FindByCountry(ctx, country, excludeID, limit)
}

func (f *flakyStore) UpdateStatus(ctx context.Context, id string, status model.ReviewStatus, score *int, reason string) error {
	if f.failUpdate {
		return errStoreDown
	}
	return f.MemoryStore.UpdateStatus(ctx, id, status, score, reason)
}

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // test fixture

// cohortEntry is a sparse approved Belgium/Technology entry.
func cohortEntry(i int, salary float64) model.Entry {
	return model.Entry{
		ID:             fmt.Sprintf("cohort-%02d", i),
		Country:        "Belgium",
		Sector:         "Technology",
		Age:            model.Int(30),
		WorkExperience: model.Int(5),
		GrossSalary:    model.Float(salary),
		ReviewStatus:   model.StatusApproved,
		CreatedAt:      epoch.Add(time.Duration(i) * time.Minute),
	}
}

// seedCohort stores 40 approved entries alternating 3900 and 4500
// (mean 4200, std 300).
func seedCohort(ctx context.Context, s repository.Store) {
	for i := 0; i < 40; i++ {
		salary := 3900.0
		if i%2 == 1 {
			salary = 4500
		}
		So(s.Insert(ctx, cohortEntry(i, salary)), ShouldBeNil)
	}
}

func fullEntry(salary float64) model.Entry {
	return model.Entry{
		Country:        "Belgium",
		Sector:         "Technology",
		Education:      "Master",
		JobTitle:       "Software Engineer",
		WorkCity:       "Brussels",
		EmployeeCount:  "50-200",
		Age:            model.Int(30),
		WorkExperience: model.Int(5),
		Seniority:      model.Int(3),
		GrossSalary:    model.Float(salary),
		NetSalary:      model.Float(salary * 0.6),
		VacationDays:   model.Int(20),
		OfficialHours:  model.Float(38),
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("sub-%d", n)
	}
}

func TestService_Submit(t *testing.T) {
	Convey("Given a service over a store with a Belgium/Technology cohort", t, func() {
		ctx := context.Background()
		mem := repository.NewMemoryStore(ctx)
		store := &flakyStore{MemoryStore: mem}
		Reset(func() { _ = mem.Close() })
		seedCohort(ctx, store)

		svc := service.New(store,
			service.WithIDGenerator(sequentialIDs()),
			service.WithClock(func() time.Time { return epoch.Add(time.Hour) }),
		)

		Convey("When a salary within the cohort range is submitted", func() {
			r, err := svc.Submit(ctx, fullEntry(4500))

			Convey("Then it is approved and stored", func() {
				So(err, ShouldBeNil)
				So(r.Entry.ID, ShouldEqual, "sub-1")
				So(r.Anomaly.Score, ShouldBeLessThan, anomaly.AutoApproveThreshold)
				So(r.Anomaly.Level, ShouldEqual, anomaly.LevelStrict)
				So(r.Anomaly.SampleSize, ShouldEqual, 40)
				So(r.Entry.ReviewStatus, ShouldEqual, model.StatusApproved)
				So(r.Duplicate.IsDuplicate, ShouldBeFalse)

				stored, err := svc.Get(ctx, "sub-1")
				So(err, ShouldBeNil)
				So(stored.ReviewStatus, ShouldEqual, model.StatusApproved)
				So(*stored.AnomalyScore, ShouldEqual, r.Anomaly.Score)
				So(stored.CreatedAt.Equal(epoch.Add(time.Hour)), ShouldBeTrue)
			})
		})

		Convey("When an extreme salary is submitted", func() {
			r, err := svc.Submit(ctx, fullEntry(50000))

			Convey("Then it needs review with a Z-score explanation", func() {
				So(err, ShouldBeNil)
				So(r.Anomaly.Score, ShouldBeGreaterThanOrEqualTo, 90)
				So(r.Anomaly.IsAnomaly, ShouldBeTrue)
				So(r.Entry.ReviewStatus, ShouldEqual, model.StatusNeedsReview)
				So(r.Entry.AnomalyReason, ShouldContainSubstring, "Z-score")
			})
		})

		Convey("When an entry repeats a stored one", func() {
			first, err := svc.Submit(ctx, fullEntry(4200))
			So(err, ShouldBeNil)
			So(first.Entry.ReviewStatus, ShouldEqual, model.StatusApproved)

			second, err := svc.Submit(ctx, fullEntry(4200))

			Convey("Then the duplicate verdict is reported without touching the stored status", func() {
				So(err, ShouldBeNil)
				So(second.Duplicate.IsDuplicate, ShouldBeTrue)
				So(second.Duplicate.DuplicateEntryID, ShouldEqual, first.Entry.ID)
				So(second.Duplicate.SimilarityScore, ShouldEqual, 100)
				So(second.Entry.ReviewStatus, ShouldEqual, anomaly.Classify(*second.Entry.AnomalyScore))
				So(second.Entry.AnomalyReason, ShouldNotContainSubstring, first.Entry.ID)

				stored, err := svc.Get(ctx, second.Entry.ID)
				So(err, ShouldBeNil)
				So(stored.ReviewStatus, ShouldEqual, anomaly.Classify(*stored.AnomalyScore))
				So(stored.ReviewStatus, ShouldEqual, model.StatusApproved)
			})
		})

		Convey("When comparator queries fail", func() {
			store.failApproved = true
			r, err := svc.Submit(ctx, fullEntry(4500))

			Convey("Then the entry is stored for review instead of being approved", func() {
				So(err, ShouldBeNil)
				So(r.Entry.ReviewStatus, ShouldEqual, model.StatusNeedsReview)
				So(r.Entry.AnomalyReason, ShouldEqual, service.ReasonAnalysisUnavailable)
				So(r.Entry.AnomalyScore, ShouldBeNil)

				stored, err := svc.Get(ctx, r.Entry.ID)
				So(err, ShouldBeNil)
				So(stored.ReviewStatus, ShouldEqual, model.StatusNeedsReview)
			})
		})

		Convey("When candidate queries fail", func() {
			store.failCountry = true
			r, err := svc.Submit(ctx, fullEntry(4500))

			Convey("Then duplicate detection fails open", func() {
				So(err, ShouldBeNil)
				So(r.Duplicate.IsDuplicate, ShouldBeFalse)
				So(r.Duplicate.SimilarityScore, ShouldEqual, 0)
				So(r.Entry.ReviewStatus, ShouldEqual, model.StatusApproved)
			})
		})
	})
}

func TestService_Analyze(t *testing.T) {
	Convey("Given a service over an empty store", t, func() {
		ctx := context.Background()
		mem := repository.NewMemoryStore(ctx)
		Reset(func() { _ = mem.Close() })
		svc := service.New(mem)

		Convey("When an entry is analyzed", func() {
			r := svc.Analyze(ctx, fullEntry(4200))

			Convey("Then insufficient data holds it for review without storing it", func() {
				So(r.Anomaly.Reason, ShouldEqual, anomaly.ReasonInsufficientData)
				So(r.Anomaly.Score, ShouldEqual, 0)
				So(r.Entry.ReviewStatus, ShouldEqual, model.StatusNeedsReview)
				So(r.Entry.ID, ShouldBeEmpty)

				counts, err := mem.Count(ctx)
				So(err, ShouldBeNil)
				So(len(counts), ShouldEqual, 0)
			})
		})
	})
}

func TestService_FindDuplicates(t *testing.T) {
	Convey("Given two stored near-identical entries", t, func() {
		ctx := context.Background()
		mem := repository.NewMemoryStore(ctx)
		Reset(func() { _ = mem.Close() })

		a, b := fullEntry(4200), fullEntry(4300)
		a.ID, b.ID = "a", "b"
		a.ReviewStatus, b.ReviewStatus = model.StatusApproved, model.StatusPending
		So(mem.Insert(ctx, a), ShouldBeNil)
		So(mem.Insert(ctx, b), ShouldBeNil)
		svc := service.New(mem)

		Convey("When duplicates of one are requested", func() {
			matches, err := svc.FindDuplicates(ctx, "a")

			Convey("Then the other is returned", func() {
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 1)
				So(matches[0].ID, ShouldEqual, "b")
				So(matches[0].SimilarityScore, ShouldEqual, 100)
			})
		})

		Convey("When candidate queries fail", func() {
			flaky := &flakyStore{MemoryStore: mem, failCountry: true}
			matches, err := service.New(flaky).FindDuplicates(ctx, "a")

			Convey("Then the listing fails open with no matches", func() {
				So(err, ShouldBeNil)
				So(matches, ShouldBeEmpty)
			})
		})

		Convey("When the entry does not exist", func() {
			_, err := svc.FindDuplicates(ctx, "missing")

			Convey("Then a not-found error is returned", func() {
				So(service.IsNotFound(err), ShouldBeTrue)
			})
		})
	})
}

func TestService_BatchAnalyze(t *testing.T) {
	Convey("Given approved entries including a legacy outlier", t, func() {
		ctx := context.Background()
		mem := repository.NewMemoryStore(ctx)
		store := &flakyStore{MemoryStore: mem}
		Reset(func() { _ = mem.Close() })

		outlier := cohortEntry(99, 50000)
		outlier.ID = "outlier"
		outlier.CreatedAt = epoch.Add(-time.Hour)
		So(store.Insert(ctx, outlier), ShouldBeNil)
		seedCohort(ctx, store)

		svc := service.New(store)

		Convey("When the batch runs with the default limit", func() {
			report, err := svc.BatchAnalyze(ctx, 0)

			Convey("Then only the outlier is downgraded", func() {
				So(err, ShouldBeNil)
				So(report.Processed, ShouldEqual, 41)
				So(report.Downgraded, ShouldEqual, 1)
				So(report.DowngradedIDs, ShouldResemble, []string{"outlier"})
				So(report.Failed, ShouldEqual, 0)

				e, err := svc.Get(ctx, "outlier")
				So(err, ShouldBeNil)
				So(e.ReviewStatus, ShouldEqual, model.StatusNeedsReview)
				So(*e.AnomalyScore, ShouldBeGreaterThanOrEqualTo, 90)
				So(strings.Contains(e.AnomalyReason, "Z-score"), ShouldBeTrue)
			})
		})

		Convey("When the batch runs with a small limit", func() {
			report, err := svc.BatchAnalyze(ctx, 5)

			Convey("Then at most that many entries are processed", func() {
				So(err, ShouldBeNil)
				So(report.Processed, ShouldEqual, 5)
			})
		})

		Convey("When comparator queries fail", func() {
			store.failApproved = true
			report, err := svc.BatchAnalyze(ctx, 3)

			Convey("Then entries are skipped and reported, not downgraded", func() {
				So(err, ShouldBeNil)
				So(report.Processed, ShouldEqual, 0)
				So(report.Failed, ShouldEqual, 3)
				So(report.Downgraded, ShouldEqual, 0)

				e, err := svc.Get(ctx, "outlier")
				So(err, ShouldBeNil)
				So(e.ReviewStatus, ShouldEqual, model.StatusApproved)
			})
		})

		Convey("When the downgrade write fails", func() {
			store.failUpdate = true
			report, err := svc.BatchAnalyze(ctx, 1)

			Convey("Then the entry is reported as failed", func() {
				So(err, ShouldBeNil)
				So(report.Failed, ShouldEqual, 1)
				So(report.FailedIDs, ShouldResemble, []string{"outlier"})
			})
		})

		Convey("When the pacing outlasts the context", func() {
			paced := service.New(store, service.WithBatchRate(0.001))
			short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()
			report, err := paced.BatchAnalyze(short, 3)

			Convey("Then the run stops early with an error", func() {
				So(err, ShouldNotBeNil)
				So(report.Processed, ShouldEqual, 1)
			})
		})
	})
}

func TestService_Stats(t *testing.T) {
	Convey("Given stored entries in several states", t, func() {
		ctx := context.Background()
		mem := repository.NewMemoryStore(ctx)
		Reset(func() { _ = mem.Close() })
		seedCohort(ctx, mem)
		pending := fullEntry(4000)
		pending.ID, pending.ReviewStatus = "p", model.StatusPending
		So(mem.Insert(ctx, pending), ShouldBeNil)

		svc := service.New(mem)

		Convey("When stats are requested", func() {
			st, err := svc.Stats(ctx)

			Convey("Then counts are grouped by status", func() {
				So(err, ShouldBeNil)
				So(st.Total, ShouldEqual, 41)
				So(st.ByStatus[model.StatusApproved], ShouldEqual, 40)
				So(st.ByStatus[model.StatusPending], ShouldEqual, 1)
				So(st.ByStatus[model.StatusNeedsReview], ShouldEqual, 0)
				So(st.DuplicateThreshold, ShouldEqual, 90)
				So(st.SimilarityFields[0], ShouldEqual, "grossSalary")
			})
		})
	})
}
