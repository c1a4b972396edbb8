// Package seed generates synthetic approved cohorts for demos and load checks.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/salaryqa/internal/adapters/repository"
	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/pkg/logger"
)

// Generation ranges.
const (
	minAge         = 22
	ageRange       = 40
	careerStartAge = 21
	salarySpread   = 0.08
	outlierFactor  = 12
	defaultSeed    = 7
	defaultGroup   = 40
)

// Inserter stores generated entries.
type Inserter interface {
	Insert(ctx context.Context, e model.Entry) error
}

// Config controls what Generate produces.
type Config struct {
	// Countries and Sectors span the cohorts; one cohort per pair.
	Countries []string
	Sectors   []string
	// PerGroup is the number of approved entries per cohort.
	PerGroup int
	// Outliers adds PENDING entries with implausible salaries, spread over cohorts.
	Outliers int
	// Seed makes generation reproducible.
	Seed int64
}

// DefaultConfig returns a small Belgian/Dutch cohort set.
func DefaultConfig() Config {
	return Config{
		Countries: []string{"Belgium", "Netherlands"},
		Sectors:   []string{"Technology", "Finance", "Healthcare"},
		PerGroup:  defaultGroup,
		Seed:      defaultSeed,
	}
}

// sectorBase is the median monthly gross salary for a sector.
var sectorBase = map[string]float64{ //nolint:gochecknoglobals // lookup table
	"Technology": 4200,
	"Finance":    4600,
	"Healthcare": 3600,
}

var jobTitles = map[string][]string{ //nolint:gochecknoglobals // lookup table
	"Technology": {"Software Engineer", "Data Analyst", "DevOps Engineer"},
	"Finance":    {"Accountant", "Financial Analyst", "Controller"},
	"Healthcare": {"Nurse", "Physiotherapist", "Lab Technician"},
}

var cities = []string{"Brussels", "Antwerp", "Ghent", "Amsterdam", "Rotterdam", "Utrecht"} //nolint:gochecknoglobals // lookup table

// Generate builds the entries described by cfg. IDs and attributes are
// drawn from Seed, so a given Seed always yields the same entries; only
// CreatedAt follows the wall clock.
func Generate(cfg Config) []model.Entry {
	if cfg.PerGroup <= 0 {
		cfg.PerGroup = defaultGroup
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // synthetic data
	now := time.Now().UTC()

	out := make([]model.Entry, 0, len(cfg.Countries)*len(cfg.Sectors)*cfg.PerGroup+cfg.Outliers)
	for _, country := range cfg.Countries {
		for _, sector := range cfg.Sectors {
			for i := 0; i < cfg.PerGroup; i++ {
				e := generateSingle(rng, country, sector, now.Add(-time.Duration(len(out))*time.Minute))
				e.ReviewStatus = model.StatusApproved
				out = append(out, e)
			}
		}
	}

	cohorts := len(cfg.Countries) * len(cfg.Sectors)
	for i := 0; i < cfg.Outliers && cohorts > 0; i++ {
		c := i % cohorts
		country, sector := cfg.Countries[c/len(cfg.Sectors)], cfg.Sectors[c%len(cfg.Sectors)]
		e := generateSingle(rng, country, sector, now)
		*e.GrossSalary = math.Round(*e.GrossSalary * outlierFactor)
		e.ReviewStatus = model.StatusPending
		out = append(out, e)
	}
	return out
}

func generateSingle(rng *rand.Rand, country, sector string, created time.Time) model.Entry {
	base, ok := sectorBase[sector]
	if !ok {
		base = 4000
	}
	age := minAge + rng.Intn(ageRange)
	experience := rng.Intn(age - careerStartAge + 1)
	seniority := rng.Intn(experience + 1)

	// Experience adds 1.5% per year on top of the sector median.
	mean := base * (1 + 0.015*float64(experience))
	gross := math.Round(mean * (1 + salarySpread*rng.NormFloat64()))
	if gross < 1500 {
		gross = 1500
	}

	titles := jobTitles[sector]
	title := "Specialist"
	if len(titles) > 0 {
		title = titles[rng.Intn(len(titles))]
	}

	return model.Entry{
		ID:             uuid.Must(uuid.NewRandomFromReader(rng)).String(),
		Country:        country,
		Sector:         sector,
		Education:      []string{"Bachelor", "Master", "PhD"}[rng.Intn(3)],
		JobTitle:       title,
		WorkCity:       cities[rng.Intn(len(cities))],
		Currency:       "EUR",
		EmployeeCount:  []string{"1-10", "10-50", "50-200", "200+"}[rng.Intn(4)],
		Age:            model.Int(age),
		WorkExperience: model.Int(experience),
		Seniority:      model.Int(seniority),
		GrossSalary:    model.Float(gross),
		NetSalary:      model.Float(math.Round(gross * 0.58)),
		VacationDays:   model.Int(20 + rng.Intn(12)),
		OfficialHours:  model.Float(38),
		Multinational:  model.Bool(rng.Intn(2) == 0),
		CreatedAt:      created,
	}
}

// Load inserts entries into store and returns how many were written.
// Entries whose ID already exists are skipped, so reloading a seed is a no-op.
func Load(ctx context.Context, store Inserter, entries []model.Entry) (int, error) {
	log := logger.Get().Named("seed")
	written := 0
	for i := range entries {
		err := store.Insert(ctx, entries[i])
		switch {
		case errors.Is(err, repository.ErrConflict):
			continue
		case err != nil:
			return written, fmt.Errorf("insert entry %d: %w", i, err)
		}
		written++
	}
	log.Info(ctx, "seeded entries",
		logger.Int("count", written),
		logger.Int("skipped", len(entries)-written),
	)
	return written, nil
}
