package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/salaryqa/internal/domain/criteria"
	"github.com/okian/salaryqa/internal/domain/model"
)

const entryColumns = `id, country, sector, education, civil_status, employee_count, job_title,
 work_city, currency, age, work_experience, seniority, gross_salary, net_salary, net_compensation,
 official_hours, average_hours, vacation_days, telework_days, meal_vouchers, eco_cheques,
 dependents, reports, multinational, review_status, anomaly_score, anomaly_reason, created_at`

const entryColumnCount = 28

// columns maps criteria fields to table columns.
var columns = map[criteria.Field]string{ //nolint:gochecknoglobals // static lookup table
	criteria.FieldID:             "id",
	criteria.FieldCountry:        "country",
	criteria.FieldSector:         "sector",
	criteria.FieldWorkExperience: "work_experience",
	criteria.FieldAge:            "age",
	criteria.FieldReviewStatus:   "review_status",
	criteria.FieldGrossSalary:    "gross_salary",
}

// SQLStore is a Store backed by sqlite3 or postgres.
type SQLStore struct {
	db     *sql.DB
	driver string
	gauges *gaugeUpdater
}

var _ Store = (*SQLStore)(nil)

// OpenSQL connects to the database, optionally migrates it, and returns a store.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	o := applyOptions(opts)
	if o.autoMigrate {
		if err := Migrate(ctx, driver, dsn, opts...); err != nil {
			return nil, err
		}
	}
	db, err := openDB(ctx, driver, dsn, o)
	if err != nil {
		return nil, err
	}
	s := &SQLStore{db: db, driver: driver}
	s.gauges = startGaugeUpdater(ctx, o.metricsUpdateInterval, o.logger, s.Count)
	return s, nil
}

// Close stops the gauge updater and closes the database.
func (s *SQLStore) Close() error {
	s.gauges.stop()
	return s.db.Close()
}

// query accumulates a WHERE clause with driver-specific placeholders.
type query struct {
	driver string
	where  []string
	args   []any
}

func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	if q.driver == DriverPostgres {
		return "$" + strconv.Itoa(len(q.args))
	}
	return "?"
}

func (q *query) add(cond string) { q.where = append(q.where, cond) }

func (q *query) predicate(p criteria.Predicate) error {
	switch p := p.(type) {
	case criteria.Eq:
		col, err := column(p.Field)
		if err != nil {
			return err
		}
		q.add(col + " = " + q.arg(p.Value))
	case criteria.NotEqual:
		col, err := column(p.Field)
		if err != nil {
			return err
		}
		q.add("(" + col + " IS NULL OR " + col + " <> " + q.arg(p.Value) + ")")
	case criteria.Range:
		col, err := column(p.Field)
		if err != nil {
			return err
		}
		q.add(col + " BETWEEN " + q.arg(p.Min) + " AND " + q.arg(p.Max))
	case criteria.NotNull:
		col, err := column(p.Field)
		if err != nil {
			return err
		}
		q.add(col + " IS NOT NULL")
	default:
		return fmt.Errorf("unsupported predicate %T", p)
	}
	return nil
}

func (q *query) sql(suffix string) string {
	stmt := "SELECT " + entryColumns + " FROM compensation_entries"
	if len(q.where) > 0 {
		stmt += " WHERE " + strings.Join(q.where, " AND ")
	}
	return stmt + suffix
}

func (q *query) limit(n int) string {
	if n <= 0 {
		return ""
	}
	return " LIMIT " + q.arg(n)
}

func column(f criteria.Field) (string, error) {
	col, ok := columns[f]
	if !ok {
		return "", fmt.Errorf("unknown criteria field %q", f)
	}
	return col, nil
}

// Insert stores a new entry.
func (s *SQLStore) Insert(ctx context.Context, e model.Entry) error {
	q := &query{driver: s.driver}
	ph := make([]string, entryColumnCount)
	for i, v := range entryValues(&e) {
		ph[i] = q.arg(v)
	}
	stmt := "INSERT INTO compensation_entries (" + entryColumns + ") VALUES (" + strings.Join(ph, ", ") + ")"
	if _, err := s.db.ExecContext(ctx, stmt, q.args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrConflict, e.ID)
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// Get returns the entry with id.
func (s *SQLStore) Get(ctx context.Context, id string) (model.Entry, error) {
	q := &query{driver: s.driver}
	q.add("id = " + q.arg(id))
	out, err := s.list(ctx, q.sql(""), q.args)
	if err != nil {
		return model.Entry{}, err
	}
	if len(out) == 0 {
		return model.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return out[0], nil
}

// FindApproved returns approved entries with a gross salary that match c.
func (s *SQLStore) FindApproved(ctx context.Context, c criteria.Criteria) ([]model.Entry, error) {
	q := &query{driver: s.driver}
	q.add("review_status = " + q.arg(string(model.StatusApproved)))
	q.add("gross_salary IS NOT NULL")
	for _, p := range c.Predicates {
		if err := q.predicate(p); err != nil {
			return nil, err
		}
	}
	return s.list(ctx, q.sql(q.limit(c.Limit)), q.args)
}

// FindByCountry returns up to limit entries of country, excluding excludeID.
func (s *SQLStore) FindByCountry(ctx context.Context, country, excludeID string, limit int) ([]model.Entry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	q := &query{driver: s.driver}
	if country != "" {
		q.add("country = " + q.arg(country))
	}
	if excludeID != "" {
		q.add("id <> " + q.arg(excludeID))
	}
	return s.list(ctx, q.sql(q.limit(limit)), q.args)
}

// ListByStatus returns up to limit entries in status, oldest first.
func (s *SQLStore) ListByStatus(ctx context.Context, status model.ReviewStatus, limit int) ([]model.Entry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	q := &query{driver: s.driver}
	q.add("review_status = " + q.arg(string(status)))
	return s.list(ctx, q.sql(" ORDER BY created_at, id"+q.limit(limit)), q.args)
}

// UpdateStatus overwrites the review outcome of an entry.
func (s *SQLStore) UpdateStatus(ctx context.Context, id string, status model.ReviewStatus, score *int, reason string) error {
	q := &query{driver: s.driver}
	stmt := "UPDATE compensation_entries SET review_status = " + q.arg(string(status)) +
		", anomaly_score = " + q.arg(nullInt(score)) +
		", anomaly_reason = " + q.arg(nullString(reason)) +
		" WHERE id = " + q.arg(id)
	res, err := s.db.ExecContext(ctx, stmt, q.args...)
	if err != nil {
		return fmt.Errorf("update entry status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entry status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Count returns the number of entries per review status.
func (s *SQLStore) Count(ctx context.Context) (map[model.ReviewStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT review_status, COUNT(*) FROM compensation_entries GROUP BY review_status")
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()

	out := make(map[model.ReviewStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("count entries: %w", err)
		}
		out[model.ReviewStatus(status)] = n
	}
	return out, rows.Err()
}

func (s *SQLStore) list(ctx context.Context, stmt string, args []any) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	return out, nil
}

// entryValues returns column values in entryColumns order.
func entryValues(e *model.Entry) []any {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var multinational sql.NullBool
	if e.Multinational != nil {
		multinational = sql.NullBool{Bool: *e.Multinational, Valid: true}
	}
	return []any{
		e.ID,
		nullString(e.Country), nullString(e.Sector), nullString(e.Education),
		nullString(e.CivilStatus), nullString(e.EmployeeCount), nullString(e.JobTitle),
		nullString(e.WorkCity), nullString(e.Currency),
		nullInt(e.Age), nullInt(e.WorkExperience), nullInt(e.Seniority),
		nullFloat(e.GrossSalary), nullFloat(e.NetSalary), nullFloat(e.NetCompensation),
		nullFloat(e.OfficialHours), nullFloat(e.AverageHours),
		nullInt(e.VacationDays), nullInt(e.TeleworkDays),
		nullFloat(e.MealVouchers), nullFloat(e.EcoCheques),
		nullInt(e.Dependents), nullInt(e.Reports),
		multinational,
		string(e.ReviewStatus), nullInt(e.AnomalyScore), nullString(e.AnomalyReason),
		created.UTC(),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(r scanner) (model.Entry, error) {
	var (
		e model.Entry

		country, sector, education, civil, employees sql.NullString
		title, city, currency, status, reason        sql.NullString

		age, experience, seniority, vacation, telework sql.NullInt64
		dependents, reports, score                     sql.NullInt64

		gross, net, netComp, official, average, meal, eco sql.NullFloat64

		multinational sql.NullBool
	)
	err := r.Scan(
		&e.ID, &country, &sector, &education, &civil, &employees, &title, &city, &currency,
		&age, &experience, &seniority, &gross, &net, &netComp, &official, &average,
		&vacation, &telework, &meal, &eco, &dependents, &reports, &multinational,
		&status, &score, &reason, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Entry{}, ErrNotFound
		}
		return model.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	e.Country, e.Sector, e.Education = country.String, sector.String, education.String
	e.CivilStatus, e.EmployeeCount, e.JobTitle = civil.String, employees.String, title.String
	e.WorkCity, e.Currency = city.String, currency.String
	e.ReviewStatus, e.AnomalyReason = model.ReviewStatus(status.String), reason.String

	e.Age, e.WorkExperience, e.Seniority = intPtr(age), intPtr(experience), intPtr(seniority)
	e.VacationDays, e.TeleworkDays = intPtr(vacation), intPtr(telework)
	e.Dependents, e.Reports, e.AnomalyScore = intPtr(dependents), intPtr(reports), intPtr(score)

	e.GrossSalary, e.NetSalary, e.NetCompensation = floatPtr(gross), floatPtr(net), floatPtr(netComp)
	e.OfficialHours, e.AverageHours = floatPtr(official), floatPtr(average)
	e.MealVouchers, e.EcoCheques = floatPtr(meal), floatPtr(eco)

	if multinational.Valid {
		e.Multinational = model.Bool(multinational.Bool)
	}
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return model.Int(int(v.Int64))
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return model.Float(v.Float64)
}
