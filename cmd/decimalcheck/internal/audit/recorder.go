// Package audit records the outcome of decimal checks in a SQL database.
// Each check is stored with a ULID, the rule that was applied, the raw value,
// and the error codes produced, so past validations can be listed and inspected.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/database"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/ulid"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/validation"
)

// TableName is the table holding audited checks.
const TableName = "decimal_checks"

// ErrRecordNotFound is returned when no check exists with the requested ID.
var ErrRecordNotFound = errors.New("check record not found")

// Record is one audited check.
type Record struct {
	ID        string    `json:"id"`
	Rule      string    `json:"rule"`
	Value     *string   `json:"value"`
	Valid     bool      `json:"valid"`
	Codes     []string  `json:"codes"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder persists check records.
type Recorder struct {
	db  database.Driver
	now func() time.Time
}

// NewRecorder creates a recorder backed by db.
func NewRecorder(db database.Driver) *Recorder {
	return &Recorder{db: db, now: time.Now}
}

// EnsureSchema creates the audit table if it does not exist.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	// VARCHAR keys keep the DDL valid for MySQL, which cannot index TEXT.
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR(26) NOT NULL PRIMARY KEY,
	rule_name VARCHAR(255) NOT NULL,
	raw_value TEXT NULL,
	valid INTEGER NOT NULL,
	codes TEXT NOT NULL,
	created_at VARCHAR(40) NOT NULL
)`, TableName)

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s table: %w", TableName, err)
	}
	return nil
}

// Check is one matched value waiting to be recorded.
type Check struct {
	Value  any
	Result *validation.ValidationResult
}

// Record stores the outcome of matching each check with the named rule.
// The batch is written in a single transaction: either every check is stored
// or none is. Records are returned in input order with IDs that sort the same
// way.
func (r *Recorder) Record(ctx context.Context, rule string, checks []Check) ([]Record, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("INSERT INTO %s (id, rule_name, raw_value, valid, codes, created_at) VALUES (%s)",
		TableName, database.Placeholders(r.db.Dialect(), 6))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	records := make([]Record, 0, len(checks))
	for _, check := range checks {
		now := r.now().UTC()
		rec := Record{
			ID:        ulid.GenerateWithTime(now),
			Rule:      rule,
			Value:     FormatValue(check.Value),
			Valid:     check.Result.IsValid(),
			Codes:     check.Result.Codes(),
			CreatedAt: now,
		}

		valid := 0
		if rec.Valid {
			valid = 1
		}

		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.Rule, nullableString(rec.Value), valid,
			strings.Join(rec.Codes, ","), rec.CreatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return nil, fmt.Errorf("failed to record check: %w", err)
		}
		records = append(records, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checks: %w", err)
	}

	return records, nil
}

// Get returns the check with the given ID.
func (r *Recorder) Get(ctx context.Context, id string) (Record, error) {
	query := fmt.Sprintf("SELECT id, rule_name, raw_value, valid, codes, created_at FROM %s WHERE id = %s",
		TableName, database.Placeholder(r.db.Dialect(), 1))

	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load check %s: %w", id, err)
	}
	return rec, nil
}

// Recent returns up to limit checks, newest first. Checks recorded within the
// same millisecond keep their recording order.
// The limit is clamped to 1..MaxRecentChecks.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > constants.MaxRecentChecks {
		limit = constants.MaxRecentChecks
	}

	query := fmt.Sprintf("SELECT id, rule_name, raw_value, valid, codes, created_at FROM %s ORDER BY id DESC LIMIT %d",
		TableName, limit)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec       Record
		value     sql.NullString
		valid     int
		codes     string
		createdAt string
	)

	if err := s.Scan(&rec.ID, &rec.Rule, &value, &valid, &codes, &createdAt); err != nil {
		return Record{}, err
	}

	if value.Valid {
		v := value.String
		rec.Value = &v
	}
	rec.Valid = valid != 0
	rec.Codes = []string{}
	if codes != "" {
		rec.Codes = strings.Split(codes, ",")
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = t

	return rec, nil
}

// FormatValue renders a checked value for storage. Nil stays nil; strings and
// JSON numbers are kept verbatim; anything else is JSON encoded.
func FormatValue(value any) *string {
	var s string
	switch v := value.(type) {
	case nil:
		return nil
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	case string:
		s = v
	case json.Number:
		s = v.String()
	case fmt.Stringer:
		s = v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprintf("%v", v)
		} else {
			s = string(data)
		}
	}
	return &s
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
