package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmra-project/group-dashboard/internal/schema"
	"github.com/cmra-project/group-dashboard/internal/services"
)

// SQLiteStore keeps the same flat row shape in a single sqlite table, for
// deployments that outgrow the CSV file. Selected with the sqlite store
// driver; the interface and semantics match CSVStore.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec(createResponsesTable); err != nil {
		return nil, fmt.Errorf("create responses table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

const createResponsesTable = `CREATE TABLE IF NOT EXISTS responses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	submitted_at TEXT NOT NULL,
	respondent TEXT,
	email TEXT,
	role TEXT,
	church TEXT,
	discipleship REAL,
	education REAL,
	training REAL,
	sending REAL,
	sending1 REAL,
	membercare REAL,
	support REAL,
	praying REAL,
	giving REAL,
	community REAL,
	structure REAL,
	organisation REAL,
	policies REAL,
	partnerships REAL,
	score REAL,
	finalpercentage REAL
)`

const insertResponse = `INSERT INTO responses (
	submitted_at, respondent, email, role, church,
	discipleship, education, training, sending, sending1, membercare,
	support, praying, giving, community, structure, organisation, policies,
	partnerships, score, finalpercentage
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

const selectResponses = `SELECT
	submitted_at, respondent, email, role, church,
	discipleship, education, training, sending, sending1, membercare,
	support, praying, giving, community, structure, organisation, policies,
	partnerships, score, finalpercentage
FROM responses ORDER BY id`

func (s *SQLiteStore) ReadAll() ([]*services.NormalizedRow, error) {
	rows, err := s.db.Query(selectResponses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*services.NormalizedRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Append(row *services.NormalizedRow) error {
	_, err := s.db.Exec(insertResponse, insertArgs(row)...)
	return err
}

func (s *SQLiteStore) ReplaceAll(rows []*services.NormalizedRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM responses"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := tx.Exec(insertResponse, insertArgs(row)...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM responses")
	return err
}

func insertArgs(row *services.NormalizedRow) []any {
	args := []any{
		row.SubmittedAt.Format(time.RFC3339),
		nullString(row.Respondent),
		nullString(row.Email),
		nullString(row.Role),
		nullString(row.Church),
	}
	for _, key := range scoreColumns() {
		v, _ := row.ScoreValue(key)
		args = append(args, nullFloat(v))
	}
	return args
}

func scanRow(rows *sql.Rows) (*services.NormalizedRow, error) {
	var submittedAt string
	answers := make([]sql.NullString, 4)
	scores := make([]sql.NullFloat64, len(scoreColumns()))

	dest := []any{&submittedAt}
	for i := range answers {
		dest = append(dest, &answers[i])
	}
	for i := range scores {
		dest = append(dest, &scores[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, submittedAt)
	if err != nil {
		return nil, fmt.Errorf("parse submitted_at %q: %w", submittedAt, err)
	}
	row := &services.NormalizedRow{SubmittedAt: ts}
	for i, name := range []string{"respondent", "email", "role", "church"} {
		if answers[i].Valid {
			v := answers[i].String
			row.SetAnswerValue(name, &v)
		}
	}
	for i, key := range scoreColumns() {
		if scores[i].Valid {
			v := scores[i].Float64
			row.SetScoreValue(key, &v)
		}
	}
	return row, nil
}

// scoreColumns is the CSV header order minus the identity columns.
func scoreColumns() []string {
	return schema.CSVHeaders[5:]
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
