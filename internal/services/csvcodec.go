package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cmra-project/group-dashboard/internal/schema"
)

// RowToRecord flattens a row into CSV cells in schema.CSVHeaders order.
// Nil fields become empty cells.
func RowToRecord(row *NormalizedRow) []string {
	rec := make([]string, 0, len(schema.CSVHeaders))
	for _, col := range schema.CSVHeaders {
		switch col {
		case "submitted_at":
			rec = append(rec, row.SubmittedAt.Format(time.RFC3339))
		case "respondent", "email", "role", "church":
			v, _ := row.AnswerValue(col)
			if v == nil {
				rec = append(rec, "")
			} else {
				rec = append(rec, *v)
			}
		default:
			v, _ := row.ScoreValue(col)
			if v == nil {
				rec = append(rec, "")
			} else {
				rec = append(rec, strconv.FormatFloat(*v, 'f', -1, 64))
			}
		}
	}
	return rec
}

// RowFromRecord parses one CSV record back into a row. Numeric cells that
// fail to parse decode as nil rather than failing the row; a bad timestamp
// fails the row since every read path filters on it.
func RowFromRecord(rec []string) (*NormalizedRow, error) {
	if len(rec) != len(schema.CSVHeaders) {
		return nil, fmt.Errorf("record has %d cells, want %d", len(rec), len(schema.CSVHeaders))
	}
	row := &NormalizedRow{}
	for i, col := range schema.CSVHeaders {
		cell := rec[i]
		switch col {
		case "submitted_at":
			ts, err := time.Parse(time.RFC3339, cell)
			if err != nil {
				return nil, fmt.Errorf("parse submitted_at %q: %w", cell, err)
			}
			row.SubmittedAt = ts
		case "respondent", "email", "role", "church":
			if cell != "" {
				v := cell
				row.SetAnswerValue(col, &v)
			}
		default:
			if cell == "" {
				continue
			}
			f, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			row.SetScoreValue(col, &f)
		}
	}
	return row, nil
}
