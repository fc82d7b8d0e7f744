package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/cmra-project/group-dashboard/internal/schema"
)

func TestExportCohortCSV(t *testing.T) {
	rows := []*NormalizedRow{
		rowWithScores(t, map[string]*float64{"discipleship": fp(80)}),
		rowWithScores(t, nil),
	}
	rows[0].Respondent = sp("Jess")
	rows[0].Role = sp("Pastor")

	b, err := ExportCohortCSV(rows)
	if err != nil {
		t.Fatalf("ExportCohortCSV error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("read back error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	for i, h := range schema.CSVHeaders {
		if records[0][i] != h {
			t.Fatalf("header[%d]=%q, want %q", i, records[0][i], h)
		}
	}
	if records[1][1] != "Jess" || records[1][5] != "80" {
		t.Fatalf("unexpected first data row: %v", records[1])
	}
	// Nil answer fields export as empty cells.
	if records[2][1] != "" {
		t.Fatalf("nil respondent should be empty, got %q", records[2][1])
	}
}

func TestRowRecordRoundTrip(t *testing.T) {
	row := rowWithScores(t, map[string]*float64{"giving": fp(2.5)})
	row.Email = sp("jess@example.org")
	row.Score = fp(51)
	row.FinalPercentage = fp(63.75)

	rec := RowToRecord(row)
	back, err := RowFromRecord(rec)
	if err != nil {
		t.Fatalf("RowFromRecord error: %v", err)
	}
	if !back.SubmittedAt.Equal(row.SubmittedAt) {
		t.Fatalf("submitted_at drift: %v vs %v", back.SubmittedAt, row.SubmittedAt)
	}
	if back.Email == nil || *back.Email != "jess@example.org" {
		t.Fatalf("email lost in round trip")
	}
	if back.Respondent != nil {
		t.Fatalf("nil respondent should stay nil")
	}
	for _, key := range append(schema.Default().DomainKeys(), schema.Default().SubdomainKeys()...) {
		a, _ := row.ScoreValue(key)
		b, _ := back.ScoreValue(key)
		if (a == nil) != (b == nil) || (a != nil && *a != *b) {
			t.Fatalf("%s drifted in round trip", key)
		}
	}
	if back.FinalPercentage == nil || *back.FinalPercentage != 63.75 {
		t.Fatalf("finalpercentage drifted")
	}
}

func TestRowFromRecordBadShape(t *testing.T) {
	if _, err := RowFromRecord([]string{"just", "three", "cells"}); err == nil {
		t.Fatalf("short record should fail")
	}
}
