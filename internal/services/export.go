package services

import (
	"bytes"
	"encoding/csv"

	"github.com/cmra-project/group-dashboard/internal/schema"
)

// ExportCohortCSV renders a filtered cohort into CSV bytes with the standard
// header row, suitable for download.
func ExportCohortCSV(rows []*NormalizedRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(schema.CSVHeaders)
	for _, row := range rows {
		if err := w.Write(RowToRecord(row)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
