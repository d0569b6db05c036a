// Package serialize writes extracted records to flat column-aggregated
// formats. Records are open maps, so the column set is computed from the
// data rather than declared up front.
package serialize

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// WriteCSV serializes records as CSV. Columns are the union of keys across
// all records: the requested fields first in their requested order, then any
// extra keys the extraction volunteered, sorted. Missing values serialize as
// empty cells; quoting and escaping follow RFC 4180 via encoding/csv.
//
// An empty record list is an error, not an empty file: silently writing a
// header with no rows hides an upstream failure.
func WriteCSV(w io.Writer, records []models.Record, requestedFields []string) error {
	if len(records) == 0 {
		return models.NewScrapeError(models.ErrCodeSerialization, "no records to serialize", nil)
	}

	columns := columnOrder(records, requestedFields)

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return models.NewScrapeError(models.ErrCodeSerialization, "writing CSV header", err)
	}

	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			row[i] = cellValue(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return models.NewScrapeError(models.ErrCodeSerialization, "writing CSV row", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return models.NewScrapeError(models.ErrCodeSerialization, "flushing CSV output", err)
	}
	return nil
}

// columnOrder computes the header: requested fields keep their order even
// when absent from every record, extra keys follow sorted.
func columnOrder(records []models.Record, requestedFields []string) []string {
	columns := make([]string, 0, len(requestedFields))
	seen := make(map[string]struct{}, len(requestedFields))
	for _, field := range requestedFields {
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		columns = append(columns, field)
	}

	var extras []string
	for _, rec := range records {
		for key := range rec {
			if _, known := seen[key]; known {
				continue
			}
			seen[key] = struct{}{}
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	return append(columns, extras...)
}

func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		// Record values are strings or nil after normalization; anything
		// else is rendered rather than dropped.
		return fmt.Sprint(val)
	}
}
