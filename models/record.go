package models

import "encoding/json"

// Record is one extracted entity as an open key→value map. Field names are
// data, not schema: whatever the field spec requested (plus whatever the
// model volunteered) ends up as keys. Values are strings or nil.
type Record map[string]any

// Canonical returns the key-sorted JSON serialization of the record.
// Two records are the same entity exactly when their canonical forms are
// byte-equal; this string is the deduplication key.
//
// encoding/json marshals map keys in sorted order, which is all the
// canonicalization needed here.
func (r Record) Canonical() string {
	b, err := json.Marshal(r)
	if err != nil {
		// Records only ever hold strings and nils, so this is unreachable
		// with real data; an empty key still dedupes consistently.
		return ""
	}
	return string(b)
}

// DedupeRecords collapses duplicates by canonical-JSON equality, keeping the
// first occurrence of each record and preserving first-occurrence order.
// Running it twice yields the same result as running it once.
func DedupeRecords(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		key := rec.Canonical()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
