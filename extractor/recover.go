package extractor

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// recoveryStrategy attempts to pull a record list out of a free-form model
// response. It returns ok = false when the response holds nothing it can
// use; strategies must be pure.
type recoveryStrategy func(response string) ([]models.Record, bool)

// recoveryStrategies are tried in order; the first success wins. The order
// matters: a bare array beats a labeled one, normalization only runs after
// a strict parse failed.
var recoveryStrategies = []recoveryStrategy{
	recoverBareArray,
	recoverNormalizedArray,
	recoverLoneObject,
	recoverLabeledArray,
}

// recoverRecords runs the strategy chain over one model response.
func recoverRecords(response string) ([]models.Record, bool) {
	for _, strategy := range recoveryStrategies {
		if records, ok := strategy(response); ok {
			return records, true
		}
	}
	return nil, false
}

// bracketSpan returns the first balanced open...close span in text, aware of
// JSON string literals and escapes so brackets inside values don't truncate
// the span.
func bracketSpan(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = inString
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// parseRecordArray decodes a JSON array of objects into normalized records.
func parseRecordArray(span string) ([]models.Record, bool) {
	var raw []map[string]any
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return nil, false
	}
	records := make([]models.Record, 0, len(raw))
	for _, m := range raw {
		records = append(records, normalizeRecord(m))
	}
	return records, true
}

// recoverBareArray locates the first [...] span and parses it strictly.
func recoverBareArray(response string) ([]models.Record, bool) {
	span, ok := bracketSpan(response, '[', ']')
	if !ok {
		return nil, false
	}
	return parseRecordArray(span)
}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// recoverNormalizedArray retries the array parse after light cleanup:
// trailing commas stripped, newline runs collapsed. Models that almost emit
// JSON usually fail on exactly these.
func recoverNormalizedArray(response string) ([]models.Record, bool) {
	span, ok := bracketSpan(response, '[', ']')
	if !ok {
		return nil, false
	}
	cleaned := trailingComma.ReplaceAllString(span, "$1")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return parseRecordArray(cleaned)
}

// recoverLoneObject locates the first {...} span, parses it as a single
// object and wraps it in a one-element array.
func recoverLoneObject(response string) ([]models.Record, bool) {
	span, ok := bracketSpan(response, '{', '}')
	if !ok {
		return nil, false
	}
	cleaned := trailingComma.ReplaceAllString(span, "$1")
	var m map[string]any
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		return nil, false
	}
	return []models.Record{normalizeRecord(m)}, true
}

// leadInLabels are prefixes models like to put in front of the payload.
var leadInLabels = []string{"result:", "results:", "data:", "output:", "json:", "records:"}

// recoverLabeledArray scans for a lead-in label and retries array extraction
// on the text following it.
func recoverLabeledArray(response string) ([]models.Record, bool) {
	lower := strings.ToLower(response)
	for _, label := range leadInLabels {
		idx := strings.Index(lower, label)
		if idx < 0 {
			continue
		}
		rest := response[idx+len(label):]
		if records, ok := recoverBareArray(rest); ok {
			return records, true
		}
		if records, ok := recoverNormalizedArray(rest); ok {
			return records, true
		}
	}
	return nil, false
}

// normalizeRecord coerces decoded JSON values into the record value domain:
// strings stay, numbers and booleans are stringified, null stays nil, and
// anything nested is re-serialized compactly rather than dropped.
func normalizeRecord(m map[string]any) models.Record {
	rec := make(models.Record, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			rec[k] = nil
		case string:
			rec[k] = val
		case float64:
			rec[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			rec[k] = strconv.FormatBool(val)
		default:
			if b, err := json.Marshal(val); err == nil {
				rec[k] = string(b)
			}
		}
	}
	return rec
}
