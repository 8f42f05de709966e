package review

import (
	"math"
	"strconv"
	"strings"

	jsonx "scholar/internal/shared/json"
)

// Decision is the accept/reject verdict carried in the "Decision" field.
type Decision string

const (
	DecisionAccept Decision = "Accept"
	DecisionReject Decision = "Reject"
)

// Record is one structured review as parsed from model output. Values are
// strings, string lists, numbers, booleans, or a Decision string. Which keys
// exist depends on the rubric, and any key may legitimately be absent.
type Record map[string]any

// Clone returns a copy whose top-level map and list values are independent
// of the receiver.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		switch val := v.(type) {
		case []any:
			out[k] = append([]any(nil), val...)
		case []string:
			out[k] = append([]string(nil), val...)
		default:
			out[k] = v
		}
	}
	return out
}

// Number returns the numeric value of field. JSON numbers and strings that
// parse as finite numbers count. Booleans never do.
func (r Record) Number(field string) (float64, bool) {
	v, ok := r[field]
	if !ok {
		return 0, false
	}
	var f float64
	switch val := v.(type) {
	case jsonx.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String returns field as a string when it is one.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Strings returns field as a list of strings, skipping non-string items.
func (r Record) Strings(field string) []string {
	switch val := r[field].(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	}
	return nil
}

// Decision returns the normalized verdict, if the record carries one.
func (r Record) Decision() (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(r.String("Decision"))) {
	case "accept":
		return DecisionAccept, true
	case "reject":
		return DecisionReject, true
	}
	return "", false
}

// JSON serializes the record with sorted keys and no HTML escaping.
func (r Record) JSON() string {
	data, err := jsonx.MarshalPlain(map[string]any(r))
	if err != nil {
		return "{}"
	}
	return string(data)
}
