package review

import (
	"math"

	"scholar/internal/logging"
)

// FieldSummary records how one field was aggregated.
type FieldSummary struct {
	Field        string  `json:"field"`
	Contributing int     `json:"contributing"`
	Mean         float64 `json:"mean,omitempty"`
	Value        int     `json:"value,omitempty"`
}

// AggregationReport describes an aggregation pass. Skipped fields had no
// valid value in any record and were left untouched on the seed.
type AggregationReport struct {
	Fields  []FieldSummary `json:"fields"`
	Skipped []string       `json:"skipped,omitempty"`
}

// Contributing returns how many records supplied a valid value for field.
func (r AggregationReport) Contributing(field string) int {
	for _, f := range r.Fields {
		if f.Field == field {
			return f.Contributing
		}
	}
	return 0
}

// Aggregator overwrites numeric fields of a seed record with ensemble means.
type Aggregator interface {
	Aggregate(records []Record, fields []ScoreField, seed Record) AggregationReport
}

// MeanAggregator writes round(mean) over the valid values of each field.
// A value is valid when present, numeric, and within the field's range.
// Ties round away from zero.
type MeanAggregator struct {
	Logger logging.Logger
}

var _ Aggregator = MeanAggregator{}

// Aggregate mutates seed in place and reports per-field outcomes.
func (a MeanAggregator) Aggregate(records []Record, fields []ScoreField, seed Record) AggregationReport {
	logger := logging.OrNop(a.Logger)
	report := AggregationReport{Fields: make([]FieldSummary, 0, len(fields))}

	for _, field := range fields {
		var (
			sum   float64
			count int
		)
		for _, rec := range records {
			v, ok := rec.Number(field.Name)
			if !ok || !field.Contains(v) {
				continue
			}
			sum += v
			count++
		}

		if count == 0 {
			logger.Warn("no valid scores for %s across %d reviews; leaving field unchanged", field.Name, len(records))
			report.Skipped = append(report.Skipped, field.Name)
			report.Fields = append(report.Fields, FieldSummary{Field: field.Name})
			continue
		}

		mean := sum / float64(count)
		value := int(math.Round(mean))
		seed[field.Name] = value
		report.Fields = append(report.Fields, FieldSummary{
			Field:        field.Name,
			Contributing: count,
			Mean:         mean,
			Value:        value,
		})
	}
	return report
}
