package metrics

import (
	"time"
)

// Series recorded for conversions.
const (
	ConversionsTotal     = "conversions_total"
	ConversionDuration   = "conversion_duration_seconds"
	ConversionInputBytes = "conversion_input_bytes_total"
	ConversionOutputSize = "conversion_output_bytes_total"
)

// Conversion outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// RecordConversion records one conversion attempt.
func (c *Collector) RecordConversion(format, outcome string, duration time.Duration, inputBytes, outputBytes int64) {
	labels := map[string]string{
		"format":  format,
		"outcome": outcome,
	}
	c.IncCounter(ConversionsTotal, labels)
	c.ObserveHistogram(ConversionDuration, duration.Seconds(), map[string]string{"format": format})
	c.AddCounter(ConversionInputBytes, float64(inputBytes), map[string]string{"format": format})
	if outcome == OutcomeSuccess {
		c.AddCounter(ConversionOutputSize, float64(outputBytes), map[string]string{"format": format})
	}
}

// FormatSummary aggregates conversions into one output format.
type FormatSummary struct {
	Succeeded   int64   `json:"succeeded"`
	Failed      int64   `json:"failed"`
	Skipped     int64   `json:"skipped"`
	InputBytes  int64   `json:"inputBytes"`
	OutputBytes int64   `json:"outputBytes"`
	AvgSeconds  float64 `json:"avgSeconds"`
}

// Summary aggregates every recorded conversion.
type Summary struct {
	Total       int64                    `json:"total"`
	Succeeded   int64                    `json:"succeeded"`
	Failed      int64                    `json:"failed"`
	Skipped     int64                    `json:"skipped"`
	InputBytes  int64                    `json:"inputBytes"`
	OutputBytes int64                    `json:"outputBytes"`
	AvgSeconds  float64                  `json:"avgSeconds"`
	Formats     map[string]FormatSummary `json:"formats"`
}

// SuccessRate returns succeeded/total as a percentage.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total) * 100
}

// Summary aggregates the conversion series.
func (c *Collector) Summary() Summary {
	summary := Summary{Formats: make(map[string]FormatSummary)}
	var durationSum float64
	var durationCount int64

	for _, metric := range c.GetMetrics() {
		format := metric.Labels["format"]
		fs := summary.Formats[format]

		switch metric.Name {
		case ConversionsTotal:
			n := int64(metric.Value)
			summary.Total += n
			switch metric.Labels["outcome"] {
			case OutcomeSuccess:
				summary.Succeeded += n
				fs.Succeeded += n
			case OutcomeFailure:
				summary.Failed += n
				fs.Failed += n
			case OutcomeSkipped:
				summary.Skipped += n
				fs.Skipped += n
			}
		case ConversionInputBytes:
			summary.InputBytes += int64(metric.Value)
			fs.InputBytes += int64(metric.Value)
		case ConversionOutputSize:
			summary.OutputBytes += int64(metric.Value)
			fs.OutputBytes += int64(metric.Value)
		case ConversionDuration:
			durationSum += metric.Sum
			durationCount += metric.Count
			fs.AvgSeconds = metric.Avg()
		default:
			continue
		}
		summary.Formats[format] = fs
	}

	if durationCount > 0 {
		summary.AvgSeconds = durationSum / float64(durationCount)
	}
	return summary
}

// Snapshot is a point-in-time copy of a collector.
type Snapshot struct {
	Timestamp time.Time          `json:"timestamp"`
	Metrics   map[string]*Metric `json:"metrics"`
	Summary   Summary            `json:"summary"`
}

// TakeSnapshot copies the collector's current state.
func TakeSnapshot(collector *Collector) Snapshot {
	return Snapshot{
		Timestamp: time.Now(),
		Metrics:   collector.GetMetrics(),
		Summary:   collector.Summary(),
	}
}
