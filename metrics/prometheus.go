package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WritePrometheus writes every series in the Prometheus text format, sorted by
// series key. Histograms are written as _sum and _count.
func (c *Collector) WritePrometheus(w io.Writer) error {
	metrics := c.GetMetrics()
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		metric := metrics[key]
		labels := formatLabels(metric.Labels)

		var err error
		switch metric.Type {
		case "counter", "gauge":
			_, err = fmt.Fprintf(w, "%s%s %g\n", metric.Name, labels, metric.Value)
		case "histogram":
			_, err = fmt.Fprintf(w, "%s_sum%s %g\n%s_count%s %d\n",
				metric.Name, labels, metric.Sum, metric.Name, labels, metric.Count)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}
