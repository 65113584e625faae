package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const historyLimit = 100

// Collector keeps in-process counters, gauges and histograms.
type Collector struct {
	metrics map[string]*Metric
	mu      sync.RWMutex
}

// Metric is one named, labelled series.
type Metric struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Value  float64           `json:"value"`
	Labels map[string]string `json:"labels,omitempty"`
	// Count and Sum cover every observation; History keeps the latest ones.
	Count     int64     `json:"count,omitempty"`
	Sum       float64   `json:"sum,omitempty"`
	History   []float64 `json:"history,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// Avg returns the mean of all histogram observations.
func (m *Metric) Avg() float64 {
	if m.Count == 0 {
		return 0
	}
	return m.Sum / float64(m.Count)
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		metrics: make(map[string]*Metric),
	}
}

// IncCounter adds one to a counter.
func (c *Collector) IncCounter(name string, labels map[string]string) {
	c.AddCounter(name, 1, labels)
}

// AddCounter adds value to a counter.
func (c *Collector) AddCounter(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := buildKey(name, labels)
	if metric, exists := c.metrics[key]; exists {
		metric.Value += value
		metric.Timestamp = time.Now().Unix()
	} else {
		c.metrics[key] = &Metric{
			Name:      name,
			Type:      "counter",
			Value:     value,
			Labels:    copyLabels(labels),
			Timestamp: time.Now().Unix(),
		}
	}
}

// SetGauge sets a gauge to value.
func (c *Collector) SetGauge(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := buildKey(name, labels)
	c.metrics[key] = &Metric{
		Name:      name,
		Type:      "gauge",
		Value:     value,
		Labels:    copyLabels(labels),
		Timestamp: time.Now().Unix(),
	}
}

// ObserveHistogram records one observation. Value holds the latest one.
func (c *Collector) ObserveHistogram(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := buildKey(name, labels)
	metric, exists := c.metrics[key]
	if !exists {
		metric = &Metric{
			Name:   name,
			Type:   "histogram",
			Labels: copyLabels(labels),
		}
		c.metrics[key] = metric
	}
	metric.Value = value
	metric.Count++
	metric.Sum += value
	metric.History = append(metric.History, value)
	if len(metric.History) > historyLimit {
		metric.History = metric.History[1:]
	}
	metric.Timestamp = time.Now().Unix()
}

// buildKey joins name and labels in label-name order so the same label set
// always maps to the same series.
func buildKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range keys {
		sb.WriteString(":")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(labels[k])
	}
	return sb.String()
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

func (m *Metric) clone() *Metric {
	cp := *m
	cp.Labels = copyLabels(m.Labels)
	cp.History = append([]float64(nil), m.History...)
	return &cp
}

// GetMetrics returns a copy of every series, keyed by series key.
func (c *Collector) GetMetrics() map[string]*Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]*Metric, len(c.metrics))
	for k, v := range c.metrics {
		result[k] = v.clone()
	}
	return result
}

// GetMetric returns a copy of one series, or nil.
func (c *Collector) GetMetric(name string, labels map[string]string) *Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if m, ok := c.metrics[buildKey(name, labels)]; ok {
		return m.clone()
	}
	return nil
}

// Reset drops every series.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]*Metric)
}

// RecordDuration runs fn and observes its duration in seconds.
func (c *Collector) RecordDuration(name string, labels map[string]string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.ObserveHistogram(name, time.Since(start).Seconds(), labels)
	return err
}
