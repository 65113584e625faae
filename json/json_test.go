package json

import (
	"bytes"
	stdjson "encoding/json"
	"strings"
	"testing"
)

type testReport struct {
	File    string  `json:"file"`
	Format  string  `json:"format" default:"png"`
	Quality float64 `json:"quality" default:"0.92"`
	Width   int     `json:"width,omitempty"`
}

func TestMarshalAppliesDefaults(t *testing.T) {
	report := &testReport{File: "photo.jpg"}

	data, err := Marshal(report)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	if report.Format != "png" {
		t.Fatalf("expected default Format=png, got %s", report.Format)
	}

	var decoded testReport
	if err := stdjson.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("encoded JSON should be valid, got error: %v", err)
	}
	if decoded != *report {
		t.Fatalf("expected marshaled JSON to match struct with defaults applied, got %+v", decoded)
	}
}

func TestUnmarshalAppliesDefaultsForMissingFields(t *testing.T) {
	var report testReport
	if err := Unmarshal([]byte(`{"file":"a.webp","format":"webp"}`), &report); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if report.Quality != 0.92 {
		t.Fatalf("expected default Quality=0.92, got %v", report.Quality)
	}
	if report.Format != "webp" {
		t.Fatalf("expected Format from JSON, got %s", report.Format)
	}
}

func TestMarshalSliceSkipsDefaults(t *testing.T) {
	data, err := Marshal([]testReport{{File: "a"}})
	if err != nil {
		t.Fatalf("Marshal slice returned error: %v", err)
	}
	if !strings.Contains(string(data), `"file":"a"`) {
		t.Fatalf("unexpected output: %s", data)
	}
}

func TestDecoderDisallowUnknownFields(t *testing.T) {
	decoder := NewDecoder(strings.NewReader(`{"file":"a","unknown_field":1}`))
	decoder.DisallowUnknownFields()

	var report testReport
	if err := decoder.Decode(&report); err == nil {
		t.Fatal("expected error for unknown field, but got none")
	}
}

func TestEncoderSetIndent(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(&testReport{File: "x.png"}); err != nil {
		t.Fatalf("Encode with SetIndent failed: %v", err)
	}

	if !strings.Contains(buf.String(), "\n  \"file\"") {
		t.Fatalf("expected indented output, got: %s", buf.String())
	}
}
