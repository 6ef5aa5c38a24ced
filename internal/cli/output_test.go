package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/ecorank/internal/models"
)

func pct(v float64) *float64 { return &v }

var sample = []models.ScoredProduct{
	{URL: "https://a.example/bamboo-brush", Name: "Bamboo Brush", RawIndex: 0.3, Percentage: pct(-25)},
	{URL: "https://b.example/plastic-brush", Name: "Plastic Brush", RawIndex: 0.5, Percentage: pct(25)},
}

func TestWriteProducts_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProducts(&buf, sample, OutputJSON); err != nil {
		t.Fatalf("WriteProducts(json): %v", err)
	}
	var decoded []models.ScoredProduct
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Name != "Plastic Brush" || *decoded[0].Percentage != -25 {
		t.Errorf("decoded: got %+v", decoded)
	}
}

func TestWriteProducts_JSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProducts(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteProducts_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProducts(&buf, sample, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"2 product(s)", "PRODUCT", "Bamboo Brush", "-25.0%", "+25.0%", "https://b.example/plastic-brush"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Bamboo Brush") > strings.Index(out, "Plastic Brush") {
		t.Error("products should be listed in submission order")
	}
}

func TestWriteProducts_TextEmptyAndSingle(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteProducts(&buf, nil, OutputText)
	if !strings.Contains(buf.String(), "No products") {
		t.Errorf("empty: got %q", buf.String())
	}

	buf.Reset()
	single := []models.ScoredProduct{{URL: "a", Name: "Widget", RawIndex: 0.3}}
	_ = WriteProducts(&buf, single, OutputCompact)
	if got := buf.String(); got != "Widget\t0.30\t-\ta\n" {
		t.Errorf("compact single: got %q", got)
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"text", "compact", "json"} {
		if f, err := ParseOutputFormat(s); err != nil || string(f) != s {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", s, f, err)
		}
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}

func TestWriteStatus(t *testing.T) {
	st := &models.StatusResponse{SessionID: "s-1", Links: 2, Products: 2, Provider: "mock", Model: "mock", PromptSource: "default"}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Session:  s-1") || !strings.Contains(buf.String(), "Provider: mock (mock)") {
		t.Errorf("got %q", buf.String())
	}
}
