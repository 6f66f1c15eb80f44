package checkup

import (
	"strings"
	"testing"
	"time"
)

var nextDate = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func TestParseCheckupResultDefaults(t *testing.T) {
	// concerns and carePlan.watering are absent; both must default rather
	// than fail the parse.
	raw := `{
		"stage": "mature",
		"healthAssessment": "Looking healthy overall.",
		"carePlan": {"light": "bright indirect"},
		"todoItems": ["rotate the pot"]
	}`

	result, growth, err := ParseCheckupResult(raw, nextDate, false)
	if err != nil {
		t.Fatalf("ParseCheckupResult() error = %v", err)
	}
	if result.Concerns == nil || len(result.Concerns) != 0 {
		t.Errorf("Concerns = %#v, want empty non-nil slice", result.Concerns)
	}
	if result.CarePlan.Watering != "" {
		t.Errorf("CarePlan.Watering = %q, want empty string", result.CarePlan.Watering)
	}
	if result.CarePlan.Light != "bright indirect" {
		t.Errorf("CarePlan.Light = %q", result.CarePlan.Light)
	}
	if result.NextCheckupDate != "2026-03-15" {
		t.Errorf("NextCheckupDate = %q, want computed default 2026-03-15", result.NextCheckupDate)
	}
	if growth != nil {
		t.Errorf("growth = %#v, want nil without a previous image", growth)
	}
}

func TestParseCheckupResultEmptyObject(t *testing.T) {
	result, _, err := ParseCheckupResult(`{}`, nextDate, false)
	if err != nil {
		t.Fatalf("ParseCheckupResult() error = %v", err)
	}
	if result.Stage != "Unknown" || result.HealthAssessment != "Unknown" {
		t.Errorf("stage/assessment = %q/%q, want Unknown/Unknown", result.Stage, result.HealthAssessment)
	}
	if result.TodoItems == nil || len(result.TodoItems) != 0 {
		t.Errorf("TodoItems = %#v, want empty non-nil slice", result.TodoItems)
	}
}

func TestParseCheckupResultFencedJSON(t *testing.T) {
	raw := "Here is the report you asked for:\n```json\n" +
		`{"stage": "seedling", "nextCheckupDate": "2026-04-01"}` +
		"\n```\nLet me know if you need anything else."

	result, _, err := ParseCheckupResult(raw, nextDate, false)
	if err != nil {
		t.Fatalf("ParseCheckupResult() error = %v", err)
	}
	if result.Stage != "seedling" {
		t.Errorf("Stage = %q, want seedling", result.Stage)
	}
	if result.NextCheckupDate != "2026-04-01" {
		t.Errorf("NextCheckupDate = %q, want the model-provided date", result.NextCheckupDate)
	}
}

func TestParseCheckupResultTotalFailure(t *testing.T) {
	for _, raw := range []string{"", "no json here at all", "{broken"} {
		if _, _, err := ParseCheckupResult(raw, nextDate, false); err == nil {
			t.Errorf("ParseCheckupResult(%q) = nil error, want failure", raw)
		}
	}
}

func TestParseCheckupResultGrowthGating(t *testing.T) {
	raw := `{"stage": "mature", "growthAnalysis": {"rate": "moderate"}}`

	// Without a previous image the block is dropped even if the model
	// hallucinated one.
	_, growth, err := ParseCheckupResult(raw, nextDate, false)
	if err != nil {
		t.Fatalf("ParseCheckupResult() error = %v", err)
	}
	if growth != nil {
		t.Errorf("growth = %#v, want nil when no previous image", growth)
	}

	_, growth, err = ParseCheckupResult(raw, nextDate, true)
	if err != nil {
		t.Fatalf("ParseCheckupResult() error = %v", err)
	}
	if growth == nil {
		t.Fatal("growth = nil, want parsed block with previous image")
	}
	if growth.Rate != "moderate" {
		t.Errorf("growth.Rate = %q, want moderate", growth.Rate)
	}
	if growth.Changes == nil {
		t.Error("growth.Changes = nil, want defaulted empty slice")
	}
}

func TestBuildCheckupPromptDates(t *testing.T) {
	today := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	prompt := BuildCheckupPrompt(today, nextDate, false)

	for _, want := range []string{"2026-03-01", "2026-03-15", "concerns", "carePlan", "todoItems"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "growthAnalysis") {
		t.Error("prompt mentions growthAnalysis without a previous image")
	}

	prompt = BuildCheckupPrompt(today, nextDate, true)
	if !strings.Contains(prompt, "growthAnalysis") {
		t.Error("prompt missing growthAnalysis block with a previous image")
	}
}
