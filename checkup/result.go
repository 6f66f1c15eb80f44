package checkup

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/verdant-app/verdant-server/models"
)

// parsedResult mirrors the JSON shape requested in the prompt. Every field
// is optional at parse time; defaults are applied afterwards.
type parsedResult struct {
	Stage            string                 `json:"stage"`
	HealthAssessment string                 `json:"healthAssessment"`
	Concerns         []models.Concern       `json:"concerns"`
	CarePlan         models.CarePlan        `json:"carePlan"`
	TodoItems        []string               `json:"todoItems"`
	NextCheckupDate  string                 `json:"nextCheckupDate"`
	GrowthAnalysis   *models.GrowthAnalysis `json:"growthAnalysis"`
}

// ParseCheckupResult extracts the JSON object from the model's free-form
// response and builds the typed result. Missing fields are defaulted, never
// fatal; only a structurally absent or invalid JSON object is an error. The
// growth analysis is returned only when a previous image was supplied.
func ParseCheckupResult(raw string, next time.Time, hasPrevious bool) (*models.CheckupResult, *models.GrowthAnalysis, error) {
	jsonText := extractJSONObject(raw)
	if jsonText == "" {
		return nil, nil, fmt.Errorf("no JSON object in analysis response")
	}

	var p parsedResult
	if err := json.Unmarshal([]byte(jsonText), &p); err != nil {
		return nil, nil, fmt.Errorf("malformed analysis response: %v", err)
	}

	if p.Stage == "" {
		p.Stage = "Unknown"
	}
	if p.HealthAssessment == "" {
		p.HealthAssessment = "Unknown"
	}
	if p.Concerns == nil {
		p.Concerns = []models.Concern{}
	}
	if p.TodoItems == nil {
		p.TodoItems = []string{}
	}
	if p.NextCheckupDate == "" {
		p.NextCheckupDate = next.Format(dateLayout)
	}

	result := &models.CheckupResult{
		Stage:            p.Stage,
		HealthAssessment: p.HealthAssessment,
		Concerns:         p.Concerns,
		CarePlan:         p.CarePlan,
		TodoItems:        p.TodoItems,
		NextCheckupDate:  p.NextCheckupDate,
	}

	var growth *models.GrowthAnalysis
	if hasPrevious && p.GrowthAnalysis != nil {
		growth = p.GrowthAnalysis
		if growth.Changes == nil {
			growth.Changes = []string{}
		}
	}
	return result, growth, nil
}

// extractJSONObject cuts the outermost {...} out of raw, tolerating prose
// or ```json fences around it.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
