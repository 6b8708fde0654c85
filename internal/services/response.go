package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/models"
)

// requiredCategories are the four rubric keys every response must carry.
var requiredCategories = []string{"hardSkills", "softSkills", "experience", "qualifications"}

var requiredLists = []string{"strengths", "weaknesses", "recommendations"}

// parseAnalysisResponse turns raw model output into a validated
// AnalysisResult. The raw text may arrive wrapped in a markdown code fence
// despite the prompt's instructions; a response that parses but violates the
// documented shape is rejected rather than passed through.
func parseAnalysisResponse(raw string) (*models.AnalysisResult, error) {
	cleaned := stripCodeFence(raw)

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, apperrors.Wrap(apperrors.KindResponseParse,
			fmt.Sprintf("Failed to parse AI response as JSON: %v", err), err)
	}

	if err := validateAnalysisPayload(payload); err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &result,
		TagName: "json",
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, apperrors.Wrap(apperrors.KindResponseSchema,
			fmt.Sprintf("AI response has an invalid shape: %v", err), err)
	}

	result.Raw = json.RawMessage(cleaned)
	return &result, nil
}

// stripCodeFence returns the document between a leading and a trailing
// markdown fence marker, or the trimmed text unchanged when no leading fence
// is present. Stripping is idempotent.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	body := strings.TrimPrefix(trimmed, "```json")
	body = strings.TrimPrefix(body, "```")
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}

	body = strings.TrimSpace(body)
	if body == "" {
		// A bare fence with nothing between the markers; hand the original
		// to the parser so the error reports what was actually received.
		return trimmed
	}
	return body
}

func validateAnalysisPayload(payload map[string]any) error {
	if err := numberInRange(payload, "atsScore", "atsScore", 0, 100); err != nil {
		return err
	}

	if err := requiredString(payload, "summary"); err != nil {
		return err
	}

	rawCategories, ok := payload["categoryScores"]
	if !ok {
		return missingField("categoryScores")
	}
	categories, ok := rawCategories.(map[string]any)
	if !ok {
		return apperrors.New(apperrors.KindResponseSchema,
			`AI response field "categoryScores" must be an object`)
	}
	for _, key := range requiredCategories {
		if err := numberInRange(categories, key, "categoryScores."+key, 0, 5); err != nil {
			return err
		}
	}

	for _, key := range requiredLists {
		if err := stringList(payload, key); err != nil {
			return err
		}
	}

	return nil
}

func missingField(field string) error {
	return apperrors.New(apperrors.KindResponseSchema,
		fmt.Sprintf("AI response is missing required field %q", field))
}

func requiredString(m map[string]any, field string) error {
	value, ok := m[field]
	if !ok {
		return missingField(field)
	}
	if _, ok := value.(string); !ok {
		return apperrors.New(apperrors.KindResponseSchema,
			fmt.Sprintf("AI response field %q must be a string", field))
	}
	return nil
}

func numberInRange(m map[string]any, key, field string, min, max float64) error {
	value, ok := m[key]
	if !ok {
		return missingField(field)
	}
	number, ok := value.(float64)
	if !ok {
		return apperrors.New(apperrors.KindResponseSchema,
			fmt.Sprintf("AI response field %q must be a number", field))
	}
	if number < min || number > max {
		return apperrors.New(apperrors.KindResponseSchema,
			fmt.Sprintf("AI response field %q must be between %g and %g", field, min, max))
	}
	return nil
}

func stringList(m map[string]any, field string) error {
	value, ok := m[field]
	if !ok {
		return missingField(field)
	}
	items, ok := value.([]any)
	if !ok {
		return apperrors.New(apperrors.KindResponseSchema,
			fmt.Sprintf("AI response field %q must be an array of strings", field))
	}
	for i, item := range items {
		if _, ok := item.(string); !ok {
			return apperrors.New(apperrors.KindResponseSchema,
				fmt.Sprintf("AI response field %q must be an array of strings (element %d is not a string)", field, i))
		}
	}
	return nil
}
