package models

import "encoding/json"

// AnalysisResult is the structured assessment produced by the AI for one
// resume / job-description pair. Raw holds the cleaned JSON document exactly
// as the model returned it (after fence stripping and validation) so the
// endpoint can pass it through unmodified.
type AnalysisResult struct {
	ATSScore        int            `json:"atsScore"`
	Summary         string         `json:"summary"`
	CategoryScores  CategoryScores `json:"categoryScores"`
	Strengths       []string       `json:"strengths"`
	Weaknesses      []string       `json:"weaknesses"`
	Recommendations []string       `json:"recommendations"`

	Raw json.RawMessage `json:"-"`
}

// CategoryScores breaks the match down into the four rubric categories,
// each scored 0-5.
type CategoryScores struct {
	HardSkills     float64 `json:"hardSkills"`
	SoftSkills     float64 `json:"softSkills"`
	Experience     float64 `json:"experience"`
	Qualifications float64 `json:"qualifications"`
}
