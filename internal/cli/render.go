package cli

import (
	"fmt"
	"io"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const categoryScale = 5

// renderResult prints the human-readable report for one analysis.
func renderResult(w io.Writer, result *models.AnalysisResult) {
	fmt.Fprintf(w, "\nATS Score: %d/100 (%s)\n", result.ATSScore, verdict(result.ATSScore))
	fmt.Fprintf(w, "%s\n\n", scoreBar(float64(result.ATSScore), 100, 40))

	if result.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", result.Summary)
	}

	fmt.Fprintln(w, "Category scores:")
	categories := []struct {
		name  string
		score float64
	}{
		{"Hard skills", result.CategoryScores.HardSkills},
		{"Soft skills", result.CategoryScores.SoftSkills},
		{"Experience", result.CategoryScores.Experience},
		{"Qualifications", result.CategoryScores.Qualifications},
	}
	for _, category := range categories {
		fmt.Fprintf(w, "  %-15s %s %.1f/%d\n",
			category.name, scoreBar(category.score, categoryScale, 10), category.score, categoryScale)
	}

	writeList(w, "Strengths", result.Strengths)
	writeList(w, "Areas for improvement", result.Weaknesses)
	writeList(w, "Recommendations", result.Recommendations)
}

// verdict buckets the score for the headline of the report.
func verdict(score int) string {
	switch {
	case score >= 80:
		return "excellent match"
	case score >= 60:
		return "good match"
	default:
		return "needs work"
	}
}

func scoreBar(value, max float64, width int) string {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	filled := int(value / max * float64(width))

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s:\n", title)
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
}
