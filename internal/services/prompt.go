package services

import "fmt"

// PromptBuilder assembles prompts for the AI. Building is a pure function of
// its inputs, so identical requests always produce identical prompts.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt embeds the resume text and the job description into
// the ATS analysis template. The template is the entire steering mechanism
// for the response shape; conformance is checked at parse time, not here.
func (pb *PromptBuilder) BuildAnalysisPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`You are an expert ATS (Applicant Tracking System) analyzer and career consultant. 
Analyze the following resume against the job description and provide a comprehensive analysis.

RESUME CONTENT:
%s

JOB DESCRIPTION:
%s

Provide your analysis in the following JSON format (respond ONLY with valid JSON, no markdown, no extra text):

{
    "atsScore": <number between 0-100>,
    "summary": "<2-3 sentence summary of candidate's fit for the role>",
    "categoryScores": {
        "hardSkills": <score 0-5>,
        "softSkills": <score 0-5>,
        "experience": <score 0-5>,
        "qualifications": <score 0-5>
    },
    "strengths": [
        "<strength 1>",
        "<strength 2>",
        "<strength 3>"
    ],
    "weaknesses": [
        "<weakness 1>",
        "<weakness 2>",
        "<weakness 3>"
    ],
    "recommendations": [
        "<actionable recommendation 1>",
        "<actionable recommendation 2>",
        "<actionable recommendation 3>"
    ]
}

ANALYSIS CRITERIA:
- ATS Score: Overall match percentage (0-100)
- Hard Skills: Technical skills match (0-5)
- Soft Skills: Communication, leadership, teamwork (0-5)
- Experience: Relevant work experience (0-5)
- Qualifications: Education and certifications (0-5)
- Strengths: Top 3 positive highlights
- Weaknesses: Top 3 areas for improvement
- Recommendations: Top 3 actionable suggestions to improve the resume

Be honest, constructive, and specific in your analysis.
`, resumeText, jobDescription)
}
