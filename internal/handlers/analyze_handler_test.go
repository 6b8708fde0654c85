package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/metrics"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const analysisJSON = `{
    "atsScore": 78,
    "summary": "Close match for the role with minor gaps.",
    "categoryScores": {
        "hardSkills": 4,
        "softSkills": 3,
        "experience": 4,
        "qualifications": 3.5
    },
    "strengths": ["Python and SQL depth", "Relevant domain", "Team leadership"],
    "weaknesses": ["No AWS certification", "Sparse metrics", "Short summary"],
    "recommendations": ["Quantify achievements", "Add certifications", "Tighten the summary"]
}`

var resumeParagraphs = []string{
	"Jane Doe, Senior Python Engineer",
	"Seven years of experience with Python, PostgreSQL and AWS across data-heavy products.",
	"Led a team of four building a real-time analytics pipeline.",
}

type fakeAnalyzer struct {
	configured   bool
	result       *models.AnalysisResult
	err          error
	calls        int
	lastFilename string
	lastJob      string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, filename string, data []byte, jobDescription string) (*models.AnalysisResult, error) {
	f.calls++
	f.lastFilename = filename
	f.lastJob = jobDescription
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAnalyzer) Configured() bool { return f.configured }

type stubGemini struct {
	response   string
	calls      int
	lastPrompt string
}

func (s *stubGemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	return s.response, nil
}

func (s *stubGemini) ModelName() string { return "stub-model" }

func newTestApp(analyzer services.AnalyzerService) *fiber.App {
	log := zap.NewNop()
	app := fiber.New(fiber.Config{
		ErrorHandler: NewErrorHandler(log),
	})
	RegisterRoutes(app,
		NewAnalyzeHandler(analyzer, metrics.New(), log),
		NewSystemHandler("1.0.0", analyzer.Configured()),
	)
	return app
}

// newAnalyzeRequest assembles the multipart form. An empty filename skips the
// file part, an empty job description skips that field.
func newAnalyzeRequest(t *testing.T, filename string, fileData []byte, jobDescription string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("resumeFile", filename)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	if jobDescription != "" {
		if err := writer.WriteField("jobDescription", jobDescription); err != nil {
			t.Fatalf("writing job description: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/resume/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeDetail(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body.Detail
}

func TestHandleAnalyzePipeline(t *testing.T) {
	gemini := &stubGemini{response: "```json\n" + analysisJSON + "\n```"}
	analyzer := services.NewAnalyzerService(
		services.NewTextExtractor(), services.NewPromptBuilder(), gemini, zap.NewNop())
	app := newTestApp(analyzer)

	req := newAnalyzeRequest(t, "resume.docx", buildDOCX(t, resumeParagraphs),
		"Senior Python engineer, SQL and AWS required")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if got, want := string(body), strings.TrimSpace(analysisJSON); got != want {
		t.Errorf("body is not the model payload unchanged:\ngot  %s\nwant %s", got, want)
	}

	if gemini.calls != 1 {
		t.Errorf("generator called %d times, want 1", gemini.calls)
	}
	if !strings.Contains(gemini.lastPrompt, "Senior Python engineer, SQL and AWS required") {
		t.Error("prompt is missing the job description")
	}
	if !strings.Contains(gemini.lastPrompt, "Jane Doe, Senior Python Engineer") {
		t.Error("prompt is missing the extracted resume text")
	}
}

func TestHandleAnalyzeMissingFile(t *testing.T) {
	fake := &fakeAnalyzer{configured: true}
	app := newTestApp(fake)

	resp, err := app.Test(newAnalyzeRequest(t, "", nil, "a job description"), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if detail := decodeDetail(t, resp); detail != "Resume file is required" {
		t.Errorf("detail = %q", detail)
	}
	if fake.calls != 0 {
		t.Errorf("analyzer called %d times, want 0", fake.calls)
	}
}

func TestHandleAnalyzeMissingJobDescription(t *testing.T) {
	fake := &fakeAnalyzer{configured: true}
	app := newTestApp(fake)

	for name, jobDescription := range map[string]string{
		"absent":          "",
		"whitespace only": "   \n\t ",
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(newAnalyzeRequest(t, "resume.pdf", []byte("%PDF"), jobDescription), -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if detail := decodeDetail(t, resp); detail != "Job description is required" {
				t.Errorf("detail = %q", detail)
			}
		})
	}
	if fake.calls != 0 {
		t.Errorf("analyzer called %d times, want 0", fake.calls)
	}
}

func TestHandleAnalyzeUnsupportedExtension(t *testing.T) {
	fake := &fakeAnalyzer{configured: true}
	app := newTestApp(fake)

	resp, err := app.Test(newAnalyzeRequest(t, "resume.txt", []byte("plain text"), "a job"), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if detail := decodeDetail(t, resp); detail != "Invalid file type. Allowed: pdf, docx" {
		t.Errorf("detail = %q", detail)
	}
	if fake.calls != 0 {
		t.Errorf("analyzer called %d times, want 0", fake.calls)
	}
}

func TestHandleAnalyzeNotConfigured(t *testing.T) {
	fake := &fakeAnalyzer{configured: false}
	app := newTestApp(fake)

	resp, err := app.Test(newAnalyzeRequest(t, "resume.pdf", []byte("%PDF"), "a job"), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	want := "Gemini API key not configured. Please add GEMINI_API_KEY to .env file"
	if detail := decodeDetail(t, resp); detail != want {
		t.Errorf("detail = %q", detail)
	}
	if fake.calls != 0 {
		t.Errorf("analyzer called %d times, want 0", fake.calls)
	}
}

func TestHandleAnalyzeInsufficientContent(t *testing.T) {
	fake := &fakeAnalyzer{
		configured: true,
		err: apperrors.New(apperrors.KindInsufficientContent,
			"Could not extract enough text from resume. Please ensure the file is not corrupted or password-protected."),
	}
	app := newTestApp(fake)

	resp, err := app.Test(newAnalyzeRequest(t, "resume.pdf", []byte("%PDF"), "a job"), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if detail := decodeDetail(t, resp); !strings.Contains(detail, "Could not extract enough text") {
		t.Errorf("detail = %q", detail)
	}
}

func TestHandleAnalyzeErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "extraction failure",
			err:        apperrors.New(apperrors.KindExtraction, "Error extracting PDF: bad xref"),
			wantStatus: fiber.StatusBadRequest,
			wantDetail: "Error extracting PDF: bad xref",
		},
		{
			name:       "ai invocation failure",
			err:        apperrors.New(apperrors.KindAIInvocation, "Error calling Gemini AI: quota exceeded"),
			wantStatus: fiber.StatusInternalServerError,
			wantDetail: "Error calling Gemini AI: quota exceeded",
		},
		{
			name:       "unparseable response",
			err:        apperrors.New(apperrors.KindResponseParse, "Failed to parse AI response as JSON: unexpected token"),
			wantStatus: fiber.StatusInternalServerError,
			wantDetail: "Failed to parse AI response as JSON: unexpected token",
		},
		{
			name:       "schema violation",
			err:        apperrors.New(apperrors.KindResponseSchema, `AI response is missing required field "atsScore"`),
			wantStatus: fiber.StatusInternalServerError,
			wantDetail: `AI response is missing required field "atsScore"`,
		},
		{
			name:       "uncategorized error",
			err:        errors.New("boom"),
			wantStatus: fiber.StatusInternalServerError,
			wantDetail: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnalyzer{configured: true, err: tt.err}
			app := newTestApp(fake)

			resp, err := app.Test(newAnalyzeRequest(t, "resume.pdf", []byte("%PDF"), "a job"), -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if detail := decodeDetail(t, resp); detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", detail, tt.wantDetail)
			}
		})
	}
}

func TestHandleAnalyzePassesFormValuesThrough(t *testing.T) {
	fake := &fakeAnalyzer{
		configured: true,
		result:     &models.AnalysisResult{ATSScore: 50, Raw: json.RawMessage(`{"atsScore":50}`)},
	}
	app := newTestApp(fake)

	resp, err := app.Test(newAnalyzeRequest(t, "My Resume.PDF", []byte("%PDF data"), "  surrounded by spaces  "), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if fake.lastFilename != "My Resume.PDF" {
		t.Errorf("filename = %q, want the original name", fake.lastFilename)
	}
	if fake.lastJob != "surrounded by spaces" {
		t.Errorf("job description = %q, want it trimmed", fake.lastJob)
	}
}

func TestHandleRoot(t *testing.T) {
	app := newTestApp(&fakeAnalyzer{configured: true})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var info models.ServiceInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if info.Message != "AI Resume Analyzer API" || info.Status != "running" || info.Version != "1.0.0" {
		t.Errorf("unexpected service info: %+v", info)
	}
	if info.Endpoints["health"] != "/api/resume/health" {
		t.Errorf("health endpoint = %q", info.Endpoints["health"])
	}
	if info.Endpoints["analyze"] != "/api/resume/analyze (POST)" {
		t.Errorf("analyze endpoint = %q", info.Endpoints["analyze"])
	}
}

func TestHandleHealth(t *testing.T) {
	for _, configured := range []bool{true, false} {
		app := newTestApp(&fakeAnalyzer{configured: configured})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/resume/health", nil), -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200 regardless of configuration", resp.StatusCode)
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("reading body: %v", err)
		}

		var health models.HealthStatus
		if err := json.Unmarshal(raw, &health); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if health.Status != "healthy" || health.Message != "Resume Analyzer API is running!" {
			t.Errorf("unexpected health payload: %+v", health)
		}
		if health.GeminiConfigured != configured {
			t.Errorf("gemini_configured = %v, want %v", health.GeminiConfigured, configured)
		}

		var asMap map[string]any
		if err := json.Unmarshal(raw, &asMap); err != nil {
			t.Fatalf("decoding body as map: %v", err)
		}
		if _, ok := asMap["gemini_configured"]; !ok {
			t.Error("health body should use the gemini_configured key")
		}
	}
}

func TestErrorHandlerRendersDetail(t *testing.T) {
	app := newTestApp(&fakeAnalyzer{configured: true})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if detail := decodeDetail(t, resp); detail == "" {
		t.Error("router errors should still render a detail message")
	}
}

// buildDOCX zips a minimal OOXML document around the given paragraphs.
func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()

	var document strings.Builder
	document.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	document.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		document.WriteString("<w:p><w:r><w:t>")
		document.WriteString(strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(p))
		document.WriteString("</w:t></w:r></w:p>")
	}
	document.WriteString(`</w:body></w:document>`)

	parts := []struct {
		name, content string
	}{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", document.String()},
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, part := range parts {
		f, err := writer.Create(part.name)
		if err != nil {
			t.Fatalf("creating %s: %v", part.name, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			t.Fatalf("writing %s: %v", part.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	return buf.Bytes()
}
