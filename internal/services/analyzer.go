package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
)

// minResumeChars is the shortest extracted text worth analyzing; anything
// below it indicates a corrupt, scanned-image or empty document.
const minResumeChars = 50

type AnalyzerService interface {
	Analyze(ctx context.Context, filename string, data []byte, jobDescription string) (*models.AnalysisResult, error)
	Configured() bool
}

type analyzerService struct {
	extractor     TextExtractor
	promptBuilder *PromptBuilder
	gemini        GeminiService // nil when GEMINI_API_KEY is absent
	log           *zap.Logger
}

func NewAnalyzerService(
	extractor TextExtractor,
	promptBuilder *PromptBuilder,
	gemini GeminiService,
	log *zap.Logger,
) AnalyzerService {
	return &analyzerService{
		extractor:     extractor,
		promptBuilder: promptBuilder,
		gemini:        gemini,
		log:           log,
	}
}

// Configured implements AnalyzerService. It reports whether an AI credential
// was present at startup.
func (s *analyzerService) Configured() bool {
	return s.gemini != nil
}

// Analyze implements AnalyzerService. The pipeline is strictly sequential:
// extract, gate on length, build prompt, invoke the AI, parse. Any failure
// aborts the request; nothing is retried.
func (s *analyzerService) Analyze(ctx context.Context, filename string, data []byte, jobDescription string) (*models.AnalysisResult, error) {
	if s.gemini == nil {
		return nil, apperrors.New(apperrors.KindConfiguration,
			"Gemini API key not configured. Please add GEMINI_API_KEY to .env file")
	}

	text, err := s.extractor.Extract(filename, data)
	if err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(text) < minResumeChars {
		return nil, apperrors.New(apperrors.KindInsufficientContent,
			"Could not extract enough text from resume. Please ensure the file is not corrupted or password-protected.")
	}

	s.log.Debug("extracted resume text",
		zap.String("filename", filename),
		zap.Int("chars", utf8.RuneCountInString(text)))

	prompt := s.promptBuilder.BuildAnalysisPrompt(text, jobDescription)

	response, err := s.gemini.GenerateText(ctx, prompt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindAIInvocation,
			fmt.Sprintf("Error calling Gemini AI: %v", err), err)
	}

	s.log.Debug("gemini response received",
		zap.String("model", s.gemini.ModelName()),
		zap.Int("chars", len(response)))

	result, err := parseAnalysisResponse(response)
	if err != nil {
		s.log.Error("unusable gemini response",
			zap.Error(err),
			zap.String("response_preview", logger.TruncateForLog(response, 500)))
		s.log.Debug("full gemini response", zap.String("response", response))
		return nil, err
	}

	return result, nil
}
