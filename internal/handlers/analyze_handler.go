package handlers

import (
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/metrics"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// AnalyzeHandler serves POST /api/resume/analyze.
type AnalyzeHandler struct {
	analyzer services.AnalyzerService
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewAnalyzeHandler(analyzer services.AnalyzerService, m *metrics.Metrics, log *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		metrics:  m,
		log:      log,
	}
}

// HandleAnalyze validates the multipart form, runs the analysis pipeline and
// returns the model's JSON payload unchanged.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	start := time.Now()

	if !h.analyzer.Configured() {
		return h.fail(c, start, apperrors.New(apperrors.KindConfiguration,
			"Gemini API key not configured. Please add GEMINI_API_KEY to .env file"))
	}

	jobDescription := strings.TrimSpace(c.FormValue("jobDescription"))
	if jobDescription == "" {
		return h.fail(c, start, apperrors.New(apperrors.KindValidation, "Job description is required"))
	}

	fileHeader, err := c.FormFile("resumeFile")
	if err != nil {
		return h.fail(c, start, apperrors.New(apperrors.KindValidation, "Resume file is required"))
	}

	if !services.IsSupportedFormat(fileHeader.Filename) {
		return h.fail(c, start, apperrors.New(apperrors.KindValidation,
			"Invalid file type. Allowed: "+strings.Join(services.SupportedFormats(), ", ")))
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return h.fail(c, start, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
	}
	h.metrics.ObserveUploadBytes(len(data))

	h.log.Info("analysis requested",
		zap.String("request_id", requestID(c)),
		zap.String("filename", fileHeader.Filename),
		zap.Int("size_bytes", len(data)),
	)

	result, err := h.analyzer.Analyze(c.UserContext(), fileHeader.Filename, data, jobDescription)
	if err != nil {
		return h.fail(c, start, err)
	}

	h.metrics.ObserveAnalysis(metrics.OutcomeSuccess, time.Since(start))
	h.log.Info("analysis completed",
		zap.String("request_id", requestID(c)),
		zap.Int("ats_score", result.ATSScore),
		zap.Duration("duration", time.Since(start)),
	)

	return c.Status(fiber.StatusOK).Type("json").Send(result.Raw)
}

// fail maps a pipeline error onto the HTTP response, the metrics outcome and
// the log stream. Client faults log at warn, server faults at error.
func (h *AnalyzeHandler) fail(c *fiber.Ctx, start time.Time, err error) error {
	status := apperrors.HTTPStatus(err)
	detail := apperrors.Detail(err)
	outcome := apperrors.KindOf(err).String()

	h.metrics.ObserveAnalysis(outcome, time.Since(start))

	fields := []zap.Field{
		zap.String("request_id", requestID(c)),
		zap.String("kind", outcome),
		zap.String("detail", detail),
	}
	if status >= fiber.StatusInternalServerError {
		h.log.Error("analysis failed", append(fields, zap.Error(err))...)
	} else {
		h.log.Warn("analysis rejected", fields...)
	}

	return c.Status(status).JSON(models.ErrorResponse{Detail: detail})
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
