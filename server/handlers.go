package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/medscribe/analytics"
	apperrors "github.com/skillsenselab/medscribe/errors"
	"github.com/skillsenselab/medscribe/logger"
	"github.com/skillsenselab/medscribe/resilience"
	"github.com/skillsenselab/medscribe/server/middleware"
	"github.com/skillsenselab/medscribe/transcription"
	"github.com/skillsenselab/medscribe/validation"
)

// Handlers bundles the REST handlers for the transcription and analytics
// endpoints.
type Handlers struct {
	service  *transcription.Service
	analyzer *analytics.Analyzer
	log      *logger.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(service *transcription.Service, analyzer *analytics.Analyzer) *Handlers {
	return &Handlers{
		service:  service,
		analyzer: analyzer,
		log:      logger.Get("handlers"),
	}
}

// Register mounts all routes on the Gin engine.
func (h *Handlers) Register(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/transcriptions", h.Transcribe)
		api.DELETE("/transcriptions", h.AbortAll)
		api.DELETE("/transcriptions/:id", h.Abort)

		api.GET("/providers", h.Providers)

		api.GET("/cache", h.CacheInfo)
		api.DELETE("/cache", h.ClearCache)

		api.GET("/context", h.GetMedicalContext)
		api.PUT("/context", h.SetMedicalContext)

		api.POST("/analytics/analyze-labs", h.AnalyzeLabs)
		api.POST("/analytics/detect-outliers", h.DetectOutliers)
		api.POST("/analytics/risk-assessment", h.AssessRisk)
		api.POST("/analytics/generate-insights", h.GenerateInsights)
	}
}

// Health reports service health including per-provider availability.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "medscribe",
		"providers": h.service.ProviderStatus(c.Request.Context()),
		"in_flight": h.service.InFlight(),
		"cached":    h.service.CacheSize(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// transcribeRequest is the JSON body for POST /api/transcriptions. Audio
// arrives base64-encoded; decoding happens here so the core only ever sees
// raw bytes.
type transcribeRequest struct {
	RequestID string                             `json:"request_id"`
	Audio     string                             `json:"audio"`
	Options   transcription.TranscriptionOptions `json:"options"`
}

// Transcribe runs a transcription request through the provider chain.
func (h *Handlers) Transcribe(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("body", "malformed JSON request body"))
		return
	}

	if err := validation.New().
		Required("audio", req.Audio).
		Base64("audio", req.Audio).
		OptionalUUID("request_id", req.RequestID).
		Validate(); err != nil {
		RespondWithError(c, err)
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("audio", "audio must be base64-encoded"))
		return
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = c.GetString(middleware.RequestIDKey)
	}

	result, err := h.service.TranscribeAudio(c.Request.Context(), requestID, audio, req.Options)
	if err != nil {
		RespondWithError(c, transcriptionError(err))
		return
	}
	RespondOK(c, result)
}

// Abort cancels a single in-flight transcription request.
func (h *Handlers) Abort(c *gin.Context) {
	id := c.Param("id")
	if !h.service.AbortRequest(id) {
		RespondWithError(c, apperrors.NotFound("transcription request", id))
		return
	}
	h.log.Info("Transcription aborted", logger.Fields("request_id", id))
	RespondOK(c, gin.H{"aborted": id})
}

// AbortAll cancels every in-flight transcription request.
func (h *Handlers) AbortAll(c *gin.Context) {
	h.service.AbortAllRequests()
	RespondNoContent(c)
}

// Providers reports availability for every registered provider.
func (h *Handlers) Providers(c *gin.Context) {
	RespondOK(c, gin.H{
		"providers": h.service.ProviderStatus(c.Request.Context()),
	})
}

// CacheInfo reports the number of cached transcription results.
func (h *Handlers) CacheInfo(c *gin.Context) {
	RespondOK(c, gin.H{"entries": h.service.CacheSize()})
}

// ClearCache drops all cached transcription results.
func (h *Handlers) ClearCache(c *gin.Context) {
	h.service.ClearCache()
	RespondNoContent(c)
}

// GetMedicalContext returns the session-scoped medical context, or an empty
// object when none is set.
func (h *Handlers) GetMedicalContext(c *gin.Context) {
	mc := h.service.MedicalContext()
	if mc == nil {
		mc = &transcription.MedicalContext{}
	}
	RespondOK(c, mc)
}

// SetMedicalContext replaces the session-scoped medical context. Subsequent
// transcription requests pick up the new context.
func (h *Handlers) SetMedicalContext(c *gin.Context) {
	var mc transcription.MedicalContext
	if err := c.ShouldBindJSON(&mc); err != nil {
		RespondWithError(c, apperrors.InvalidInput("body", "malformed JSON request body"))
		return
	}
	h.service.SetMedicalContext(&mc)
	RespondNoContent(c)
}

// AnalyzeLabs analyzes lab values against their reference ranges.
func (h *Handlers) AnalyzeLabs(c *gin.Context) {
	req, ok := h.bindAnalysisRequest(c)
	if !ok {
		return
	}
	RespondOK(c, h.analyzer.AnalyzeLabs(req))
}

// DetectOutliers finds statistical outliers among the submitted lab values.
func (h *Handlers) DetectOutliers(c *gin.Context) {
	req, ok := h.bindAnalysisRequest(c)
	if !ok {
		return
	}
	RespondOK(c, h.analyzer.DetectOutliers(req))
}

// AssessRisk scores condition-specific risk from the submitted lab values.
func (h *Handlers) AssessRisk(c *gin.Context) {
	req, ok := h.bindAnalysisRequest(c)
	if !ok {
		return
	}
	RespondOK(c, h.analyzer.AssessRisk(req))
}

// GenerateInsights produces the combined analytics report.
func (h *Handlers) GenerateInsights(c *gin.Context) {
	req, ok := h.bindAnalysisRequest(c)
	if !ok {
		return
	}
	RespondOK(c, h.analyzer.GenerateInsights(req))
}

func (h *Handlers) bindAnalysisRequest(c *gin.Context) (analytics.AnalysisRequest, bool) {
	var req analytics.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.InvalidInput("body", "malformed JSON request body"))
		return req, false
	}
	if err := validation.ValidateStruct(req); err != nil {
		RespondWithError(c, err)
		return req, false
	}
	return req, true
}

// transcriptionError maps core transcription failures onto transport errors.
func transcriptionError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}

	var apf *transcription.AllProvidersFailedError
	if errors.As(err, &apf) {
		appErr := apperrors.ServiceUnavailable("transcription service").WithCause(err)
		if len(apf.Attempted) > 0 {
			appErr.WithDetail("attempted", apf.Attempted)
		}
		return appErr
	}

	if errors.Is(err, resilience.ErrBulkheadFull) || errors.Is(err, resilience.ErrBulkheadTimeout) {
		return apperrors.RateLimited().WithCause(err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("transcription").WithCause(err)
	}

	return apperrors.Internal(err)
}
