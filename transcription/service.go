package transcription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/medscribe/logger"
	"github.com/skillsenselab/medscribe/provider"
	"github.com/skillsenselab/medscribe/resilience"
)

const (
	defaultMaxConcurrent = 8
	defaultQueueWait     = 30 * time.Second
)

// ServiceConfig configures the transcription service.
type ServiceConfig struct {
	// PrimaryProvider is the default primary provider id.
	PrimaryProvider string `yaml:"primary_provider" mapstructure:"primary_provider"`
	// FallbackProviders is the ordered fallback chain.
	FallbackProviders []string `yaml:"fallback_providers" mapstructure:"fallback_providers"`
	// AttemptTimeout bounds each provider attempt.
	AttemptTimeout time.Duration `yaml:"attempt_timeout" mapstructure:"attempt_timeout"`
	// CacheTTL bounds result cache entries. Zero uses the one-hour default.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	// Recovery controls per-provider error recovery.
	Recovery RecoveryConfig `yaml:"recovery" mapstructure:"recovery"`
	// MaxConcurrentRequests bounds in-flight transcriptions; excess callers
	// queue rather than fail.
	MaxConcurrentRequests int `yaml:"max_concurrent_requests" mapstructure:"max_concurrent_requests"`
	// QueueWait is how long a caller may wait for a slot.
	QueueWait time.Duration `yaml:"queue_wait" mapstructure:"queue_wait"`
}

// Service is the transcription facade: it resolves providers, caches
// results, tracks in-flight requests for cancellation, and applies medical
// post-processing.
type Service struct {
	registry *provider.Registry[Provider]
	cache    *ResultCache
	tracker  *RequestTracker
	orch     *Orchestrator
	post     *PostProcessor
	bulkhead *resilience.Bulkhead
	log      *logger.Logger

	tracer  trace.Tracer
	metrics serviceMetrics

	mu      sync.RWMutex
	medical *MedicalContext
}

type serviceMetrics struct {
	requests metric.Int64Counter
	failures metric.Int64Counter
	hits     metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewService creates a transcription service over the given registry.
func NewService(registry *provider.Registry[Provider], cfg ServiceConfig) *Service {
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = defaultMaxConcurrent
	}
	if cfg.QueueWait <= 0 {
		cfg.QueueWait = defaultQueueWait
	}

	meter := otel.Meter("medscribe/transcription")
	requests, _ := meter.Int64Counter("transcription.requests")
	failures, _ := meter.Int64Counter("transcription.failures")
	hits, _ := meter.Int64Counter("transcription.cache_hits")
	latency, _ := meter.Float64Histogram("transcription.duration_ms")

	return &Service{
		registry: registry,
		cache:    NewResultCache(cfg.CacheTTL),
		tracker:  NewRequestTracker(),
		orch: NewOrchestrator(registry, OrchestratorConfig{
			PrimaryProvider:   cfg.PrimaryProvider,
			FallbackProviders: cfg.FallbackProviders,
			AttemptTimeout:    cfg.AttemptTimeout,
			Recovery:          cfg.Recovery,
		}),
		post: NewPostProcessor(nil),
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "transcription",
			MaxConcurrent: cfg.MaxConcurrentRequests,
			MaxWait:       cfg.QueueWait,
		}),
		log:    logger.Get("transcription"),
		tracer: otel.Tracer("medscribe/transcription"),
		metrics: serviceMetrics{
			requests: requests,
			failures: failures,
			hits:     hits,
			latency:  latency,
		},
	}
}

// SetMedicalContext replaces the session medical context. Requests snapshot
// the context when they start, so a replacement affects only requests that
// begin afterwards.
func (s *Service) SetMedicalContext(mc *MedicalContext) {
	s.mu.Lock()
	s.medical = mc
	s.mu.Unlock()
}

// MedicalContext returns the current session context snapshot.
func (s *Service) MedicalContext() *MedicalContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.medical
}

// TranscribeAudio transcribes raw audio bytes. An empty requestID is
// assigned a fresh one; the effective id is available on the result
// metadata. Results for identical audio and options are served from cache.
func (s *Service) TranscribeAudio(ctx context.Context, requestID string, audio []byte, opts TranscriptionOptions) (*TranscriptionResult, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}

	return resilience.ExecuteWithResult(s.bulkhead, ctx, func() (*TranscriptionResult, error) {
		return s.transcribe(ctx, requestID, audio, opts)
	})
}

func (s *Service) transcribe(ctx context.Context, requestID string, audio []byte, opts TranscriptionOptions) (*TranscriptionResult, error) {
	started := time.Now()

	ctx, span := s.tracer.Start(ctx, "transcription.transcribe",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.Int("audio.bytes", len(audio)),
			attribute.Bool("medical_mode", opts.MedicalMode),
		))
	defer span.End()

	s.metrics.requests.Add(ctx, 1)

	key := CacheKey(audio, opts)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.hits.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.log.Debug("cache hit", logger.Fields(
			logger.FieldRequestID, requestID,
			logger.FieldProvider, cached.Provider,
		))
		return cached, nil
	}

	if opts.MedicalMode && len(opts.BoostTerms) == 0 {
		opts.BoostTerms = BoostTerms(s.post.vocab)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.tracker.Track(requestID, cancel)
	defer s.tracker.Untrack(requestID)

	req := TranscriptionRequest{
		Audio:   audio,
		Options: opts,
		Medical: s.MedicalContext(),
	}

	result, err := s.orch.Run(reqCtx, req)
	elapsed := time.Since(started)
	s.metrics.latency.Record(ctx, float64(elapsed.Milliseconds()))

	if err != nil {
		s.metrics.failures.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transcription failed")
		s.log.Error("transcription failed", logger.Fields(
			logger.FieldRequestID, requestID,
			logger.FieldDuration, elapsed.Milliseconds(),
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	if opts.MedicalMode {
		result = s.post.Process(result, opts)
	}
	result = s.finalize(result, requestID, elapsed)

	// A cancelled request must leave no trace in the cache: its result may
	// be partial.
	if reqCtx.Err() == nil {
		s.cache.Put(key, result)
	}

	span.SetAttributes(attribute.String("provider", result.Provider))
	s.log.Info("transcription complete", logger.Fields(
		logger.FieldRequestID, requestID,
		logger.FieldProvider, result.Provider,
		logger.FieldDuration, elapsed.Milliseconds(),
		"words", result.Metadata.WordCount,
		"confidence", result.Metadata.AverageConfidence,
	))
	return result, nil
}

// finalize stamps processing metadata onto a copy of the result.
func (s *Service) finalize(result *TranscriptionResult, requestID string, elapsed time.Duration) *TranscriptionResult {
	final := *result
	final.Metadata.RequestID = requestID
	final.Metadata.ProcessingTime = elapsed
	final.Metadata.WordCount = len(final.Words)
	final.Metadata.CharCount = len(final.Transcript)
	final.Metadata.AverageConfidence = averageConfidence(&final)
	final.Metadata.Timestamp = time.Now().UTC()
	return &final
}

func averageConfidence(result *TranscriptionResult) float64 {
	if len(result.Words) == 0 {
		return result.Confidence
	}
	sum := 0.0
	for _, w := range result.Words {
		sum += w.Confidence
	}
	return sum / float64(len(result.Words))
}

// AbortRequest cancels an in-flight request by id. Returns false for
// unknown or already-finished ids.
func (s *Service) AbortRequest(requestID string) bool {
	aborted := s.tracker.Cancel(requestID)
	if aborted {
		s.log.Info("request aborted", logger.Fields(logger.FieldRequestID, requestID))
	}
	return aborted
}

// AbortAllRequests cancels every in-flight request. Used on shutdown.
func (s *Service) AbortAllRequests() {
	n := s.tracker.Len()
	s.tracker.CancelAll()
	if n > 0 {
		s.log.Info("aborted all in-flight requests", logger.Fields("count", n))
	}
}

// InFlight returns the number of tracked requests.
func (s *Service) InFlight() int { return s.tracker.Len() }

// ProviderStatus reports availability per registered provider.
func (s *Service) ProviderStatus(ctx context.Context) map[string]bool {
	return s.registry.Status(ctx)
}

// Providers returns the sorted ids of registered providers.
func (s *Service) Providers() []string { return s.registry.Names() }

// CacheSize returns the number of cached results.
func (s *Service) CacheSize() int { return s.cache.Size() }

// ClearCache drops all cached results.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.log.Info("result cache cleared")
}
