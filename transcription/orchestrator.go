package transcription

import (
	"context"
	"time"

	"github.com/skillsenselab/medscribe/logger"
	"github.com/skillsenselab/medscribe/provider"
)

const (
	defaultAttemptTimeout = 60 * time.Second
	defaultRateLimitDelay = time.Second
)

// RecoveryConfig controls per-provider error recovery between fallback
// attempts.
type RecoveryConfig struct {
	// Enabled turns recovery on. When off, any failure advances straight to
	// the next provider.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// RateLimitDelay is the fixed wait before the single retry of a
	// rate_limited failure.
	RateLimitDelay time.Duration `yaml:"rate_limit_delay" mapstructure:"rate_limit_delay"`
}

// OrchestratorConfig configures the fallback orchestrator.
type OrchestratorConfig struct {
	// PrimaryProvider is the service-level default primary.
	PrimaryProvider string
	// FallbackProviders is the ordered fallback chain. The order is stable:
	// it is never reordered on past success or failure, because provider
	// choice affects medical transcription accuracy, not just latency.
	FallbackProviders []string
	// AttemptTimeout bounds each provider attempt unless the call's options
	// override it.
	AttemptTimeout time.Duration
	// Recovery controls error recovery between attempts.
	Recovery RecoveryConfig
}

// Orchestrator attempts a primary provider, then each configured fallback in
// order, until one succeeds or all are exhausted. Attempts are strictly
// sequential; providers are never raced.
type Orchestrator struct {
	registry *provider.Registry[Provider]
	cfg      OrchestratorConfig
	log      *logger.Logger
}

// NewOrchestrator creates an orchestrator over the given provider registry.
func NewOrchestrator(registry *provider.Registry[Provider], cfg OrchestratorConfig) *Orchestrator {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	if cfg.Recovery.RateLimitDelay <= 0 {
		cfg.Recovery.RateLimitDelay = defaultRateLimitDelay
	}
	return &Orchestrator{
		registry: registry,
		cfg:      cfg,
		log:      logger.Get("orchestrator"),
	}
}

// Run drives the request through the attempt order. On success the result is
// tagged with the provider that produced it. When every provider is skipped
// or fails, it returns *AllProvidersFailedError naming the attempted
// providers and the last underlying error.
func (o *Orchestrator) Run(ctx context.Context, req TranscriptionRequest) (*TranscriptionResult, error) {
	order := o.attemptOrder(req.Options)

	var attempted []string
	var lastErr error

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, ok := o.registry.Get(name)
		if !ok {
			o.log.Debug("provider not registered, skipping", logger.Fields(
				logger.FieldProvider, name,
			))
			continue
		}

		attempted = append(attempted, name)

		result, err := o.attempt(ctx, p, req, o.attemptTimeout(req.Options))
		if err == nil {
			return tagProvider(result, name), nil
		}

		if recovered, rerr := o.recover(ctx, p, req, err); rerr == nil && recovered != nil {
			return tagProvider(recovered, name), nil
		} else if rerr != nil {
			err = rerr
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		o.log.Warn("provider attempt failed, advancing", logger.Fields(
			logger.FieldProvider, name,
			"category", string(CategoryOf(err)),
			logger.FieldError, err.Error(),
		))
	}

	return nil, &AllProvidersFailedError{Attempted: attempted, LastErr: lastErr}
}

// attemptOrder builds the de-duplicated provider order for a call: the
// per-call provider (or the configured primary), the per-call explicit
// fallback, then the configured fallback chain, preserving first occurrence.
func (o *Orchestrator) attemptOrder(opts TranscriptionOptions) []string {
	primary := opts.Provider
	if primary == "" {
		primary = o.cfg.PrimaryProvider
	}

	candidates := make([]string, 0, len(o.cfg.FallbackProviders)+2)
	candidates = append(candidates, primary)
	if opts.FallbackProvider != "" {
		candidates = append(candidates, opts.FallbackProvider)
	}
	candidates = append(candidates, o.cfg.FallbackProviders...)

	seen := make(map[string]bool, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, name)
	}
	return order
}

func (o *Orchestrator) attemptTimeout(opts TranscriptionOptions) time.Duration {
	if opts.AttemptTimeout > 0 {
		return opts.AttemptTimeout
	}
	return o.cfg.AttemptTimeout
}

// attempt invokes a single provider under a bounded timeout.
func (o *Orchestrator) attempt(ctx context.Context, p Provider, req TranscriptionRequest, timeout time.Duration) (*TranscriptionResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Transcribe(attemptCtx, req)
}

// recover applies at most one recovery retry for a failed provider:
// rate_limited waits a fixed delay and retries with the same timeout;
// network retries with the timeout doubled. Any other category, or a second
// failure, is a hard failure for that provider. Returns (nil, nil) when no
// recovery applies, (result, nil) on recovered success, and (nil, err) with
// the retry's error otherwise.
func (o *Orchestrator) recover(ctx context.Context, p Provider, req TranscriptionRequest, attemptErr error) (*TranscriptionResult, error) {
	if !o.cfg.Recovery.Enabled || req.Options.MaxRetries < 0 {
		return nil, nil
	}

	timeout := o.attemptTimeout(req.Options)

	switch CategoryOf(attemptErr) {
	case CategoryRateLimited:
		o.log.Info("rate limited, backing off before retry", logger.Fields(
			logger.FieldProvider, p.Name(),
			"delay_ms", o.cfg.Recovery.RateLimitDelay.Milliseconds(),
		))
		timer := time.NewTimer(o.cfg.Recovery.RateLimitDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	case CategoryNetwork:
		o.log.Info("network failure, retrying with relaxed timeout", logger.Fields(
			logger.FieldProvider, p.Name(),
			"timeout_ms", (2*timeout).Milliseconds(),
		))
		timeout = 2 * timeout
	default:
		return nil, nil
	}

	result, err := o.attempt(ctx, p, req, timeout)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// tagProvider stamps the winning provider id onto a copy of the result, so
// the reported provider always belongs to the attempt that produced the
// transcript.
func tagProvider(result *TranscriptionResult, name string) *TranscriptionResult {
	tagged := *result
	tagged.Provider = name
	return &tagged
}
