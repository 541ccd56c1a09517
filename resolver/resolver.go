package resolver

import (
	"context"
	"time"

	"fintech-analyst/models"
	"fintech-analyst/observability"
)

// Outcome is the result of one resolution: the payload, the provider that
// produced it (or "synthetic"), its quality flag, and the time spent.
type Outcome[T any] struct {
	Payload  T
	Provider string
	Quality  models.DataQuality
	Latency  time.Duration
}

// Fallback produces a synthetic payload when every real provider is
// blocked or failed. It must not fail.
type Fallback[R, T any] func(req R) T

// Resolver walks a registry in priority order, consulting the quota
// tracker, invoking handlers under bounded timeouts, and classifying each
// outcome. First success wins; total failure is masked by the fallback.
type Resolver[R, T any] struct {
	registry *Registry[R, T]
	quotas   *QuotaTracker
	fallback Fallback[R, T]
}

// New creates a resolver over the given registry.
func New[R, T any](registry *Registry[R, T], quotas *QuotaTracker, fallback Fallback[R, T]) *Resolver[R, T] {
	return &Resolver[R, T]{
		registry: registry,
		quotas:   quotas,
		fallback: fallback,
	}
}

// Registry returns the underlying provider registry.
func (r *Resolver[R, T]) Registry() *Registry[R, T] {
	return r.registry
}

// Quotas returns the quota tracker the resolver consults.
func (r *Resolver[R, T]) Quotas() *QuotaTracker {
	return r.quotas
}

// Resolve tries each provider in ascending priority order and returns the
// first well-formed payload with quality LIVE. When every provider is
// skipped or fails, or the request deadline has passed, it returns the
// synthetic fallback with quality SIMULATED. Resolve never fails: the
// fallback guarantees a payload.
func (r *Resolver[R, T]) Resolve(ctx context.Context, req R) Outcome[T] {
	metrics := observability.GetMetrics()
	resource := string(r.registry.resource)
	metrics.RecordResolutionRequest(resource)
	start := time.Now()

	for _, e := range r.registry.entries {
		// The request deadline overrides the remaining providers:
		// abandon the walk and degrade rather than wait further.
		if ctx.Err() != nil {
			observability.Warn("request deadline reached during resolution",
				"resource", resource)
			break
		}

		if !r.quotas.CheckAndReserve(e.desc) {
			reason := "quota"
			if !e.desc.Enabled {
				reason = "disabled"
			}
			metrics.RecordProviderSkip(e.desc.ID, reason)
			observability.Debug("provider skipped",
				"provider", e.desc.ID, "reason", reason)
			continue
		}

		payload, err := r.attempt(ctx, e, req)
		if err == nil {
			observability.Info("provider resolved request",
				"provider", e.desc.ID, "resource", resource)
			metrics.ResolutionDuration.WithLabelValues(resource, "live").Observe(time.Since(start).Seconds())
			return Outcome[T]{
				Payload:  payload,
				Provider: e.desc.ID,
				Quality:  models.QualityLive,
				Latency:  time.Since(start),
			}
		}

		if IsQuotaSignal(err) {
			r.quotas.RecordExhaustion(e.desc.ID)
			metrics.RecordQuotaExhaustion(e.desc.ID)
			observability.Warn("provider signaled quota exhaustion, blocked for window",
				"provider", e.desc.ID)
			continue
		}

		// Soft failure: release the reservation and fall through to
		// the next provider without retrying this one.
		r.quotas.Release(e.desc.ID)
		observability.Warn("provider attempt failed, falling back",
			"provider", e.desc.ID, "error", err)
	}

	metrics.RecordSyntheticFallback(resource)
	metrics.ResolutionDuration.WithLabelValues(resource, "simulated").Observe(time.Since(start).Seconds())
	observability.Warn("all providers blocked or failed, using synthetic fallback",
		"resource", resource)

	return Outcome[T]{
		Payload:  r.fallback(req),
		Provider: models.SyntheticSource,
		Quality:  models.QualitySimulated,
		Latency:  time.Since(start),
	}
}

// attempt invokes one handler under the descriptor's per-call timeout,
// capped by whatever remains of the request deadline. On success the
// reservation is committed.
func (r *Resolver[R, T]) attempt(ctx context.Context, e entry[R, T], req R) (T, error) {
	metrics := observability.GetMetrics()

	callCtx := ctx
	var cancel context.CancelFunc
	if e.desc.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, e.desc.Timeout)
		defer cancel()
	}

	start := time.Now()
	payload, err := e.handler(callCtx, req)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		r.quotas.RecordSuccess(e.desc.ID)
		metrics.RecordProviderAttempt(e.desc.ID, "success", elapsed)
	case IsQuotaSignal(err):
		metrics.RecordProviderAttempt(e.desc.ID, "quota_signal", elapsed)
	default:
		metrics.RecordProviderAttempt(e.desc.ID, "soft_failure", elapsed)
	}

	return payload, err
}

// Status reports each registered provider's availability and quota usage.
func (r *Resolver[R, T]) Status() []models.ProviderStatus {
	descs := r.registry.Descriptors()
	statuses := make([]models.ProviderStatus, 0, len(descs))
	for _, d := range descs {
		st := models.ProviderStatus{
			ID:        d.ID,
			Resource:  string(d.Resource),
			Priority:  d.Priority,
			Enabled:   d.Enabled,
			Unlimited: d.Quota.Unlimited,
		}
		if !d.Quota.Unlimited {
			usage := r.quotas.Usage(d)
			st.CallsUsed = usage.Used
			st.CallCap = usage.Cap
			st.Exhausted = usage.Exhausted
		}
		statuses = append(statuses, st)
	}
	return statuses
}
