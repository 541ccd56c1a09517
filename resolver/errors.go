// Package resolver implements the tiered provider-resolution engine:
// an ordered-fallback loop over registered providers, per-provider quota
// tracking over rolling windows, and a guaranteed synthetic fallback.
package resolver

import "errors"

// ErrQuotaSignal is the sentinel providers wrap when the upstream API
// itself reports a rate-limit condition. The resolver reacts by marking the
// provider exhausted for the remainder of its window, regardless of the
// locally tracked call count.
var ErrQuotaSignal = errors.New("provider signaled quota exhaustion")

// IsQuotaSignal reports whether err carries an explicit quota signal.
// Every other non-nil handler error is a soft failure: the resolver logs it
// and moves on to the next provider without retrying.
func IsQuotaSignal(err error) bool {
	return errors.Is(err, ErrQuotaSignal)
}
