package resolver

import (
	"sync"
	"time"
)

// DefaultQuotaWindow is the window length used when a capped policy does
// not specify one. It matches the calendar-day budgets the quote APIs
// advertise.
const DefaultQuotaWindow = 24 * time.Hour

// QuotaPolicy describes a provider's consumption budget.
type QuotaPolicy struct {
	Unlimited bool
	Cap       int
	Window    time.Duration
}

// Unlimited returns a policy with no call budget.
func UnlimitedQuota() QuotaPolicy {
	return QuotaPolicy{Unlimited: true}
}

// CappedDaily returns a policy allowing cap calls per 24h window.
func CappedDaily(cap int) QuotaPolicy {
	return QuotaPolicy{Cap: cap, Window: DefaultQuotaWindow}
}

func (p QuotaPolicy) window() time.Duration {
	if p.Window <= 0 {
		return DefaultQuotaWindow
	}
	return p.Window
}

// quotaState tracks one provider's consumption within the current window.
// held counts reservations placed by CheckAndReserve that have not yet been
// committed by RecordSuccess or dropped by Release; counting count+held
// against the cap keeps overlapping requests from exceeding it.
type quotaState struct {
	windowStart time.Time
	window      time.Duration
	count       int
	held        int
	exhausted   bool
}

// QuotaTracker tracks per-provider consumption budgets over rolling
// windows. It is the only process-wide mutable state in the resolver and is
// safe for concurrent use. The clock is injectable so window rollover is
// testable without waiting out a day.
type QuotaTracker struct {
	mu     sync.Mutex
	states map[string]*quotaState
	now    func() time.Time
}

// NewQuotaTracker creates a tracker on the wall clock.
func NewQuotaTracker() *QuotaTracker {
	return NewQuotaTrackerWithClock(time.Now)
}

// NewQuotaTrackerWithClock creates a tracker with an injected clock.
func NewQuotaTrackerWithClock(now func() time.Time) *QuotaTracker {
	return &QuotaTracker{
		states: make(map[string]*quotaState),
		now:    now,
	}
}

// CheckAndReserve reports whether the provider may be invoked right now.
// A false result never consumes budget. For capped providers a true result
// places an in-flight hold that the caller must settle with RecordSuccess,
// Release, or RecordExhaustion.
func (t *QuotaTracker) CheckAndReserve(desc Descriptor) bool {
	if !desc.Enabled {
		return false
	}
	if desc.Quota.Unlimited {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(desc.ID, desc.Quota)
	t.rollover(s)

	if s.exhausted {
		return false
	}
	if s.count+s.held >= desc.Quota.Cap {
		return false
	}

	s.held++
	return true
}

// RecordSuccess commits a reservation: the call happened and counts against
// the window budget.
func (t *QuotaTracker) RecordSuccess(providerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.states[providerID]
	if !ok {
		return
	}
	if s.held > 0 {
		s.held--
	}
	s.count++
}

// Release drops a reservation after a soft failure; no budget is consumed.
func (t *QuotaTracker) Release(providerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.states[providerID]
	if !ok {
		return
	}
	if s.held > 0 {
		s.held--
	}
}

// RecordExhaustion blocks the provider for the remainder of the current
// window. Used when the provider itself signals a rate-limit condition,
// even if the local count is below cap.
func (t *QuotaTracker) RecordExhaustion(providerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.states[providerID]
	if !ok {
		s = &quotaState{windowStart: t.windowStart(DefaultQuotaWindow), window: DefaultQuotaWindow}
		t.states[providerID] = s
	}
	if s.held > 0 {
		s.held--
	}
	s.exhausted = true
}

// QuotaUsage is a point-in-time snapshot of one provider's window state.
type QuotaUsage struct {
	Used      int
	Cap       int
	Exhausted bool
}

// Usage returns the provider's consumption within its current window.
func (t *QuotaTracker) Usage(desc Descriptor) QuotaUsage {
	if desc.Quota.Unlimited {
		return QuotaUsage{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(desc.ID, desc.Quota)
	t.rollover(s)
	return QuotaUsage{Used: s.count, Cap: desc.Quota.Cap, Exhausted: s.exhausted}
}

// state returns the tracked state for a provider, creating it on first use.
// Callers must hold t.mu.
func (t *QuotaTracker) state(providerID string, policy QuotaPolicy) *quotaState {
	s, ok := t.states[providerID]
	if !ok {
		s = &quotaState{
			windowStart: t.windowStart(policy.window()),
			window:      policy.window(),
		}
		t.states[providerID] = s
	}
	return s
}

// rollover lazily resets the window when the clock has crossed into a new
// one. Resets happen only here, never eagerly. Callers must hold t.mu.
func (t *QuotaTracker) rollover(s *quotaState) {
	current := t.windowStart(s.window)
	if current.After(s.windowStart) {
		s.windowStart = current
		s.count = 0
		s.exhausted = false
	}
}

func (t *QuotaTracker) windowStart(window time.Duration) time.Time {
	return t.now().Truncate(window)
}
