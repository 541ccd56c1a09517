package resolver

import (
	"sync"
	"testing"
	"time"
)

func cappedDesc(id string, cap int) Descriptor {
	return Descriptor{
		ID:       id,
		Resource: ResourceQuote,
		Priority: 1,
		Quota:    CappedDaily(cap),
		Enabled:  true,
	}
}

func TestQuotaTracker_CapEnforced(t *testing.T) {
	tracker := NewQuotaTracker()
	desc := cappedDesc("capped", 3)

	for i := 0; i < 3; i++ {
		if !tracker.CheckAndReserve(desc) {
			t.Fatalf("reservation %d should succeed", i+1)
		}
		tracker.RecordSuccess(desc.ID)
	}

	if tracker.CheckAndReserve(desc) {
		t.Error("reservation beyond cap should fail")
	}

	usage := tracker.Usage(desc)
	if usage.Used != 3 || usage.Cap != 3 {
		t.Errorf("usage = %d/%d, want 3/3", usage.Used, usage.Cap)
	}
}

func TestQuotaTracker_ReleaseReturnsBudget(t *testing.T) {
	tracker := NewQuotaTracker()
	desc := cappedDesc("capped", 1)

	if !tracker.CheckAndReserve(desc) {
		t.Fatal("first reservation should succeed")
	}
	// A held reservation blocks further ones even before settlement
	if tracker.CheckAndReserve(desc) {
		t.Error("second reservation should fail while first is held")
	}

	tracker.Release(desc.ID)

	if !tracker.CheckAndReserve(desc) {
		t.Error("reservation after release should succeed")
	}
	if usage := tracker.Usage(desc); usage.Used != 0 {
		t.Errorf("released reservations must not consume budget, used = %d", usage.Used)
	}
}

func TestQuotaTracker_UnlimitedNeverBlocks(t *testing.T) {
	tracker := NewQuotaTracker()
	desc := Descriptor{ID: "free", Resource: ResourceQuote, Quota: UnlimitedQuota(), Enabled: true}

	for i := 0; i < 1000; i++ {
		if !tracker.CheckAndReserve(desc) {
			t.Fatalf("unlimited provider blocked at call %d", i)
		}
		tracker.RecordSuccess(desc.ID)
	}
}

func TestQuotaTracker_DisabledNeverTouchesState(t *testing.T) {
	tracker := NewQuotaTracker()
	desc := cappedDesc("disabled", 5)
	desc.Enabled = false

	for i := 0; i < 10; i++ {
		if tracker.CheckAndReserve(desc) {
			t.Fatal("disabled provider should never be eligible")
		}
	}

	desc.Enabled = true
	if usage := tracker.Usage(desc); usage.Used != 0 {
		t.Errorf("disabled checks must not consume budget, used = %d", usage.Used)
	}
}

func TestQuotaTracker_ExhaustionBlocksBelowCap(t *testing.T) {
	tracker := NewQuotaTracker()
	desc := cappedDesc("limited", 25)

	if !tracker.CheckAndReserve(desc) {
		t.Fatal("first reservation should succeed")
	}
	tracker.RecordExhaustion(desc.ID)

	// The upstream said no; local count being far below cap is irrelevant
	if tracker.CheckAndReserve(desc) {
		t.Error("exhausted provider should stay blocked for the window")
	}
	if usage := tracker.Usage(desc); !usage.Exhausted {
		t.Error("usage should report exhaustion")
	}
}

func TestQuotaTracker_WindowRollover(t *testing.T) {
	current := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	tracker := NewQuotaTrackerWithClock(func() time.Time { return current })
	desc := cappedDesc("daily", 2)

	for i := 0; i < 2; i++ {
		if !tracker.CheckAndReserve(desc) {
			t.Fatalf("reservation %d should succeed", i+1)
		}
		tracker.RecordSuccess(desc.ID)
	}
	tracker.RecordExhaustion(desc.ID)

	if tracker.CheckAndReserve(desc) {
		t.Fatal("provider should be blocked before rollover")
	}

	// Cross into the next window: count and exhaustion both reset lazily
	current = current.Add(2 * time.Hour)

	if !tracker.CheckAndReserve(desc) {
		t.Error("provider should be eligible again after rollover")
	}
	if usage := tracker.Usage(desc); usage.Exhausted {
		t.Error("exhaustion should clear at rollover")
	}
}

func TestQuotaTracker_NoEarlyReset(t *testing.T) {
	current := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	tracker := NewQuotaTrackerWithClock(func() time.Time { return current })
	desc := cappedDesc("daily", 1)

	if !tracker.CheckAndReserve(desc) {
		t.Fatal("first reservation should succeed")
	}
	tracker.RecordSuccess(desc.ID)

	// Hours pass within the same window; budget must not come back
	current = current.Add(12 * time.Hour)

	if tracker.CheckAndReserve(desc) {
		t.Error("budget must not reset within the same window")
	}
}

func TestQuotaTracker_ConcurrentReservationsNeverExceedCap(t *testing.T) {
	tracker := NewQuotaTracker()
	const cap = 10
	desc := cappedDesc("contended", cap)

	var granted int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.CheckAndReserve(desc) {
				tracker.RecordSuccess(desc.ID)
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != cap {
		t.Errorf("granted = %d, want exactly %d", granted, cap)
	}
	if usage := tracker.Usage(desc); usage.Used != cap {
		t.Errorf("used = %d, want %d", usage.Used, cap)
	}
}
