package lockmgr

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"stayhub/models"

	"go.uber.org/zap"
)

// fakeSupplier records every endpoint hit and replays canned responses.
type fakeSupplier struct {
	mu       sync.Mutex
	calls    []string
	response []byte
	err      error
}

func (f *fakeSupplier) Call(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method+" "+endpoint)
	return f.response, f.err
}

func (f *fakeSupplier) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func newTestManager(sup *fakeSupplier) (*Manager, *time.Time) {
	m := NewManager(sup, 30*time.Minute, zap.NewNop())
	now := time.Now()
	m.SetClock(func() time.Time { return now })
	return m, &now
}

var testOffer = models.RoomOffer{Code: "RATE-123", Price: 100, Currency: "USD"}

func TestAcquire_IdempotentWhileLive(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, _ := newTestManager(sup)

	first, err := m.Acquire(context.Background(), "RATE-123", testOffer)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	second, err := m.Acquire(context.Background(), "RATE-123", testOffer)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if first.LockToken != second.LockToken {
		t.Errorf("tokens differ: %q vs %q", first.LockToken, second.LockToken)
	}
	if got := sup.callCount("POST /prebook"); got != 1 {
		t.Errorf("prebook called %d times, want 1", got)
	}
}

func TestAcquire_ConcurrentCallersShareOneUpstreamCall(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-C","price":100}`)}
	m, _ := newTestManager(sup)

	const callers = 8
	tokens := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lock, err := m.Acquire(context.Background(), "RATE-123", testOffer)
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			tokens[i] = lock.LockToken
		}(i)
	}
	wg.Wait()

	if got := sup.callCount("POST /prebook"); got != 1 {
		t.Errorf("prebook called %d times, want 1", got)
	}
	for i, tok := range tokens {
		if tok != "LOCK-C" {
			t.Errorf("caller %d got token %q, want LOCK-C", i, tok)
		}
	}
}

func TestAcquire_ReplacesExpiredLock(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, now := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-123", testOffer); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	*now = now.Add(31 * time.Minute)
	sup.response = []byte(`{"token":"LOCK-2","price":100}`)

	lock, err := m.Acquire(context.Background(), "RATE-123", testOffer)
	if err != nil {
		t.Fatalf("Acquire after expiry: %v", err)
	}
	if lock.LockToken != "LOCK-2" {
		t.Errorf("token = %q, want fresh LOCK-2", lock.LockToken)
	}
	if got := sup.callCount("POST /prebook"); got != 2 {
		t.Errorf("prebook called %d times, want 2", got)
	}
}

func TestConsume_SucceedsOnlyWhileLive(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, _ := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-123", testOffer); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	lock, err := m.Consume("RATE-123")
	if err != nil {
		t.Fatalf("Consume while live: %v", err)
	}
	if lock.LockToken != "LOCK-1" {
		t.Errorf("token = %q, want LOCK-1", lock.LockToken)
	}

	// One-shot: a second consume is a protocol violation.
	_, err = m.Consume("RATE-123")
	var notAvail *LockNotAvailableError
	if !errors.As(err, &notAvail) {
		t.Fatalf("second Consume: got %v, want LockNotAvailableError", err)
	}
}

func TestConsume_ExpiredByOneMillisecond(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, now := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-123", testOffer); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	*now = now.Add(30*time.Minute + time.Millisecond)

	_, err := m.Consume("RATE-123")
	var expired *LockExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("got %v, want LockExpiredError", err)
	}
}

func TestConsume_AbsentLock(t *testing.T) {
	m, _ := newTestManager(&fakeSupplier{})
	_, err := m.Consume("NOPE")
	var notAvail *LockNotAvailableError
	if !errors.As(err, &notAvail) {
		t.Fatalf("got %v, want LockNotAvailableError", err)
	}
}

func TestRestore_ReopensConsumedLock(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, _ := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-123", testOffer); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := m.Consume("RATE-123"); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := m.Restore("RATE-123"); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	// The same lock is consumable again without another prebook call.
	lock, err := m.Consume("RATE-123")
	if err != nil {
		t.Fatalf("Consume after restore: %v", err)
	}
	if lock.LockToken != "LOCK-1" {
		t.Errorf("token = %q, want LOCK-1", lock.LockToken)
	}
	if got := sup.callCount("POST /prebook"); got != 1 {
		t.Errorf("prebook called %d times, want 1", got)
	}
}

func TestRestore_OnlyAppliesToConsumedLocks(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, _ := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-123", testOffer); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	err := m.Restore("RATE-123")
	var notAvail *LockNotAvailableError
	if !errors.As(err, &notAvail) {
		t.Errorf("restore of live lock: got %v, want LockNotAvailableError", err)
	}

	err = m.Restore("NOPE")
	if !errors.As(err, &notAvail) {
		t.Errorf("restore of absent lock: got %v, want LockNotAvailableError", err)
	}
}

func TestRestore_DoesNotExtendExpiry(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, now := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-123", testOffer); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := m.Consume("RATE-123"); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := m.Restore("RATE-123"); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	*now = now.Add(30*time.Minute + time.Millisecond)
	_, err := m.Consume("RATE-123")
	var expired *LockExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("got %v, want LockExpiredError", err)
	}
}

func TestRelease_RejectsConsumedLock(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, _ := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-123", testOffer); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := m.Consume("RATE-123"); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	err := m.Release(context.Background(), "RATE-123")
	var notAvail *LockNotAvailableError
	if !errors.As(err, &notAvail) {
		t.Fatalf("got %v, want LockNotAvailableError", err)
	}
	// No upstream cancel for a pre-book already turned into a booking.
	if got := sup.callCount("DELETE /cancel"); got != 0 {
		t.Errorf("cancel called %d times, want 0", got)
	}
}

func TestRelease_CancelsUpstreamBestEffort(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, _ := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-123", testOffer); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// Upstream cancellation failing must not propagate.
	sup.err = errors.New("network down")
	if err := m.Release(context.Background(), "RATE-123"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if got := sup.callCount("DELETE /cancel"); got != 1 {
		t.Errorf("cancel called %d times, want 1", got)
	}

	// The local lock is gone regardless.
	_, err := m.Consume("RATE-123")
	var notAvail *LockNotAvailableError
	if !errors.As(err, &notAvail) {
		t.Fatalf("after release: got %v, want LockNotAvailableError", err)
	}
}

func TestSweep_DropsExpiredEntries(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"token":"LOCK-1","price":100}`)}
	m, now := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-A", testOffer); err != nil {
		t.Fatalf("Acquire A: %v", err)
	}
	if _, err := m.Acquire(context.Background(), "RATE-B", testOffer); err != nil {
		t.Fatalf("Acquire B: %v", err)
	}

	*now = now.Add(31 * time.Minute)
	if removed := m.Sweep(); removed != 2 {
		t.Errorf("Sweep removed %d entries, want 2", removed)
	}
	if removed := m.Sweep(); removed != 0 {
		t.Errorf("second Sweep removed %d entries, want 0", removed)
	}
}

func TestAcquire_PreBookRejectedLeavesNoLock(t *testing.T) {
	sup := &fakeSupplier{response: []byte(`{"status":"sold_out"}`)}
	m, _ := newTestManager(sup)

	if _, err := m.Acquire(context.Background(), "RATE-123", testOffer); err == nil {
		t.Fatal("Acquire succeeded on rejected prebook")
	}
	_, err := m.Consume("RATE-123")
	var notAvail *LockNotAvailableError
	if !errors.As(err, &notAvail) {
		t.Fatalf("got %v, want LockNotAvailableError", err)
	}
}
