package lockmgr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"stayhub/models"
	"stayhub/services/normalize"
	"stayhub/services/supplier"

	"go.uber.org/zap"
)

// Manager owns the table of price locks, one per room code. Acquisition is
// serialized per key so two concurrent Acquire calls for the same room make
// exactly one upstream pre-book call; unrelated rooms proceed in parallel.
// Expiry is lazy on every read and swept periodically to bound memory.
type Manager struct {
	supplier supplier.Client
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*lockEntry
}

// lockEntry serializes all operations for one room code. Its mutex is held
// across the pre-book network call; the manager's own mutex never is.
type lockEntry struct {
	mu   sync.Mutex
	lock *models.PreBookLock
}

// NewManager builds a lock manager over the given supplier client.
func NewManager(client supplier.Client, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		supplier: client,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		entries:  make(map[string]*lockEntry),
	}
}

// SetClock overrides the clock source. Used by tests to walk TTL edges
// without sleeping.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Manager) entry(roomCode string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[roomCode]
	if !ok {
		e = &lockEntry{}
		m.entries[roomCode] = e
	}
	return e
}

// Acquire returns the live lock for roomCode, issuing a supplier pre-book
// call only when none exists. A second Acquire before expiry returns the
// identical lock without touching the supplier, so a double-click never
// duplicates upstream calls.
func (m *Manager) Acquire(ctx context.Context, roomCode string, offer models.RoomOffer) (*models.PreBookLock, error) {
	e := m.entry(roomCode)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lock != nil && e.lock.Live(m.now()) {
		held := *e.lock
		return &held, nil
	}

	body := prebookRequest(offer)
	raw, err := m.supplier.Call(ctx, http.MethodPost, "/prebook", body)
	if err != nil {
		return nil, err
	}

	lock, err := normalize.NormalizePreBook(raw)
	if err != nil {
		return nil, err
	}

	now := m.now()
	lock.RoomCode = roomCode
	lock.State = models.LockStateLocked
	lock.CreatedAt = now
	lock.ExpiresAt = now.Add(m.ttl)
	if lock.LockedPrice == 0 {
		lock.LockedPrice = offer.Price
	}
	if lock.Currency == normalize.DefaultCurrency && offer.Currency != "" {
		lock.Currency = offer.Currency
	}

	e.lock = lock
	m.logger.Info("price lock acquired",
		zap.String("roomCode", roomCode),
		zap.Time("expiresAt", lock.ExpiresAt))

	held := *lock
	return &held, nil
}

// Get returns the live lock for roomCode without changing its state.
func (m *Manager) Get(roomCode string) (*models.PreBookLock, error) {
	e := m.entry(roomCode)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := m.usable(roomCode, e); err != nil {
		return nil, err
	}
	held := *e.lock
	return &held, nil
}

// Consume transitions a live lock to consumed and hands it out for the final
// booking call. One-shot: a consumed lock reads as absent afterwards.
func (m *Manager) Consume(roomCode string) (*models.PreBookLock, error) {
	e := m.entry(roomCode)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := m.usable(roomCode, e); err != nil {
		return nil, err
	}
	e.lock.State = models.LockStateConsumed
	held := *e.lock
	m.logger.Info("price lock consumed", zap.String("roomCode", roomCode))
	return &held, nil
}

// usable checks an entry under its mutex. Expired locks are dropped here,
// which is the lazy half of expiry handling.
func (m *Manager) usable(roomCode string, e *lockEntry) error {
	if e.lock == nil {
		return &LockNotAvailableError{RoomCode: roomCode, Reason: "no lock held"}
	}
	switch e.lock.State {
	case models.LockStateConsumed:
		return &LockNotAvailableError{RoomCode: roomCode, Reason: "lock already consumed"}
	case models.LockStateCancelled:
		return &LockNotAvailableError{RoomCode: roomCode, Reason: "lock cancelled"}
	}
	if !m.now().Before(e.lock.ExpiresAt) {
		e.lock = nil
		return &LockExpiredError{RoomCode: roomCode}
	}
	return nil
}

// Restore returns a consumed lock to the locked state so the final booking
// call can be retried. Expiry is untouched; a restored lock that has run out
// still reads as expired.
func (m *Manager) Restore(roomCode string) error {
	e := m.entry(roomCode)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lock == nil {
		return &LockNotAvailableError{RoomCode: roomCode, Reason: "no lock held"}
	}
	if e.lock.State != models.LockStateConsumed {
		return &LockNotAvailableError{RoomCode: roomCode, Reason: "lock not consumed"}
	}
	e.lock.State = models.LockStateLocked
	m.logger.Info("price lock restored", zap.String("roomCode", roomCode))
	return nil
}

// Release cancels a lock explicitly and tells the supplier to free the
// inventory. The upstream cancellation is best effort: a failure is logged
// and the local lock is released regardless. A consumed lock cannot be
// released; its pre-book has already been converted into a booking.
func (m *Manager) Release(ctx context.Context, roomCode string) error {
	e := m.entry(roomCode)
	e.mu.Lock()

	if e.lock == nil {
		e.mu.Unlock()
		return &LockNotAvailableError{RoomCode: roomCode, Reason: "no lock held"}
	}
	if e.lock.State == models.LockStateConsumed {
		e.mu.Unlock()
		return &LockNotAvailableError{RoomCode: roomCode, Reason: "lock already consumed"}
	}
	token := e.lock.LockToken
	e.lock.State = models.LockStateCancelled
	e.lock = nil
	e.mu.Unlock()

	if token != "" {
		endpoint := "/cancel?prebookId=" + url.QueryEscape(token)
		if _, err := m.supplier.Call(ctx, http.MethodDelete, endpoint, nil); err != nil {
			m.logger.Warn("upstream lock cancellation failed",
				zap.String("roomCode", roomCode), zap.Error(err))
		}
	}
	m.logger.Info("price lock released", zap.String("roomCode", roomCode))
	return nil
}

// Sweep drops every expired or spent entry. Called periodically so the table
// does not grow with abandoned locks.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for code, e := range m.entries {
		e.mu.Lock()
		dead := e.lock == nil ||
			e.lock.State != models.LockStateLocked ||
			!now.Before(e.lock.ExpiresAt)
		e.mu.Unlock()
		if dead {
			delete(m.entries, code)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.logger.Debug("swept expired price locks", zap.Int("count", n))
				}
			}
		}
	}()
}

// prebookRequest wraps the original offer descriptor the way the supplier's
// pre-book endpoint expects it.
func prebookRequest(offer models.RoomOffer) map[string]any {
	if len(offer.Raw) > 0 {
		return map[string]any{
			"roomCode":    offer.Code,
			"jsonRequest": json.RawMessage(offer.Raw),
		}
	}
	return map[string]any{
		"roomCode":    offer.Code,
		"jsonRequest": offer,
	}
}
