// Package countdown implements the LOCKED -> UNLOCKED countdown state machine.
//
// The machine starts UNLOCKED when the persisted flag says so or the target
// date has passed. While LOCKED a one second ticker drives it; the ticker
// stops as soon as the machine unlocks.
package countdown

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wishwall/wishwall/internal/model"
	"github.com/wishwall/wishwall/internal/statestore"
)

// DefaultTickInterval is how often a locked machine re-evaluates.
const DefaultTickInterval = time.Second

// Machine errors.
var (
	ErrForceUnlockDisabled = errors.New("force unlock is disabled in production")
	ErrResetDisabled       = errors.New("countdown reset is disabled in production")
)

// Options configures a Machine.
type Options struct {
	// TargetDate and MusicEnabled seed the state when nothing is persisted.
	TargetDate   time.Time
	MusicEnabled bool

	// DevTools enables ForceUnlock and ResetState.
	DevTools     bool
	TickInterval time.Duration
}

// Machine is the countdown singleton. Safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	cfg      model.CountdownConfig
	devTools bool
	interval time.Duration
	relock   chan struct{}

	store  statestore.Store
	now    func() time.Time
	logger *slog.Logger
}

// New restores the countdown from store, falling back to opts.
func New(ctx context.Context, store statestore.Store, opts Options, now func() time.Time, logger *slog.Logger) *Machine {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	m := &Machine{
		cfg: model.CountdownConfig{
			TargetDate:   opts.TargetDate,
			MusicEnabled: opts.MusicEnabled,
		},
		devTools: opts.DevTools,
		interval: interval,
		relock:   make(chan struct{}, 1),
		store:    store,
		now:      now,
		logger:   logger.With("component", "countdown"),
	}

	var persisted model.CountdownConfig
	found, err := store.Load(ctx, statestore.CountdownKey, &persisted)
	switch {
	case err != nil:
		m.logger.Warn("discarding unreadable countdown state", "error", err)
	case found && !persisted.TargetDate.IsZero():
		m.cfg = persisted
	}

	m.mu.Lock()
	m.cfg.IsUnlocked = m.cfg.IsUnlocked || !now().Before(m.cfg.TargetDate)
	m.persist(ctx)
	m.mu.Unlock()

	m.logger.Info("countdown initialised",
		"target_date", m.cfg.TargetDate,
		"state", m.state(),
	)
	return m
}

// Tick re-evaluates the countdown and reports whether it is unlocked.
func (m *Machine) Tick(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.advance(ctx)
}

// advance performs the LOCKED -> UNLOCKED transition when due. Must hold m.mu.
func (m *Machine) advance(ctx context.Context) bool {
	if m.cfg.IsUnlocked {
		return true
	}
	if m.now().Before(m.cfg.TargetDate) {
		return false
	}

	m.cfg.IsUnlocked = true
	m.persist(ctx)
	m.logger.Info("countdown unlocked", "target_date", m.cfg.TargetDate)
	return true
}

// Run drives the machine until ctx is done. The ticker only runs while
// locked and is restarted if the target date is moved into the future.
func (m *Machine) Run(ctx context.Context) {
	for {
		if !m.Tick(ctx) {
			if !m.tickUntilUnlocked(ctx) {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-m.relock:
		}
	}
}

// tickUntilUnlocked reports false if ctx ended first.
func (m *Machine) tickUntilUnlocked(ctx context.Context) bool {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if m.Tick(ctx) {
				return true
			}
		}
	}
}

// SetTargetDate moves the target. A future target re-locks the countdown
// even if it had already unlocked.
func (m *Machine) SetTargetDate(ctx context.Context, target time.Time) model.CountdownSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	wasUnlocked := m.cfg.IsUnlocked
	m.cfg.TargetDate = target
	m.cfg.IsUnlocked = !m.now().Before(target)
	m.persist(ctx)

	if wasUnlocked && !m.cfg.IsUnlocked {
		m.logger.Warn("countdown re-locked by new target date", "target_date", target)
	}
	if !m.cfg.IsUnlocked {
		select {
		case m.relock <- struct{}{}:
		default:
		}
	}
	return m.snapshot()
}

// ForceUnlock unlocks immediately. Disabled in production.
func (m *Machine) ForceUnlock(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.devTools {
		return ErrForceUnlockDisabled
	}
	m.cfg.IsUnlocked = true
	m.persist(ctx)
	m.logger.Info("countdown force unlocked")
	return nil
}

// ResetState recomputes the unlocked flag from the target date alone.
// Disabled in production.
func (m *Machine) ResetState(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.devTools {
		return ErrResetDisabled
	}
	m.cfg.IsUnlocked = !m.now().Before(m.cfg.TargetDate)
	m.persist(ctx)
	if !m.cfg.IsUnlocked {
		select {
		case m.relock <- struct{}{}:
		default:
		}
	}
	return nil
}

// ToggleMusic flips the background music flag and returns the new value.
func (m *Machine) ToggleMusic(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.MusicEnabled = !m.cfg.MusicEnabled
	m.persist(ctx)
	return m.cfg.MusicEnabled
}

// Snapshot returns the current view, applying any due transition first.
func (m *Machine) Snapshot(ctx context.Context) model.CountdownSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.advance(ctx)
	return m.snapshot()
}

// IsUnlocked reports the current state without re-evaluating.
func (m *Machine) IsUnlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.IsUnlocked
}

func (m *Machine) snapshot() model.CountdownSnapshot {
	snap := model.CountdownSnapshot{
		State:        m.state(),
		TargetDate:   m.cfg.TargetDate,
		IsUnlocked:   m.cfg.IsUnlocked,
		MusicEnabled: m.cfg.MusicEnabled,
	}
	if !m.cfg.IsUnlocked {
		snap.Remaining = model.SplitRemaining(m.cfg.TargetDate.Sub(m.now()))
	}
	return snap
}

func (m *Machine) state() model.CountdownState {
	if m.cfg.IsUnlocked {
		return model.CountdownUnlocked
	}
	return model.CountdownLocked
}

// persist writes the countdown blob. Must hold m.mu.
func (m *Machine) persist(ctx context.Context) {
	if err := m.store.Save(ctx, statestore.CountdownKey, m.cfg); err != nil {
		m.logger.Error("persist countdown failed", "error", err)
	}
}
