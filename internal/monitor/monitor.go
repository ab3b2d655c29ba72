// Package monitor periodically resolves every shop's availability and
// reports open/closed transitions.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/belphemur/storefront/internal/database"
	"github.com/belphemur/storefront/internal/hours"
	"github.com/belphemur/storefront/internal/logging"
	appSignals "github.com/belphemur/storefront/internal/signals"
)

// ShopSource provides the shops and schedules to resolve
type ShopSource interface {
	ListShops(ctx context.Context) ([]*database.Shop, error)
	GetBusinessHours(ctx context.Context, shopID string) (hours.WeeklySchedule, error)
}

// Settings supplies the current resolver policy and storefront timezone
type Settings interface {
	Resolver() *hours.Resolver
	Now(t time.Time) time.Time
}

// Option configures a Monitor
type Option func(*Monitor)

// WithClock replaces time.Now, mostly for tests
func WithClock(clock func() time.Time) Option {
	return func(m *Monitor) {
		m.clock = clock
	}
}

// Monitor caches the latest status of every shop
type Monitor struct {
	source   ShopSource
	settings Settings
	interval time.Duration
	clock    func() time.Time
	logger   zerolog.Logger

	mu     sync.RWMutex
	latest map[string]hours.Status

	ticks    atomic.Int64
	failures atomic.Int64
}

// New creates a monitor polling every interval
func New(source ShopSource, settings Settings, interval time.Duration, opts ...Option) *Monitor {
	m := &Monitor{
		source:   source,
		settings: settings,
		interval: interval,
		clock:    time.Now,
		logger:   logging.GetLogger("monitor"),
		latest:   make(map[string]hours.Status),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run checks every shop immediately and then on each tick until ctx is cancelled
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().Dur("interval", m.interval).Msg("Starting status monitor")

	if err := m.Check(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Initial status check failed")
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Int64("ticks", m.ticks.Load()).Msg("Status monitor stopped")
			return nil
		case <-ticker.C:
			m.logger.Debug().Msg("Status check tick received")
			if err := m.Check(ctx); err != nil {
				m.logger.Error().Err(err).Msg("Status check failed")
			}
		}
	}
}

// Check resolves every shop once. Failures for single shops are collected
// and do not stop the remaining shops from being checked.
func (m *Monitor) Check(ctx context.Context) error {
	m.ticks.Inc()

	shops, err := m.source.ListShops(ctx)
	if err != nil {
		m.failures.Inc()
		return fmt.Errorf("failed to list shops: %w", err)
	}

	now := m.clock()
	resolver := m.settings.Resolver()
	seen := make(map[string]struct{}, len(shops))

	var result *multierror.Error
	for _, shop := range shops {
		seen[shop.ID] = struct{}{}
		if err := m.checkShop(ctx, resolver, shop.ID, now); err != nil {
			m.failures.Inc()
			result = multierror.Append(result, fmt.Errorf("shop %s: %w", shop.ID, err))
		}
	}

	m.mu.Lock()
	for id := range m.latest {
		if _, ok := seen[id]; !ok {
			delete(m.latest, id)
		}
	}
	m.mu.Unlock()

	m.logger.Debug().Int("shops", len(shops)).Int64("tick", m.ticks.Load()).Msg("Status check completed")
	return result.ErrorOrNil()
}

// CheckShop resolves a single shop right away, for example after its hours changed
func (m *Monitor) CheckShop(ctx context.Context, shopID string) error {
	err := m.checkShop(ctx, m.settings.Resolver(), shopID, m.clock())
	if errors.Is(err, database.ErrShopNotFound) {
		m.Invalidate(shopID)
	}
	return err
}

func (m *Monitor) checkShop(ctx context.Context, resolver *hours.Resolver, shopID string, now time.Time) error {
	schedule, err := m.source.GetBusinessHours(ctx, shopID)
	if err != nil {
		return err
	}

	current := resolver.Resolve(schedule, m.settings.Now(now))

	m.mu.Lock()
	previous, known := m.latest[shopID]
	m.latest[shopID] = current
	m.mu.Unlock()

	if known && previous.IsOpen() != current.IsOpen() {
		m.logger.Info().
			Str("shop_id", shopID).
			Str("previous", string(previous.Kind)).
			Str("current", string(current.Kind)).
			Msg("Shop availability changed")
		appSignals.EmitStatusChanged(ctx, shopID, previous, current)
	}
	return nil
}

// Latest returns the last resolved status of a shop
func (m *Monitor) Latest(shopID string) (hours.Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.latest[shopID]
	return status, ok
}

// Invalidate drops the cached status of a shop
func (m *Monitor) Invalidate(shopID string) {
	m.mu.Lock()
	delete(m.latest, shopID)
	m.mu.Unlock()
	m.logger.Debug().Str("shop_id", shopID).Msg("Cached status invalidated")
}

// Ticks returns how many full checks have run
func (m *Monitor) Ticks() int64 {
	return m.ticks.Load()
}

// Failures returns how many checks or shops failed to resolve
func (m *Monitor) Failures() int64 {
	return m.failures.Load()
}
