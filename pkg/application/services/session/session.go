package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/subsidy/pkg/application/dto"
	"github.com/vsinha/subsidy/pkg/application/services/allocation"
	"github.com/vsinha/subsidy/pkg/application/services/simulator"
	"github.com/vsinha/subsidy/pkg/application/services/submission"
	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/domain/repositories"
	"github.com/vsinha/subsidy/pkg/infrastructure/events"
	"github.com/vsinha/subsidy/pkg/infrastructure/logger"
)

// ErrClosed is returned by operations on a closed session
var ErrClosed = errors.New("session closed")

// Options configures a Session
type Options struct {
	Inventory     repositories.InventoryRepository
	Beneficiaries repositories.BeneficiaryRepository
	Programs      repositories.ProgramRepository
	EventStore    events.EventStore
	Logger        *zap.Logger

	// Debounce is the recompute window. Zero recomputes synchronously.
	Debounce time.Duration
	// BulkAddLimit caps AddAllAvailable
	BulkAddLimit int
	// Now stamps inventory snapshots
	Now func() time.Time
}

// Session is one program creation flow: a draft store, its stock projection
// kept current by a debounced recomputer, and the submission reconciler.
type Session struct {
	opts       Options
	store      *allocation.Store
	recomputer *simulator.Recomputer
	reconciler *submission.Reconciler
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	snapshot entities.InventorySnapshot
	pool     []entities.Beneficiary
	closed   bool
}

// New wires a session. Call Open to load its reference data.
func New(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := logger.OrNop(opts.Logger)
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		opts:   opts,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
	s.store = allocation.NewStore(opts.EventStore, log)
	s.recomputer = simulator.NewRecomputer(opts.Debounce, s.source, s.published, log)
	s.reconciler = submission.NewReconciler(s.store, opts.Programs, s.Snapshot, opts.EventStore, log)
	s.store.OnChange(s.recomputer.Schedule)
	return s
}

// Open loads the inventory snapshot and the beneficiary pool concurrently
func (s *Session) Open(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	ctx, done := s.bind(ctx)
	defer done()

	var (
		items []entities.InventoryItem
		pool  []entities.Beneficiary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.opts.Inventory.ListInventoryItems(gctx)
		if err != nil {
			return fmt.Errorf("loading inventory: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pool, err = s.opts.Beneficiaries.SearchBeneficiaries(gctx, "")
		if err != nil {
			return fmt.Errorf("loading beneficiaries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.snapshot = entities.NewInventorySnapshot(items, s.opts.Now())
	s.pool = pool
	s.mu.Unlock()

	s.logger.Info("session opened",
		zap.Int("inventory_items", len(items)),
		zap.Int("beneficiaries", len(pool)))
	s.recordSnapshot()
	s.recomputer.Schedule()
	return nil
}

// RefreshInventory replaces the snapshot wholesale and schedules a recompute
func (s *Session) RefreshInventory(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	ctx, done := s.bind(ctx)
	defer done()

	items, err := s.opts.Inventory.ListInventoryItems(ctx)
	if err != nil {
		return fmt.Errorf("refreshing inventory: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.snapshot = entities.NewInventorySnapshot(items, s.opts.Now())
	s.mu.Unlock()

	s.logger.Debug("inventory refreshed", zap.Int("inventory_items", len(items)))
	s.recordSnapshot()
	s.recomputer.Schedule()
	return nil
}

// SearchBeneficiaries queries the registry
func (s *Session) SearchBeneficiaries(ctx context.Context, query string) ([]entities.Beneficiary, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	ctx, done := s.bind(ctx)
	defer done()

	results, err := s.opts.Beneficiaries.SearchBeneficiaries(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching beneficiaries: %w", err)
	}
	if s.isClosed() {
		return nil, ErrClosed
	}
	return results, nil
}

// Store returns the session's draft store
func (s *Session) Store() *allocation.Store {
	return s.store
}

// Snapshot returns the current inventory snapshot
func (s *Session) Snapshot() entities.InventorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// AvailablePool lists loaded beneficiaries not yet in the draft, optionally
// restricted to a barangay
func (s *Session) AvailablePool(barangay string) []entities.Beneficiary {
	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()
	return entities.AvailablePool(s.store.Draft(), pool, barangay)
}

// AddAllAvailable adds pool beneficiaries up to the configured bulk limit
func (s *Session) AddAllAvailable(barangay string) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	return s.store.AddManyBeneficiaries(s.AvailablePool(barangay), s.opts.BulkAddLimit)
}

// Projection returns the last published projection
func (s *Session) Projection() simulator.Projection {
	return s.recomputer.Latest()
}

// Settle runs any pending recompute now and returns the result
func (s *Session) Settle() simulator.Projection {
	s.recomputer.Flush()
	return s.recomputer.Latest()
}

// Submit sends the draft through the reconciler
func (s *Session) Submit(ctx context.Context) (dto.SubmissionOutcome, error) {
	if s.isClosed() {
		return dto.SubmissionOutcome{Kind: dto.OutcomeRejectedLocally, Message: ErrClosed.Error()}, ErrClosed
	}
	ctx, done := s.bind(ctx)
	defer done()
	return s.reconciler.Submit(ctx)
}

// Submitting reports whether a submission is in flight
func (s *Session) Submitting() bool {
	return s.reconciler.Submitting()
}

// Conflicts returns the last server conflict report
func (s *Session) Conflicts() []entities.InventoryConflict {
	return s.reconciler.Conflicts()
}

// History returns the session's event trail in the order it was recorded.
// Without an event store the trail is empty.
func (s *Session) History() ([]events.Event, error) {
	if s.opts.EventStore == nil {
		return nil, nil
	}
	trail, err := s.opts.EventStore.ReadEvents(s.store.ID(), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read session history: %w", err)
	}
	return trail, nil
}

// DismissConflicts clears the conflict report
func (s *Session) DismissConflicts() {
	s.reconciler.DismissConflicts()
}

// Close cancels in-flight fetches, stops recomputation and discards the
// draft. Results that arrive afterwards are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.recomputer.Stop()
	s.store.Close()
	s.logger.Debug("session closed")
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// bind derives a context that is also cancelled by Close
func (s *Session) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Session) source() (entities.Draft, entities.InventorySnapshot) {
	return s.store.Draft(), s.Snapshot()
}

func (s *Session) published(p simulator.Projection) {
	if s.opts.EventStore == nil {
		return
	}
	e := events.NewProjectionRecomputedEvent(s.store.ID(), len(p), len(p.OverAllocated()))
	if err := s.opts.EventStore.AppendEvent(s.store.ID(), e); err != nil {
		s.logger.Warn("failed to record projection event", zap.Error(err))
	}
}

func (s *Session) recordSnapshot() {
	if s.opts.EventStore == nil {
		return
	}
	e := events.NewInventoryRefreshedEvent(s.store.ID(), s.Snapshot())
	if err := s.opts.EventStore.AppendEvent(s.store.ID(), e); err != nil {
		s.logger.Warn("failed to record inventory event", zap.Error(err))
	}
}
