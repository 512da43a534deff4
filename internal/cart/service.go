package cart

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sellpoint-ua/cart-engine/pkg/config"
	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/logger"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

// Snapshot is one consistent view of the cart: the enriched lines, their
// seller grouping, and the error (if any) the last refresh degraded under.
// Err lets a caller tell "empty cart" apart from "load failed".
type Snapshot struct {
	Lines      []types.EnrichedLine
	Groups     []types.SellerGroup
	Err        error
	Generation uint64
}

// Service mirrors the remote cart and keeps the derived views consistent.
// Every mutation funnels through the gateway; by default each one is
// followed by a full re-read instead of an optimistic local patch.
type Service struct {
	gw       CartGateway
	enricher *Enricher
	guard    *QuantityGuard
	stores   *StoreResolver
	refetch  bool
	log      *logger.Logger

	gen atomic.Uint64

	mu          sync.Mutex
	snapshot    Snapshot
	inflight    map[string]bool
	subscribers map[int]func(Snapshot)
	nextSub     int
	closed      bool
}

// NewService wires the cart engine together.
func NewService(gw CartGateway, enricher *Enricher, guard *QuantityGuard, stores *StoreResolver, cfg config.CartConfig, log *logger.Logger) (*Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if enricher == nil {
		return nil, fmt.Errorf("enricher required")
	}
	if guard == nil {
		guard = NewQuantityGuard(cfg.LimitFlagTTL)
	}
	return &Service{
		gw:          gw,
		enricher:    enricher,
		guard:       guard,
		stores:      stores,
		refetch:     cfg.RefetchAfterMutation,
		log:         log,
		inflight:    make(map[string]bool),
		subscribers: make(map[int]func(Snapshot)),
	}, nil
}

// Refresh re-reads the remote cart and rebuilds the derived views.
//
// A missing token propagates as CodeUnauthenticated so the caller can route
// to login. Any other failure degrades to an empty cart with Err recorded
// on the snapshot. Overlapping refreshes resolve latest-wins: a slower,
// older fetch never overwrites a newer one.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	generation := s.gen.Add(1)

	lines, err := s.gw.FetchCart(ctx)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
			return s.Snapshot(), err
		}
		if s.log != nil {
			s.log.Error(ctx, "cart fetch degraded to empty", err)
		}
		return s.apply(Snapshot{Err: err, Generation: generation}), nil
	}

	enriched := s.enricher.Enrich(ctx, lines)
	groups := GroupBySeller(enriched)
	s.attachSellerNames(ctx, groups)

	return s.apply(Snapshot{
		Lines:      enriched,
		Groups:     groups,
		Generation: generation,
	}), nil
}

func (s *Service) attachSellerNames(ctx context.Context, groups []types.SellerGroup) {
	if s.stores == nil {
		return
	}
	for i := range groups {
		if groups[i].SellerID == types.DefaultSellerID {
			continue
		}
		if profile := s.stores.Resolve(ctx, groups[i].SellerID); profile != nil {
			groups[i].SellerName = profile.Name
		}
	}
}

// apply installs the snapshot unless a newer generation already landed,
// then notifies subscribers outside the lock.
func (s *Service) apply(next Snapshot) Snapshot {
	s.mu.Lock()
	if s.closed || next.Generation < s.snapshot.Generation {
		current := s.snapshot
		s.mu.Unlock()
		return current
	}
	s.snapshot = next
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Snapshot returns the current consistent view.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Lines returns the current enriched lines.
func (s *Service) Lines() []types.EnrichedLine {
	return s.Snapshot().Lines
}

// Groups returns the current seller grouping.
func (s *Service) Groups() []types.SellerGroup {
	return s.Snapshot().Groups
}

// LastError reports the degradation error of the last refresh, if any.
func (s *Service) LastError() error {
	return s.Snapshot().Err
}

// LimitReached reports the transient stock-limit flag for a line.
func (s *Service) LimitReached(lineID string) bool {
	return s.guard.LimitReached(lineID)
}

// Subscribe registers a callback invoked after every applied snapshot.
// The returned function unsubscribes.
func (s *Service) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Add puts a product into the cart and re-reads the cart.
func (s *Service) Add(ctx context.Context, productID string, pcs int) error {
	if err := s.gw.AddLine(ctx, productID, pcs); err != nil {
		return err
	}
	// The new line's id is only known after a re-read, so an add always
	// refreshes regardless of the configured mutation policy.
	_, err := s.Refresh(ctx)
	return err
}

// ChangeQuantity applies a +/- delta to a line, honoring the stock ceiling
// and the per-line serialization guard.
func (s *Service) ChangeQuantity(ctx context.Context, lineID string, delta int) error {
	line, ok := s.findLine(lineID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}

	pcs, apply, err := s.guard.Clamp(line, delta)
	if err != nil {
		return err
	}
	if !apply {
		return nil
	}

	if err := s.beginLineMutation(lineID); err != nil {
		return err
	}
	defer s.endLineMutation(lineID)

	if err := s.gw.ChangePcs(ctx, lineID, pcs); err != nil {
		return err
	}

	if s.refetch {
		_, err := s.Refresh(ctx)
		return err
	}
	s.patchLinePcs(lineID, pcs)
	return nil
}

// Remove deletes a line entirely; decrementing never removes.
func (s *Service) Remove(ctx context.Context, lineID string) error {
	if _, ok := s.findLine(lineID); !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if err := s.beginLineMutation(lineID); err != nil {
		return err
	}
	defer s.endLineMutation(lineID)

	if err := s.gw.RemoveLine(ctx, lineID); err != nil {
		return err
	}
	if s.refetch {
		_, err := s.Refresh(ctx)
		return err
	}
	s.dropLine(lineID)
	return nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.gw.ClearCart(ctx); err != nil {
		return err
	}
	if s.refetch {
		_, err := s.Refresh(ctx)
		return err
	}
	s.apply(Snapshot{Generation: s.gen.Add(1)})
	return nil
}

// Close tears the engine down: stops limit timers, drops subscribers, and
// freezes the snapshot so late async results are discarded.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.subscribers = make(map[int]func(Snapshot))
	s.mu.Unlock()
	s.guard.Close()
}

func (s *Service) findLine(lineID string) (types.EnrichedLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.snapshot.Lines {
		if line.ID == lineID {
			return line, true
		}
	}
	return types.EnrichedLine{}, false
}

// beginLineMutation serializes mutations per line so rapid +/- clicks can
// never produce out-of-order pcs writes.
func (s *Service) beginLineMutation(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[lineID] {
		return pkgerrors.New(pkgerrors.CodeConflict, "line mutation already in flight")
	}
	s.inflight[lineID] = true
	return nil
}

func (s *Service) endLineMutation(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, lineID)
}

// patchLinePcs is the optimistic-mode local update used when the full
// refetch policy is disabled.
func (s *Service) patchLinePcs(lineID string, pcs int) {
	s.mu.Lock()
	lines := make([]types.EnrichedLine, len(s.snapshot.Lines))
	copy(lines, s.snapshot.Lines)
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Pcs = pcs
		}
	}
	previous := s.snapshot.Groups
	generation := s.gen.Add(1)
	s.mu.Unlock()

	groups := GroupBySeller(lines)
	carrySellerNames(groups, previous)
	s.apply(Snapshot{Lines: lines, Groups: groups, Generation: generation})
}

func (s *Service) dropLine(lineID string) {
	s.mu.Lock()
	lines := make([]types.EnrichedLine, 0, len(s.snapshot.Lines))
	for _, line := range s.snapshot.Lines {
		if line.ID != lineID {
			lines = append(lines, line)
		}
	}
	previous := s.snapshot.Groups
	generation := s.gen.Add(1)
	s.mu.Unlock()

	groups := GroupBySeller(lines)
	carrySellerNames(groups, previous)
	s.apply(Snapshot{Lines: lines, Groups: groups, Generation: generation})
}

// carrySellerNames keeps already-resolved seller names across a local
// rebuild; a regroup alone must not blank the group headers until the
// next full refresh.
func carrySellerNames(groups, previous []types.SellerGroup) {
	if len(previous) == 0 {
		return
	}
	names := make(map[string]string, len(previous))
	for _, group := range previous {
		if group.SellerName != "" {
			names[group.SellerID] = group.SellerName
		}
	}
	for i := range groups {
		if groups[i].SellerName == "" {
			groups[i].SellerName = names[groups[i].SellerID]
		}
	}
}
