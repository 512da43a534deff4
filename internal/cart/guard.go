package cart

import (
	"sync"
	"time"

	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

const defaultLimitFlagTTL = 2 * time.Second

// QuantityGuard clamps quantity changes against live stock ceilings and
// raises a transient per-line "limit reached" flag when an increment is
// rejected. Flags self-clear on a wall-clock timer, independent of any
// network round trip.
type QuantityGuard struct {
	mu     sync.Mutex
	flags  map[string]bool
	timers map[string]*time.Timer
	ttl    time.Duration
	closed bool
}

// NewQuantityGuard builds a guard whose limit flags clear after ttl.
func NewQuantityGuard(ttl time.Duration) *QuantityGuard {
	if ttl <= 0 {
		ttl = defaultLimitFlagTTL
	}
	return &QuantityGuard{
		flags:  make(map[string]bool),
		timers: make(map[string]*time.Timer),
		ttl:    ttl,
	}
}

// Clamp resolves the target quantity for a delta request.
//   - apply=false, err=nil: the request is a no-op (decrement at the floor).
//   - err carries CodeStockExceeded when the ceiling rejects an increment;
//     the line's limit flag is raised as a side effect.
func (g *QuantityGuard) Clamp(line types.EnrichedLine, delta int) (pcs int, apply bool, err error) {
	next := line.Pcs + delta
	if next < 1 {
		next = 1
	}
	if next == line.Pcs {
		// Decrement below 1 never removes the line; removal is explicit.
		return line.Pcs, false, nil
	}

	if delta > 0 {
		if ceiling, known := line.Product.StockCeiling(); known && next > ceiling {
			g.raise(line.ID)
			return line.Pcs, false, pkgerrors.New(pkgerrors.CodeStockExceeded, "requested quantity exceeds available stock").WithDetails(ceiling)
		}
	}
	return next, true, nil
}

// LimitReached reports whether the line's transient limit flag is up.
func (g *QuantityGuard) LimitReached(lineID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flags[lineID]
}

func (g *QuantityGuard) raise(lineID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.flags[lineID] = true
	if timer, ok := g.timers[lineID]; ok {
		timer.Stop()
	}
	g.timers[lineID] = time.AfterFunc(g.ttl, func() {
		g.clear(lineID)
	})
}

func (g *QuantityGuard) clear(lineID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.flags, lineID)
	delete(g.timers, lineID)
}

// Close stops all pending flag timers. Safe to call more than once.
func (g *QuantityGuard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	for id, timer := range g.timers {
		timer.Stop()
		delete(g.timers, id)
		delete(g.flags, id)
	}
}
