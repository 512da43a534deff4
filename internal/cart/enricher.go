package cart

import (
	"context"
	"fmt"

	"github.com/sellpoint-ua/cart-engine/pkg/logger"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const defaultEnrichConcurrency = 8

// Enricher joins raw cart lines with live product snapshots and images.
// Per-line failures degrade the line instead of dropping it: totals must
// never silently lose items.
type Enricher struct {
	catalog     CatalogGateway
	media       *MediaResolver
	concurrency int
	log         *logger.Logger
}

// NewEnricher builds an enricher over the catalog gateway. A nil media
// resolver falls back to uncached image lookups.
func NewEnricher(catalog CatalogGateway, media *MediaResolver, concurrency int, log *logger.Logger) (*Enricher, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog gateway required")
	}
	if concurrency <= 0 {
		concurrency = defaultEnrichConcurrency
	}
	return &Enricher{
		catalog:     catalog,
		media:       media,
		concurrency: concurrency,
		log:         log,
	}, nil
}

// Enrich fetches product and media data for every line in parallel. The
// output preserves input order and always has one entry per input line.
func (e *Enricher) Enrich(ctx context.Context, lines []types.CartLine) []types.EnrichedLine {
	enriched := make([]types.EnrichedLine, len(lines))
	failures := make([]error, len(lines))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency)

	for i, line := range lines {
		i, line := i, line
		group.Go(func() error {
			enriched[i] = e.enrichLine(groupCtx, line, &failures[i])
			// Per-line failures are recorded, never propagated: one bad
			// product must not cancel the sibling fetches.
			return nil
		})
	}
	_ = group.Wait()

	if combined := multierr.Combine(failures...); combined != nil && e.log != nil {
		e.log.Warn(e.log.WithField(ctx, "degraded_lines", len(multierr.Errors(combined))), "cart enrichment degraded")
	}
	return enriched
}

func (e *Enricher) enrichLine(ctx context.Context, line types.CartLine, failure *error) types.EnrichedLine {
	result := types.EnrichedLine{CartLine: line}

	var snapshot *types.ProductSnapshot
	var imageURL string

	pair, pairCtx := errgroup.WithContext(ctx)
	pair.Go(func() error {
		loaded, err := e.catalog.GetProduct(pairCtx, line.ProductID)
		if err != nil {
			return fmt.Errorf("product %s: %w", line.ProductID, err)
		}
		snapshot = loaded
		return nil
	})
	pair.Go(func() error {
		url, err := e.primaryImage(pairCtx, line.ProductID)
		if err != nil {
			// Missing imagery alone does not degrade the line.
			return nil
		}
		imageURL = url
		return nil
	})
	if err := pair.Wait(); err != nil {
		*failure = err
		return result
	}

	result.Product = snapshot
	result.ImageURL = imageURL
	return result
}

func (e *Enricher) primaryImage(ctx context.Context, productID string) (string, error) {
	if e.media != nil {
		return e.media.PrimaryImage(ctx, productID)
	}
	return e.catalog.GetPrimaryImage(ctx, productID)
}
