package cart

import (
	"context"

	"github.com/sellpoint-ua/cart-engine/internal/gateway"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

// CartGateway is the remote binding surface the engine mutates through.
type CartGateway interface {
	FetchCart(ctx context.Context) ([]types.CartLine, error)
	AddLine(ctx context.Context, productID string, pcs int) error
	ChangePcs(ctx context.Context, lineID string, pcs int) error
	RemoveLine(ctx context.Context, lineID string) error
	ClearCart(ctx context.Context) error
}

// CatalogGateway supplies the product and media reads used for enrichment.
type CatalogGateway interface {
	GetProduct(ctx context.Context, productID string) (*types.ProductSnapshot, error)
	GetPrimaryImage(ctx context.Context, productID string) (string, error)
}

// MediaGateway is the image-lookup slice of the catalog surface, split out
// so the media cache can wrap it alone.
type MediaGateway interface {
	GetPrimaryImage(ctx context.Context, productID string) (string, error)
}

// StoreGateway resolves public seller profiles for group headers.
type StoreGateway interface {
	GetStore(ctx context.Context, storeID string) (*gateway.StoreProfile, error)
}
