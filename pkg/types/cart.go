package types

import (
	"github.com/sellpoint-ua/cart-engine/pkg/enums"
	"github.com/shopspring/decimal"
)

// DefaultSellerID labels lines whose product carries no seller reference.
// Legacy listings predate the seller field and must still group somewhere.
const DefaultSellerID = "seller"

// CartLine is one (product, quantity) pairing owned by the remote cart.
type CartLine struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Pcs       int    `json:"pcs"`
}

// ProductSnapshot is the live product state joined onto a cart line.
// Immutable per fetch; price and stock fields are never patched locally.
type ProductSnapshot struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Price          decimal.Decimal     `json:"price"`
	DiscountPrice  *decimal.Decimal    `json:"discountPrice,omitempty"`
	HasDiscount    bool                `json:"hasDiscount"`
	FinalPrice     *decimal.Decimal    `json:"finalPrice,omitempty"`
	Quantity       *int                `json:"quantity,omitempty"`
	QuantityStatus string              `json:"quantityStatus,omitempty"`
	SellerID       string              `json:"sellerId,omitempty"`
	DeliveryType   *enums.DeliveryMask `json:"deliveryType,omitempty"`
	PaymentOptions *enums.PaymentMask  `json:"paymentOptions,omitempty"`
}

// EffectivePrice resolves the price a buyer actually pays for one unit.
// Precedence: discounted final price, then discount price, then list price;
// without a discount the final price still wins over the list price.
func (p *ProductSnapshot) EffectivePrice() decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if p.HasDiscount {
		if p.FinalPrice != nil {
			return *p.FinalPrice
		}
		if p.DiscountPrice != nil {
			return *p.DiscountPrice
		}
		return p.Price
	}
	if p.FinalPrice != nil {
		return *p.FinalPrice
	}
	return p.Price
}

// StockCeiling returns the known stock limit for the product, if any.
func (p *ProductSnapshot) StockCeiling() (int, bool) {
	if p == nil || p.Quantity == nil {
		return 0, false
	}
	return *p.Quantity, true
}

// EnrichedLine is a cart line joined with its product snapshot and image.
// A failed enrichment leaves Product nil; the line stays visible, degraded.
type EnrichedLine struct {
	CartLine
	Product  *ProductSnapshot `json:"product,omitempty"`
	ImageURL string           `json:"imageUrl,omitempty"`
}

// SellerID returns the owning seller, tolerating missing product data.
func (l EnrichedLine) SellerID() string {
	if l.Product == nil || l.Product.SellerID == "" {
		return DefaultSellerID
	}
	return l.Product.SellerID
}

// LineTotal is the effective unit price multiplied by the quantity.
func (l EnrichedLine) LineTotal() decimal.Decimal {
	return l.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Pcs)))
}

// SellerGroup is the set of cart lines belonging to one seller, checked out
// as one order. Subtotal is rounded to a whole currency unit per group.
type SellerGroup struct {
	SellerID   string         `json:"sellerId"`
	SellerName string         `json:"sellerName,omitempty"`
	Lines      []EnrichedLine `json:"lines"`
	Subtotal   int64          `json:"subtotal"`
}
