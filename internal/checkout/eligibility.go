package checkout

import (
	"github.com/sellpoint-ua/cart-engine/pkg/config"
	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/enums"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

// Platform defaults assumed for a product that carries no capability mask.
// Delivery defaults to every carrier; payment defaults to cash-on-delivery
// and card, the two methods every seller must accept.
const (
	DefaultDeliveryMask = enums.DeliveryMaskAll
	DefaultPaymentMask  = enums.PaymentBitCOD | enums.PaymentBitCard
)

// Eligibility is the pair of capability masks valid for every item of a
// checkout session simultaneously.
type Eligibility struct {
	Delivery enums.DeliveryMask
	Payment  enums.PaymentMask
}

// Resolver intersects per-item capability masks into session eligibility.
//
// The fallback policy decides what a missing mask means. Open treats the
// item as carrying the platform default, so one degraded product snapshot
// cannot zero out the whole group. Closed treats it as supporting nothing,
// which blocks checkout until the snapshot loads.
type Resolver struct {
	failClosed bool
}

// NewResolver builds a resolver with the configured fallback policy.
func NewResolver(cfg config.EligibilityConfig) *Resolver {
	return &Resolver{failClosed: cfg.FailClosed()}
}

// Resolve computes the masks shared by every item in the set. A single item
// lacking a capability removes that capability for the whole session.
func (r *Resolver) Resolve(items []types.EnrichedLine) (Eligibility, error) {
	if len(items) == 0 {
		return Eligibility{}, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}

	result := Eligibility{
		Delivery: enums.DeliveryMaskAll,
		Payment:  enums.PaymentMaskAll,
	}
	for _, item := range items {
		result.Delivery &= r.deliveryMask(item)
		result.Payment &= r.paymentMask(item)
	}
	return result, nil
}

func (r *Resolver) deliveryMask(item types.EnrichedLine) enums.DeliveryMask {
	if item.Product == nil || item.Product.DeliveryType == nil {
		if r.failClosed {
			return 0
		}
		return DefaultDeliveryMask
	}
	return *item.Product.DeliveryType
}

func (r *Resolver) paymentMask(item types.EnrichedLine) enums.PaymentMask {
	if item.Product == nil || item.Product.PaymentOptions == nil {
		if r.failClosed {
			return 0
		}
		return DefaultPaymentMask
	}
	return *item.Product.PaymentOptions
}
