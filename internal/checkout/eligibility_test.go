package checkout

import (
	"testing"

	"github.com/sellpoint-ua/cart-engine/pkg/config"
	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/enums"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

func deliveryPtr(m enums.DeliveryMask) *enums.DeliveryMask { return &m }
func paymentPtr(m enums.PaymentMask) *enums.PaymentMask    { return &m }

func itemWithMasks(id string, delivery *enums.DeliveryMask, payment *enums.PaymentMask) types.EnrichedLine {
	return types.EnrichedLine{
		CartLine: types.CartLine{ID: id, ProductID: "p-" + id, Pcs: 1},
		Product: &types.ProductSnapshot{
			ID:             "p-" + id,
			DeliveryType:   delivery,
			PaymentOptions: payment,
		},
	}
}

func openResolver() *Resolver {
	return NewResolver(config.EligibilityConfig{FallbackPolicy: config.FallbackOpen})
}

func closedResolver() *Resolver {
	return NewResolver(config.EligibilityConfig{FallbackPolicy: config.FallbackClosed})
}

func TestResolveIntersectsMasks(t *testing.T) {
	t.Parallel()
	items := []types.EnrichedLine{
		itemWithMasks("a", deliveryPtr(enums.DeliveryBitNova|enums.DeliveryBitSelf), paymentPtr(enums.PaymentMaskAll)),
		itemWithMasks("b", deliveryPtr(enums.DeliveryBitNova|enums.DeliveryBitRozetka), paymentPtr(enums.PaymentBitCOD|enums.PaymentBitCard)),
	}

	got, err := openResolver().Resolve(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Delivery != enums.DeliveryBitNova {
		t.Fatalf("expected NOVA only, got %b", got.Delivery)
	}
	if got.Payment != enums.PaymentBitCOD|enums.PaymentBitCard {
		t.Fatalf("expected cod|card, got %b", got.Payment)
	}
}

func TestResolveEmptyIntersection(t *testing.T) {
	t.Parallel()
	items := []types.EnrichedLine{
		itemWithMasks("a", deliveryPtr(enums.DeliveryBitNova), paymentPtr(enums.PaymentBitMono)),
		itemWithMasks("b", deliveryPtr(enums.DeliveryBitSelf), paymentPtr(enums.PaymentBitPumb)),
	}

	got, err := openResolver().Resolve(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Delivery != 0 || got.Payment != 0 {
		t.Fatalf("expected empty masks, got delivery=%b payment=%b", got.Delivery, got.Payment)
	}
}

func TestResolveFallbackOpen(t *testing.T) {
	t.Parallel()
	items := []types.EnrichedLine{
		itemWithMasks("a", deliveryPtr(enums.DeliveryMaskAll), paymentPtr(enums.PaymentMaskAll)),
		{CartLine: types.CartLine{ID: "degraded", ProductID: "p-x", Pcs: 1}},
	}

	got, err := openResolver().Resolve(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Delivery != DefaultDeliveryMask {
		t.Fatalf("open fallback should assume default delivery, got %b", got.Delivery)
	}
	if got.Payment != DefaultPaymentMask {
		t.Fatalf("open fallback should assume default payment, got %b", got.Payment)
	}
}

func TestResolveFallbackClosed(t *testing.T) {
	t.Parallel()
	items := []types.EnrichedLine{
		itemWithMasks("a", deliveryPtr(enums.DeliveryMaskAll), paymentPtr(enums.PaymentMaskAll)),
		{CartLine: types.CartLine{ID: "degraded", ProductID: "p-x", Pcs: 1}},
	}

	got, err := closedResolver().Resolve(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Delivery != 0 || got.Payment != 0 {
		t.Fatalf("closed fallback must zero the masks, got delivery=%b payment=%b", got.Delivery, got.Payment)
	}
}

func TestResolveMissingMaskOnOneAxisOnly(t *testing.T) {
	t.Parallel()
	items := []types.EnrichedLine{
		itemWithMasks("a", nil, paymentPtr(enums.PaymentMaskAll)),
	}

	got, err := openResolver().Resolve(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Delivery != DefaultDeliveryMask {
		t.Fatalf("nil delivery mask falls back to default, got %b", got.Delivery)
	}
	if got.Payment != enums.PaymentMaskAll {
		t.Fatalf("explicit payment mask must be honored, got %b", got.Payment)
	}
}

func TestResolveEmptyItemSet(t *testing.T) {
	t.Parallel()
	_, err := openResolver().Resolve(nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
