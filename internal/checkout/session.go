package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sellpoint-ua/cart-engine/internal/gateway"
	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/enums"
	"github.com/sellpoint-ua/cart-engine/pkg/logger"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

// OrderGateway is the slice of the backend client a checkout session needs.
type OrderGateway interface {
	SubmitOrder(ctx context.Context, order gateway.OrderRequest) error
	ListMyOrders(ctx context.Context) ([]gateway.Order, error)
}

// AxisState tracks one selection axis (delivery or payment) through the
// checkout flow.
type AxisState int

const (
	AxisUnselected AxisState = iota
	AxisExpanded
	AxisConfirmed
)

func (s AxisState) String() string {
	switch s {
	case AxisUnselected:
		return "unselected"
	case AxisExpanded:
		return "expanded"
	case AxisConfirmed:
		return "confirmed"
	}
	return fmt.Sprintf("axis_state(%d)", int(s))
}

// DeliveryDetails are the fields a buyer must fill before confirming a
// delivery method. City carries the human "Name (Region)" format.
type DeliveryDetails struct {
	City   string `validate:"required"`
	Branch string `validate:"required"`
}

// Route tells the caller where to send the buyer after submission.
type Route string

const (
	// RouteSuccess is the order-placed page for cash-on-delivery.
	RouteSuccess Route = "success"
	// RoutePayment is the payment page for a freshly created unpaid order.
	RoutePayment Route = "payment"
	// RouteCreated means the order exists but no payment page could be
	// located; the caller shows a non-fatal notice instead of redirecting.
	RouteCreated Route = "created"
)

// SubmitResult is the outcome of a successful order submission.
type SubmitResult struct {
	Route   Route
	OrderID string
}

// Session is the per-checkout selection state machine. Each axis moves
// Unselected -> Expanded -> Confirmed independently; a mask shrink that
// invalidates either selection resets both axes together.
type Session struct {
	id       string
	resolver *Resolver
	orders   OrderGateway
	validate *validator.Validate
	log      *logger.Logger

	mu              sync.Mutex
	items           []types.EnrichedLine
	eligibility     Eligibility
	deliveryState   AxisState
	deliveryMethod  enums.DeliveryMethod
	deliveryDetails DeliveryDetails
	paymentState    AxisState
	paymentMethod   enums.PaymentMethod
	closed          bool
}

// NewSession opens a checkout session over the given item set, resolving
// its eligibility masks up front.
func NewSession(resolver *Resolver, orders OrderGateway, items []types.EnrichedLine, log *logger.Logger) (*Session, error) {
	if resolver == nil {
		return nil, fmt.Errorf("eligibility resolver required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order gateway required")
	}
	eligibility, err := resolver.Resolve(items)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:          uuid.NewString(),
		resolver:    resolver,
		orders:      orders,
		validate:    validator.New(),
		log:         log,
		items:       cloneItems(items),
		eligibility: eligibility,
	}, nil
}

// ID returns the session identifier used for log correlation.
func (s *Session) ID() string {
	return s.id
}

// Eligibility returns the current intersection masks for the item set.
func (s *Session) Eligibility() Eligibility {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eligibility
}

// Items returns the session's current item set.
func (s *Session) Items() []types.EnrichedLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// DeliveryState reports the delivery axis state and its selected method.
func (s *Session) DeliveryState() (AxisState, enums.DeliveryMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deliveryState, s.deliveryMethod
}

// PaymentState reports the payment axis state and its selected method.
func (s *Session) PaymentState() (AxisState, enums.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentState, s.paymentMethod
}

// SetItems swaps the underlying item set and recomputes both masks. If a
// previously selected method on either axis falls outside its fresh mask,
// every selection is discarded, including entered delivery fields.
func (s *Session) SetItems(items []types.EnrichedLine) error {
	eligibility, err := s.resolver.Resolve(items)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sessionClosed()
	}
	s.items = cloneItems(items)
	s.eligibility = eligibility

	deliveryInvalid := s.deliveryState != AxisUnselected && !eligibility.Delivery.Has(s.deliveryMethod)
	paymentInvalid := s.paymentState != AxisUnselected && !eligibility.Payment.Has(s.paymentMethod)
	if deliveryInvalid || paymentInvalid {
		s.resetLocked()
	}
	return nil
}

// SelectDelivery expands a delivery method, collapsing any other method on
// the axis. Re-selecting a confirmed method drops it back to expanded and
// clears the entered fields.
func (s *Session) SelectDelivery(method enums.DeliveryMethod) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sessionClosed()
	}
	if !s.eligibility.Delivery.Has(method) {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery method is not available for these items")
	}
	s.deliveryMethod = method
	s.deliveryState = AxisExpanded
	s.deliveryDetails = DeliveryDetails{}
	return nil
}

// ConfirmDelivery validates the entered fields and locks the delivery axis.
func (s *Session) ConfirmDelivery(details DeliveryDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sessionClosed()
	}
	if s.deliveryState != AxisExpanded {
		return pkgerrors.New(pkgerrors.CodeValidation, "select a delivery method first")
	}
	if err := s.validate.Struct(details); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "city and branch are required")
	}
	s.deliveryDetails = details
	s.deliveryState = AxisConfirmed
	return nil
}

// SelectPayment expands a payment method, collapsing any other method on
// the axis.
func (s *Session) SelectPayment(method enums.PaymentMethod) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sessionClosed()
	}
	if !s.eligibility.Payment.Has(method) {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is not available for these items")
	}
	s.paymentMethod = method
	s.paymentState = AxisExpanded
	return nil
}

// ConfirmPayment locks the payment axis. Payment has no extra fields.
func (s *Session) ConfirmPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sessionClosed()
	}
	if s.paymentState != AxisExpanded {
		return pkgerrors.New(pkgerrors.CodeValidation, "select a payment method first")
	}
	s.paymentState = AxisConfirmed
	return nil
}

// Reset clears both axes back to unselected and discards entered fields.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.deliveryState = AxisUnselected
	s.deliveryMethod = ""
	s.deliveryDetails = DeliveryDetails{}
	s.paymentState = AxisUnselected
	s.paymentMethod = ""
}

// Submit checks the preconditions, posts the order, and decides the
// post-submit route. Any unmet precondition aborts before the network call.
//
// Delivery is mandatory only when the item set has at least one available
// delivery method; a session with an empty delivery mask submits without
// an address. The order targets the first item of the session.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	order, payment, err := s.buildOrder()
	if err != nil {
		return SubmitResult{}, err
	}

	ctx = s.withSessionLog(ctx)
	if err := s.orders.SubmitOrder(ctx, order); err != nil {
		return SubmitResult{}, err
	}
	if s.log != nil {
		s.log.Info(s.log.WithProductID(ctx, order.ProductID), "order submitted")
	}

	if payment == enums.PaymentMethodCOD {
		return SubmitResult{Route: RouteSuccess}, nil
	}
	return s.locatePaymentRoute(ctx, order.ProductID), nil
}

func (s *Session) buildOrder() (gateway.OrderRequest, enums.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return gateway.OrderRequest{}, "", sessionClosed()
	}
	if s.paymentState != AxisConfirmed {
		return gateway.OrderRequest{}, "", pkgerrors.New(pkgerrors.CodeValidation, "confirm a payment method before submitting")
	}
	if s.eligibility.Delivery != 0 && s.deliveryState != AxisConfirmed {
		return gateway.OrderRequest{}, "", pkgerrors.New(pkgerrors.CodeValidation, "confirm a delivery method before submitting")
	}
	if len(s.items) == 0 {
		return gateway.OrderRequest{}, "", pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}
	productID := strings.TrimSpace(s.items[0].ProductID)
	if productID == "" {
		return gateway.OrderRequest{}, "", pkgerrors.New(pkgerrors.CodeValidation, "item has no resolvable product id")
	}

	order := gateway.OrderRequest{
		ProductID:       productID,
		DeliveryPayment: s.paymentMethod.ServerCode(),
	}
	if s.deliveryState == AxisConfirmed {
		settlement, region := types.SplitSettlement(s.deliveryDetails.City)
		order.DeliveryTo = types.DeliveryAddress{
			Address:    s.deliveryDetails.Branch,
			Settlement: settlement,
			Region:     region,
		}
	}
	return order, s.paymentMethod, nil
}

// locatePaymentRoute makes a single lookup for the freshly created unpaid
// order. Failure to find it is not fatal; the order already exists.
func (s *Session) locatePaymentRoute(ctx context.Context, productID string) SubmitResult {
	orders, err := s.orders.ListMyOrders(ctx)
	if err != nil {
		if s.log != nil {
			s.log.Error(ctx, "order created but payment lookup failed", err)
		}
		return SubmitResult{Route: RouteCreated}
	}
	for _, order := range orders {
		if order.ProductID == productID && !order.IsPaid {
			return SubmitResult{Route: RoutePayment, OrderID: order.ID}
		}
	}
	if s.log != nil {
		s.log.Warn(ctx, "order created but no unpaid order found for redirect")
	}
	return SubmitResult{Route: RouteCreated}
}

// Close abandons the session. Later calls fail and in-flight results must
// not be applied by the caller.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.resetLocked()
}

func (s *Session) withSessionLog(ctx context.Context) context.Context {
	if s.log == nil {
		return ctx
	}
	return s.log.WithSessionID(ctx, s.id)
}

func sessionClosed() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "checkout session is closed")
}

func cloneItems(items []types.EnrichedLine) []types.EnrichedLine {
	out := make([]types.EnrichedLine, len(items))
	copy(out, items)
	return out
}
