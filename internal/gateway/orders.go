package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

// OrderRequest is the payload for a single-product order submission.
type OrderRequest struct {
	ProductID       string                `json:"productId"`
	DeliveryPayment int                   `json:"deliveryPayment"`
	DeliveryTo      types.DeliveryAddress `json:"deliveryTo"`
}

// Order is one entry of the buyer's order list, as returned by the backend.
type Order struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	IsPaid    bool   `json:"isPaid"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// SubmitOrder posts a BuyProduct request for exactly one product.
func (c *Client) SubmitOrder(ctx context.Context, order OrderRequest) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(order.ProductID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if order.DeliveryPayment == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("api/Buy/BuyProduct"), bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, token)

	resp, err := c.do(ctx, "submit_order", req)
	if err != nil {
		return err
	}
	drainAndClose(resp)
	return nil
}

// ListMyOrders reads the buyer's order list, used to locate a freshly
// created unpaid order for payment-page routing.
func (c *Client) ListMyOrders(ctx context.Context) ([]Order, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("api/Buy/GetByMyId"), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order list request")
	}
	setBearer(req, token)

	resp, err := c.do(ctx, "list_orders", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var orders []Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order list response")
	}
	return orders, nil
}
