package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

// FetchCart reads the full remote cart for the current user.
func (c *Client) FetchCart(ctx context.Context) ([]types.CartLine, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("Cart/GetByMyId"), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build fetch cart request")
	}
	setBearer(req, token)

	resp, err := c.do(ctx, "fetch_cart", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var lines []types.CartLine
	if err := json.NewDecoder(resp.Body).Decode(&lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart response")
	}
	return lines, nil
}

// AddLine puts a product into the cart with the given quantity.
func (c *Client) AddLine(ctx context.Context, productID string, pcs int) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if pcs < 1 {
		pcs = 1
	}

	form := url.Values{}
	form.Set("ProductId", productID)
	form.Set("Pcs", strconv.Itoa(pcs))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("Cart/AddToCart"), strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build add line request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setBearer(req, token)

	resp, err := c.do(ctx, "add_line", req)
	if err != nil {
		return err
	}
	drainAndClose(resp)
	return nil
}

// ChangePcs updates the quantity of an existing cart line.
func (c *Client) ChangePcs(ctx context.Context, lineID string, pcs int) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(lineID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	if pcs < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "pcs must be at least 1")
	}

	endpoint := c.buildURL("Cart/ChangeCartPcs") + "?id=" + url.QueryEscape(lineID) + "&pcs=" + strconv.Itoa(pcs)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build change pcs request")
	}
	setBearer(req, token)

	resp, err := c.do(ctx, "change_pcs", req)
	if err != nil {
		return err
	}
	drainAndClose(resp)
	return nil
}

// RemoveLine deletes one line from the cart.
func (c *Client) RemoveLine(ctx context.Context, lineID string) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(lineID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}

	endpoint := c.buildURL("Cart/DeleteFromCart") + "?id=" + url.QueryEscape(lineID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build remove line request")
	}
	setBearer(req, token)

	resp, err := c.do(ctx, "remove_line", req)
	if err != nil {
		return err
	}
	drainAndClose(resp)
	return nil
}

// ClearCart empties the remote cart.
func (c *Client) ClearCart(ctx context.Context) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.buildURL("Cart/ClearCartList"), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build clear cart request")
	}
	setBearer(req, token)

	resp, err := c.do(ctx, "clear_cart", req)
	if err != nil {
		return err
	}
	drainAndClose(resp)
	return nil
}
