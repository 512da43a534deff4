package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

// ProductMedia is one media entry attached to a product listing.
type ProductMedia struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
	Order     int    `json:"order"`
}

// StoreProfile is the public seller information used for group headers.
type StoreProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatarUrl,omitempty"`
}

// GetProduct fetches the live product snapshot. Requires no cart ownership,
// but the token is attached when present so restricted listings resolve.
func (c *Client) GetProduct(ctx context.Context, productID string) (*types.ProductSnapshot, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	endpoint := c.buildURL("api/Product/get-by-id/" + url.PathEscape(productID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build product request")
	}
	if token, ok := c.credentials.Token(ctx); ok {
		setBearer(req, token)
	}

	resp, err := c.do(ctx, "get_product", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var snapshot types.ProductSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product response")
	}
	return &snapshot, nil
}

// GetPrimaryImage resolves the primary media URL for a product, or "" when
// the product has no media.
func (c *Client) GetPrimaryImage(ctx context.Context, productID string) (string, error) {
	if strings.TrimSpace(productID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	endpoint := c.buildURL("api/ProductMedia/by-product-id/" + url.PathEscape(productID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build media request")
	}

	resp, err := c.do(ctx, "get_media", req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var media []ProductMedia
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode media response")
	}
	return primaryImageURL(media), nil
}

func primaryImageURL(media []ProductMedia) string {
	if len(media) == 0 {
		return ""
	}
	best := media[0]
	for _, entry := range media[1:] {
		if entry.IsPrimary && !best.IsPrimary {
			best = entry
			continue
		}
		if entry.IsPrimary == best.IsPrimary && entry.Order < best.Order {
			best = entry
		}
	}
	return best.URL
}

// GetStore fetches public seller information. No auth required.
func (c *Client) GetStore(ctx context.Context, storeID string) (*StoreProfile, error) {
	if strings.TrimSpace(storeID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	endpoint := c.buildURL("api/Store/GetStoreById") + "?storeId=" + url.QueryEscape(storeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build store request")
	}

	resp, err := c.do(ctx, "get_store", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var profile StoreProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode store response")
	}
	return &profile, nil
}
