package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/xenking/pos-backoffice/internal/domain/stats"
	"github.com/xenking/pos-backoffice/internal/domain/stock"
)

// Inventory calls the inventory service.
type Inventory struct {
	baseURL string
	http    *http.Client
}

// NewInventory creates an inventory client for the given base URL.
func NewInventory(baseURL string, hc *http.Client) *Inventory {
	return &Inventory{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// stockUpdateRequest is the batched update-stock body; each entry is applied
// additively by the receiver.
type stockUpdateRequest struct {
	StockUpdates []stock.Update `json:"stockUpdates"`
}

// UpdateStock dispatches a batch of signed stock adjustments.
func (c *Inventory) UpdateStock(ctx context.Context, updates []stock.Update) error {
	return postJSON(ctx, c.http, c.baseURL+"/update-stock", stockUpdateRequest{StockUpdates: updates})
}

// Products fetches the live product catalog, keyed by sku.
func (c *Inventory) Products(ctx context.Context) (map[string]stats.Product, error) {
	var products map[string]stats.Product
	if err := getJSON(ctx, c.http, c.baseURL+"/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}
