// Package products is the typed client for the product catalog, including
// the low-stock listing and the filtering the product screens apply over an
// already-fetched catalog.
package products

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/smartsales/salesctl/gateway"
)

const (
	collectionPath = "/api/products/"
	lowStockPath   = "/api/products/low_stock/"
)

// StockStatus classifies a product's inventory position.
type StockStatus string

const (
	StockOK  StockStatus = "in-stock"
	StockLow StockStatus = "low-stock"
	StockOut StockStatus = "out-of-stock"
)

// Product is a catalog entry. Price and Cost are decimal strings exactly as
// the backend serializes them.
type Product struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description,omitempty"`
	Price                 string    `json:"price"`
	Cost                  string    `json:"cost"`
	Category              string    `json:"category"`
	Unit                  string    `json:"unit"`
	CreatedAt             time.Time `json:"created_at,omitempty"`
	InventoryStock        int       `json:"inventory_stock"`
	InventoryReorderLevel int       `json:"inventory_reorder_level"`
}

// CreateParams are the writable product fields. InventoryStock and
// ReorderLevel seed the associated inventory record on creation.
type CreateParams struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Price          string `json:"price"`
	Cost           string `json:"cost"`
	Category       string `json:"category"`
	Unit           string `json:"unit,omitempty"`
	InventoryStock int    `json:"inventory_stock,omitempty"`
	ReorderLevel   int    `json:"reorder_level,omitempty"`
}

// Client calls the product endpoints through the gateway.
type Client struct {
	exec gateway.Executor
}

func New(exec gateway.Executor) *Client {
	return &Client{exec: exec}
}

func (c *Client) List(ctx context.Context) ([]Product, error) {
	return c.list(ctx, collectionPath)
}

// LowStock returns products at or below their reorder level.
func (c *Client) LowStock(ctx context.Context) ([]Product, error) {
	return c.list(ctx, lowStockPath)
}

func (c *Client) list(ctx context.Context, path string) ([]Product, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[products.List]")
	}
	var list []Product
	if err := resp.JSON(&list); err != nil {
		return nil, errors.Wrap(err, "[products.List]")
	}
	return list, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Product, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[products.Get]")
	}
	var product Product
	if err := resp.JSON(&product); err != nil {
		return nil, errors.Wrap(err, "[products.Get]")
	}
	return &product, nil
}

func (c *Client) Create(ctx context.Context, params CreateParams) (*Product, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPost, collectionPath, params)
	if err != nil {
		return nil, errors.Wrap(err, "[products.Create]")
	}
	var product Product
	if err := resp.JSON(&product); err != nil {
		return nil, errors.Wrap(err, "[products.Create]")
	}
	return &product, nil
}

func (c *Client) Update(ctx context.Context, id int64, params CreateParams) (*Product, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPut, itemPath(id), params)
	if err != nil {
		return nil, errors.Wrap(err, "[products.Update]")
	}
	var product Product
	if err := resp.JSON(&product); err != nil {
		return nil, errors.Wrap(err, "[products.Update]")
	}
	return &product, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if _, err := c.exec.Execute(ctx, http.MethodDelete, itemPath(id), nil); err != nil {
		return errors.Wrap(err, "[products.Delete]")
	}
	return nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("%s%d/", collectionPath, id)
}

// StatusOf classifies a product's stock position against its reorder level.
func StatusOf(p Product) StockStatus {
	switch {
	case p.InventoryStock <= 0:
		return StockOut
	case p.InventoryStock <= p.InventoryReorderLevel:
		return StockLow
	default:
		return StockOK
	}
}

// Categories returns the distinct category names in a fetched catalog,
// sorted alphabetically.
func Categories(list []Product) []string {
	seen := make(map[string]struct{})
	for _, product := range list {
		if product.Category != "" {
			seen[product.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Filter narrows an already-fetched catalog by search term, category, and
// stock status. Empty arguments match everything.
func Filter(list []Product, term, category string, status StockStatus) []Product {
	term = strings.ToLower(term)
	matched := make([]Product, 0, len(list))
	for _, product := range list {
		if term != "" &&
			!strings.Contains(strings.ToLower(product.Name), term) &&
			!strings.Contains(strings.ToLower(product.Description), term) {
			continue
		}
		if category != "" && product.Category != category {
			continue
		}
		if status != "" && StatusOf(product) != status {
			continue
		}
		matched = append(matched, product)
	}
	return matched
}
