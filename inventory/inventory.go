// Package inventory is the typed client for stock counts.
package inventory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/smartsales/salesctl/gateway"
)

const collectionPath = "/api/inventory/"

// Record is one product's stock count.
type Record struct {
	ID              int64     `json:"id"`
	Product         int64     `json:"product"`
	ProductName     string    `json:"product_name,omitempty"`
	QuantityInStock int       `json:"quantity_in_stock"`
	ReorderLevel    int       `json:"reorder_level"`
	LastUpdated     time.Time `json:"last_updated,omitempty"`
}

// CreateParams are the writable inventory fields.
type CreateParams struct {
	Product         int64 `json:"product"`
	QuantityInStock int   `json:"quantity_in_stock"`
	ReorderLevel    int   `json:"reorder_level"`
}

// Client calls the inventory endpoints through the gateway.
type Client struct {
	exec gateway.Executor
}

func New(exec gateway.Executor) *Client {
	return &Client{exec: exec}
}

func (c *Client) List(ctx context.Context) ([]Record, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, collectionPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[inventory.List]")
	}
	var list []Record
	if err := resp.JSON(&list); err != nil {
		return nil, errors.Wrap(err, "[inventory.List]")
	}
	return list, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Record, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[inventory.Get]")
	}
	var record Record
	if err := resp.JSON(&record); err != nil {
		return nil, errors.Wrap(err, "[inventory.Get]")
	}
	return &record, nil
}

func (c *Client) Create(ctx context.Context, params CreateParams) (*Record, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPost, collectionPath, params)
	if err != nil {
		return nil, errors.Wrap(err, "[inventory.Create]")
	}
	var record Record
	if err := resp.JSON(&record); err != nil {
		return nil, errors.Wrap(err, "[inventory.Create]")
	}
	return &record, nil
}

func (c *Client) Update(ctx context.Context, id int64, params CreateParams) (*Record, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPut, itemPath(id), params)
	if err != nil {
		return nil, errors.Wrap(err, "[inventory.Update]")
	}
	var record Record
	if err := resp.JSON(&record); err != nil {
		return nil, errors.Wrap(err, "[inventory.Update]")
	}
	return &record, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if _, err := c.exec.Execute(ctx, http.MethodDelete, itemPath(id), nil); err != nil {
		return errors.Wrap(err, "[inventory.Delete]")
	}
	return nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("%s%d/", collectionPath, id)
}

// BelowReorder filters fetched records down to those at or below their
// reorder level.
func BelowReorder(list []Record) []Record {
	low := make([]Record, 0, len(list))
	for _, record := range list {
		if record.QuantityInStock <= record.ReorderLevel {
			low = append(low, record)
		}
	}
	return low
}
