// Package sales is the typed client for sale records and the aggregate
// figures the sales screens derive from a fetched history.
package sales

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/smartsales/salesctl/gateway"
)

const collectionPath = "/api/sales/"

// Item is one line of a sale.
type Item struct {
	ID          int64  `json:"id"`
	Product     int64  `json:"product"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	Subtotal    string `json:"subtotal,omitempty"`
}

// Sale is an order as served by the backend. Total is a decimal string
// exactly as serialized.
type Sale struct {
	ID            int64     `json:"id"`
	Customer      int64     `json:"customer"`
	CustomerName  string    `json:"customer_name,omitempty"`
	Employee      *int64    `json:"employee,omitempty"`
	EmployeeName  string    `json:"employee_name,omitempty"`
	Total         string    `json:"total"`
	Date          time.Time `json:"date,omitempty"`
	Status        string    `json:"status,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Items         []Item    `json:"items,omitempty"`
}

// CreateParams are the writable sale fields.
type CreateParams struct {
	Customer      int64  `json:"customer"`
	Employee      *int64 `json:"employee,omitempty"`
	Total         string `json:"total"`
	Status        string `json:"status,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Summary holds the figures derived by reducing over a fetched history.
type Summary struct {
	Count        int
	Revenue      float64
	AverageValue float64
	LastSale     *time.Time
}

// Client calls the sale endpoints through the gateway.
type Client struct {
	exec gateway.Executor
}

func New(exec gateway.Executor) *Client {
	return &Client{exec: exec}
}

func (c *Client) List(ctx context.Context) ([]Sale, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, collectionPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[sales.List]")
	}
	var list []Sale
	if err := resp.JSON(&list); err != nil {
		return nil, errors.Wrap(err, "[sales.List]")
	}
	return list, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Sale, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[sales.Get]")
	}
	var sale Sale
	if err := resp.JSON(&sale); err != nil {
		return nil, errors.Wrap(err, "[sales.Get]")
	}
	return &sale, nil
}

func (c *Client) Create(ctx context.Context, params CreateParams) (*Sale, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPost, collectionPath, params)
	if err != nil {
		return nil, errors.Wrap(err, "[sales.Create]")
	}
	var sale Sale
	if err := resp.JSON(&sale); err != nil {
		return nil, errors.Wrap(err, "[sales.Create]")
	}
	return &sale, nil
}

func (c *Client) Update(ctx context.Context, id int64, params CreateParams) (*Sale, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPut, itemPath(id), params)
	if err != nil {
		return nil, errors.Wrap(err, "[sales.Update]")
	}
	var sale Sale
	if err := resp.JSON(&sale); err != nil {
		return nil, errors.Wrap(err, "[sales.Update]")
	}
	return &sale, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if _, err := c.exec.Execute(ctx, http.MethodDelete, itemPath(id), nil); err != nil {
		return errors.Wrap(err, "[sales.Delete]")
	}
	return nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("%s%d/", collectionPath, id)
}

// Summarize reduces a fetched history to count, revenue, average sale value,
// and the most recent sale date. Unparseable totals count toward Count but
// contribute nothing to revenue.
func Summarize(list []Sale) Summary {
	summary := Summary{Count: len(list)}
	for i := range list {
		if total, err := strconv.ParseFloat(list[i].Total, 64); err == nil {
			summary.Revenue += total
		}
		if !list[i].Date.IsZero() && (summary.LastSale == nil || list[i].Date.After(*summary.LastSale)) {
			summary.LastSale = &list[i].Date
		}
	}
	if summary.Count > 0 {
		summary.AverageValue = summary.Revenue / float64(summary.Count)
	}
	return summary
}
