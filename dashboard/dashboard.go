// Package dashboard fetches the aggregate statistics document.
package dashboard

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/smartsales/salesctl/gateway"
)

const statsPath = "/api/dashboard/"

// Stats is the dashboard statistics document.
type Stats struct {
	TotalCustomers      int     `json:"total_customers"`
	TotalProducts       int     `json:"total_products"`
	TotalSales          int     `json:"total_sales"`
	TotalRevenue        float64 `json:"total_revenue"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
	LowStockCount       int     `json:"low_stock_count"`
	RecentSales30Days   int     `json:"recent_sales_30_days"`
	RecentRevenue30Days float64 `json:"recent_revenue_30_days"`
}

// Client fetches dashboard statistics through the gateway.
type Client struct {
	exec gateway.Executor
}

func New(exec gateway.Executor) *Client {
	return &Client{exec: exec}
}

func (c *Client) Get(ctx context.Context) (*Stats, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, statsPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[dashboard.Get]")
	}
	var stats Stats
	if err := resp.JSON(&stats); err != nil {
		return nil, errors.Wrap(err, "[dashboard.Get]")
	}
	return &stats, nil
}
