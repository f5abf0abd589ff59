// Package forecasts is the typed client for demand forecasts.
package forecasts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/smartsales/salesctl/gateway"
)

const collectionPath = "/api/forecasts/"

// Forecast is a predicted demand figure for a product. ForecastDate is a
// plain date string (YYYY-MM-DD) as the backend serializes it.
type Forecast struct {
	ID                int64     `json:"id"`
	Product           int64     `json:"product"`
	ProductName       string    `json:"product_name,omitempty"`
	ForecastDate      string    `json:"forecast_date"`
	PredictedQuantity int       `json:"predicted_quantity"`
	ModelUsed         string    `json:"model_used,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

// CreateParams are the writable forecast fields.
type CreateParams struct {
	Product           int64  `json:"product"`
	ForecastDate      string `json:"forecast_date"`
	PredictedQuantity int    `json:"predicted_quantity"`
	ModelUsed         string `json:"model_used,omitempty"`
}

// Client calls the forecast endpoints through the gateway.
type Client struct {
	exec gateway.Executor
}

func New(exec gateway.Executor) *Client {
	return &Client{exec: exec}
}

func (c *Client) List(ctx context.Context) ([]Forecast, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, collectionPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[forecasts.List]")
	}
	var list []Forecast
	if err := resp.JSON(&list); err != nil {
		return nil, errors.Wrap(err, "[forecasts.List]")
	}
	return list, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Forecast, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[forecasts.Get]")
	}
	var forecast Forecast
	if err := resp.JSON(&forecast); err != nil {
		return nil, errors.Wrap(err, "[forecasts.Get]")
	}
	return &forecast, nil
}

func (c *Client) Create(ctx context.Context, params CreateParams) (*Forecast, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPost, collectionPath, params)
	if err != nil {
		return nil, errors.Wrap(err, "[forecasts.Create]")
	}
	var forecast Forecast
	if err := resp.JSON(&forecast); err != nil {
		return nil, errors.Wrap(err, "[forecasts.Create]")
	}
	return &forecast, nil
}

func (c *Client) Update(ctx context.Context, id int64, params CreateParams) (*Forecast, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPut, itemPath(id), params)
	if err != nil {
		return nil, errors.Wrap(err, "[forecasts.Update]")
	}
	var forecast Forecast
	if err := resp.JSON(&forecast); err != nil {
		return nil, errors.Wrap(err, "[forecasts.Update]")
	}
	return &forecast, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if _, err := c.exec.Execute(ctx, http.MethodDelete, itemPath(id), nil); err != nil {
		return errors.Wrap(err, "[forecasts.Delete]")
	}
	return nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("%s%d/", collectionPath, id)
}
