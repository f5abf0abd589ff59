// Package customers is the typed client for the customer records collection.
package customers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/smartsales/salesctl/gateway"
)

const collectionPath = "/api/customers/"

// Customer is a customer record as served by the backend.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// CreateParams are the writable customer fields.
type CreateParams struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Client calls the customer endpoints through the gateway.
type Client struct {
	exec gateway.Executor
}

func New(exec gateway.Executor) *Client {
	return &Client{exec: exec}
}

func (c *Client) List(ctx context.Context) ([]Customer, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, collectionPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[customers.List]")
	}
	var list []Customer
	if err := resp.JSON(&list); err != nil {
		return nil, errors.Wrap(err, "[customers.List]")
	}
	return list, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Customer, error) {
	resp, err := c.exec.Execute(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[customers.Get]")
	}
	var customer Customer
	if err := resp.JSON(&customer); err != nil {
		return nil, errors.Wrap(err, "[customers.Get]")
	}
	return &customer, nil
}

func (c *Client) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPost, collectionPath, params)
	if err != nil {
		return nil, errors.Wrap(err, "[customers.Create]")
	}
	var customer Customer
	if err := resp.JSON(&customer); err != nil {
		return nil, errors.Wrap(err, "[customers.Create]")
	}
	return &customer, nil
}

func (c *Client) Update(ctx context.Context, id int64, params CreateParams) (*Customer, error) {
	resp, err := c.exec.Execute(ctx, http.MethodPut, itemPath(id), params)
	if err != nil {
		return nil, errors.Wrap(err, "[customers.Update]")
	}
	var customer Customer
	if err := resp.JSON(&customer); err != nil {
		return nil, errors.Wrap(err, "[customers.Update]")
	}
	return &customer, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if _, err := c.exec.Execute(ctx, http.MethodDelete, itemPath(id), nil); err != nil {
		return errors.Wrap(err, "[customers.Delete]")
	}
	return nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("%s%d/", collectionPath, id)
}

// Search filters an already-fetched collection by a case-insensitive
// substring match on name, email, or phone.
func Search(list []Customer, term string) []Customer {
	if term == "" {
		return list
	}
	term = strings.ToLower(term)
	matched := make([]Customer, 0, len(list))
	for _, customer := range list {
		if strings.Contains(strings.ToLower(customer.Name), term) ||
			strings.Contains(strings.ToLower(customer.Email), term) ||
			(customer.Phone != "" && strings.Contains(customer.Phone, term)) {
			matched = append(matched, customer)
		}
	}
	return matched
}
