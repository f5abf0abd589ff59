// Package client assembles the Smart Sales client: credential storage, the
// session store, the authenticated request gateway, and the typed resource
// clients, behind one handle.
package client

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/smartsales/salesctl/customers"
	"github.com/smartsales/salesctl/dashboard"
	"github.com/smartsales/salesctl/forecasts"
	"github.com/smartsales/salesctl/gateway"
	"github.com/smartsales/salesctl/internal/config"
	"github.com/smartsales/salesctl/inventory"
	"github.com/smartsales/salesctl/products"
	"github.com/smartsales/salesctl/sales"
	"github.com/smartsales/salesctl/session"
	"github.com/smartsales/salesctl/session/credstore"
)

// ProfileParams are the writable profile fields.
type ProfileParams struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Client is the single handle feature code works with: session state plus
// one call path per backend collection.
type Client struct {
	Session *session.Store
	Gateway *gateway.Gateway

	Customers *customers.Client
	Products  *products.Client
	Sales     *sales.Client
	Inventory *inventory.Client
	Forecasts *forecasts.Client
	Dashboard *dashboard.Client

	log zerolog.Logger
}

// Option modifies a Client during construction.
type Option func(*builder)

type builder struct {
	log        zerolog.Logger
	httpClient *http.Client
	creds      credstore.Store
}

// WithLogger sets the logger used by all layers.
func WithLogger(log zerolog.Logger) Option {
	return func(b *builder) {
		b.log = log
	}
}

// WithHTTPClient sets the HTTP client used by the session store and gateway.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(b *builder) {
		b.httpClient = httpClient
	}
}

// WithCredentialStore overrides the credential store built from config.
func WithCredentialStore(creds credstore.Store) Option {
	return func(b *builder) {
		b.creds = creds
	}
}

// New wires a client from configuration. The credential store is encrypted
// when a credentials key is configured, plain JSON otherwise.
func New(cfg config.Config, options ...Option) (*Client, error) {
	b := &builder{
		log:        zerolog.Nop(),
		httpClient: &http.Client{Timeout: cfg.GetRequestTimeout()},
	}
	for _, opt := range options {
		opt(b)
	}

	creds := b.creds
	if creds == nil {
		var err error
		if key := cfg.GetCredentialsKey(); key != "" {
			creds, err = credstore.NewEncryptedStore(cfg.GetCredentialsFile(), key)
		} else {
			creds, err = credstore.NewFileStore(cfg.GetCredentialsFile())
		}
		if err != nil {
			return nil, errors.Wrap(err, "[client.New] credential store")
		}
	}

	store, err := session.New(cfg.GetBaseURL(), creds,
		session.WithHTTPClient(b.httpClient),
		session.WithLogger(b.log.With().Str("component", "session").Logger()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[client.New] session store")
	}

	gw, err := gateway.New(cfg.GetBaseURL(), store,
		gateway.WithHTTPClient(b.httpClient),
		gateway.WithLogger(b.log.With().Str("component", "gateway").Logger()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[client.New] gateway")
	}

	return &Client{
		Session:   store,
		Gateway:   gw,
		Customers: customers.New(gw),
		Products:  products.New(gw),
		Sales:     sales.New(gw),
		Inventory: inventory.New(gw),
		Forecasts: forecasts.New(gw),
		Dashboard: dashboard.New(gw),
		log:       b.log,
	}, nil
}

// UpdateProfile writes profile fields through the gateway and applies the
// returned document to the session.
func (c *Client) UpdateProfile(ctx context.Context, params ProfileParams) (*session.User, error) {
	resp, err := c.Gateway.Execute(ctx, http.MethodPut, session.RouteProfile, params)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateProfile]")
	}
	var out struct {
		User *session.User `json:"user"`
	}
	if err := resp.JSON(&out); err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateProfile]")
	}
	if out.User == nil {
		return nil, errors.New("[Client.UpdateProfile] response missing user")
	}
	c.Session.SetUser(out.User)
	return out.User, nil
}
