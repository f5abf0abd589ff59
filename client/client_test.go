package client_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartsales/salesctl/client"
	"github.com/smartsales/salesctl/customers"
	"github.com/smartsales/salesctl/gateway"
	"github.com/smartsales/salesctl/internal/testserver"
	"github.com/smartsales/salesctl/internal/utils"
	"github.com/smartsales/salesctl/sales"
	"github.com/smartsales/salesctl/session"
	credstorefake "github.com/smartsales/salesctl/session/credstore/repofake"
)

const (
	testUsername = "jane"
	testPassword = "password123"
)

type testConfig struct {
	baseURL string
}

func (c testConfig) GetBaseURL() string               { return c.baseURL }
func (c testConfig) GetRequestTimeout() time.Duration { return 30 * time.Second }
func (c testConfig) GetAppName() string               { return "Smart Sales" }
func (c testConfig) GetCredentialsFile() string       { return "" }
func (c testConfig) GetCredentialsKey() string        { return "" }
func (c testConfig) GetLogLevel() string              { return "disabled" }

// testFixture is a full client wired against the stub backend.
type testFixture struct {
	server *testserver.Server
	client *client.Client
	creds  *credstorefake.FakeCredStore
}

func setupTestFixture(t *testing.T, options ...testserver.Option) *testFixture {
	t.Helper()

	server := testserver.New(options...)
	server.SeedUser(testUsername, testPassword, "jane.doe@example.com", "Jane", "Doe")

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	creds := credstorefake.NewFakeCredStore()
	c, err := client.New(testConfig{baseURL: httpServer.URL}, client.WithCredentialStore(creds))
	require.NoError(t, err)

	return &testFixture{server: server, client: c, creds: creds}
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	_, err := f.client.Session.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
}

func TestLoginThenListCustomers(t *testing.T) {
	f := setupTestFixture(t)
	f.server.SeedCustomer("Alice Johnson", "alice@example.com", "555-0101", "")
	f.login(t)

	list, err := f.client.Customers.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Alice Johnson", list[0].Name)
}

func TestCustomerLifecycle(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	ctx := context.Background()

	created, err := f.client.Customers.Create(ctx, customers.CreateParams{
		Name:  "Bob Smith",
		Email: "bob@example.com",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	fetched, err := f.client.Customers.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Bob Smith", fetched.Name)

	updated, err := f.client.Customers.Update(ctx, created.ID, customers.CreateParams{
		Name:  "Robert Smith",
		Email: "bob@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Robert Smith", updated.Name)

	require.NoError(t, f.client.Customers.Delete(ctx, created.ID))

	_, err = f.client.Customers.Get(ctx, created.ID)
	var statusErr *gateway.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 404, statusErr.StatusCode)
}

func TestExpiredAccessIsRefreshedTransparently(t *testing.T) {
	f := setupTestFixture(t)
	f.server.SeedCustomer("Alice Johnson", "alice@example.com", "", "")
	f.login(t)

	f.server.InvalidateAccessTokens()

	list, err := f.client.Customers.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int32(1), f.server.RefreshCount())
	require.True(t, f.client.Session.IsAuthenticated())
}

func TestRevokedRefreshForcesLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	f.server.InvalidateAccessTokens()
	f.server.RevokeRefreshTokens()

	_, err := f.client.Customers.List(context.Background())
	require.Error(t, err)

	var statusErr *gateway.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 401, statusErr.StatusCode)

	require.Equal(t, session.StatusLoggedOut, f.client.Session.Status())
	require.False(t, f.client.Session.IsAuthenticated())

	pair, err := f.creds.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestConcurrentCallsShareOneRefresh(t *testing.T) {
	f := setupTestFixture(t, testserver.WithRefreshDelay(200*time.Millisecond))
	f.server.SeedCustomer("Alice Johnson", "alice@example.com", "", "")
	f.login(t)

	f.server.InvalidateAccessTokens()

	const callers = 6
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Customers.List(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), f.server.RefreshCount())
}

func TestSaleCreateKeepsOptionalEmployee(t *testing.T) {
	f := setupTestFixture(t)
	alice := f.server.SeedCustomer("Alice Johnson", "alice@example.com", "", "")
	f.login(t)

	sale, err := f.client.Sales.Create(context.Background(), sales.CreateParams{
		Customer: alice,
		Employee: utils.Ptr(int64(7)),
		Total:    "29.00",
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), utils.Value(sale.Employee))
	require.Equal(t, "Alice Johnson", sale.CustomerName)
	require.Equal(t, "Completed", sale.Status)
}

func TestUpdateProfile(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	user, err := f.client.UpdateProfile(context.Background(), client.ProfileParams{
		FirstName: "Janet",
		Email:     "janet.doe@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Janet", user.FirstName)
	require.Equal(t, "janet.doe@example.com", user.Email)
	require.Equal(t, "Janet", f.client.Session.User().FirstName)
}

func TestLowStockListing(t *testing.T) {
	f := setupTestFixture(t)
	f.server.SeedProduct("Coffee Beans", "Beverages", "14.50", "8.00", 40, 10)
	f.server.SeedProduct("Green Tea", "Beverages", "9.90", "4.50", 6, 10)
	f.login(t)

	low, err := f.client.Products.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Green Tea", low[0].Name)
}

func TestDashboardStats(t *testing.T) {
	f := setupTestFixture(t)
	alice := f.server.SeedCustomer("Alice Johnson", "alice@example.com", "", "")
	f.server.SeedProduct("Coffee Beans", "Beverages", "14.50", "8.00", 40, 10)
	f.server.SeedSale(alice, "29.00", time.Now().Add(-24*time.Hour))

	stats, err := f.client.Dashboard.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalCustomers)
	require.Equal(t, 1, stats.TotalProducts)
	require.Equal(t, 1, stats.TotalSales)
	require.InDelta(t, 29.00, stats.TotalRevenue, 0.001)
	require.InDelta(t, 320.00, stats.TotalInventoryValue, 0.001)
	require.Equal(t, 1, stats.RecentSales30Days)
}
