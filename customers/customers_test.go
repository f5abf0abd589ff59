package customers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smartsales/salesctl/customers"
)

func TestSearch(t *testing.T) {
	list := []customers.Customer{
		{ID: 1, Name: "Alice Johnson", Email: "alice@example.com", Phone: "555-0101"},
		{ID: 2, Name: "Bob Smith", Email: "bob@corp.example.com", Phone: "555-0102"},
		{ID: 3, Name: "Carol Jones", Email: "carol@example.com"},
	}

	require.Equal(t, list, customers.Search(list, ""))

	byName := customers.Search(list, "alice")
	require.Len(t, byName, 1)
	require.Equal(t, int64(1), byName[0].ID)

	byEmail := customers.Search(list, "corp")
	require.Len(t, byEmail, 1)
	require.Equal(t, int64(2), byEmail[0].ID)

	byPhone := customers.Search(list, "0102")
	require.Len(t, byPhone, 1)
	require.Equal(t, int64(2), byPhone[0].ID)

	// Case-insensitive on name and email.
	require.Len(t, customers.Search(list, "JONES"), 1)

	require.Empty(t, customers.Search(list, "no such customer"))
}
