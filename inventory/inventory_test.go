package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smartsales/salesctl/inventory"
)

func TestBelowReorder(t *testing.T) {
	list := []inventory.Record{
		{ID: 1, ProductName: "Coffee Beans", QuantityInStock: 40, ReorderLevel: 10},
		{ID: 2, ProductName: "Green Tea", QuantityInStock: 10, ReorderLevel: 10},
		{ID: 3, ProductName: "Chocolate Bar", QuantityInStock: 0, ReorderLevel: 5},
	}

	low := inventory.BelowReorder(list)
	require.Len(t, low, 2)
	require.Equal(t, int64(2), low[0].ID)
	require.Equal(t, int64(3), low[1].ID)

	require.Empty(t, inventory.BelowReorder(nil))
}
