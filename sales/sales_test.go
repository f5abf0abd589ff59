package sales_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartsales/salesctl/sales"
)

func TestSummarizeEmptyHistory(t *testing.T) {
	summary := sales.Summarize(nil)
	require.Zero(t, summary.Count)
	require.Zero(t, summary.Revenue)
	require.Zero(t, summary.AverageValue)
	require.Nil(t, summary.LastSale)
}

func TestSummarize(t *testing.T) {
	older := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)

	summary := sales.Summarize([]sales.Sale{
		{ID: 1, Total: "29.00", Date: newer},
		{ID: 2, Total: "10.50", Date: older},
		{ID: 3, Total: "0.50"},
	})

	require.Equal(t, 3, summary.Count)
	require.InDelta(t, 40.00, summary.Revenue, 0.001)
	require.InDelta(t, 40.00/3, summary.AverageValue, 0.001)
	require.NotNil(t, summary.LastSale)
	require.True(t, summary.LastSale.Equal(newer))
}

func TestSummarizeSkipsUnparseableTotals(t *testing.T) {
	summary := sales.Summarize([]sales.Sale{
		{ID: 1, Total: "29.00"},
		{ID: 2, Total: "not a number"},
	})

	require.Equal(t, 2, summary.Count)
	require.InDelta(t, 29.00, summary.Revenue, 0.001)
	require.InDelta(t, 14.50, summary.AverageValue, 0.001)
}
