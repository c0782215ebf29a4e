package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/framedarchive/order/pkg/model"
	"github.com/Alturino/framedarchive/order/pkg/request"
	"github.com/Alturino/framedarchive/order/pkg/response"
)

func TestStats(t *testing.T) {
	f := newFixture(t)
	first := f.checkout(t, user, framedA3(3))
	f.advance(time.Minute)
	f.checkout(t, guest, stretchedA2())
	f.advance(time.Minute)
	f.checkout(t, user, framedA3(2), stretchedA2())
	_, err := f.svc.UpdateStatus(context.Background(), first.ID, model.StatusProcessing)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		param    request.FindStats
		expected []string
	}{
		{
			name:     "given no sort should list highest revenue first",
			param:    request.FindStats{},
			expected: []string{"Monsoon Study", "Harbour at Dusk"},
		},
		{
			name:     "given units ascending should list fewest units first",
			param:    request.FindStats{SortBy: "units", Order: "asc"},
			expected: []string{"Harbour at Dusk", "Monsoon Study"},
		},
		{
			name:     "given name ascending should list alphabetically",
			param:    request.FindStats{SortBy: "name", Order: "asc"},
			expected: []string{"Harbour at Dusk", "Monsoon Study"},
		},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := f.svc.Stats(context.Background(), tt.param)
			require.NoError(t, err)
			names := []string{}
			for _, product := range stats.Products {
				names = append(names, product.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}

	t.Run("given three orders should total units revenue and distinct orders", func(t *testing.T) {
		stats, err := f.svc.Stats(context.Background(), request.FindStats{})
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Orders)
		assert.Equal(t, 7, stats.Units)
		assert.Equal(t, "10791", stats.Revenue.String())

		byName := map[string]response.ProductStats{}
		for _, product := range stats.Products {
			byName[product.Name] = product
		}
		framed := byName["Monsoon Study"]
		assert.Equal(t, 5, framed.Units)
		assert.Equal(t, "5995", framed.Revenue.String())
		assert.Equal(t, 2, framed.Orders)
		assert.Equal(t, map[string]int{model.StatusProcessing: 1, model.StatusPending: 1}, framed.Status)

		canvas := byName["Harbour at Dusk"]
		assert.Equal(t, 2, canvas.Units)
		assert.Equal(t, "4796", canvas.Revenue.String())
		assert.Equal(t, 2, canvas.Orders)
	})
}

func TestStatsEmpty(t *testing.T) {
	f := newFixture(t)
	stats, err := f.svc.Stats(context.Background(), request.FindStats{})
	require.NoError(t, err)
	assert.Empty(t, stats.Products)
	assert.Equal(t, 0, stats.Orders)
	assert.True(t, stats.Revenue.IsZero())
}
