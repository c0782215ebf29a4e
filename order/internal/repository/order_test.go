package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartModel "github.com/Alturino/framedarchive/cart/pkg/model"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/repository"
	"github.com/Alturino/framedarchive/internal/testutil"
	"github.com/Alturino/framedarchive/order/pkg/model"
)

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newOrder(userID, gatewayOrderID string, placed time.Time) model.Order {
	items := []model.OrderItem{
		model.NewOrderItem(cartModel.CartItem{
			ID:        1,
			Name:      "Kerala Backwaters",
			Quantity:  2,
			PrintType: "Poster",
			Variant:   "Framed",
			Size:      "A3",
		}, decimal.NewFromInt(1199)),
	}
	return model.Order{
		ID:             uuid.New(),
		UserID:         userID,
		PlacedBy:       "users:" + userID,
		Status:         model.StatusPending,
		OrderDate:      placed,
		Items:          items,
		Total:          model.Total(items),
		PaymentID:      "pay_" + gatewayOrderID,
		GatewayOrderID: gatewayOrderID,
		ShippingInfo: model.ShippingInfo{
			FirstName: "Asha",
			LastName:  "Rao",
			Email:     "asha@mail.in",
			Phone:     "9876543210",
			Address:   "12 MG Road",
			City:      "Kochi",
			State:     "Kerala",
			PinCode:   "682001",
		},
	}
}

func testOrderStore(t *testing.T, c context.Context, store OrderStore) {
	first := newOrder("u1", "order_1", baseTime)
	second := newOrder("u1", "order_2", baseTime.Add(time.Hour))
	other := newOrder("u2", "order_3", baseTime.Add(2*time.Hour))

	t.Run("given new orders should insert them", func(t *testing.T) {
		for _, o := range []model.Order{first, second, other} {
			inserted, err := store.InsertOrder(c, o)
			require.NoError(t, err)
			assert.Equal(t, o.ID, inserted.ID)
			assert.True(t, o.Total.Equal(inserted.Total))
			assert.Equal(t, o.Items[0].Hash, inserted.Items[0].Hash)
		}
	})

	t.Run("given recorded gateway order should reject duplicate", func(t *testing.T) {
		_, err := store.InsertOrder(c, newOrder("u1", "order_1", baseTime))
		assert.True(t, errors.Is(err, ErrDuplicateOrder))
	})

	t.Run("given ids should find order", func(t *testing.T) {
		found, err := store.FindOrderByID(c, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "order_1", found.GatewayOrderID)
		assert.Equal(t, first.ShippingInfo, found.ShippingInfo)

		found, err = store.FindOrderByGatewayOrderID(c, "order_2")
		require.NoError(t, err)
		assert.Equal(t, second.ID, found.ID)
		assert.Equal(t, second.PlacedBy, found.PlacedBy)

		_, err = store.FindOrderByID(c, uuid.New())
		assert.True(t, errors.Is(err, inErrors.ErrOrderNotFound))
		_, err = store.FindOrderByGatewayOrderID(c, "order_missing")
		assert.True(t, errors.Is(err, inErrors.ErrOrderNotFound))
	})

	t.Run("given user should list orders newest first", func(t *testing.T) {
		orders, err := store.FindOrdersByUserID(c, "u1")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)
	})

	t.Run("given status change should stamp timestamps", func(t *testing.T) {
		processing, ok := first.Transition(model.StatusProcessing, baseTime.Add(time.Minute), "")
		require.True(t, ok)
		updated, err := store.UpdateOrderStatus(c, processing)
		require.NoError(t, err)
		assert.Equal(t, model.StatusProcessing, updated.Status)
		require.NotNil(t, updated.ProcessedAt)

		cancelled, ok := updated.Transition(model.StatusCancelled, baseTime.Add(2*time.Minute), model.CancelledByAdmin)
		require.True(t, ok)
		updated, err = store.UpdateOrderStatus(c, cancelled)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, updated.Status)
		assert.Equal(t, model.CancelledByAdmin, updated.CancelledBy)
		assert.NotNil(t, updated.ProcessedAt)
		assert.NotNil(t, updated.CancelledAt)
	})

	t.Run("given filters should page orders", func(t *testing.T) {
		orders, err := store.FindOrders(c, "", 2, 0)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, other.ID, orders[0].ID)

		orders, err = store.FindOrders(c, model.StatusCancelled, 10, 0)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, first.ID, orders[0].ID)

		orders, err = store.FindOrders(c, "", 10, 5)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("given return request should flag order", func(t *testing.T) {
		updated, err := store.RequestOrderReturn(c, other.ID, baseTime.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, updated.ReturnRequested)
		assert.NotNil(t, updated.ReturnRequestedAt)

		_, err = store.RequestOrderReturn(c, uuid.New(), baseTime)
		assert.True(t, errors.Is(err, inErrors.ErrOrderNotFound))
	})
}

func TestMemoryOrderStore(t *testing.T) {
	testOrderStore(t, context.Background(), NewMemoryOrderStore())
}

func TestPostgresOrderStore(t *testing.T) {
	c := testutil.Context(t)
	pool := testutil.StartPostgres(t, c)
	testOrderStore(t, c, NewPostgresOrderStore(repository.New(pool)))
}
