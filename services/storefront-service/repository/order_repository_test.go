package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

func newOrder(customerID *string, items ...models.OrderItem) *models.Order {
	o := &models.Order{
		CustomerID:      customerID,
		CustomerName:    "Awa",
		CustomerPhone:   "+225707070707",
		DeliveryAddress: "Cocody",
		DeliveryDate:    "2026-11-02",
		Status:          models.OrderStatusPending,
		Items:           items,
	}
	for _, it := range items {
		o.Subtotal += it.TotalPrice
	}
	o.TotalPrice = o.Subtotal
	return o
}

func iceItem(qty int) models.OrderItem {
	return models.OrderItem{
		ProductID: "glacons-5kg", ProductName: "Glaçons (Sac 5kg)", ProductUnit: "sac",
		Quantity: qty, PricePerUnit: 1000, TotalPrice: int64(qty) * 1000,
	}
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	repo := repository.NewOrderRepository(setupSQLite(t))
	ctx := context.Background()

	order := newOrder(nil, iceItem(2), iceItem(1))
	require.NoError(t, repo.Create(ctx, order))
	assert.NotZero(t, order.ID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Awa", got.CustomerName)
	assert.Equal(t, int64(3000), got.TotalPrice)
	require.Len(t, got.Items, 2)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Nil(t, got.CustomerID)

	_, err = repo.FindByID(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOrderRepository_ListFilters(t *testing.T) {
	repo := repository.NewOrderRepository(setupSQLite(t))
	ctx := context.Background()
	customer := "64b000000000000000000001"

	first := newOrder(&customer, iceItem(1))
	second := newOrder(nil, iceItem(2))
	third := newOrder(&customer, iceItem(3))
	for _, o := range []*models.Order{first, second, third} {
		require.NoError(t, repo.Create(ctx, o))
	}
	require.NoError(t, repo.UpdateStatus(ctx, second.ID, models.OrderStatusDelivered))

	all, total, err := repo.List(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Len(t, all[0].Items, 1)

	delivered, total, err := repo.List(ctx, models.OrderFilter{Status: models.OrderStatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, second.ID, delivered[0].ID)

	page, total, err := repo.List(ctx, models.OrderFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	mine, err := repo.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)
}

func TestOrderRepository_UpdateStatusAndDelete(t *testing.T) {
	repo := repository.NewOrderRepository(setupSQLite(t))
	ctx := context.Background()

	order := newOrder(nil, iceItem(2))
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.OrderStatusInDelivery))
	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInDelivery, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 999, models.OrderStatusConfirmed), repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, order.ID))
	_, err = repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, order.ID), repository.ErrNotFound)
}
