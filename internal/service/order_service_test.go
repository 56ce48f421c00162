package service

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

func sampleOrders() []models.Order {
	return []models.Order{
		{
			ID:     1,
			Status: models.OrderStatusCreated,
			Items: []models.OrderItem{
				{ProductID: 1, Quantity: 2, TotalPrice: decimal.RequireFromString("500.00")},
				{ProductID: 3, Quantity: 1, TotalPrice: decimal.RequireFromString("300.00")},
			},
		},
		{ID: 2, Status: models.OrderStatusCompleted, IsPaid: true},
		{ID: 3, Status: models.OrderStatusCreated, IsPaid: true},
	}
}

func TestOrderActions(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		paid   bool
		want   []Action
	}{
		{models.OrderStatusCreated, false, []Action{ActionPay, ActionCancel}},
		{models.OrderStatusCreated, true, []Action{ActionCancel}},
		{models.OrderStatusConfirmed, false, []Action{}},
		{models.OrderStatusInProgress, false, []Action{}},
		{models.OrderStatusCompleted, true, []Action{}},
		{models.OrderStatusCancelled, false, []Action{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			order := &models.Order{Status: tt.status, IsPaid: tt.paid}
			assert.Equal(t, tt.want, OrderActions(order))
		})
	}
}

func TestOrderListComputesTotals(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply(http.MethodGet, "/orders/user", http.StatusOK, sampleOrders())

	view := NewOrderService(env.orders, env.cache, nil, nil).List(userCtx(t))

	require.Len(t, view.Orders, 3)
	assert.True(t, decimal.RequireFromString("800").Equal(view.Orders[0].ComputedTotal))
	assert.False(t, view.Empty)
}

func TestOrderListEmptyAndFailure(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply(http.MethodGet, "/orders/user", http.StatusOK, []models.Order{})

	svc := NewOrderService(env.orders, env.cache, nil, nil)
	view := svc.List(userCtx(t))
	assert.True(t, view.Empty)
	assert.Equal(t, "You have no orders yet.", view.Message)

	env.api.reply(http.MethodGet, "/orders/user", http.StatusInternalServerError, nil)
	view = svc.List(userCtx(t))
	require.Len(t, view.Alerts, 1)
	assert.Equal(t, "Could not load your orders.", view.Alerts[0].Message)
}

func TestRequestCancelNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply(http.MethodGet, "/orders/user", http.StatusOK, sampleOrders())

	svc := NewOrderService(env.orders, env.cache, nil, nil)
	ctx := userCtx(t)
	svc.List(ctx)

	view := svc.RequestCancel(ctx, 1)
	require.NotNil(t, view.Confirm)
	assert.Equal(t, "Are you sure you want to cancel this order?", view.Confirm.Prompt)
	assert.Empty(t, env.api.callsTo(http.MethodPatch, "/orders/1/cancel"))

	view = svc.RequestCancel(ctx, 2)
	assert.Nil(t, view.Confirm)
	require.Len(t, view.Alerts, 1)
}

func TestConfirmCancelCommitsAfterSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply(http.MethodGet, "/orders/user", http.StatusOK, sampleOrders())
	env.api.reply(http.MethodPatch, "/orders/1/cancel", http.StatusOK, "Order cancelled")

	svc := NewOrderService(env.orders, env.cache, nil, nil)
	ctx := userCtx(t)
	svc.List(ctx)

	view := svc.ConfirmCancel(ctx, 1)

	require.Len(t, view.Alerts, 1)
	assert.Equal(t, AlertSuccess, view.Alerts[0].Type)
	assert.Equal(t, models.OrderStatusCancelled, view.Orders[0].Status)
	assert.Empty(t, view.Orders[0].Actions)

	stored, err := env.cache.GetOrdersView(ctx, "s-user")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, stored[0].Status)
}

func TestConfirmCancelFailureRefetches(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply(http.MethodGet, "/orders/user", http.StatusOK, sampleOrders())
	env.api.reply(http.MethodPatch, "/orders/1/cancel", http.StatusConflict, map[string]string{"message": "Order already shipped"})

	svc := NewOrderService(env.orders, env.cache, nil, nil)
	ctx := userCtx(t)
	svc.List(ctx)

	view := svc.ConfirmCancel(ctx, 1)

	require.NotEmpty(t, view.Alerts)
	assert.Equal(t, "Order already shipped", view.Alerts[len(view.Alerts)-1].Message)
	assert.Equal(t, models.OrderStatusCreated, view.Orders[0].Status)
	assert.Len(t, env.api.callsTo(http.MethodGet, "/orders/user"), 2)
}

func TestConfirmCancelRejectsNonCreated(t *testing.T) {
	env := newTestEnv(t)
	env.api.reply(http.MethodGet, "/orders/user", http.StatusOK, sampleOrders())

	view := NewOrderService(env.orders, env.cache, nil, nil).ConfirmCancel(userCtx(t), 2)

	require.Len(t, view.Alerts, 1)
	assert.Equal(t, AlertError, view.Alerts[0].Type)
	assert.Empty(t, env.api.callsTo(http.MethodPatch, "/orders/2/cancel"))
}
