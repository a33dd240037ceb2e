package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

const orderPayload = `{
	"customerName": "Awa",
	"customerPhone": "07 07 07 07 07",
	"deliveryAddress": "Cocody",
	"deliveryDate": "2026-11-02",
	"items": [{"productId": "glacons-5kg", "productName": "Glaçons (Sac 5kg)", "productUnit": "sac", "quantity": 3, "pricePerUnit": 1000}]
}`

func TestCreateOrderController(t *testing.T) {
	t.Run("Guest order - 201 Created", func(t *testing.T) {
		// Arrange
		orders := new(MockOrderService)
		carts := new(MockCartService)
		controller := NewOrderController(orders, carts, zap.NewNop())
		orders.On("Create", mock.Anything, "", mock.MatchedBy(func(r *models.CreateOrderRequest) bool {
			return r.CustomerName == "Awa" && len(r.Items) == 1
		})).Return(&models.Order{ID: 12, TotalPrice: 3000, LoyaltyPointsEarned: 0}, nil).Once()

		router := newTestRouter()
		router.POST("/api/orders", controller.CreateOrder)

		// Act
		w := doJSON(router, http.MethodPost, "/api/orders", orderPayload)

		// Assert
		assert.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(12), body["orderId"])
		assert.Equal(t, float64(3000), body["totalPrice"])
		assert.Equal(t, "Commande enregistrée avec succès!", body["message"])
		orders.AssertExpectations(t)
		carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	})

	t.Run("Customer order clears the cart", func(t *testing.T) {
		// Arrange
		orders := new(MockOrderService)
		carts := new(MockCartService)
		controller := NewOrderController(orders, carts, zap.NewNop())
		orders.On("Create", mock.Anything, "cust-1", mock.Anything).
			Return(&models.Order{ID: 13, TotalPrice: 2700, DiscountPercent: 10, LoyaltyPointsEarned: 2}, nil).Once()
		carts.On("Clear", mock.Anything, "cart-abc").Return(nil).Once()

		router := newTestRouter()
		router.POST("/api/orders", asCustomer("cust-1"), controller.CreateOrder)

		// Act
		w := doJSON(router, http.MethodPost, "/api/orders", orderPayload, &http.Cookie{Name: cartCookie, Value: "cart-abc"})

		// Assert
		assert.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(10), body["discountApplied"])
		assert.Equal(t, float64(2), body["pointsEarned"])
		orders.AssertExpectations(t)
		carts.AssertExpectations(t)
	})

	t.Run("Invalid payload - 400 Bad Request", func(t *testing.T) {
		orders := new(MockOrderService)
		controller := NewOrderController(orders, nil, zap.NewNop())
		router := newTestRouter()
		router.POST("/api/orders", controller.CreateOrder)

		w := doJSON(router, http.MethodPost, "/api/orders", `{"customerName":"Awa","customerPhone":"abc","items":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		details := decode(t, w)["details"].(map[string]interface{})
		assert.Contains(t, details, "customerPhone")
		assert.Contains(t, details, "deliveryDate")
		orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Oversized line - 400 Bad Request", func(t *testing.T) {
		orders := new(MockOrderService)
		controller := NewOrderController(orders, nil, zap.NewNop())
		router := newTestRouter()
		router.POST("/api/orders", controller.CreateOrder)

		w := doJSON(router, http.MethodPost, "/api/orders", `{
			"customerName": "Awa", "customerPhone": "0707070707", "deliveryAddress": "Cocody", "deliveryDate": "2026-11-02",
			"items": [{"productName": "Glaçons", "productUnit": "sac", "quantity": 4, "pricePerUnit": 4611686018427387904}]
		}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		details := decode(t, w)["details"].(map[string]interface{})
		assert.Equal(t, "doit être inférieur ou égal à 10000000", details["items[0].pricePerUnit"])
		orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Stock conflict - 409", func(t *testing.T) {
		orders := new(MockOrderService)
		controller := NewOrderController(orders, nil, zap.NewNop())
		orders.On("Create", mock.Anything, "", mock.Anything).
			Return(nil, &services.ServiceError{StatusCode: http.StatusConflict, Message: "Stock insuffisant pour Glaçons (Sac 5kg)"}).Once()
		router := newTestRouter()
		router.POST("/api/orders", controller.CreateOrder)

		w := doJSON(router, http.MethodPost, "/api/orders", orderPayload)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "Stock insuffisant")
	})
}

func TestAdminOrderControllers(t *testing.T) {
	t.Run("List with status filter", func(t *testing.T) {
		orders := new(MockOrderService)
		controller := NewOrderController(orders, nil, zap.NewNop())
		orders.On("List", mock.Anything, models.OrderFilter{Status: models.OrderStatusPending, Page: 2, Limit: 10}).
			Return([]models.Order{{ID: 1}}, int64(11), nil).Once()
		router := newTestRouter()
		router.GET("/orders", controller.ListOrders)

		w := doJSON(router, http.MethodGet, "/orders?status=pending&page=2&limit=10", "")

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(11), body["total"])
		assert.Len(t, body["orders"], 1)
		orders.AssertExpectations(t)
	})

	t.Run("List rejects unknown status", func(t *testing.T) {
		orders := new(MockOrderService)
		controller := NewOrderController(orders, nil, zap.NewNop())
		router := newTestRouter()
		router.GET("/orders", controller.ListOrders)

		w := doJSON(router, http.MethodGet, "/orders?status=lost", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get with bad id", func(t *testing.T) {
		controller := NewOrderController(new(MockOrderService), nil, zap.NewNop())
		router := newTestRouter()
		router.GET("/orders/:id", controller.GetOrder)

		w := doJSON(router, http.MethodGet, "/orders/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Identifiant invalide")
	})

	t.Run("Get missing order", func(t *testing.T) {
		orders := new(MockOrderService)
		controller := NewOrderController(orders, nil, zap.NewNop())
		orders.On("Get", mock.Anything, uint(9)).
			Return(nil, &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Commande non trouvée"}).Once()
		router := newTestRouter()
		router.GET("/orders/:id", controller.GetOrder)

		w := doJSON(router, http.MethodGet, "/orders/9", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Update status", func(t *testing.T) {
		orders := new(MockOrderService)
		controller := NewOrderController(orders, nil, zap.NewNop())
		orders.On("UpdateStatus", mock.Anything, uint(4), models.OrderStatusInDelivery).Return(nil).Once()
		router := newTestRouter()
		router.PATCH("/orders/:id/status", controller.UpdateOrderStatus)

		w := doJSON(router, http.MethodPatch, "/orders/4/status", `{"status":"in_delivery"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Statut mis à jour")

		w = doJSON(router, http.MethodPatch, "/orders/4/status", `{"status":"shipped"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("Delete", func(t *testing.T) {
		orders := new(MockOrderService)
		controller := NewOrderController(orders, nil, zap.NewNop())
		orders.On("Delete", mock.Anything, uint(4)).Return(nil).Once()
		router := newTestRouter()
		router.DELETE("/orders/:id", controller.DeleteOrder)

		w := doJSON(router, http.MethodDelete, "/orders/4", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Commande supprimée")
		orders.AssertExpectations(t)
	})
}
