package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

type OrderController struct {
	orders services.OrderService
	carts  services.CartService
	logger *zap.Logger
}

func NewOrderController(orders services.OrderService, carts services.CartService, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, carts: carts, logger: logger}
}

// CreateOrder handles POST /api/orders. Works for guests and signed-in
// customers; the server cart is emptied once the order is stored.
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, svcErr := oc.orders.Create(ctx.Request.Context(), customerID(ctx), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}

	if cartID, err := ctx.Cookie(cartCookie); err == nil && cartID != "" && oc.carts != nil {
		if svcErr := oc.carts.Clear(ctx.Request.Context(), cartID); svcErr != nil {
			oc.logger.Warn("Failed to clear cart after order", zap.String("cart_id", cartID), zap.String("error", svcErr.Message))
		}
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"orderId":         order.ID,
		"message":         "Commande enregistrée avec succès!",
		"totalPrice":      order.TotalPrice,
		"pointsEarned":    order.LoyaltyPointsEarned,
		"discountApplied": order.DiscountPercent,
	})
}

// ListOrders handles GET /api/admin/orders (admin only).
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	page, limit := pagination(ctx)
	filter := models.OrderFilter{
		Status:     models.OrderStatus(ctx.Query("status")),
		CustomerID: ctx.Query("customerId"),
		Page:       page,
		Limit:      limit,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}

	orders, total, svcErr := oc.orders.List(ctx.Request.Context(), filter)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders, "total": total, "page": page, "limit": limit})
}

// GetOrder handles GET /api/admin/orders/:id (admin only).
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}
	order, svcErr := oc.orders.Get(ctx.Request.Context(), id)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/admin/orders/:id/status (admin only).
func (oc *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if !req.Status.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}
	if svcErr := oc.orders.UpdateStatus(ctx.Request.Context(), id, req.Status); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Statut mis à jour"})
}

// DeleteOrder handles DELETE /api/admin/orders/:id (admin only).
func (oc *OrderController) DeleteOrder(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}
	if svcErr := oc.orders.Delete(ctx.Request.Context(), id); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Commande supprimée"})
}
