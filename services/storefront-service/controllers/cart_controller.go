package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

const (
	cartCookie    = "cart_id"
	cartCookieTTL = 30 * 24 * time.Hour
)

type CartController struct {
	carts  services.CartService
	secure bool
}

func NewCartController(carts services.CartService, secureCookies bool) *CartController {
	return &CartController{carts: carts, secure: secureCookies}
}

// cartID returns the visitor's cart id, minting one (and its cookie) on
// first use.
func (cc *CartController) cartID(ctx *gin.Context) string {
	if id, err := ctx.Cookie(cartCookie); err == nil {
		if _, perr := uuid.Parse(id); perr == nil {
			return id
		}
	}
	id := uuid.NewString()
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(cartCookie, id, int(cartCookieTTL.Seconds()), "/", "", cc.secure, true)
	return id
}

// GetCart handles GET /api/cart.
func (cc *CartController) GetCart(ctx *gin.Context) {
	cart, svcErr := cc.carts.Get(ctx.Request.Context(), cc.cartID(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart.View())
}

// AddItem handles POST /api/cart/items.
func (cc *CartController) AddItem(ctx *gin.Context) {
	var req models.AddCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	cart, svcErr := cc.carts.AddItem(ctx.Request.Context(), cc.cartID(ctx), req.ProductID, req.Quantity)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart.View())
}

// UpdateItem handles PUT /api/cart/items/:product_id. A quantity of zero or
// less removes the line.
func (cc *CartController) UpdateItem(ctx *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	cart, svcErr := cc.carts.UpdateQuantity(ctx.Request.Context(), cc.cartID(ctx), ctx.Param("product_id"), req.Quantity)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart.View())
}

// RemoveItem handles DELETE /api/cart/items/:product_id.
func (cc *CartController) RemoveItem(ctx *gin.Context) {
	cart, svcErr := cc.carts.RemoveItem(ctx.Request.Context(), cc.cartID(ctx), ctx.Param("product_id"))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart.View())
}

// ClearCart handles DELETE /api/cart.
func (cc *CartController) ClearCart(ctx *gin.Context) {
	if svcErr := cc.carts.Clear(ctx.Request.Context(), cc.cartID(ctx)); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
