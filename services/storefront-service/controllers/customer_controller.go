package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/coradis/storefront/services/common/auth"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

type CustomerController struct {
	customers services.CustomerService
	loyalty   services.LoyaltyService
	sessions  *auth.Sessions
	logger    *zap.Logger
}

func NewCustomerController(
	customers services.CustomerService,
	loyalty services.LoyaltyService,
	sessions *auth.Sessions,
	logger *zap.Logger,
) *CustomerController {
	return &CustomerController{customers: customers, loyalty: loyalty, sessions: sessions, logger: logger}
}

func (cc *CustomerController) startSession(ctx *gin.Context, c *models.Customer) bool {
	token, err := cc.sessions.Issue(auth.Claims{
		Type:             auth.TypeCustomer,
		Name:             c.Name,
		Phone:            c.Phone,
		Email:            c.Email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: c.ID.Hex()},
	}, auth.CustomerSessionTTL)
	if err != nil {
		cc.logger.Error("Failed to issue customer session", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
		return false
	}
	cc.sessions.SetCookie(ctx, auth.CustomerCookie, token, auth.CustomerSessionTTL)
	return true
}

// Register handles POST /api/customers/register.
func (cc *CustomerController) Register(ctx *gin.Context) {
	var req models.RegisterCustomerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	customer, svcErr := cc.customers.Register(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	if !cc.startSession(ctx, customer) {
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"customerId": customer.ID.Hex(),
		"message":    "Compte créé avec succès!",
	})
}

// Login handles POST /api/customers/login.
func (cc *CustomerController) Login(ctx *gin.Context) {
	var req models.CustomerLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	customer, svcErr := cc.customers.Login(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	if !cc.startSession(ctx, customer) {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "customer": customer.Summary()})
}

// Me handles GET /api/customers/me.
func (cc *CustomerController) Me(ctx *gin.Context) {
	claims, err := cc.sessions.FromCookie(ctx, auth.CustomerCookie, auth.TypeCustomer)
	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}
	customer, svcErr := cc.customers.Get(ctx.Request.Context(), claims.Subject)
	if svcErr != nil {
		ctx.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"isAuthenticated": true, "customer": customer.Summary()})
}

// Logout handles POST /api/customers/logout.
func (cc *CustomerController) Logout(ctx *gin.Context) {
	cc.sessions.ClearCookie(ctx, auth.CustomerCookie)
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// Profile handles GET /api/customers/profile.
func (cc *CustomerController) Profile(ctx *gin.Context) {
	customer, svcErr := cc.customers.Get(ctx.Request.Context(), customerID(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"customer":      customer.Summary(),
		"pointsValue":   services.PointsValue(customer.LoyaltyPoints),
		"referralCount": customer.ReferralCount,
	})
}

// UpdateProfile handles PUT /api/customers/profile.
func (cc *CustomerController) UpdateProfile(ctx *gin.Context) {
	var req models.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if svcErr := cc.customers.UpdateProfile(ctx.Request.Context(), customerID(ctx), &req); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Profil mis à jour"})
}

// UseReferral handles POST /api/customers/referral.
func (cc *CustomerController) UseReferral(ctx *gin.Context) {
	var req models.UseReferralRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if svcErr := cc.loyalty.ApplyReferral(ctx.Request.Context(), customerID(ctx), req.Code); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Code de parrainage appliqué ! Vous et votre parrain avez reçu un ticket à gratter.",
	})
}

// MyOrders handles GET /api/customers/orders.
func (cc *CustomerController) MyOrders(ctx *gin.Context) {
	orders, svcErr := cc.customers.MyOrders(ctx.Request.Context(), customerID(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders})
}

// AddFavorite handles POST /api/customers/favorites.
func (cc *CustomerController) AddFavorite(ctx *gin.Context) {
	var req models.AddFavoriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	fav, svcErr := cc.customers.AddFavoriteOrder(ctx.Request.Context(), customerID(ctx), req.OrderID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "favorite": fav})
}

// Favorites handles GET /api/customers/favorites.
func (cc *CustomerController) Favorites(ctx *gin.Context) {
	favs, svcErr := cc.customers.FavoriteOrders(ctx.Request.Context(), customerID(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"favorites": favs})
}

// Discount handles GET /api/customers/discount. Anonymous callers get the
// empty discount rather than an error.
func (cc *CustomerController) Discount(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, cc.loyalty.AvailableDiscount(ctx.Request.Context(), customerID(ctx)))
}

// ScratchCards handles GET /api/customers/scratch-cards.
func (cc *CustomerController) ScratchCards(ctx *gin.Context) {
	cards, svcErr := cc.loyalty.ScratchCards(ctx.Request.Context(), customerID(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cards": cards})
}

// Scratch handles POST /api/customers/scratch-cards/:id/scratch.
func (cc *CustomerController) Scratch(ctx *gin.Context) {
	res, svcErr := cc.loyalty.Scratch(ctx.Request.Context(), customerID(ctx), ctx.Param("id"))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, res)
}
