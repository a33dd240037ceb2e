package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/coradis/storefront/services/common/auth"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

// AuthController serves the admin dashboard login.
type AuthController struct {
	admins   services.AdminService
	sessions *auth.Sessions
	logger   *zap.Logger
}

func NewAuthController(admins services.AdminService, sessions *auth.Sessions, logger *zap.Logger) *AuthController {
	return &AuthController{admins: admins, sessions: sessions, logger: logger}
}

// Login handles POST /api/admin/auth/login.
func (ac *AuthController) Login(ctx *gin.Context) {
	var req models.AdminLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	admin, svcErr := ac.admins.Login(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}

	token, err := ac.sessions.Issue(auth.Claims{
		Type:             auth.TypeAdmin,
		Username:         admin.Username,
		Email:            admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatUint(uint64(admin.ID), 10)},
	}, auth.AdminSessionTTL)
	if err != nil {
		ac.logger.Error("Failed to issue admin session", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
		return
	}
	ac.sessions.SetCookie(ctx, auth.AdminCookie, token, auth.AdminSessionTTL)

	ctx.JSON(http.StatusOK, gin.H{"success": true, "admin": admin.View()})
}

// Me handles GET /api/admin/auth/me. It never fails: an invalid or stale
// session just reports isAuthenticated=false.
func (ac *AuthController) Me(ctx *gin.Context) {
	claims, err := ac.sessions.FromCookie(ctx, auth.AdminCookie, auth.TypeAdmin)
	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}
	admin, svcErr := ac.admins.Current(ctx.Request.Context(), claims.Subject)
	if svcErr != nil {
		ctx.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"isAuthenticated": true, "admin": admin.View()})
}

// Logout handles POST /api/admin/auth/logout.
func (ac *AuthController) Logout(ctx *gin.Context) {
	ac.sessions.ClearCookie(ctx, auth.AdminCookie)
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateAdmin handles POST /api/admin/auth/admins. The first account can be
// created anonymously; every later one needs an admin session.
func (ac *AuthController) CreateAdmin(ctx *gin.Context) {
	open, svcErr := ac.admins.BootstrapOpen(ctx.Request.Context())
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	if !open {
		claims, err := ac.sessions.FromCookie(ctx, auth.AdminCookie, auth.TypeAdmin)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
			return
		}
		if _, svcErr := ac.admins.Current(ctx.Request.Context(), claims.Subject); svcErr != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
			return
		}
	}

	var req models.CreateAdminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	if _, svcErr := ac.admins.CreateAdmin(ctx.Request.Context(), &req); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Administrateur créé avec succès"})
}
