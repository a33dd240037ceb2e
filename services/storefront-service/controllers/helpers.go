package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/coradis/storefront/services/common/errors"
	"github.com/coradis/storefront/services/common/middleware"
	"github.com/coradis/storefront/services/storefront-service/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// respondError hands svcErr to apperrors.ErrorMiddleware, which renders it
// once the chain unwinds.
func respondError(ctx *gin.Context, svcErr *services.ServiceError) {
	_ = ctx.Error(apperrors.New(svcErr.StatusCode, svcErr.Message, svcErr))
	ctx.Abort()
}

// respondBindError writes the field details itself; the attached error only
// reaches the request log.
func respondBindError(ctx *gin.Context, err error) {
	_ = ctx.Error(apperrors.Wrap(apperrors.ErrBadRequest, err))
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": validationDetails(err)})
}

func uintParam(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || v == 0 {
		_ = ctx.Error(apperrors.New(http.StatusBadRequest, "Identifiant invalide", err))
		ctx.Abort()
		return 0, false
	}
	return uint(v), true
}

// pagination reads page/limit query parameters, clamping limit to
// [1, maxPageSize].
func pagination(ctx *gin.Context) (int, int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func customerID(ctx *gin.Context) string {
	return ctx.GetString(middleware.CustomerIDKey)
}
