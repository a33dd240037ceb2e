package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

type OTPController struct {
	otps services.OTPService
}

func NewOTPController(otps services.OTPService) *OTPController {
	return &OTPController{otps: otps}
}

// SendOTP handles POST /api/otp/send.
func (oc *OTPController) SendOTP(ctx *gin.Context) {
	var req models.SendOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	res, svcErr := oc.otps.Send(ctx.Request.Context(), req.Phone)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

// VerifyOTP handles POST /api/otp/verify.
func (oc *OTPController) VerifyOTP(ctx *gin.Context) {
	var req models.VerifyOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	res, svcErr := oc.otps.Verify(ctx.Request.Context(), req.Phone, req.Code)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

// ClearOTP handles POST /api/otp/clear.
func (oc *OTPController) ClearOTP(ctx *gin.Context) {
	var req models.ClearOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if svcErr := oc.otps.Clear(ctx.Request.Context(), req.Phone, req.Code); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
