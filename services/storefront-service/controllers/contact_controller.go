package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

type ContactController struct {
	contact services.ContactService
}

func NewContactController(contact services.ContactService) *ContactController {
	return &ContactController{contact: contact}
}

// Submit handles POST /api/contact.
func (cc *ContactController) Submit(ctx *gin.Context) {
	var req models.CreateContactRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	msg, svcErr := cc.contact.Submit(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      msg.ID,
		"message": "Votre message a bien été envoyé. Nous vous répondrons rapidement.",
	})
}

// List handles GET /api/admin/contact-messages (admin only).
func (cc *ContactController) List(ctx *gin.Context) {
	status := models.ContactStatus(ctx.Query("status"))
	if status != "" && !status.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}
	page, limit := pagination(ctx)
	msgs, total, svcErr := cc.contact.List(ctx.Request.Context(), status, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"messages": msgs, "total": total, "page": page, "limit": limit})
}

// UpdateStatus handles PATCH /api/admin/contact-messages/:id/status.
func (cc *ContactController) UpdateStatus(ctx *gin.Context) {
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}
	var req models.UpdateContactStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	if !req.Status.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}
	if svcErr := cc.contact.UpdateStatus(ctx.Request.Context(), id, req.Status); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
