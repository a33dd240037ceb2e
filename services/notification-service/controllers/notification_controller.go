package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coradis/storefront/services/common/middleware"
	"github.com/coradis/storefront/services/notification-service/models"
	"github.com/coradis/storefront/services/notification-service/services"
)

type NotificationController struct {
	notificationService services.NotificationService
	logger              *zap.Logger
}

func NewNotificationController(svc services.NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{notificationService: svc, logger: logger}
}

const (
	maxPageSize     = 100
	defaultPage     = 1
	defaultPageSize = 20
)

func parsePaginationParams(ctx *gin.Context) (int, int) {
	page := defaultPage
	pageSize := defaultPageSize

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("page_size", "20")); err == nil && l > 0 {
		pageSize = l
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}
	return page, pageSize
}

// GetNotificationLogs handles GET /notifications/log (admin only).
func (cc *NotificationController) GetNotificationLogs(ctx *gin.Context) {
	channel := ctx.Query("channel")
	if channel != "" && channel != models.ChannelEmail && channel != models.ChannelWhatsApp {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Canal invalide"})
		return
	}

	page, pageSize := parsePaginationParams(ctx)
	filter := models.NotificationFilter{
		Type:     ctx.Query("type"),
		Status:   ctx.Query("status"),
		Channel:  channel,
		Page:     page,
		PageSize: pageSize,
	}

	logs, total, err := cc.notificationService.GetLogs(ctx.Request.Context(), filter)
	if err != nil {
		cc.logger.Error("failed to get notification logs",
			zap.Error(err),
			zap.String("requested_by", ctx.GetString(middleware.AdminIDKey)),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	ctx.JSON(http.StatusOK, gin.H{
		"data":        logs,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}
