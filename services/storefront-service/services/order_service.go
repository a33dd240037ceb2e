package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/services/common/contracts"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

type OrderService interface {
	// Create places an order. customerID is empty for guest checkout.
	Create(ctx context.Context, customerID string, req *models.CreateOrderRequest) (*models.Order, *ServiceError)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, *ServiceError)
	Get(ctx context.Context, id uint) (*models.Order, *ServiceError)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) *ServiceError
	Delete(ctx context.Context, id uint) *ServiceError
}

type orderServiceImpl struct {
	orders    repository.OrderRepository
	loyalty   LoyaltyService
	inventory repository.InventoryRepository
	events    EventPublisher
	metrics   MetricsRecorder
	logger    *zap.Logger
}

// NewOrderService wires the order flow. inventory and metrics may be nil.
func NewOrderService(
	orders repository.OrderRepository,
	loyalty LoyaltyService,
	inventory repository.InventoryRepository,
	events EventPublisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:    orders,
		loyalty:   loyalty,
		inventory: inventory,
		events:    events,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *orderServiceImpl) Create(ctx context.Context, customerID string, req *models.CreateOrderRequest) (*models.Order, *ServiceError) {
	if _, err := time.Parse("2006-01-02", req.DeliveryDate); err != nil {
		return nil, newError(http.StatusBadRequest, "Date de livraison invalide (AAAA-MM-JJ)")
	}
	if len(req.Items) == 0 {
		return nil, newError(http.StatusBadRequest, "La commande doit contenir au moins un article")
	}
	if len(req.Items) > models.MaxOrderLines {
		return nil, newError(http.StatusBadRequest, "Trop d'articles dans la commande")
	}

	order := &models.Order{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		DeliveryDate:    req.DeliveryDate,
		IsUrgent:        req.IsUrgent,
		Status:          models.OrderStatusPending,
		StockRef:        uuid.NewString(),
		Items:           make([]models.OrderItem, 0, len(req.Items)),
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		order.Notes = &notes
	}

	for _, in := range req.Items {
		if in.Quantity <= 0 || in.Quantity > models.MaxItemQuantity ||
			in.PricePerUnit < 0 || in.PricePerUnit > models.MaxUnitPrice {
			return nil, newError(http.StatusBadRequest, "Article invalide")
		}
		line := in.PricePerUnit * int64(in.Quantity)
		order.Items = append(order.Items, models.OrderItem{
			ProductID:    in.ProductID,
			ProductName:  in.ProductName,
			ProductUnit:  in.ProductUnit,
			Quantity:     in.Quantity,
			PricePerUnit: in.PricePerUnit,
			TotalPrice:   line,
		})
		order.Subtotal += line
	}

	if customerID != "" {
		order.CustomerID = &customerID
		discount := s.loyalty.AvailableDiscount(ctx, customerID)
		if discount.HasDiscount {
			order.DiscountPercent = discount.Percent
			order.DiscountAmount = DiscountAmount(order.Subtotal, discount.Percent)
		}
	}
	order.TotalPrice = order.Subtotal - order.DiscountAmount
	if customerID != "" {
		order.LoyaltyPointsEarned = PointsFor(order.TotalPrice)
	}

	if req.TotalPrice != nil && *req.TotalPrice != order.TotalPrice {
		s.logger.Warn("Client total differs from computed total",
			zap.Int64("client_total", *req.TotalPrice), zap.Int64("total", order.TotalPrice))
	}

	if svcErr := s.reserveStock(ctx, order); svcErr != nil {
		return nil, svcErr
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.settleStock(ctx, order, true)
		s.logger.Error("Failed to create order", zap.Error(err))
		return nil, internalError()
	}

	if customerID != "" {
		if err := s.loyalty.RecordOrder(ctx, customerID, order.TotalPrice, order.LoyaltyPointsEarned); err != nil {
			s.logger.Error("Failed to credit order to customer",
				zap.Uint("order_id", order.ID), zap.String("customer_id", customerID), zap.Error(err))
		}
	}

	s.events.Publish(ctx, contracts.EventOrderCreated, orderPayload(order, ""))
	total := float64(order.TotalPrice)
	recordAsync(s.metrics, func(ctx context.Context, m MetricsRecorder) {
		_ = m.RecordCount(ctx, aws_pkg.MetricOrdersCreated, nil)
		_ = m.RecordValue(ctx, aws_pkg.MetricOrderRevenue, total, nil)
	})

	s.logger.Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.Int64("total", order.TotalPrice),
		zap.Int("discount_percent", order.DiscountPercent),
		zap.Bool("urgent", order.IsUrgent),
	)
	return order, nil
}

// stockLines sums catalog quantities per product. Free-text lines are
// never stock-checked.
func stockLines(items []models.OrderItem) ([]string, map[string]int) {
	var ids []string
	qty := map[string]int{}
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		if _, seen := qty[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}
	return ids, qty
}

// reserveStock holds stock for every tracked catalog line under the order's
// stock reference. On shortage the holds taken so far are released.
func (s *orderServiceImpl) reserveStock(ctx context.Context, order *models.Order) *ServiceError {
	if s.inventory == nil || order.StockRef == "" {
		return nil
	}

	ids, qty := stockLines(order.Items)
	var held []string
	for _, id := range ids {
		if _, err := s.inventory.Get(ctx, id); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("Stock lookup failed", zap.String("product_id", id), zap.Error(err))
			}
			continue
		}
		err := s.inventory.Reserve(ctx, order.StockRef, id, qty[id])
		switch {
		case err == nil, errors.Is(err, repository.ErrConflict):
			held = append(held, id)
		case errors.Is(err, repository.ErrInsufficientStock):
			for _, h := range held {
				s.settleOne(ctx, order.StockRef, h, true)
			}
			return newError(http.StatusConflict, fmt.Sprintf("Stock insuffisant pour %s", productName(order.Items, id)))
		default:
			s.logger.Warn("Stock reservation failed", zap.String("product_id", id), zap.Error(err))
		}
	}
	return nil
}

// settleStock releases (restock) or commits every hold of the order. Lines
// that hold nothing are skipped by the inventory itself.
func (s *orderServiceImpl) settleStock(ctx context.Context, order *models.Order, restock bool) {
	if s.inventory == nil || order.StockRef == "" {
		return
	}
	ids, _ := stockLines(order.Items)
	for _, id := range ids {
		s.settleOne(ctx, order.StockRef, id, restock)
	}
}

func (s *orderServiceImpl) settleOne(ctx context.Context, ref, productID string, restock bool) {
	var err error
	if restock {
		err = s.inventory.Release(ctx, ref, productID)
	} else {
		err = s.inventory.Commit(ctx, ref, productID)
	}
	if err != nil && !errors.Is(err, repository.ErrNotReserved) {
		s.logger.Warn("Stock settlement failed",
			zap.String("product_id", productID), zap.Bool("restock", restock), zap.Error(err))
	}
}

func productName(items []models.OrderItem, productID string) string {
	for _, it := range items {
		if it.ProductID == productID {
			return it.ProductName
		}
	}
	return productID
}

func (s *orderServiceImpl) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, *ServiceError) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, newError(http.StatusBadRequest, "Statut invalide")
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, internalError()
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, total, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, id uint) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(http.StatusNotFound, msgOrderNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to load order", zap.Uint("order_id", id), zap.Error(err))
		return nil, internalError()
	}
	return order, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) *ServiceError {
	if !status.Valid() {
		return newError(http.StatusBadRequest, "Statut invalide")
	}

	order, svcErr := s.Get(ctx, id)
	if svcErr != nil {
		return svcErr
	}
	previous := order.Status

	// Reopening a cancelled order takes its stock again before the status moves.
	reopened := previous == models.OrderStatusCancelled && status != models.OrderStatusCancelled
	if reopened {
		if svcErr := s.reserveStock(ctx, order); svcErr != nil {
			return svcErr
		}
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		if reopened {
			s.settleStock(ctx, order, true)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return newError(http.StatusNotFound, msgOrderNotFound)
		}
		s.logger.Error("Failed to update order status", zap.Uint("order_id", id), zap.Error(err))
		return internalError()
	}
	order.Status = status

	switch {
	case status == models.OrderStatusCancelled && previous != models.OrderStatusCancelled:
		s.settleStock(ctx, order, true)
		recordAsync(s.metrics, func(ctx context.Context, m MetricsRecorder) {
			_ = m.RecordCount(ctx, aws_pkg.MetricOrdersCancelled, nil)
		})
	case status == models.OrderStatusDelivered && previous != models.OrderStatusDelivered:
		s.settleStock(ctx, order, false)
	}

	if status != previous {
		s.events.Publish(ctx, contracts.EventOrderStatusChanged, orderPayload(order, previous))
	}
	s.logger.Info("Order status updated", zap.Uint("order_id", id),
		zap.String("from", string(previous)), zap.String("to", string(status)))
	return nil
}

func (s *orderServiceImpl) Delete(ctx context.Context, id uint) *ServiceError {
	order, svcErr := s.Get(ctx, id)
	if svcErr != nil {
		return svcErr
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(http.StatusNotFound, msgOrderNotFound)
		}
		s.logger.Error("Failed to delete order", zap.Uint("order_id", id), zap.Error(err))
		return internalError()
	}

	s.settleStock(ctx, order, true)
	s.logger.Info("Order deleted", zap.Uint("order_id", id))
	return nil
}

func orderPayload(o *models.Order, previous models.OrderStatus) contracts.OrderEventPayload {
	return contracts.OrderEventPayload{
		OrderID:        o.ID,
		CustomerName:   o.CustomerName,
		CustomerPhone:  o.CustomerPhone,
		DeliveryDate:   o.DeliveryDate,
		IsUrgent:       o.IsUrgent,
		TotalPrice:     o.TotalPrice,
		DiscountAmount: o.DiscountAmount,
		PointsEarned:   o.LoyaltyPointsEarned,
		Status:         string(o.Status),
		PreviousStatus: string(previous),
		ItemCount:      len(o.Items),
	}
}
