package services

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

type CartService interface {
	Get(ctx context.Context, cartID string) (*models.Cart, *ServiceError)
	AddItem(ctx context.Context, cartID, productID string, qty int) (*models.Cart, *ServiceError)
	UpdateQuantity(ctx context.Context, cartID, productID string, qty int) (*models.Cart, *ServiceError)
	RemoveItem(ctx context.Context, cartID, productID string) (*models.Cart, *ServiceError)
	Clear(ctx context.Context, cartID string) *ServiceError
}

type cartServiceImpl struct {
	carts   repository.CartRepository
	catalog CatalogService
	logger  *zap.Logger
}

func NewCartService(carts repository.CartRepository, catalog CatalogService, logger *zap.Logger) CartService {
	return &cartServiceImpl{carts: carts, catalog: catalog, logger: logger}
}

func (s *cartServiceImpl) load(ctx context.Context, cartID string) (*models.Cart, *ServiceError) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("cart_id", cartID), zap.Error(err))
		return nil, internalError()
	}
	return cart, nil
}

func (s *cartServiceImpl) save(ctx context.Context, cart *models.Cart) *ServiceError {
	if err := s.carts.Save(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.String("cart_id", cart.ID), zap.Error(err))
		return internalError()
	}
	return nil
}

func (s *cartServiceImpl) Get(ctx context.Context, cartID string) (*models.Cart, *ServiceError) {
	return s.load(ctx, cartID)
}

func (s *cartServiceImpl) AddItem(ctx context.Context, cartID, productID string, qty int) (*models.Cart, *ServiceError) {
	if qty < 1 {
		return nil, newError(http.StatusBadRequest, "Quantité invalide")
	}
	product, svcErr := s.catalog.Get(ctx, productID)
	if svcErr != nil {
		return nil, svcErr
	}

	cart, svcErr := s.load(ctx, cartID)
	if svcErr != nil {
		return nil, svcErr
	}
	cart.Add(models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Unit:      product.Unit,
		Category:  product.Category,
		Image:     product.Image,
		Price:     product.Price,
		Quantity:  qty,
	})
	if svcErr := s.save(ctx, cart); svcErr != nil {
		return nil, svcErr
	}
	return cart, nil
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, cartID, productID string, qty int) (*models.Cart, *ServiceError) {
	cart, svcErr := s.load(ctx, cartID)
	if svcErr != nil {
		return nil, svcErr
	}
	if !cart.SetQuantity(productID, qty) {
		return nil, newError(http.StatusNotFound, "Article absent du panier")
	}
	if svcErr := s.save(ctx, cart); svcErr != nil {
		return nil, svcErr
	}
	return cart, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, cartID, productID string) (*models.Cart, *ServiceError) {
	return s.UpdateQuantity(ctx, cartID, productID, 0)
}

func (s *cartServiceImpl) Clear(ctx context.Context, cartID string) *ServiceError {
	if err := s.carts.Delete(ctx, cartID); err != nil {
		s.logger.Error("Failed to clear cart", zap.String("cart_id", cartID), zap.Error(err))
		return internalError()
	}
	return nil
}
