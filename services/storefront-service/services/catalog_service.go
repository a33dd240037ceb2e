package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

const imageUploadTTL = 15 * time.Minute

// ImagePresigner issues direct-to-bucket upload URLs.
type ImagePresigner interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (*aws_pkg.PresignedUpload, error)
}

type CatalogService interface {
	List(ctx context.Context, category models.Category) ([]models.Product, *ServiceError)
	Get(ctx context.Context, id string) (*models.Product, *ServiceError)
	Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
	Delete(ctx context.Context, id string) *ServiceError
	ImageUploadURL(ctx context.Context, id, contentType string) (*aws_pkg.PresignedUpload, *ServiceError)
	Seed(ctx context.Context) error
}

type catalogServiceImpl struct {
	products  repository.ProductRepository
	cache     repository.CatalogCache
	presigner ImagePresigner
	metrics   MetricsRecorder
	logger    *zap.Logger
}

// NewCatalogService builds the catalog. cache, presigner and metrics may be nil.
func NewCatalogService(
	products repository.ProductRepository,
	cache repository.CatalogCache,
	presigner ImagePresigner,
	metrics MetricsRecorder,
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		products:  products,
		cache:     cache,
		presigner: presigner,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *catalogServiceImpl) List(ctx context.Context, category models.Category) ([]models.Product, *ServiceError) {
	if category != "" && !category.Valid() {
		return nil, newError(http.StatusBadRequest, "Catégorie inconnue")
	}

	if s.cache != nil {
		products, ok, err := s.cache.Get(ctx, category)
		if err != nil {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		}
		if ok {
			recordAsync(s.metrics, func(ctx context.Context, m MetricsRecorder) {
				_ = m.RecordCount(ctx, aws_pkg.MetricCacheHits, nil)
			})
			return products, nil
		}
		recordAsync(s.metrics, func(ctx context.Context, m MetricsRecorder) {
			_ = m.RecordCount(ctx, aws_pkg.MetricCacheMisses, nil)
		})
	}

	products, err := s.products.List(ctx, category)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, internalError()
	}
	if products == nil {
		products = []models.Product{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, category, products); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

func (s *catalogServiceImpl) Get(ctx context.Context, id string) (*models.Product, *ServiceError) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(http.StatusNotFound, msgProductNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to load product", zap.String("product_id", id), zap.Error(err))
		return nil, internalError()
	}
	return p, nil
}

func (s *catalogServiceImpl) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	if !req.Category.Valid() {
		return nil, newError(http.StatusBadRequest, "Catégorie inconnue")
	}
	p := &models.Product{
		ID:          strings.ToLower(strings.TrimSpace(req.ID)),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Unit:        req.Unit,
		Price:       req.Price,
		Image:       req.Image,
		Available:   1,
	}
	if req.Available != nil {
		p.Available = *req.Available
	}

	if err := s.products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(http.StatusConflict, "Ce produit existe déjà")
		}
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, internalError()
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *catalogServiceImpl) Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	p, svcErr := s.Get(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, newError(http.StatusBadRequest, "Catégorie inconnue")
		}
		p.Category = *req.Category
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Available != nil {
		p.Available = *req.Available
	}

	if err := s.products.Save(ctx, p); err != nil {
		s.logger.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return nil, internalError()
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *catalogServiceImpl) Delete(ctx context.Context, id string) *ServiceError {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(http.StatusNotFound, msgProductNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return internalError()
	}
	s.invalidate(ctx)
	return nil
}

func (s *catalogServiceImpl) ImageUploadURL(ctx context.Context, id, contentType string) (*aws_pkg.PresignedUpload, *ServiceError) {
	if s.presigner == nil {
		return nil, newError(http.StatusServiceUnavailable, "Stockage d'images non configuré")
	}
	p, svcErr := s.Get(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	key := path.Join("products", id, uuid.NewString()+extensionFor(contentType))
	upload, err := s.presigner.PresignPut(ctx, key, contentType, imageUploadTTL)
	if err != nil {
		s.logger.Error("Failed to presign image upload", zap.String("product_id", id), zap.Error(err))
		return nil, internalError()
	}

	// the product points at the new object as soon as the URL is handed out
	p.Image = upload.ObjectURL
	if err := s.products.Save(ctx, p); err != nil {
		s.logger.Error("Failed to store product image", zap.String("product_id", id), zap.Error(err))
		return nil, internalError()
	}
	s.invalidate(ctx)
	return upload, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func (s *catalogServiceImpl) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}

// Seed loads the default catalog into an empty products table.
func (s *catalogServiceImpl) Seed(ctx context.Context) error {
	n, err := s.products.SeedIfEmpty(ctx, models.DefaultCatalog())
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if n > 0 {
		s.logger.Info("Catalog seeded", zap.Int("products", n))
		s.invalidate(ctx)
	}
	return nil
}
