package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

type ProductController struct {
	catalog services.CatalogService
}

func NewProductController(catalog services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// ListProducts handles GET /api/products?category=.
func (pc *ProductController) ListProducts(ctx *gin.Context) {
	category := models.Category(ctx.Query("category"))
	if category != "" && !category.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie invalide"})
		return
	}
	products, svcErr := pc.catalog.List(ctx.Request.Context(), category)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct handles GET /api/products/:id.
func (pc *ProductController) GetProduct(ctx *gin.Context) {
	product, svcErr := pc.catalog.Get(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/admin/products (admin only).
func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	product, svcErr := pc.catalog.Create(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/admin/products/:id (admin only).
func (pc *ProductController) UpdateProduct(ctx *gin.Context) {
	var req models.UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	product, svcErr := pc.catalog.Update(ctx.Request.Context(), ctx.Param("id"), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/admin/products/:id (admin only).
func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	if svcErr := pc.catalog.Delete(ctx.Request.Context(), ctx.Param("id")); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// ImageUploadURL handles POST /api/admin/products/:id/image-upload-url.
func (pc *ProductController) ImageUploadURL(ctx *gin.Context) {
	var req models.ImageUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	upload, svcErr := pc.catalog.ImageUploadURL(ctx.Request.Context(), ctx.Param("id"), req.ContentType)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, upload)
}
