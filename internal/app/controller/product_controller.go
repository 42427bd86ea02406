package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/internal/app/service"
	apperrors "github.com/verdana/verdana-backend/internal/errors"
	"github.com/verdana/verdana-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	Name                string   `json:"name" binding:"required"`
	Description         string   `json:"description"`
	Brand               string   `json:"brand"`
	Price               float64  `json:"price" binding:"required,gt=0"`
	Category            string   `json:"category" binding:"required"`
	Tags                []string `json:"tags"`
	Stock               int      `json:"stock" binding:"gte=0"`
	SustainabilityScore int      `json:"sustainability_score" binding:"gte=0,lte=100"`
	ImageURL            string   `json:"image_url"`
}

// ListProducts returns the catalog with filters and pagination
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.ProductListOptions{
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
		Limit:  20,
	}

	if category := c.Query("category"); category != "" {
		cat := model.ProductCategory(category)
		opts.Category = &cat
	}
	if minScore := c.Query("min_score"); minScore != "" {
		score, err := strconv.Atoi(minScore)
		if err != nil || score < 0 || score > 100 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "min_score must be between 0 and 100")
			return
		}
		opts.MinScore = score
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n <= 100 {
			opts.Limit = n
		}
	}
	if offset := c.Query("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	switch c.Query("sort") {
	case "price_asc":
		opts.Sort = service.ProductSortPrice
		opts.SortAscending = true
	case "price_desc":
		opts.Sort = service.ProductSortPrice
	case "rating":
		opts.Sort = service.ProductSortRating
	default:
		opts.Sort = service.ProductSortCreatedAt
	}

	products, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		log.Error("Failed to list products", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	product, err := ctrl.productService.GetProductByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// GetPopularProducts returns the highest-rated products
// GET /api/v1/products/popular
func (ctrl *ProductController) GetPopularProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	products, err := ctrl.productService.GetTopRatedProducts(limit)
	if err != nil {
		log.Error("Failed to fetch popular products", err, nil)
		apperrors.InternalError(c, "Failed to fetch popular products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// CreateProduct adds a catalog entry (admin)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create product request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	product := model.Product{
		Name:                req.Name,
		Description:         req.Description,
		Brand:               req.Brand,
		Price:               req.Price,
		Category:            model.ProductCategory(req.Category),
		Tags:                pq.StringArray(req.Tags),
		Stock:               req.Stock,
		SustainabilityScore: req.SustainabilityScore,
		ImageURL:            req.ImageURL,
	}

	if err := ctrl.productService.CreateProduct(&product); err != nil {
		if errors.Is(err, service.ErrInvalidScore) {
			apperrors.BadRequest(c, apperrors.ProductInvalidScore, "Sustainability score must be between 0 and 100")
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// UpdateProduct edits a catalog entry (admin)
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	product := model.Product{
		Name:                req.Name,
		Description:         req.Description,
		Brand:               req.Brand,
		Price:               req.Price,
		Category:            model.ProductCategory(req.Category),
		Tags:                pq.StringArray(req.Tags),
		Stock:               req.Stock,
		SustainabilityScore: req.SustainabilityScore,
		ImageURL:            req.ImageURL,
	}
	product.ID = uint(id)

	if err := ctrl.productService.UpdateProduct(&product); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidScore):
			apperrors.BadRequest(c, apperrors.ProductInvalidScore, "Sustainability score must be between 0 and 100")
		default:
			log.Error("Failed to update product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.InternalError(c, "Failed to update product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// DeleteProduct removes a catalog entry unless orders reference it (admin)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	if err := ctrl.productService.DeleteProduct(uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrProductInUse):
			apperrors.Conflict(c, apperrors.ProductInUse, "Product is referenced by existing orders")
		default:
			log.Error("Failed to delete product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.InternalError(c, "Failed to delete product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted",
	})
}
