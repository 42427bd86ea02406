package repository

import (
	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSortField string

const (
	ProductSortPrice     ProductSortField = "price"
	ProductSortCreatedAt ProductSortField = "created_at"
	ProductSortRating    ProductSortField = "rating"
)

// ProductFilter narrows and orders catalog listings.
type ProductFilter struct {
	Category      *model.ProductCategory
	Tag           string
	Search        string
	MinScore      int // minimum sustainability score, 0 disables
	SortBy        ProductSortField
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	BulkCreate(products []model.Product, batchSize int) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindTopRated(limit int) ([]model.Product, error)
	FindBelowStock(threshold int) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
	// CountOrderReferences reports how many order items reference the
	// product; deletion is restricted while this is non-zero.
	CountOrderReferences(productID uint) (int64, error)
	// UpdateRatingAggregate overwrites the derived review aggregate.
	UpdateRatingAggregate(id uint, average float64, count int) error
	// CountByScoreThreshold returns the catalog size and how many
	// products meet or exceed the sustainability score threshold.
	CountByScoreThreshold(threshold int) (total int64, sustainable int64, err error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	logger.Info("Bulk creating products in database", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products in database", err)
		return err
	}
	return nil
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{})
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category": filter.Category,
		"tag":      filter.Tag,
		"search":   filter.Search,
		"sort":     filter.SortBy,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})

	query := r.db.Model(&model.Product{})

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR brand LIKE ? OR description LIKE ?", pattern, pattern, pattern)
	}
	if filter.MinScore > 0 {
		query = query.Where("sustainability_score >= ?", filter.MinScore)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order("price " + direction)
	case ProductSortRating:
		query = query.Order("rating_average " + direction)
	case ProductSortCreatedAt:
		fallthrough
	default:
		query = query.Order("created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"category": filter.Category,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindTopRated(limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("review_count > 0").
		Order("rating_average DESC, review_count DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find top rated products in database", err)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindBelowStock(threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("stock <= ?", threshold).
		Order("stock ASC").
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find low stock products in database", err, map[string]interface{}{
			"threshold": threshold,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (r *productRepository) CountOrderReferences(productID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count order references in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return 0, err
	}
	return count, nil
}

func (r *productRepository) CountByScoreThreshold(threshold int) (int64, int64, error) {
	var total, sustainable int64
	if err := r.db.Model(&model.Product{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count products in database", err)
		return 0, 0, err
	}
	err := r.db.Model(&model.Product{}).
		Where("sustainability_score >= ?", threshold).
		Count(&sustainable).Error
	if err != nil {
		logger.Error("Failed to count sustainable products in database", err, map[string]interface{}{
			"threshold": threshold,
		})
		return 0, 0, err
	}
	return total, sustainable, nil
}

func (r *productRepository) UpdateRatingAggregate(id uint, average float64, count int) error {
	logger.Debug("Updating product rating aggregate in database", map[string]interface{}{
		"product_id":     id,
		"rating_average": average,
		"review_count":   count,
	})

	err := r.db.Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating_average": average,
			"review_count":   count,
		}).Error
	if err != nil {
		logger.Error("Failed to update product rating aggregate in database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}
