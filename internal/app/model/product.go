package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategorySkincare  ProductCategory = "skincare"
	CategoryHaircare  ProductCategory = "haircare"
	CategoryBodycare  ProductCategory = "bodycare"
	CategoryMakeup    ProductCategory = "makeup"
	CategoryFragrance ProductCategory = "fragrance"
)

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Brand       string          `gorm:"type:varchar(100)" json:"brand"`
	Price       float64         `gorm:"not null" json:"price"`
	Category    ProductCategory `gorm:"type:varchar(50);index" json:"category"`
	Tags        pq.StringArray  `gorm:"type:text[];default:'{}'" json:"tags"`
	// Available-to-sell unit count. Mutated only through the locked
	// checkout path and InventoryService adjustments.
	Stock int `gorm:"not null;default:0" json:"stock"`
	// 0-100 score assigned by the sourcing team; feeds the
	// sustainable-packaging rollup.
	SustainabilityScore int    `gorm:"not null;default:0" json:"sustainability_score"`
	ImageURL            string `json:"image_url"`
	// Derived from reviews; recomputed by ReviewService after every
	// review mutation.
	RatingAverage float64        `gorm:"not null;default:0" json:"rating_average"`
	ReviewCount   int            `gorm:"not null;default:0" json:"review_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
	CartItems  []CartItem  `gorm:"foreignKey:ProductID" json:"-"`
	Reviews    []Review    `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
