package model

import (
	"time"

	"github.com/lib/pq"
)

// Review is one user's rating of a product, at most one per (user, product).
// Reviews are hard-deleted so the unique index stays usable after removal.
// Every mutation goes through ReviewService, which recomputes the product's
// rating aggregate afterwards.
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ProductID uint           `gorm:"not null;index:idx_reviews_product_user,unique" json:"product_id"`
	UserID    uint           `gorm:"not null;index:idx_reviews_product_user,unique" json:"user_id"`
	Rating    int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Title     string         `gorm:"type:varchar(200)" json:"title"`
	Comment   string         `gorm:"type:text" json:"comment"`
	ImageURLs pq.StringArray `gorm:"type:text[];default:'{}'" json:"image_urls"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}
