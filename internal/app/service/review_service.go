package service

import (
	"errors"

	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/internal/app/repository"
	"github.com/verdana/verdana-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("user already reviewed this product")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

type ReviewService interface {
	GetProductReviews(productID uint, limit, offset int) ([]model.Review, int64, error)
	CreateReview(review *model.Review) error
	UpdateReview(userID, reviewID uint, rating int, title, comment string) (*model.Review, error)
	DeleteReview(userID, reviewID uint, isAdmin bool) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

func (s *reviewService) GetProductReviews(productID uint, limit, offset int) ([]model.Review, int64, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProductNotFound
		}
		return nil, 0, err
	}

	reviews, total, err := s.reviewRepo.FindByProductID(productID, limit, offset)
	if err != nil {
		logger.Error("Failed to fetch reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, 0, err
	}
	return reviews, total, nil
}

func (s *reviewService) CreateReview(review *model.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRating
	}

	if _, err := s.productRepo.FindByID(review.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	existing, err := s.reviewRepo.FindByUserAndProduct(review.UserID, review.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		return ErrDuplicateReview
	}

	if err := s.reviewRepo.Create(review); err != nil {
		logger.Error("Failed to create review", err, map[string]interface{}{
			"product_id": review.ProductID,
			"user_id":    review.UserID,
		})
		return err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	})

	return s.recalculateRating(review.ProductID)
}

func (s *reviewService) UpdateReview(userID, reviewID uint, rating int, title, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrReviewNotFound
	}

	review.Rating = rating
	review.Title = title
	review.Comment = comment
	if err := s.reviewRepo.Update(review); err != nil {
		logger.Error("Failed to update review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return nil, err
	}

	if err := s.recalculateRating(review.ProductID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) DeleteReview(userID, reviewID uint, isAdmin bool) error {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	if !isAdmin && review.UserID != userID {
		return ErrReviewNotFound
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		logger.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return err
	}

	logger.Info("Review deleted", map[string]interface{}{
		"review_id":  reviewID,
		"product_id": review.ProductID,
	})

	return s.recalculateRating(review.ProductID)
}

// recalculateRating refreshes the denormalized rating aggregate on the
// product after every review mutation. Deleting the last review resets
// the aggregate to zero.
func (s *reviewService) recalculateRating(productID uint) error {
	average, count, err := s.reviewRepo.AggregateByProductID(productID)
	if err != nil {
		logger.Error("Failed to aggregate ratings", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	if err := s.productRepo.UpdateRatingAggregate(productID, average, int(count)); err != nil {
		logger.Error("Failed to store rating aggregate", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	logger.Debug("Rating aggregate updated", map[string]interface{}{
		"product_id": productID,
		"average":    average,
		"count":      count,
	})
	return nil
}
