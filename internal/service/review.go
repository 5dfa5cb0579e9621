package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/internal/event"
	"github.com/nicofzzn/ecommerce/internal/repository"
	apperrors "github.com/nicofzzn/ecommerce/pkg/errors"
	"github.com/nicofzzn/ecommerce/pkg/logger"
)

// AddReviewInput holds the parameters for reviewing a product.
type AddReviewInput struct {
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
}

// ReviewService adds reviews and keeps product aggregates in step.
type ReviewService struct {
	repo      repository.ProductRepository
	publisher event.Publisher
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ProductRepository, publisher event.Publisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// AddReview records one review per user and product. The product row is
// locked while the aggregates are recomputed.
func (s *ReviewService) AddReview(ctx context.Context, in AddReviewInput) (*domain.Product, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperrors.InvalidInput("Rating must be between 1 and 5")
	}
	review := domain.NewReview(in.UserID, in.UserName, in.Rating, in.Comment)

	product, err := s.repo.Modify(ctx, in.ProductID, func(p *domain.Product) error {
		return p.AddReview(review)
	})
	if err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}

	if err := s.publisher.ReviewAdded(ctx, product, &review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.added event",
			slog.String("product_id", product.ID),
			logger.Err(err),
		)
	}

	s.logger.InfoContext(ctx, "review added",
		slog.String("product_id", product.ID),
		slog.String("review_id", review.ID),
		slog.Int("rating", review.Rating),
		slog.Int("num_reviews", product.NumReviews),
	)
	return product, nil
}
