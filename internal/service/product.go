package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/internal/event"
	"github.com/nicofzzn/ecommerce/internal/repository"
	"github.com/nicofzzn/ecommerce/pkg/logger"
	"github.com/nicofzzn/ecommerce/pkg/pagination"
)

// TopProductsLimit is the size of the top-rated carousel.
const TopProductsLimit = 3

// ProductService implements the catalog operations.
type ProductService struct {
	repo      repository.ProductRepository
	publisher event.Publisher
	logger    *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, publisher event.Publisher, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ListProducts returns one page of products whose name contains keyword,
// ignoring case. page is 1-based; values below 1 read as 1.
func (s *ProductService) ListProducts(ctx context.Context, keyword string, page int) (*domain.ProductPage, error) {
	params := pagination.New(page, pagination.DefaultPageSize)

	products, total, err := s.repo.List(ctx, domain.ProductFilter{
		Keyword: strings.TrimSpace(keyword),
		Limit:   params.PerPage,
		Offset:  params.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	return &domain.ProductPage{
		Products: products,
		Page:     params.Page,
		Pages:    pagination.TotalPages(total, params.PerPage),
	}, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// TopProducts returns the highest rated products.
func (s *ProductService) TopProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.Top(ctx, TopProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// CreateSampleProduct inserts the placeholder product owned by ownerID.
func (s *ProductService) CreateSampleProduct(ctx context.Context, ownerID string) (*domain.Product, error) {
	product := domain.NewSampleProduct(ownerID)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.publisher.ProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			logger.Err(err),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("owner_id", ownerID),
	)
	return product, nil
}

// UpdateProduct changes only the fields present in patch. An empty patch
// returns the product unchanged.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Empty() {
		return s.GetProduct(ctx, id)
	}

	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.publisher.ProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			logger.Err(err),
		)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", product.ID))
	return product, nil
}

// DeleteProduct removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.publisher.ProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			logger.Err(err),
		)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}
