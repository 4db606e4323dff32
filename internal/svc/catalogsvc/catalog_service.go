package catalogsvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/catalog"
)

// CatalogConfig contains configuration parameters for the catalog service.
type CatalogConfig struct {
	// MaxPageSize caps the page size of product listings
	MaxPageSize int `env:"MAX_PAGE_SIZE" default:"100"`
}

// CatalogService exposes the product catalog to shoppers and administrators.
type CatalogService struct {
	cfg  CatalogConfig
	repo catalog.Repository
	log  logging.Logger
}

// NewCatalogService creates a catalog service on repo.
func NewCatalogService(repo catalog.Repository, cfg CatalogConfig) *CatalogService {
	return &CatalogService{
		cfg:  cfg,
		repo: repo,
		log:  logging.GetLogger("svc.catalogsvc.catalog_service"),
	}
}

// GetProduct returns a listed product. Unlisted products are reported as not found.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	} else if !ok || !p.Listed() {
		return nil, domain.ErrProductNotFound
	}

	return p, nil
}

// ListProducts returns one page of listed products ordered by id.
func (s *CatalogService) ListProducts(ctx context.Context, page, pageSize int) (domain.Page[domain.Product], error) {
	pagination, err := domain.NewPagination(page, pageSize, s.cfg.MaxPageSize)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}

	products, total, err := s.repo.ListProducts(ctx, pagination, true)
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}

	return domain.NewPage(products, total, pagination), nil
}

// CreateProduct validates and stores a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) (err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "create product failed", logging.Err(err))
		} else {
			s.log.InfoContext(ctx, "product created", logging.Group("product", "id", p.ID, "stock", p.Stock))
		}
	}()

	if p.Status == "" {
		p.Status = domain.ProductStatusListed
	}

	if err := p.Validate(); err != nil {
		return err
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

// UpdateProduct applies update to the stored product with the given id and returns the result.
// Stock may be set to any non-negative value.
func (s *CatalogService) UpdateProduct(
	ctx context.Context,
	id int64,
	update func(p *domain.Product),
) (_ *domain.Product, err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "update product failed", logging.Err(err))
		} else {
			s.log.InfoContext(ctx, "product updated", logging.Group("product", "id", id))
		}
	}()

	p, ok, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	} else if !ok {
		return nil, domain.ErrProductNotFound
	}

	update(p)
	p.ID = id

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return p, nil
}
