package service

import (
	"context"
	"errors"

	"petcare/internal/catalog"
	producterrors "petcare/internal/products/errors"
	"petcare/internal/products/repository"
	"petcare/internal/products/validator"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/model"
	"petcare/pkg/sanitizer"
	"petcare/pkg/validation"

	"golang.org/x/sync/errgroup"
)

const (
	featuredProductsLimit = 4
	relatedProductsLimit  = 4
	suggestionsLimit      = 8
)

type Listing struct {
	Products   []*model.Product
	Categories []string
	Featured   []*model.Product
}

type ProductService interface {
	List(ctx context.Context, filter catalog.Filter) (*Listing, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	GetWithRelated(ctx context.Context, id string) (*model.Product, []*model.Product, error)
	Suggest(ctx context.Context, term string) ([]*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, id string, p *model.Product) error
	Delete(ctx context.Context, id string) error
}

type productService struct {
	repo      repository.ProductRepository
	validator *validator.ProductValidator
	cfg       *config.Config
}

func NewProductService(repo repository.ProductRepository, validator *validator.ProductValidator, cfg *config.Config) ProductService {
	return &productService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

// List loads the filtered products and the category list together. Featured
// products are added only when the listing is not narrowed by category or search.
func (s *productService) List(ctx context.Context, filter catalog.Filter) (*Listing, error) {
	listing := &Listing{Featured: []*model.Product{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := s.repo.Find(gctx, filter)
		if err != nil {
			return err
		}
		listing.Products = products
		return nil
	})
	g.Go(func() error {
		categories, err := s.repo.Categories(gctx)
		if err != nil {
			return err
		}
		listing.Categories = categories
		return nil
	})
	if filter.IsBrowsing() {
		g.Go(func() error {
			featured, err := s.repo.FindFeatured(gctx, featuredProductsLimit)
			if err != nil {
				return err
			}
			listing.Featured = featured
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list products",
			"category", filter.Category,
			"search", filter.Search,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve products", err)
	}
	return listing, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Product ID cannot be empty")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve product")
	}
	return p, nil
}

func (s *productService) GetWithRelated(ctx context.Context, id string) (*model.Product, []*model.Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsActive {
		return nil, nil, apperrors.NotFoundWithID("Product", id)
	}

	related, err := s.repo.FindRelated(ctx, p, relatedProductsLimit)
	if err != nil {
		s.cfg.Log.Warn("Failed to load related products", "id", id, "error", err)
		related = []*model.Product{}
	}
	return p, related, nil
}

// Suggest returns up to eight active products for a search box. A blank term yields none.
func (s *productService) Suggest(ctx context.Context, term string) ([]*model.Product, error) {
	term = sanitizer.TrimAndNormalize(term)
	if term == "" {
		return []*model.Product{}, nil
	}

	products, err := s.repo.Search(ctx, term, suggestionsLimit)
	if err != nil {
		s.cfg.Log.Error("Failed to search products", "term", term, "error", err)
		return nil, apperrors.Internal("Failed to search products", err)
	}
	return products, nil
}

func (s *productService) Create(ctx context.Context, p *model.Product) error {
	s.sanitize(p)
	p.IsActive = true

	if err := s.validate(p); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.cfg.Log.Error("Failed to create product", "name", p.Name, "error", err)
		return apperrors.Internal("Failed to create product", err)
	}

	s.cfg.Log.Info("Product created successfully",
		"id", p.ID,
		"name", p.Name,
		"category", p.Category,
		"stock", p.Stock,
	)
	return nil
}

func (s *productService) Update(ctx context.Context, id string, p *model.Product) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.sanitize(p)
	p.ID = existing.ID
	p.IsActive = existing.IsActive
	p.Rating = existing.Rating
	p.ReviewCount = existing.ReviewCount
	p.CreatedAt = existing.CreatedAt

	if err := s.validate(p); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, p); err != nil {
		return s.mapRepoError(err, id, "Failed to update product")
	}

	s.cfg.Log.Info("Product updated successfully", "id", id, "stock", p.Stock)
	return nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Product ID cannot be empty")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete product")
	}

	s.cfg.Log.Info("Product deactivated", "id", id)
	return nil
}

func (s *productService) validate(p *model.Product) error {
	if err := s.validator.Validate(p); err != nil {
		s.cfg.Log.Warn("Product validation failed",
			"name", p.Name,
			"error", err,
		)
		return apperrors.Validation(validation.Message(err), map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *productService) sanitize(p *model.Product) {
	p.Name = sanitizer.TrimAndNormalize(p.Name)
	p.Description = sanitizer.NormalizeText(p.Description)
	p.Category = sanitizer.TrimAndNormalize(p.Category)
	p.Brand = sanitizer.TrimAndNormalize(p.Brand)
	p.Size = sanitizer.TrimAndNormalize(p.Size)
	p.Weight = sanitizer.TrimAndNormalize(p.Weight)
	p.AgeGroup = sanitizer.TrimAndNormalize(p.AgeGroup)
	p.AvailableFor = sanitizer.NormalizeList(p.AvailableFor)
	p.Features = sanitizer.NormalizeList(p.Features)
	p.Ingredients = sanitizer.NormalizeList(p.Ingredients)
	p.Colors = sanitizer.NormalizeList(p.Colors)
	p.Tags = sanitizer.NormalizeTags(p.Tags)

	images := make([]model.ProductImage, 0, len(p.Images))
	for _, img := range p.Images {
		img.URL = sanitizer.TrimAndNormalize(img.URL)
		img.Alt = sanitizer.TrimAndNormalize(img.Alt)
		if img.URL == "" {
			continue
		}
		if img.Alt == "" {
			img.Alt = p.Name
		}
		images = append(images, img)
	}
	p.Images = images

	if len(p.AvailableFor) == 0 {
		p.AvailableFor = []string{catalog.PetTypeAll}
	}
	p.InStock = p.Stock > 0
}

func (s *productService) mapRepoError(err error, id string, message string) error {
	if errors.Is(err, producterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Product", id)
	}
	if errors.Is(err, producterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid product ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
