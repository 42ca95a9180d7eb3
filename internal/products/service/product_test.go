package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"petcare/internal/catalog"
	producterrors "petcare/internal/products/errors"
	"petcare/internal/products/validator"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/logger"
	"petcare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProductID = "64b0000000000000000000d1"

type mockProductRepository struct {
	createFunc       func(ctx context.Context, p *model.Product) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Product, error)
	findFunc         func(ctx context.Context, filter catalog.Filter) ([]*model.Product, error)
	findFeaturedFunc func(ctx context.Context, limit int64) ([]*model.Product, error)
	findRelatedFunc  func(ctx context.Context, p *model.Product, limit int64) ([]*model.Product, error)
	searchFunc       func(ctx context.Context, term string, limit int64) ([]*model.Product, error)
	updateFunc       func(ctx context.Context, id string, p *model.Product) error
	deactivateFunc   func(ctx context.Context, id string) error
}

func (m *mockProductRepository) Create(ctx context.Context, p *model.Product) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = testProductID
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", producterrors.ErrNotFound, id)
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Product, error) {
	return []*model.Product{}, nil
}

func (m *mockProductRepository) Find(ctx context.Context, filter catalog.Filter) ([]*model.Product, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter)
	}
	return []*model.Product{}, nil
}

func (m *mockProductRepository) FindFeatured(ctx context.Context, limit int64) ([]*model.Product, error) {
	if m.findFeaturedFunc != nil {
		return m.findFeaturedFunc(ctx, limit)
	}
	return []*model.Product{}, nil
}

func (m *mockProductRepository) FindRelated(ctx context.Context, p *model.Product, limit int64) ([]*model.Product, error) {
	if m.findRelatedFunc != nil {
		return m.findRelatedFunc(ctx, p, limit)
	}
	return []*model.Product{}, nil
}

func (m *mockProductRepository) Search(ctx context.Context, term string, limit int64) ([]*model.Product, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, term, limit)
	}
	return []*model.Product{}, nil
}

func (m *mockProductRepository) Categories(ctx context.Context) ([]string, error) {
	return []string{"Food & Treats"}, nil
}

func (m *mockProductRepository) Update(ctx context.Context, id string, p *model.Product) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, p)
	}
	return nil
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	return nil
}

func (m *mockProductRepository) Deactivate(ctx context.Context, id string) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id)
	}
	return nil
}

func (m *mockProductRepository) CountActive(ctx context.Context) (int64, error) {
	return 0, nil
}

func newTestService(repo *mockProductRepository) *productService {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	return &productService{
		repo:      repo,
		validator: validator.NewProductValidator(log),
		cfg:       cfg,
	}
}

func newProduct() *model.Product {
	return &model.Product{
		Name:          "Premium Dog Kibble",
		Description:   "Grain free adult formula",
		Category:      "Food & Treats",
		Brand:         " NutriPaws ",
		Price:         1800,
		OriginalPrice: 2000,
		Stock:         12,
		Images:        []model.ProductImage{{URL: "https://img.example.com/kibble.jpg"}, {URL: "  "}},
		AvailableFor:  []string{"Dog", "Dog"},
		Tags:          []string{"Food", " food ", "Grain-Free"},
	}
}

func TestCreate_Sanitizes(t *testing.T) {
	var stored *model.Product
	svc := newTestService(&mockProductRepository{
		createFunc: func(_ context.Context, p *model.Product) error {
			stored = p
			return nil
		},
	})

	require.NoError(t, svc.Create(context.Background(), newProduct()))
	require.NotNil(t, stored)

	assert.Equal(t, "NutriPaws", stored.Brand)
	assert.Equal(t, []string{"Dog"}, stored.AvailableFor)
	assert.Equal(t, []string{"food", "grain-free"}, stored.Tags)
	require.Len(t, stored.Images, 1)
	assert.Equal(t, "Premium Dog Kibble", stored.Images[0].Alt)
	assert.True(t, stored.InStock)
	assert.True(t, stored.IsActive)
	assert.Equal(t, 10, stored.DiscountPercentage())
}

func TestCreate_OutOfStock(t *testing.T) {
	var stored *model.Product
	svc := newTestService(&mockProductRepository{
		createFunc: func(_ context.Context, p *model.Product) error {
			stored = p
			return nil
		},
	})

	p := newProduct()
	p.Stock = 0
	p.AvailableFor = nil
	require.NoError(t, svc.Create(context.Background(), p))
	assert.False(t, stored.InStock)
	assert.Equal(t, model.StockOut, stored.StockStatus())
	assert.Equal(t, []string{catalog.PetTypeAll}, stored.AvailableFor)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *model.Product)
		message string
	}{
		{"unknown category", func(p *model.Product) { p.Category = "Snacks" }, "category is not a known product category"},
		{"bad size", func(p *model.Product) { p.Size = "XXL" }, "size must be one of: XS, S, M, L, XL, One Size"},
		{"bad age group", func(p *model.Product) { p.AgeGroup = "Teen" }, "age_group must be one of: Puppy/Kitten, Adult, Senior, All Ages"},
		{"negative stock", func(p *model.Product) { p.Stock = -2 }, "stock must be at least 0"},
		{"bad image url", func(p *model.Product) { p.Images = []model.ProductImage{{URL: "not a url"}} }, "url must be a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockProductRepository{})

			p := newProduct()
			tt.mutate(p)

			err := svc.Create(context.Background(), p)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
			assert.Equal(t, tt.message, apperrors.UserMessage(err))
		})
	}
}

func TestList_FeaturedOnlyWhenBrowsing(t *testing.T) {
	featuredCalls := 0
	repo := &mockProductRepository{
		findFeaturedFunc: func(_ context.Context, limit int64) ([]*model.Product, error) {
			featuredCalls++
			assert.Equal(t, int64(featuredProductsLimit), limit)
			return []*model.Product{{Name: "Ball"}}, nil
		},
	}
	svc := newTestService(repo)

	listing, err := svc.List(context.Background(), catalog.Filter{})
	require.NoError(t, err)
	assert.Len(t, listing.Featured, 1)
	assert.Equal(t, []string{"Food & Treats"}, listing.Categories)

	listing, err = svc.List(context.Background(), catalog.Filter{Search: "ball"})
	require.NoError(t, err)
	assert.Empty(t, listing.Featured)
	assert.Equal(t, 1, featuredCalls)
}

func TestList_Error(t *testing.T) {
	svc := newTestService(&mockProductRepository{
		findFunc: func(_ context.Context, _ catalog.Filter) ([]*model.Product, error) {
			return nil, errors.New("cursor failed")
		},
	})

	_, err := svc.List(context.Background(), catalog.Filter{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestSuggest(t *testing.T) {
	var gotTerm string
	var gotLimit int64
	svc := newTestService(&mockProductRepository{
		searchFunc: func(_ context.Context, term string, limit int64) ([]*model.Product, error) {
			gotTerm, gotLimit = term, limit
			return []*model.Product{{Name: "Kibble"}}, nil
		},
	})

	products, err := svc.Suggest(context.Background(), "  kib ")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "kib", gotTerm)
	assert.Equal(t, int64(suggestionsLimit), gotLimit)

	products, err = svc.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestUpdate_KeepsRatings(t *testing.T) {
	var updated *model.Product
	svc := newTestService(&mockProductRepository{
		findByIDFunc: func(_ context.Context, id string) (*model.Product, error) {
			return &model.Product{ID: id, IsActive: true, Rating: 4.5, ReviewCount: 31}, nil
		},
		updateFunc: func(_ context.Context, _ string, p *model.Product) error {
			updated = p
			return nil
		},
	})

	require.NoError(t, svc.Update(context.Background(), testProductID, newProduct()))
	require.NotNil(t, updated)
	assert.Equal(t, 4.5, updated.Rating)
	assert.Equal(t, 31, updated.ReviewCount)
	assert.Equal(t, model.StarRating{Full: 4, Half: 1, Empty: 0}, updated.StarRating())
}

func TestGetWithRelated_NotFound(t *testing.T) {
	svc := newTestService(&mockProductRepository{})

	_, _, err := svc.GetWithRelated(context.Background(), testProductID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
