package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"petcare/internal/catalog"
	producterrors "petcare/internal/products/errors"
	"petcare/pkg/config"
	mongotx "petcare/pkg/db/mongo"
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "products"
)

type mongoProductRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Product, error)
	Find(ctx context.Context, filter catalog.Filter) ([]*model.Product, error)
	FindFeatured(ctx context.Context, limit int64) ([]*model.Product, error)
	FindRelated(ctx context.Context, p *model.Product, limit int64) ([]*model.Product, error)
	Search(ctx context.Context, term string, limit int64) ([]*model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, p *model.Product) error
	DecrementStock(ctx context.Context, id string, quantity int) error
	Deactivate(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int64, error)
}

func NewMongoProductRepository(cfg *config.Config) ProductRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProductRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoProductRepository) Create(ctx context.Context, p *model.Product) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	p.CreatedAt = mongotx.Now()
	p.UpdatedAt = p.CreatedAt
	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", producterrors.ErrInvalidID, id)
	}

	var p model.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", producterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

func (r *mongoProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Product, error) {
	objectIDs := mongotx.ObjectIDs(ids)
	if len(objectIDs) == 0 {
		return []*model.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, nil)
}

func (r *mongoProductRepository) Find(ctx context.Context, filter catalog.Filter) ([]*model.Product, error) {
	return r.find(ctx, filter.Query(), filter.FindOptions(true))
}

func (r *mongoProductRepository) FindFeatured(ctx context.Context, limit int64) ([]*model.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "popularity_score", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{"is_active": true, "is_featured": true}, opts)
}

func (r *mongoProductRepository) FindRelated(ctx context.Context, p *model.Product, limit int64) ([]*model.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", producterrors.ErrInvalidID, p.ID)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "popularity_score", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, catalog.RelatedQuery(p.Category, objectID), opts)
}

// Search matches the start of words in name, brand and tags, case-insensitively.
func (r *mongoProductRepository) Search(ctx context.Context, term string, limit int64) ([]*model.Product, error) {
	pattern := primitive.Regex{Pattern: `\b` + mongotx.EscapeRegex(term), Options: "i"}
	filter := bson.M{
		"is_active": true,
		"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"brand": pattern},
			bson.M{"tags": pattern},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "popularity_score", Value: -1}, {Key: "name", Value: 1}}).
		SetLimit(limit)
	return r.find(ctx, filter, opts)
}

func (r *mongoProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Product, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*model.Product{}
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *mongoProductRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "category", bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list product categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, id string, p *model.Product) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"name":                     p.Name,
			"description":              p.Description,
			"category":                 p.Category,
			"brand":                    p.Brand,
			"price":                    p.Price,
			"original_price":           p.OriginalPrice,
			"stock":                    p.Stock,
			"in_stock":                 p.Stock > 0,
			"images":                   p.Images,
			"available_for":            p.AvailableFor,
			"size":                     p.Size,
			"weight":                   p.Weight,
			"age_group":                p.AgeGroup,
			"features":                 p.Features,
			"ingredients":              p.Ingredients,
			"nutritional_info":         p.NutritionalInfo,
			"colors":                   p.Colors,
			"tags":                     p.Tags,
			"is_featured":              p.IsFeatured,
			"is_on_sale":               p.IsOnSale,
			"veterinarian_recommended": p.VeterinarianRecommended,
			"popularity_score":         p.PopularityScore,
			"updated_at":               mongotx.Now(),
		},
	})
}

// DecrementStock takes quantity off an active product's stock in one conditional
// update, keeping in_stock in line. It fails with ErrInsufficientStock instead of
// going below zero.
func (r *mongoProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", producterrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":       objectID,
		"is_active": true,
		"stock":     bson.M{"$gte": quantity},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"stock":      bson.M{"$subtract": bson.A{"$stock", quantity}},
			"updated_at": mongotx.Now(),
		}}},
		{{Key: "$set", Value: bson.M{
			"in_stock": bson.M{"$gt": bson.A{"$stock", 0}},
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update product stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", producterrors.ErrInsufficientStock, id)
	}
	return nil
}

func (r *mongoProductRepository) Deactivate(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": mongotx.Now()},
	})
}

func (r *mongoProductRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", producterrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", producterrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoProductRepository) CountActive(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
