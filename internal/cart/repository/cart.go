package repository

import (
	"context"
	"errors"
	"fmt"

	carterrors "petcare/internal/cart/errors"
	"petcare/pkg/config"
	mongotx "petcare/pkg/db/mongo"
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "carts"

type mongoCartRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type CartRepository interface {
	FindActive(ctx context.Context, userID string) (*model.Cart, error)
	Create(ctx context.Context, c *model.Cart) error
	SaveItems(ctx context.Context, c *model.Cart) error
	MarkOrdered(ctx context.Context, c *model.Cart) error
}

func NewMongoCartRepository(cfg *config.Config) CartRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCartRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoCartRepository) FindActive(ctx context.Context, userID string) (*model.Cart, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var c model.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "status": model.CartActive}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", carterrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return &c, nil
}

// Create inserts a new active cart. The partial unique index on user_id allows only
// one active cart per user, so a concurrent create surfaces as a duplicate key.
func (r *mongoCartRepository) Create(ctx context.Context, c *model.Cart) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	c.CreatedAt = mongotx.Now()
	c.UpdatedAt = c.CreatedAt
	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

// SaveItems writes the items and the totals derived from them. The write only
// applies to the version c was read at; otherwise ErrConflict is returned and c
// must be reloaded.
func (r *mongoCartRepository) SaveItems(ctx context.Context, c *model.Cart) error {
	c.Recalculate()
	now := mongotx.Now()
	err := r.updateVersion(ctx, c, bson.M{
		"items":       c.Items,
		"total_items": c.TotalItems,
		"total_price": c.TotalPrice,
		"updated_at":  now,
	})
	if err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// MarkOrdered closes the cart at the version it was read at, so lines added after
// checkout started are never ordered unseen.
func (r *mongoCartRepository) MarkOrdered(ctx context.Context, c *model.Cart) error {
	return r.updateVersion(ctx, c, bson.M{"status": model.CartOrdered, "updated_at": mongotx.Now()})
}

func (r *mongoCartRepository) updateVersion(ctx context.Context, c *model.Cart, set bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", carterrors.ErrInvalidID, c.ID)
	}

	filter := bson.M{"_id": objectID, "status": model.CartActive, "version": c.Version}
	if c.Version == 0 {
		// Carts saved before versioning have no field yet.
		filter["version"] = bson.M{"$in": bson.A{0, nil}}
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s at version %d", carterrors.ErrConflict, c.ID, c.Version)
	}
	c.Version++
	return nil
}
