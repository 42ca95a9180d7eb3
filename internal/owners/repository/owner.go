package repository

import (
	"context"
	"errors"
	"fmt"

	ownererrors "petcare/internal/owners/errors"
	"petcare/pkg/config"
	mongotx "petcare/pkg/db/mongo"
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "owners"
)

type mongoOwnerRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type OwnerRepository interface {
	Create(ctx context.Context, o *model.Owner) error
	FindByID(ctx context.Context, id string) (*model.Owner, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Owner, error)
	FindByEmail(ctx context.Context, email string) (*model.Owner, error)
	FindActive(ctx context.Context, search string) ([]*model.Owner, error)
	Update(ctx context.Context, id string, o *model.Owner) error
	Deactivate(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int64, error)
}

func NewMongoOwnerRepository(cfg *config.Config) OwnerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOwnerRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoOwnerRepository) Create(ctx context.Context, o *model.Owner) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	o.CreatedAt = mongotx.Now()
	o.UpdatedAt = o.CreatedAt
	result, err := r.collection.InsertOne(ctx, o)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ownererrors.ErrDuplicateEmail, o.Email)
		}
		return fmt.Errorf("failed to create owner: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid.Hex()
	}
	return nil
}

func (r *mongoOwnerRepository) FindByID(ctx context.Context, id string) (*model.Owner, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ownererrors.ErrInvalidID, id)
	}

	var o model.Owner
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ownererrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find owner: %w", err)
	}
	return &o, nil
}

// FindByIDs returns the owners that exist among ids, soft-deleted ones included.
func (r *mongoOwnerRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Owner, error) {
	objectIDs := mongotx.ObjectIDs(ids)
	if len(objectIDs) == 0 {
		return []*model.Owner{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, nil)
}

func (r *mongoOwnerRepository) FindByEmail(ctx context.Context, email string) (*model.Owner, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var o model.Owner
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ownererrors.ErrNotFound, email)
		}
		return nil, fmt.Errorf("failed to find owner: %w", err)
	}
	return &o, nil
}

// FindActive lists active owners by last then first name. search matches names, email
// and phone case-insensitively.
func (r *mongoOwnerRepository) FindActive(ctx context.Context, search string) ([]*model.Owner, error) {
	filter := bson.M{"is_active": true}
	if search != "" {
		pattern := bson.M{"$regex": mongotx.EscapeRegex(search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"first_name": pattern},
			bson.M{"last_name": pattern},
			bson.M{"email": pattern},
			bson.M{"phone": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoOwnerRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Owner, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer cursor.Close(ctx)

	owners := []*model.Owner{}
	if err = cursor.All(ctx, &owners); err != nil {
		return nil, fmt.Errorf("failed to decode owners: %w", err)
	}
	return owners, nil
}

func (r *mongoOwnerRepository) Update(ctx context.Context, id string, o *model.Owner) error {
	err := r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"first_name":        o.FirstName,
			"last_name":         o.LastName,
			"email":             o.Email,
			"phone":             o.Phone,
			"address":           o.Address,
			"emergency_contact": o.EmergencyContact,
			"updated_at":        mongotx.Now(),
		},
	})
	if mongotx.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %s", ownererrors.ErrDuplicateEmail, o.Email)
	}
	return err
}

func (r *mongoOwnerRepository) Deactivate(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": mongotx.Now()},
	})
}

func (r *mongoOwnerRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ownererrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update owner: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ownererrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoOwnerRepository) CountActive(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return count, nil
}
