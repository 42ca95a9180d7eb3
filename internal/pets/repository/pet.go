package repository

import (
	"context"
	"errors"
	"fmt"

	peterrors "petcare/internal/pets/errors"
	"petcare/pkg/config"
	mongotx "petcare/pkg/db/mongo"
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "pets"
)

type PetFilter struct {
	Species string
	OwnerID string
}

type mongoPetRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type PetRepository interface {
	Create(ctx context.Context, p *model.Pet) error
	FindByID(ctx context.Context, id string) (*model.Pet, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Pet, error)
	FindActive(ctx context.Context, filter PetFilter) ([]*model.Pet, error)
	FindActiveByOwner(ctx context.Context, ownerID string) ([]*model.Pet, error)
	Update(ctx context.Context, id string, p *model.Pet) error
	Deactivate(ctx context.Context, id string) error
	AddMedicalRecord(ctx context.Context, id string, rec model.MedicalRecord) error
	CountActive(ctx context.Context) (int64, error)
}

func NewMongoPetRepository(cfg *config.Config) PetRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPetRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPetRepository) Create(ctx context.Context, p *model.Pet) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	p.CreatedAt = mongotx.Now()
	p.UpdatedAt = p.CreatedAt
	if p.MedicalHistory == nil {
		p.MedicalHistory = []model.MedicalRecord{}
	}
	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPetRepository) FindByID(ctx context.Context, id string) (*model.Pet, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", peterrors.ErrInvalidID, id)
	}

	var p model.Pet
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", peterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find pet: %w", err)
	}
	return &p, nil
}

func (r *mongoPetRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Pet, error) {
	objectIDs := mongotx.ObjectIDs(ids)
	if len(objectIDs) == 0 {
		return []*model.Pet{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, nil)
}

func (r *mongoPetRepository) FindActive(ctx context.Context, filter PetFilter) ([]*model.Pet, error) {
	query := bson.M{"is_active": true}
	if filter.Species != "" {
		query["species"] = filter.Species
	}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *mongoPetRepository) FindActiveByOwner(ctx context.Context, ownerID string) ([]*model.Pet, error) {
	return r.FindActive(ctx, PetFilter{OwnerID: ownerID})
}

func (r *mongoPetRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Pet, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pets: %w", err)
	}
	defer cursor.Close(ctx)

	pets := []*model.Pet{}
	if err = cursor.All(ctx, &pets); err != nil {
		return nil, fmt.Errorf("failed to decode pets: %w", err)
	}
	return pets, nil
}

func (r *mongoPetRepository) Update(ctx context.Context, id string, p *model.Pet) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"name":       p.Name,
			"species":    p.Species,
			"breed":      p.Breed,
			"age":        p.Age,
			"weight":     p.Weight,
			"color":      p.Color,
			"gender":     p.Gender,
			"owner_id":   p.OwnerID,
			"updated_at": mongotx.Now(),
		},
	})
}

func (r *mongoPetRepository) Deactivate(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": mongotx.Now()},
	})
}

func (r *mongoPetRepository) AddMedicalRecord(ctx context.Context, id string, rec model.MedicalRecord) error {
	return r.updateByID(ctx, id, bson.M{
		"$push": bson.M{"medical_history": rec},
		"$set":  bson.M{"updated_at": mongotx.Now()},
	})
}

func (r *mongoPetRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", peterrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", peterrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoPetRepository) CountActive(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count pets: %w", err)
	}
	return count, nil
}
