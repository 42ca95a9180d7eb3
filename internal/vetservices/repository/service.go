package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"petcare/internal/catalog"
	serviceerrors "petcare/internal/vetservices/errors"
	"petcare/pkg/config"
	mongotx "petcare/pkg/db/mongo"
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "services"
)

type mongoServiceRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type ServiceRepository interface {
	Create(ctx context.Context, s *model.Service) error
	FindByID(ctx context.Context, id string) (*model.Service, error)
	Find(ctx context.Context, filter catalog.Filter) ([]*model.Service, error)
	FindRelated(ctx context.Context, s *model.Service, limit int64) ([]*model.Service, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, s *model.Service) error
	Deactivate(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int64, error)
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoServiceRepository) Create(ctx context.Context, s *model.Service) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	s.CreatedAt = mongotx.Now()
	s.UpdatedAt = s.CreatedAt
	result, err := r.collection.InsertOne(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid.Hex()
	}
	return nil
}

func (r *mongoServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", serviceerrors.ErrInvalidID, id)
	}

	var s model.Service
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", serviceerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &s, nil
}

func (r *mongoServiceRepository) Find(ctx context.Context, filter catalog.Filter) ([]*model.Service, error) {
	return r.find(ctx, filter.Query(), filter.FindOptions(false))
}

func (r *mongoServiceRepository) FindRelated(ctx context.Context, s *model.Service, limit int64) ([]*model.Service, error) {
	objectID, err := primitive.ObjectIDFromHex(s.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", serviceerrors.ErrInvalidID, s.ID)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "popularity_score", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, catalog.RelatedQuery(s.Category, objectID), opts)
}

func (r *mongoServiceRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer cursor.Close(ctx)

	services := []*model.Service{}
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

// Categories lists the distinct categories of active services, sorted.
func (r *mongoServiceRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "category", bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list service categories: %w", err)
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

func (r *mongoServiceRepository) Update(ctx context.Context, id string, s *model.Service) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"name":                     s.Name,
			"description":              s.Description,
			"category":                 s.Category,
			"price":                    s.Price,
			"duration":                 s.Duration,
			"available_for":            s.AvailableFor,
			"requires_appointment":     s.RequiresAppointment,
			"is_emergency_service":     s.IsEmergencyService,
			"preparation_instructions": s.PreparationInstructions,
			"follow_up_required":       s.FollowUpRequired,
			"veterinarian_required":    s.VeterinarianRequired,
			"icon":                     s.Icon,
			"popularity_score":         s.PopularityScore,
			"updated_at":               mongotx.Now(),
		},
	})
}

func (r *mongoServiceRepository) Deactivate(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": mongotx.Now()},
	})
}

func (r *mongoServiceRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", serviceerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", serviceerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoServiceRepository) CountActive(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}
	return count, nil
}
