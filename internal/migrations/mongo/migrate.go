package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"petcare/internal/migrations/mongo/validators"
	"petcare/pkg/logger"
	"petcare/pkg/model"
)

var (
	UsersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "password_reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	OwnersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}}},
	}

	PetsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "species", Value: 1}}},
	}

	ServicesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("services_text"),
		},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "is_active", Value: 1}}},
	}

	ProductsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
				{Key: "brand", Value: "text"},
			},
			Options: options.Index().
				SetName("products_text").
				SetWeights(bson.D{{Key: "name", Value: 10}, {Key: "tags", Value: 5}, {Key: "brand", Value: 3}, {Key: "description", Value: 1}}),
		},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "is_featured", Value: 1}, {Key: "popularity_score", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}

	// The partial unique index is what makes double booking impossible: two active
	// appointments can never share a vet, date and time.
	AppointmentsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "veterinarian_id", Value: 1},
				{Key: "appointment_date", Value: 1},
				{Key: "appointment_time", Value: 1},
			},
			Options: options.Index().
				SetName("unique_active_slot").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": bson.M{"$in": model.ActiveStatuses}}),
		},
		{Keys: bson.D{{Key: "appointment_date", Value: 1}, {Key: "appointment_time", Value: 1}}},
		{Keys: bson.D{{Key: "pet_id", Value: 1}, {Key: "appointment_date", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	CartsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("unique_active_cart").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": model.CartActive}),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	SessionsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var collections = map[string]collectionDef{
	"users":        {Indexes: UsersIndexes, Validator: validators.UserValidator},
	"owners":       {Indexes: OwnersIndexes, Validator: validators.OwnerValidator},
	"pets":         {Indexes: PetsIndexes, Validator: validators.PetValidator},
	"services":     {Indexes: ServicesIndexes, Validator: validators.ServiceValidator},
	"products":     {Indexes: ProductsIndexes, Validator: validators.ProductValidator},
	"appointments": {Indexes: AppointmentsIndexes, Validator: validators.AppointmentValidator},
	"carts":        {Indexes: CartsIndexes, Validator: validators.CartValidator},
	"sessions":     {Indexes: SessionsIndexes, Validator: validators.SessionValidator},
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied", "collections", len(collections))
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
