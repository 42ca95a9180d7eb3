package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	autherrors "petcare/internal/auth/errors"
	"petcare/pkg/config"
	mongotx "petcare/pkg/db/mongo"
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "users"
)

type mongoUserRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username string, email string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	FindVeterinarians(ctx context.Context) ([]*model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateProfile(ctx context.Context, id string, upd *model.UserProfileUpdate) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	ResetPassword(ctx context.Context, id string, tokenHash string, passwordHash string, now time.Time) error
	SetResetToken(ctx context.Context, id string, tokenHash string, expires time.Time) error
	CountByRole(ctx context.Context, role string) (int64, error)
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, u *model.User) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	u.CreatedAt = mongotx.Now()
	u.UpdatedAt = u.CreatedAt
	result, err := r.collection.InsertOne(ctx, u)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", autherrors.ErrDuplicate, u.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", autherrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, id)
}

// FindByLogin matches an active user by username or email.
func (r *mongoUserRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	filter := bson.M{
		"is_active": true,
		"$or": bson.A{
			bson.M{"username": login},
			bson.M{"email": login},
		},
	}
	return r.findOne(ctx, filter, login)
}

func (r *mongoUserRepository) FindByUsernameOrEmail(ctx context.Context, username string, email string) (*model.User, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"username": username},
			bson.M{"email": email},
		},
	}
	return r.findOne(ctx, filter, username)
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *mongoUserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	filter := bson.M{
		"password_reset_token":   tokenHash,
		"password_reset_expires": bson.M{"$gt": now},
	}
	return r.findOne(ctx, filter, "reset token")
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M, ref string) (*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var u model.User
	err := r.collection.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", autherrors.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (r *mongoUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	objectIDs := mongotx.ObjectIDs(ids)
	if len(objectIDs) == 0 {
		return []*model.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, nil)
}

// FindVeterinarians lists active users that can be booked, admins included.
func (r *mongoUserRepository) FindVeterinarians(ctx context.Context) ([]*model.User, error) {
	filter := bson.M{
		"is_active": true,
		"role":      bson.M{"$in": bson.A{model.RoleVeterinarian, model.RoleAdmin}},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "first_name", Value: 1}, {Key: "last_name", Value: 1}}))
}

func (r *mongoUserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *mongoUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"last_login": at}})
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, id string, upd *model.UserProfileUpdate) error {
	err := r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"first_name": upd.FirstName,
			"last_name":  upd.LastName,
			"email":      upd.Email,
			"updated_at": mongotx.Now(),
		},
	})
	if mongotx.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %s", autherrors.ErrDuplicate, upd.Email)
	}
	return err
}

// UpdatePassword also clears any pending reset token so it cannot be reused.
func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.updateByID(ctx, id, passwordUpdate(passwordHash))
}

// ResetPassword sets the password only while tokenHash is still the user's unexpired
// reset token. Of two requests racing on one token, only the first matches; the
// other gets ErrNotFound.
func (r *mongoUserRepository) ResetPassword(ctx context.Context, id string, tokenHash string, passwordHash string, now time.Time) error {
	return r.update(ctx, id, bson.M{
		"password_reset_token":   tokenHash,
		"password_reset_expires": bson.M{"$gt": now},
	}, passwordUpdate(passwordHash))
}

func passwordUpdate(passwordHash string) bson.M {
	return bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    mongotx.Now(),
		},
		"$unset": bson.M{
			"password_reset_token":   "",
			"password_reset_expires": "",
		},
	}
}

func (r *mongoUserRepository) SetResetToken(ctx context.Context, id string, tokenHash string, expires time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"password_reset_token":   tokenHash,
			"password_reset_expires": expires,
		},
	})
}

func (r *mongoUserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	return r.update(ctx, id, nil, update)
}

// update applies update to the user with id when the document also matches match.
func (r *mongoUserRepository) update(ctx context.Context, id string, match bson.M, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", autherrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	for key, value := range match {
		filter[key] = value
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", autherrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
