package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	appterrors "petcare/internal/appointments/errors"
	"petcare/pkg/config"
	mongotx "petcare/pkg/db/mongo"
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "appointments"

	TypeUpcoming   = "upcoming"
	TypeHistorical = "historical"
)

// AppointmentFilter narrows the appointment list. A set Date selects that day only
// and overrides Type; otherwise Type splits at Today.
type AppointmentFilter struct {
	Status         string
	VeterinarianID string
	Date           *time.Time
	Type           string
	Today          time.Time
}

func (f AppointmentFilter) query() bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.VeterinarianID != "" {
		query["veterinarian_id"] = f.VeterinarianID
	}

	switch {
	case f.Date != nil:
		query["appointment_date"] = model.DayStart(*f.Date)
	case f.Type == TypeHistorical:
		query["appointment_date"] = bson.M{"$lt": model.DayStart(f.Today)}
	default:
		query["appointment_date"] = bson.M{"$gte": model.DayStart(f.Today)}
	}
	return query
}

func (f AppointmentFilter) sort() bson.D {
	order := 1
	if f.Type == TypeHistorical && f.Date == nil {
		order = -1
	}
	return bson.D{
		{Key: "appointment_date", Value: order},
		{Key: "appointment_time", Value: order},
	}
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	Find(ctx context.Context, filter AppointmentFilter) ([]*model.Appointment, error)
	FindRecentByPet(ctx context.Context, petID string, limit int64) ([]*model.Appointment, error)
	FindRecent(ctx context.Context, limit int64) ([]*model.Appointment, error)
	SlotTaken(ctx context.Context, vetID string, date time.Time, slot string, excludeID string) (bool, error)
	BookedTimes(ctx context.Context, vetID string, date time.Time) ([]string, error)
	Update(ctx context.Context, id string, a *model.Appointment) error
	MarkNotified(ctx context.Context, id string, at time.Time) error
	CountAll(ctx context.Context) (int64, error)
	CountActiveOn(ctx context.Context, date time.Time) (int64, error)
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	a.AppointmentDate = model.DayStart(a.AppointmentDate)
	a.CreatedAt = mongotx.Now()
	a.UpdatedAt = a.CreatedAt
	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s %s %s", appterrors.ErrSlotTaken, a.VeterinarianID, a.DateString(), a.AppointmentTime)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	var a model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", appterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return &a, nil
}

func (r *mongoAppointmentRepository) Find(ctx context.Context, filter AppointmentFilter) ([]*model.Appointment, error) {
	return r.find(ctx, filter.query(), options.Find().SetSort(filter.sort()))
}

func (r *mongoAppointmentRepository) FindRecentByPet(ctx context.Context, petID string, limit int64) ([]*model.Appointment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "appointment_date", Value: -1}, {Key: "appointment_time", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{"pet_id": petID}, opts)
}

// FindRecent returns the latest appointments by date and time, future ones included.
func (r *mongoAppointmentRepository) FindRecent(ctx context.Context, limit int64) ([]*model.Appointment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "appointment_date", Value: -1}, {Key: "appointment_time", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoAppointmentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := []*model.Appointment{}
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

func activeSlotQuery(vetID string, date time.Time) bson.M {
	return bson.M{
		"veterinarian_id":  vetID,
		"appointment_date": model.DayStart(date),
		"status":           bson.M{"$in": model.ActiveStatuses},
	}
}

// SlotTaken reports whether an active appointment other than excludeID holds the slot.
func (r *mongoAppointmentRepository) SlotTaken(ctx context.Context, vetID string, date time.Time, slot string, excludeID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := activeSlotQuery(vetID, date)
	filter["appointment_time"] = slot
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return false, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return count > 0, nil
}

func (r *mongoAppointmentRepository) BookedTimes(ctx context.Context, vetID string, date time.Time) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "appointment_time", activeSlotQuery(vetID, date))
	if err != nil {
		return nil, fmt.Errorf("failed to list booked times: %w", err)
	}

	times := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			times = append(times, s)
		}
	}
	sort.Strings(times)
	return times, nil
}

// Update writes the mutable fields: status, reason and notes.
func (r *mongoAppointmentRepository) Update(ctx context.Context, id string, a *model.Appointment) error {
	err := r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":     a.Status,
			"reason":     a.Reason,
			"notes":      a.Notes,
			"updated_at": mongotx.Now(),
		},
	})
	if err != nil && mongotx.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %s", appterrors.ErrSlotTaken, id)
	}
	return err
}

func (r *mongoAppointmentRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"notification_email.sent":    true,
			"notification_email.sent_at": at,
		},
	})
}

func (r *mongoAppointmentRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", appterrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoAppointmentRepository) CountAll(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

// CountActiveOn counts scheduled and confirmed appointments on the day of date.
func (r *mongoAppointmentRepository) CountActiveOn(ctx context.Context, date time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"appointment_date": model.DayStart(date),
		"status":           bson.M{"$in": model.ActiveStatuses},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}
