package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "evcharge/internal/bookings/errors"
	"evcharge/pkg/config"
	"evcharge/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	readTimeout  time.Duration
	writeTimeout time.Duration
	collection   *mongo.Collection
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, user string, limit int, offset int64) ([]*model.Booking, error)
	CountByUser(ctx context.Context, user string) (int64, error)
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, at time.Time) (*model.Booking, error)
	FindConfirmedEndingAfter(ctx context.Context, t time.Time) ([]*model.Booking, error)
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return NewBookingRepository(db, cfg.ReadTimeout, cfg.WriteTimeout)
}

func NewBookingRepository(db *mongo.Database, readTimeout, writeTimeout time.Duration) BookingRepository {
	return &mongoBookingRepository{
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		collection:   db.Collection(CollectionName),
	}
}

// withTimeout bounds ctx by timeout without extending a tighter caller deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, user string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "charging_slot.start_time", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, user string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user": user})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a booking from one status to another and returns the
// updated document. ErrNotFound means no booking with id is in status from.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, at time.Time) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	set := bson.M{"status": to}
	if to == model.BookingStatusCancelled {
		set["cancelled_at"] = at.UTC().Truncate(time.Millisecond)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking model.Booking
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &booking, nil
}

// FindConfirmedEndingAfter loads the reservations that still occupy a slot at t.
func (r *mongoBookingRepository) FindConfirmedEndingAfter(ctx context.Context, t time.Time) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	filter := bson.M{
		"status":                 model.BookingStatusConfirmed,
		"charging_slot.end_time": bson.M{"$gt": t},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find confirmed bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
