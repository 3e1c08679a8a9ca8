package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	stationserrors "evcharge/internal/stations/errors"
	"evcharge/pkg/config"
	"evcharge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Stations"
)

type mongoStationRepository struct {
	readTimeout  time.Duration
	writeTimeout time.Duration
	collection   *mongo.Collection
}

type StationRepository interface {
	Create(ctx context.Context, station *model.Station) error
	FindByID(ctx context.Context, id string) (*model.Station, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Station, error)
	Count(ctx context.Context) (int64, error)
	FindActive(ctx context.Context) ([]*model.Station, error)
	Deactivate(ctx context.Context, id string) error
}

func NewMongoStationRepository(cfg *config.Config) StationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return NewStationRepository(db, cfg.ReadTimeout, cfg.WriteTimeout)
}

func NewStationRepository(db *mongo.Database, readTimeout, writeTimeout time.Duration) StationRepository {
	return &mongoStationRepository{
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		collection:   db.Collection(CollectionName),
	}
}

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

func (r *mongoStationRepository) Create(ctx context.Context, station *model.Station) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	station.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, station)
	if err != nil {
		return fmt.Errorf("failed to create station: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		station.ID = oid.Hex()
	}
	return nil
}

func (r *mongoStationRepository) FindByID(ctx context.Context, id string) (*model.Station, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stationserrors.ErrInvalidID, id)
	}

	var station model.Station
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&station)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find station: %w", err)
	}

	return &station, nil
}

func (r *mongoStationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Station, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoStationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count stations: %w", err)
	}
	return count, nil
}

// FindActive returns every bookable station. The booking index is built from it.
func (r *mongoStationRepository) FindActive(ctx context.Context) ([]*model.Station, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *mongoStationRepository) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", stationserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return fmt.Errorf("failed to deactivate station: %w", err)
	}
	if result.MatchedCount == 0 {
		return stationserrors.ErrNotFound
	}
	return nil
}

func (r *mongoStationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Station, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stations: %w", err)
	}
	defer cursor.Close(ctx)

	stations := []*model.Station{}
	if err = cursor.All(ctx, &stations); err != nil {
		return nil, fmt.Errorf("failed to decode stations: %w", err)
	}
	return stations, nil
}
