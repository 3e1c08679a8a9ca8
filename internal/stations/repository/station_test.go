package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	stationserrors "evcharge/internal/stations/errors"
	"evcharge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestStationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	oid := primitive.NewObjectID()

	mt.Run("create sets object id", func(mt *mtest.T) {
		repo := NewStationRepository(mt.DB, time.Second, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		station := &model.Station{ChargerType: model.ChargerACFast, Location: model.NewGeoPoint(1, 2), Active: true}
		if err := repo.Create(context.Background(), station); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := primitive.ObjectIDFromHex(station.ID); err != nil {
			t.Errorf("expected an ObjectID hex id, got %q", station.ID)
		}
	})

	mt.Run("find by id decodes object id as hex", func(mt *mtest.T) {
		repo := NewStationRepository(mt.DB, time.Second, time.Second)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "charger_type", Value: "dc_fast"},
			{Key: "active", Value: true},
		}))

		station, err := repo.FindByID(context.Background(), oid.Hex())
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if station.ID != oid.Hex() || station.ChargerType != model.ChargerDCFast || !station.Active {
			t.Errorf("unexpected station: %+v", station)
		}
	})

	mt.Run("find by id invalid", func(mt *mtest.T) {
		repo := NewStationRepository(mt.DB, time.Second, time.Second)
		if _, err := repo.FindByID(context.Background(), "xyz"); !errors.Is(err, stationserrors.ErrInvalidID) {
			t.Errorf("expected ErrInvalidID, got %v", err)
		}
	})

	mt.Run("find active", func(mt *mtest.T) {
		repo := NewStationRepository(mt.DB, time.Second, time.Second)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "active", Value: true}},
			),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		stations, err := repo.FindActive(context.Background())
		if err != nil {
			t.Fatalf("FindActive() error = %v", err)
		}
		if len(stations) != 1 {
			t.Errorf("expected 1 station, got %d", len(stations))
		}
	})

	mt.Run("deactivate", func(mt *mtest.T) {
		repo := NewStationRepository(mt.DB, time.Second, time.Second)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		if err := repo.Deactivate(context.Background(), oid.Hex()); err != nil {
			t.Errorf("Deactivate() error = %v", err)
		}
	})

	mt.Run("deactivate missing", func(mt *mtest.T) {
		repo := NewStationRepository(mt.DB, time.Second, time.Second)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		if err := repo.Deactivate(context.Background(), oid.Hex()); !errors.Is(err, stationserrors.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
