package model

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// ChargingSlot is the half-open interval [StartTime, EndTime).
type ChargingSlot struct {
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
}

func (s ChargingSlot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

func (s ChargingSlot) Overlaps(o ChargingSlot) bool {
	return s.StartTime.Before(o.EndTime) && o.StartTime.Before(s.EndTime)
}

type Booking struct {
	ID              string        `json:"id" bson:"_id"`
	User            string        `json:"user" bson:"user"`
	CarType         string        `json:"carType" bson:"car_type"`
	CarNumber       string        `json:"carNumber" bson:"car_number"`
	ChargerType     ChargerType   `json:"chargerType" bson:"charger_type"`
	Location        GeoPoint      `json:"location" bson:"location"`
	NearestLocation *GeoPoint     `json:"nearestLocation,omitempty" bson:"nearest_location,omitempty"`
	StationID       string        `json:"stationId" bson:"station_id"`
	ChargingSlot    ChargingSlot  `json:"chargingSlot" bson:"charging_slot"`
	DistanceKm      float64       `json:"distanceKm" bson:"distance_km"`
	Status          BookingStatus `json:"status" bson:"status"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

// BookingRequest is the client payload for POST /api/bookings.
type BookingRequest struct {
	User            string       `json:"user,omitempty" validate:"omitempty,max=100"`
	Location        GeoPoint     `json:"location" validate:"required"`
	NearestLocation *GeoPoint    `json:"nearestLocation,omitempty" validate:"omitempty"`
	CarType         string       `json:"carType" validate:"required,min=1,max=50"`
	CarNumber       string       `json:"carNumber" validate:"required,min=2,max=20"`
	ChargerType     ChargerType  `json:"chargerType" validate:"required,charger_type"`
	ChargingSlot    ChargingSlot `json:"chargingSlot" validate:"required"`
	MaxDistanceKm   float64      `json:"maxDistanceKm,omitempty" validate:"omitempty,gt=0"`
}
