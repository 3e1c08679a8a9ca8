package model

import "time"

const (
	EventStationUpserted    = "station.upserted"
	EventStationDeactivated = "station.deactivated"
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingCancelled   = "booking.cancelled"
)

type StationEvent struct {
	EventType string    `json:"event_type"`
	Station   Station   `json:"station"`
	At        time.Time `json:"at"`
}

type BookingEvent struct {
	EventType string    `json:"event_type"`
	Booking   Booking   `json:"booking"`
	At        time.Time `json:"at"`
}
