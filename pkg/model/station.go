package model

import "time"

type ChargerType string

const (
	ChargerACSlow ChargerType = "ac_slow"
	ChargerACFast ChargerType = "ac_fast"
	ChargerDCFast ChargerType = "dc_fast"
)

var chargerTypes = map[ChargerType]struct{}{
	ChargerACSlow: {},
	ChargerACFast: {},
	ChargerDCFast: {},
}

func (c ChargerType) Valid() bool {
	_, ok := chargerTypes[c]
	return ok
}

func ChargerTypes() []ChargerType {
	return []ChargerType{ChargerACSlow, ChargerACFast, ChargerDCFast}
}

type Station struct {
	ID          string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string      `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,min=2,max=100"`
	ChargerType ChargerType `json:"chargerType" bson:"charger_type" validate:"required,charger_type"`
	Latitude    float64     `json:"latitude" bson:"latitude" validate:"latitude"`
	Longitude   float64     `json:"longitude" bson:"longitude" validate:"longitude"`
	Location    GeoPoint    `json:"location" bson:"location"`
	Active      bool        `json:"active" bson:"active"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
}
