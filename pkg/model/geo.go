package model

const GeoJSONPoint = "Point"

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type" validate:"required,eq=Point"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" validate:"required,len=2"`
}

func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: GeoJSONPoint, Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Lng() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Valid reports whether the point is a well-formed GeoJSON point inside WGS84 bounds.
func (p GeoPoint) Valid() bool {
	if p.Type != GeoJSONPoint || len(p.Coordinates) != 2 {
		return false
	}
	return ValidLatitude(p.Lat()) && ValidLongitude(p.Lng())
}

func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func ValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
