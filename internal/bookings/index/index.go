package index

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	bookingserrors "evcharge/internal/bookings/errors"
	"evcharge/pkg/model"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0088

type Candidate struct {
	Station    model.Station
	DistanceKm float64
}

type snapshot struct {
	stations []model.Station
}

// StationIndex answers nearest-station queries over an immutable snapshot.
// Writers build a new snapshot and swap it in, so readers never lock.
type StationIndex struct {
	current atomic.Pointer[snapshot]
	writeMu sync.Mutex
}

func New(stations []model.Station) *StationIndex {
	idx := &StationIndex{}
	idx.Replace(stations)
	return idx
}

// Replace swaps the whole station set. Inactive or unlocatable stations are dropped.
func (i *StationIndex) Replace(stations []model.Station) {
	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	kept := make([]model.Station, 0, len(stations))
	for _, s := range stations {
		if indexable(s) {
			kept = append(kept, normalize(s))
		}
	}
	i.store(kept)
}

// Upsert adds or replaces one station. An inactive station is removed instead.
func (i *StationIndex) Upsert(station model.Station) {
	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	old := i.load()
	next := make([]model.Station, 0, len(old.stations)+1)
	for _, s := range old.stations {
		if s.ID != station.ID {
			next = append(next, s)
		}
	}
	if indexable(station) {
		next = append(next, normalize(station))
	}
	i.store(next)
}

// Deactivate removes a station from the index and reports whether it was present.
func (i *StationIndex) Deactivate(id string) bool {
	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	old := i.load()
	next := make([]model.Station, 0, len(old.stations))
	for _, s := range old.stations {
		if s.ID != id {
			next = append(next, s)
		}
	}
	if len(next) == len(old.stations) {
		return false
	}
	i.store(next)
	return true
}

func (i *StationIndex) Len() int {
	return len(i.load().stations)
}

func (i *StationIndex) Get(id string) (model.Station, bool) {
	for _, s := range i.load().stations {
		if s.ID == id {
			return s, true
		}
	}
	return model.Station{}, false
}

// FindNearest returns the closest active station of the given charger type.
// maxDistanceKm <= 0 means no range limit.
func (i *StationIndex) FindNearest(point model.GeoPoint, chargerType model.ChargerType, maxDistanceKm float64) (Candidate, error) {
	candidates := i.Candidates(point, chargerType, maxDistanceKm, 1)
	if len(candidates) == 0 {
		return Candidate{}, bookingserrors.ErrNoStation
	}
	return candidates[0], nil
}

// Candidates lists matching stations ordered by distance, then by id.
// limit <= 0 returns every match.
func (i *StationIndex) Candidates(point model.GeoPoint, chargerType model.ChargerType, maxDistanceKm float64, limit int) []Candidate {
	snap := i.load()

	var matches []Candidate
	for _, s := range snap.stations {
		if s.ChargerType != chargerType {
			continue
		}
		d := Haversine(point, s.Location)
		if maxDistanceKm > 0 && d > maxDistanceKm {
			continue
		}
		matches = append(matches, Candidate{Station: s, DistanceKm: d})
	}

	sort.Slice(matches, func(a, b int) bool {
		if matches[a].DistanceKm != matches[b].DistanceKm {
			return matches[a].DistanceKm < matches[b].DistanceKm
		}
		return matches[a].Station.ID < matches[b].Station.ID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Haversine returns the great-circle distance between two points in kilometres.
func Haversine(a, b model.GeoPoint) float64 {
	lat1 := toRadians(a.Lat())
	lat2 := toRadians(b.Lat())
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng() - a.Lng())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func (i *StationIndex) load() *snapshot {
	if snap := i.current.Load(); snap != nil {
		return snap
	}
	return &snapshot{}
}

func (i *StationIndex) store(stations []model.Station) {
	i.current.Store(&snapshot{stations: stations})
}

func indexable(s model.Station) bool {
	if !s.Active || s.ID == "" || !s.ChargerType.Valid() {
		return false
	}
	return normalize(s).Location.Valid()
}

// normalize fills Location from the legacy latitude/longitude pair when absent.
func normalize(s model.Station) model.Station {
	if !s.Location.Valid() {
		s.Location = model.NewGeoPoint(s.Latitude, s.Longitude)
	}
	return s
}
