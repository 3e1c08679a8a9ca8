package validator

import (
	"errors"
	"strings"
	"testing"

	"evcharge/pkg/logger"
	"evcharge/pkg/model"
)

func validStation() *model.Station {
	return &model.Station{
		Name:        "Depot 1",
		ChargerType: model.ChargerACFast,
		Latitude:    12.97,
		Longitude:   77.59,
		Location:    model.NewGeoPoint(12.97, 77.59),
		Active:      true,
	}
}

func TestStationValidator_Validate(t *testing.T) {
	v := NewStationValidator(logger.Discard())

	tests := []struct {
		name      string
		mutate    func(s *model.Station)
		wantField string
	}{
		{name: "valid", mutate: func(s *model.Station) {}},
		{name: "no name", mutate: func(s *model.Station) { s.Name = "" }},
		{name: "unknown charger type", mutate: func(s *model.Station) { s.ChargerType = "tesla" }, wantField: "ChargerType"},
		{name: "missing charger type", mutate: func(s *model.Station) { s.ChargerType = "" }, wantField: "ChargerType"},
		{name: "latitude out of range", mutate: func(s *model.Station) { s.Latitude = 95 }, wantField: "Latitude"},
		{name: "longitude out of range", mutate: func(s *model.Station) { s.Longitude = -181 }, wantField: "Longitude"},
		{name: "short name", mutate: func(s *model.Station) { s.Name = "x" }, wantField: "Name"},
		{name: "bad id", mutate: func(s *model.Station) { s.ID = "123" }, wantField: "ID"},
		{name: "missing location", mutate: func(s *model.Station) { s.Location = model.GeoPoint{} }, wantField: "Type"},
		{name: "location out of bounds", mutate: func(s *model.Station) { s.Location = model.NewGeoPoint(0, 190) }, wantField: "Location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStation()
			tt.mutate(s)
			err := v.Validate(s)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verrs[0].Field)
			}
		})
	}
}

func TestStationValidator_ChargerTypeMessage(t *testing.T) {
	v := NewStationValidator(logger.Discard())
	s := validStation()
	s.ChargerType = "tesla"

	err := v.Validate(s)
	if err == nil || !strings.Contains(err.Error(), "ac_slow, ac_fast, dc_fast") {
		t.Errorf("expected the allowed types in the message, got %v", err)
	}
}
