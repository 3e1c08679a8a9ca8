package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "evcharge/pkg/errors"
	httputil "evcharge/pkg/http"
	"evcharge/pkg/logger"
	"evcharge/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockStationService struct {
	created     *model.Station
	deactivated string
	getAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Station, int64, error)
}

func (m *mockStationService) Create(ctx context.Context, station *model.Station) error {
	if !station.ChargerType.Valid() {
		return apperrors.Validation("Invalid charging station", nil)
	}
	station.ID = "65a000000000000000000001"
	m.created = station
	return nil
}

func (m *mockStationService) GetByID(ctx context.Context, id string) (*model.Station, error) {
	if id != "65a000000000000000000001" {
		return nil, apperrors.NotFoundWithID("Charging station", id)
	}
	return &model.Station{ID: id, ChargerType: model.ChargerACFast}, nil
}

func (m *mockStationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Station, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Station{}, 0, nil
}

func (m *mockStationService) Deactivate(ctx context.Context, id string) error {
	m.deactivated = id
	return nil
}

func newRouter(svc *mockStationService) *httprouter.Router {
	router := httprouter.New()
	NewStationHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreate(t *testing.T) {
	svc := &mockStationService{}
	router := newRouter(svc)

	rec := do(router, http.MethodPost, "/api/chargingstations", `{"chargerType":"ac_fast","latitude":12.9,"longitude":77.6}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var station model.Station
	if err := json.NewDecoder(rec.Body).Decode(&station); err != nil {
		t.Fatal(err)
	}
	if station.ID == "" || svc.created.Latitude != 12.9 {
		t.Errorf("unexpected station: %+v", station)
	}

	if rec := do(router, http.MethodPost, "/api/chargingstations", `{"chargerType":"warp"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid type: expected 400, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/api/chargingstations", `[`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", rec.Code)
	}
}

func TestGetAll_InvalidQueryParameters(t *testing.T) {
	var receivedLimit int
	var receivedOffset int64
	svc := &mockStationService{
		getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Station, int64, error) {
			receivedLimit, receivedOffset = limit, offset
			return []*model.Station{{ID: "a"}, {ID: "b"}}, 2, nil
		},
	}
	router := newRouter(svc)

	tests := []struct {
		name           string
		queryString    string
		expectHTTPCode int
		wantLimit      int
		wantOffset     int64
	}{
		{"defaults", "", http.StatusOK, 50, 0},
		{"explicit", "?limit=10&offset=20", http.StatusOK, 10, 20},
		{"limit capped", "?limit=1000", http.StatusOK, 100, 0},
		{"negative offset", "?offset=-3", http.StatusOK, 50, 0},
		{"non-numeric limit", "?limit=ten", http.StatusBadRequest, 0, 0},
		{"non-numeric offset", "?offset=x", http.StatusBadRequest, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receivedLimit, receivedOffset = 0, 0
			rec := do(router, http.MethodGet, "/api/chargingstations"+tt.queryString, "")
			if rec.Code != tt.expectHTTPCode {
				t.Fatalf("expected %d, got %d", tt.expectHTTPCode, rec.Code)
			}
			if rec.Code != http.StatusOK {
				return
			}
			if receivedLimit != tt.wantLimit || receivedOffset != tt.wantOffset {
				t.Errorf("expected limit=%d offset=%d, got %d %d", tt.wantLimit, tt.wantOffset, receivedLimit, receivedOffset)
			}
			if rec.Header().Get(httputil.HeaderTotalCount) != "2" {
				t.Errorf("missing total count header")
			}
		})
	}
}

func TestGetByIDAndDelete(t *testing.T) {
	svc := &mockStationService{}
	router := newRouter(svc)

	if rec := do(router, http.MethodGet, "/api/chargingstations/65a000000000000000000001", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/chargingstations/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec := do(router, http.MethodDelete, "/api/chargingstations/65a000000000000000000001", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if svc.deactivated != "65a000000000000000000001" {
		t.Errorf("service not called with id, got %q", svc.deactivated)
	}
}
