package handler

import (
	"net/http"

	"evcharge/internal/stations/service"
	httputil "evcharge/pkg/http"
	"evcharge/pkg/kafka"
	"evcharge/pkg/logger"
	"evcharge/pkg/middleware"
	"evcharge/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type StationHandler struct {
	service service.StationService
	log     *logger.Logger
}

func NewStationHandler(service service.StationService, log *logger.Logger) *StationHandler {
	return &StationHandler{
		service: service,
		log:     log,
	}
}

func (h *StationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var station model.Station
	if err := httputil.DecodeJSON(r, &station); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	ctx := kafka.WithCorrelationID(r.Context(), middleware.RequestIDFromContext(r.Context()))
	if err := h.service.Create(ctx, &station); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, station); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *StationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	station, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, station); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	stations, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, stations, total); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *StationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := kafka.WithCorrelationID(r.Context(), middleware.RequestIDFromContext(r.Context()))
	if err := h.service.Deactivate(ctx, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *StationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *StationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/chargingstations", h.Create)
	router.GET("/api/chargingstations", h.GetAll)
	router.GET("/api/chargingstations/:id", h.GetByID)
	router.DELETE("/api/chargingstations/:id", h.Delete)
}
