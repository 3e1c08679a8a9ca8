package handler

import (
	"context"
	"net/http"

	"evcharge/internal/bookings/service"
	apperrors "evcharge/pkg/errors"
	httputil "evcharge/pkg/http"
	"evcharge/pkg/kafka"
	"evcharge/pkg/logger"
	"evcharge/pkg/middleware"
	"evcharge/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Authentication required"))
		return
	}

	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(h.eventContext(r), userID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// ListByUser serves GET /api/bookings/:userId. Users may only list their own bookings.
func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "ListByUser", apperrors.Unauthorized("Authentication required"))
		return
	}
	if ps.ByName("userId") != userID {
		h.writeError(w, "ListByUser", apperrors.Forbidden("Cannot list bookings of another user"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByUser", err)
		return
	}

	bookings, total, err := h.service.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(w, "ListByUser", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByUser", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "GetByID", apperrors.Unauthorized("Authentication required"))
		return
	}

	booking, err := h.service.GetByID(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Authentication required"))
		return
	}

	booking, err := h.service.Cancel(h.eventContext(r), userID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

// eventContext tags published events with the request id.
func (h *BookingHandler) eventContext(r *http.Request) context.Context {
	return kafka.WithCorrelationID(r.Context(), middleware.RequestIDFromContext(r.Context()))
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", h.Create)
	router.GET("/api/bookings/:userId", h.ListByUser)
	router.GET("/api/booking/:id", h.GetByID)
	router.POST("/api/booking/:id/cancel", h.Cancel)
}
