package handler

import (
	"encoding/json"
	"net/http"

	"rentmate/internal/bookings/service"
	apperrors "rentmate/pkg/errors"
	httputil "rentmate/pkg/http"
	"rentmate/pkg/logger"
	"rentmate/pkg/middleware"
	"rentmate/pkg/model"

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
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), middleware.CallerID(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), middleware.CallerID(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Update(r.Context(), middleware.CallerID(r.Context()), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), middleware.CallerID(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	receipt, err := h.service.Receipt(r.Context(), middleware.CallerID(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Receipt", err)
		return
	}

	if err := httputil.WriteSuccess(w, receipt); err != nil {
		h.log.Error("failed to write success response", "handler", "Receipt", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListUpcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.ListUpcoming(r.Context(), middleware.CallerID(r.Context()))
	if err != nil {
		h.writeError(w, "ListUpcoming", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListUpcoming", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListPast(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.ListPast(r.Context(), middleware.CallerID(r.Context()))
	if err != nil {
		h.writeError(w, "ListPast", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListPast", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListByListing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByListing", err)
		return
	}

	bookings, total, err := h.service.ListByListing(r.Context(), middleware.CallerID(r.Context()), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListByListing", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByListing", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	from, err := optionalDate(r, "from")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	to, err := optionalDate(r, "to")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	calendar, err := h.service.Availability(r.Context(), ps.ByName("id"), from, to)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, calendar); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, _, err := httputil.ExtractDate(r, "start")
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}
	end, _, err := httputil.ExtractDate(r, "end")
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	quote, err := h.service.Quote(r.Context(), ps.ByName("id"), model.NewDateRange(start, end))
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func optionalDate(r *http.Request, name string) (*model.Date, error) {
	d, ok, err := httputil.ExtractDate(r, name)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.Update)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
	router.GET("/api/v1/bookings/id/:id/receipt", h.Receipt)
	router.GET("/api/v1/bookings/me/upcoming", h.ListUpcoming)
	router.GET("/api/v1/bookings/me/past", h.ListPast)

	router.GET("/api/v1/listings/:id/bookings", h.ListByListing)
	router.GET("/api/v1/listings/:id/availability", h.Availability)
	router.GET("/api/v1/listings/:id/quote", h.Quote)
}
