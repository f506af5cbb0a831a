package update_booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
	"github.com/m04kA/SMC-BoatRental/internal/api/middleware"
	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/service/bookings"
	"github.com/m04kA/SMC-BoatRental/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные запроса"
	msgNotFound           = "бронирование не найдено"
	msgNotEditable        = "отменённое бронирование нельзя изменить"
	msgRangeNotEditable   = "лодку и время бронирования изменить нельзя"
	msgForceRequired      = "операция над бронированием требует force=true"
	msgInvalidTransition  = "недопустимое изменение статуса бронирования"
	msgConcurrentUpdate   = "бронирование было изменено параллельно, повторите запрос"
	msgSlotUnavailable    = "время бронирования уже занято"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(mux.Vars(r)["bookingId"])
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req models.UpdateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	adminID, _ := middleware.GetAdminID(r.Context())

	booking, err := h.service.AdminUpdate(r.Context(), bookingID, &req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id} - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id} - Invalid input: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, bookings.ErrRangeNotEditable):
			h.logger.Warn("PATCH /bookings/{id} - Range change rejected: booking_id=%s, admin=%s", bookingID, adminID)
			handlers.RespondBadRequest(w, msgRangeNotEditable)

		case errors.Is(err, bookings.ErrNotEditable):
			h.logger.Warn("PATCH /bookings/{id} - Booking not editable: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgNotEditable)

		case errors.Is(err, bookings.ErrForceRequired):
			h.logger.Warn("PATCH /bookings/{id} - Force required: booking_id=%s, admin=%s", bookingID, adminID)
			handlers.RespondConflict(w, msgForceRequired)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id} - Invalid transition: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, bookings.ErrConcurrentUpdate):
			h.logger.Warn("PATCH /bookings/{id} - Concurrent update: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, domain.ErrSlotUnavailable):
			h.logger.Warn("PATCH /bookings/{id} - Slot unavailable: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		default:
			h.logger.Error("PATCH /bookings/{id} - Failed to update booking: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id} - Booking updated: booking_id=%s, status=%s, admin=%s",
		bookingID, booking.Status, adminID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
