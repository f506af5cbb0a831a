package models

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ListBookingsRequest запрос на получение списка бронирований
type ListBookingsRequest struct {
	BoatID *string    `json:"boatId,omitempty"`
	Status *string    `json:"status,omitempty"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр.
// limit ограничивается maxLimit, нулевой limit заменяется на defaultLimit.
func (r *ListBookingsRequest) ToDomainFilter(defaultLimit, maxLimit int) (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		BoatID: r.BoatID,
		From:   r.From,
		To:     r.To,
		Limit:  r.Limit,
		Offset: r.Offset,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if maxLimit > 0 && filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return filter, nil
}

// UpdateBookingRequest административное изменение бронирования.
// Nil поля не изменяются. BoatID, StartTime и EndTime изменять нельзя,
// они принимаются только чтобы явно отклонить такой запрос.
type UpdateBookingRequest struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"paymentStatus,omitempty"`
	Reason        *string `json:"reason,omitempty"`
	// Force разрешает отмену и ручное подтверждение подтверждённых/неоплаченных бронирований
	Force bool `json:"force,omitempty"`

	NumberOfPeople   *int    `json:"numberOfPeople,omitempty"`
	BasePriceCents   *int64  `json:"basePriceCents,omitempty"`
	ExtrasTotalCents *int64  `json:"extrasTotalCents,omitempty"`
	DepositCents     *int64  `json:"depositCents,omitempty"`
	TotalAmountCents *int64  `json:"totalAmountCents,omitempty"`
	CouponCode       *string `json:"couponCode,omitempty"`
	CustomerName     *string `json:"customerName,omitempty"`
	CustomerEmail    *string `json:"customerEmail,omitempty"`
	CustomerPhone    *string `json:"customerPhone,omitempty"`
	Notes            *string `json:"notes,omitempty"`

	BoatID    *string    `json:"boatId,omitempty"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// TouchesRange возвращает true, если запрос пытается изменить лодку или интервал
func (r *UpdateBookingRequest) TouchesRange() bool {
	return r.BoatID != nil || r.StartTime != nil || r.EndTime != nil
}

// Response модели

// ExtraResponse выбранная дополнительная опция
type ExtraResponse struct {
	ExtraID        string `json:"extraId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID               uuid.UUID       `json:"id"`
	BoatID           string          `json:"boatId"`
	StartTime        time.Time       `json:"startTime"`
	EndTime          time.Time       `json:"endTime"`
	DurationHours    int             `json:"durationHours"`
	Season           string          `json:"season"`
	NumberOfPeople   int             `json:"numberOfPeople"`
	SelectedExtras   []ExtraResponse `json:"selectedExtras"`
	BasePriceCents   int64           `json:"basePriceCents"`
	ExtrasTotalCents int64           `json:"extrasTotalCents"`
	DepositCents     int64           `json:"depositCents"`
	TotalAmountCents int64           `json:"totalAmountCents"`
	CouponCode       *string         `json:"couponCode,omitempty"`
	CatalogVersion   int64           `json:"catalogVersion"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"paymentStatus"`
	Source           string          `json:"source"`

	CustomerName  *string `json:"customerName,omitempty"`
	CustomerEmail *string `json:"customerEmail,omitempty"`
	CustomerPhone *string `json:"customerPhone,omitempty"`
	Notes         *string `json:"notes,omitempty"`

	HoldID          uuid.UUID  `json:"holdId"`
	HoldExpiresAt   time.Time  `json:"holdExpiresAt"`
	HoldConsumedAt  *time.Time `json:"holdConsumedAt,omitempty"`
	PaymentIntentID *string    `json:"paymentIntentId,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// Конвертеры

// FromDomainBooking конвертирует domain.Booking в BookingResponse
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	extras := make([]ExtraResponse, 0, len(b.SelectedExtras))
	for _, e := range b.SelectedExtras {
		extras = append(extras, ExtraResponse{
			ExtraID:        e.ExtraID,
			Quantity:       e.Quantity,
			UnitPriceCents: int64(e.UnitPrice),
		})
	}

	return &BookingResponse{
		ID:                 b.ID,
		BoatID:             b.BoatID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		DurationHours:      int(b.Duration),
		Season:             b.Season,
		NumberOfPeople:     b.NumberOfPeople,
		SelectedExtras:     extras,
		BasePriceCents:     int64(b.BasePrice),
		ExtrasTotalCents:   int64(b.ExtrasTotal),
		DepositCents:       int64(b.Deposit),
		TotalAmountCents:   int64(b.TotalAmount),
		CouponCode:         b.CouponCode,
		CatalogVersion:     b.CatalogVersion,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		Source:             string(b.Source),
		CustomerName:       b.CustomerName,
		CustomerEmail:      b.CustomerEmail,
		CustomerPhone:      b.CustomerPhone,
		Notes:              b.Notes,
		HoldID:             b.HoldID,
		HoldExpiresAt:      b.HoldExpiresAt,
		HoldConsumedAt:     b.HoldConsumedAt,
		PaymentIntentID:    b.PaymentIntentID,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		ConfirmedAt:        b.ConfirmedAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain.Booking в список BookingResponse
func FromDomainBookingList(bookings []*domain.Booking) []BookingResponse {
	responses := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, *FromDomainBooking(b))
	}
	return responses
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s, err := domain.ParseBookingStatus(status)
	if err != nil {
		return "", ErrInvalidStatus
	}
	return s, nil
}
