package holds

import "github.com/m04kA/SMC-BoatRental/internal/domain"

// AcquireResult результат захвата холда
type AcquireResult struct {
	// Booking бронирование в статусе hold со встроенным холдом
	Booking *domain.Booking
	// Reused холд уже существовал: повторный запрос того же клиента на тот же интервал
	Reused bool
}

// Hold возвращает захваченный холд
func (r *AcquireResult) Hold() domain.Hold {
	return r.Booking.Hold()
}
