package handle_payment_event

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/integrations/payments"
)

// Request тело и подпись webhook
type Request struct {
	Payload   []byte
	Signature string
}

// Response результат обработки. Handled=false означает, что событие принято,
// но состояние бронирования не изменилось (повтор, чужое событие, поздний платёж).
type Response struct {
	EventID   string
	Kind      payments.EventKind
	BookingID uuid.UUID
	Status    string
	Handled   bool
}
