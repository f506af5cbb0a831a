package check_availability

import "time"

// Request модель запроса проверки доступности
type Request struct {
	BoatID    string
	StartTime time.Time
	EndTime   time.Time
}

// Response результат проверки. Доступность не резервирует слот:
// окончательное решение принимает захват холда.
type Response struct {
	BoatID    string
	StartTime time.Time // UTC
	EndTime   time.Time // UTC
	Available bool
	Conflicts int // число бронирований, занимающих интервал
}
