package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/pkg/dbmetrics"
	"github.com/m04kA/SMC-BoatRental/pkg/psqlbuilder"
)

const tableBookings = "bookings"

// codeExclusionViolation нарушение ограничения bookings_no_overlap
const codeExclusionViolation pq.ErrorCode = "23P01"

// bookingColumns порядок колонок совпадает с порядком полей в scanBooking
var bookingColumns = []string{
	"id",
	"boat_id",
	"start_time",
	"end_time",
	"duration_hours",
	"season",
	"number_of_people",
	"selected_extras",
	"base_price_cents",
	"extras_total_cents",
	"deposit_cents",
	"total_amount_cents",
	"coupon_code",
	"catalog_version",
	"status",
	"payment_status",
	"source",
	"client_ref",
	"customer_name",
	"customer_email",
	"customer_phone",
	"notes",
	"hold_id",
	"hold_issued_at",
	"hold_expires_at",
	"hold_consumed_at",
	"payment_intent_id",
	"cancellation_reason",
	"cancelled_at",
	"confirmed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Пересечение с активным бронированием той же лодки отклоняется ограничением
// bookings_no_overlap и возвращается как ErrSlotNotAvailable.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	extras, err := encodeExtras(booking.SelectedExtras)
	if err != nil {
		return nil, fmt.Errorf("%w: Create: %v", ErrEncodeExtras, err)
	}

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(bookingColumns[:len(bookingColumns)-2]...).
		Values(
			booking.ID,
			booking.BoatID,
			booking.StartTime,
			booking.EndTime,
			booking.Duration,
			booking.Season,
			booking.NumberOfPeople,
			extras,
			booking.BasePrice,
			booking.ExtrasTotal,
			booking.Deposit,
			booking.TotalAmount,
			booking.CouponCode,
			booking.CatalogVersion,
			booking.Status,
			booking.PaymentStatus,
			booking.Source,
			booking.ClientRef,
			booking.CustomerName,
			booking.CustomerEmail,
			booking.CustomerPhone,
			booking.Notes,
			booking.HoldID,
			nullTime(booking.HoldIssuedAt),
			nullTime(booking.HoldExpiresAt),
			booking.HoldConsumedAt,
			booking.PaymentIntentID,
			booking.CancellationReason,
			booking.CancelledAt,
			booking.ConfirmedAt,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, fmt.Errorf("%w: Create - boat %s: %w", ErrSlotNotAvailable, booking.BoatID, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID.
// Внутри пишущей транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByHoldID получает бронирование по идентификатору холда.
// Внутри пишущей транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByHoldID(ctx context.Context, holdID uuid.UUID) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByHoldID", squirrel.Eq{"hold_id": holdID})
}

// GetByPaymentIntentID получает бронирование по идентификатору платежа во внешнем шлюзе
func (r *Repository) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByPaymentIntentID", squirrel.Eq{"payment_intent_id": intentID})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(where)

	if dbmetrics.CanLockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %w", ErrScanRow, op, err)
	}

	return booking, nil
}

// ListOverlapping возвращает бронирования лодки в активных статусах, пересекающиеся с r
// по полуоткрытому интервалу. Истёкшие холды тоже возвращаются: решение о том, занимают
// ли они слот, принимает вызывающий (domain.FindBlocking).
//
// Внутри пишущей транзакции найденные строки блокируются (FOR UPDATE).
func (r *Repository) ListOverlapping(ctx context.Context, boatID string, tr domain.TimeRange) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"boat_id": boatID}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		Where(squirrel.Lt{"start_time": tr.End}).
		Where(squirrel.Gt{"end_time": tr.Start}).
		OrderBy("start_time ASC")

	if dbmetrics.CanLockRows(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListExpiredHolds возвращает до limit бронирований в статусе hold, у которых
// hold_expires_at <= now, начиная с самых старых
func (r *Repository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"status": domain.StatusHold}).
		Where(squirrel.LtOrEq{"hold_expires_at": now}).
		OrderBy("hold_expires_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredHolds - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredHolds - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// List получает бронирования с фильтрацией для административных экранов.
// Фильтры по периоду выбирают бронирования, пересекающиеся с [From, To).
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		OrderBy("start_time DESC", "created_at DESC")

	if filter.BoatID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"boat_id": *filter.BoatID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_time": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.To})
	}
	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Transition переводит бронирование из change.From в change.To.
// Обновление применяется только если статус в БД всё ещё равен change.From,
// иначе возвращается ErrStatusConflict (или ErrBookingNotFound, если строки нет).
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, change domain.StatusChange) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableBookings).
		Set("status", change.To).
		Set("updated_at", change.At).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": change.From})

	if change.PaymentStatus != nil {
		updateBuilder = updateBuilder.Set("payment_status", *change.PaymentStatus)
	}
	if change.ConsumeHold {
		updateBuilder = updateBuilder.Set("hold_consumed_at", change.At)
	}

	switch change.To {
	case domain.StatusCancelled:
		updateBuilder = updateBuilder.
			Set("cancellation_reason", change.Reason).
			Set("cancelled_at", change.At)
	case domain.StatusConfirmed:
		updateBuilder = updateBuilder.Set("confirmed_at", change.At)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Transition - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isExclusionViolation(err) {
			return fmt.Errorf("%w: Transition - booking %s: %w", ErrSlotNotAvailable, id, err)
		}
		return fmt.Errorf("%w: Transition - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Transition - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return r.missingOrConflict(ctx, id)
	}

	return nil
}

// Update сохраняет редактируемые администратором поля.
// Интервал, лодка и статус этим методом не меняются.
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableBookings).
		Set("number_of_people", booking.NumberOfPeople).
		Set("base_price_cents", booking.BasePrice).
		Set("extras_total_cents", booking.ExtrasTotal).
		Set("deposit_cents", booking.Deposit).
		Set("total_amount_cents", booking.TotalAmount).
		Set("coupon_code", booking.CouponCode).
		Set("payment_status", booking.PaymentStatus).
		Set("customer_name", booking.CustomerName).
		Set("customer_email", booking.CustomerEmail).
		Set("customer_phone", booking.CustomerPhone).
		Set("notes", booking.Notes).
		Set("updated_at", booking.UpdatedAt).
		Where(squirrel.Eq{"id": booking.ID}).
		Where(squirrel.Eq{"status": booking.Status}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return r.missingOrConflict(ctx, booking.ID)
	}

	return nil
}

// SetPaymentIntent сохраняет идентификатор платежа внешнего шлюза
func (r *Repository) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableBookings).
		Set("payment_intent_id", intentID).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetPaymentIntent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetPaymentIntent - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetPaymentIntent - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) missingOrConflict(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From(tableBookings).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: missingOrConflict - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: missingOrConflict - scan: %w", ErrScanRow, err)
	}
	return ErrStatusConflict
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в порядке bookingColumns
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking       domain.Booking
		extras        []byte
		holdIssuedAt  sql.NullTime
		holdExpiresAt sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.BoatID,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Duration,
		&booking.Season,
		&booking.NumberOfPeople,
		&extras,
		&booking.BasePrice,
		&booking.ExtrasTotal,
		&booking.Deposit,
		&booking.TotalAmount,
		&booking.CouponCode,
		&booking.CatalogVersion,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.Source,
		&booking.ClientRef,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.Notes,
		&booking.HoldID,
		&holdIssuedAt,
		&holdExpiresAt,
		&booking.HoldConsumedAt,
		&booking.PaymentIntentID,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&booking.ConfirmedAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(extras) > 0 {
		if err := json.Unmarshal(extras, &booking.SelectedExtras); err != nil {
			return nil, fmt.Errorf("decode selected_extras: %w", err)
		}
	}

	booking.StartTime = booking.StartTime.UTC()
	booking.EndTime = booking.EndTime.UTC()
	booking.HoldIssuedAt = holdIssuedAt.Time.UTC()
	booking.HoldExpiresAt = holdExpiresAt.Time.UTC()

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

func encodeExtras(extras []domain.ExtraSelection) (string, error) {
	if extras == nil {
		extras = []domain.ExtraSelection{}
	}
	data, err := json.Marshal(extras)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	res := make([]string, len(statuses))
	for i, s := range statuses {
		res[i] = string(s)
	}
	return res
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeExclusionViolation
}
