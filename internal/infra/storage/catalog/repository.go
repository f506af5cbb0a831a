package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/pkg/dbmetrics"
	"github.com/m04kA/SMC-BoatRental/pkg/psqlbuilder"
)

// Repository репозиторий каталога: лодки, сезоны с ценами и дополнительные опции.
// Каталог редактируется администратором вне сервиса; здесь он только читается.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CurrentVersion возвращает номер последней версии каталога
func (r *Repository) CurrentVersion(ctx context.Context) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("version").
		From("catalog_versions").
		OrderBy("version DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CurrentVersion - build select query: %v", ErrBuildQuery, err)
	}

	var version int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCatalogEmpty
	}
	if err != nil {
		return 0, fmt.Errorf("%w: CurrentVersion - scan: %v", ErrScanRow, err)
	}

	return version, nil
}

// Load читает каталог целиком и собирает неизменяемый снимок.
// Для согласованного снимка вызывать внутри транзакции только для чтения.
func (r *Repository) Load(ctx context.Context, loadedAt time.Time) (*domain.Catalog, error) {
	version, err := r.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	boats, err := r.loadBoats(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.loadSeasons(ctx, boats); err != nil {
		return nil, err
	}

	extras, err := r.loadExtras(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]domain.Boat, 0, len(boats))
	for _, b := range boats {
		list = append(list, *b)
	}

	catalog, err := domain.NewCatalog(version, loadedAt, list, extras)
	if err != nil {
		return nil, fmt.Errorf("%w: Load - version %d: %w", ErrInvalidData, version, err)
	}

	return catalog, nil
}

func (r *Repository) loadBoats(ctx context.Context) (map[string]*domain.Boat, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"capacity",
		"deposit_cents",
		"hourly_rate_cents",
	).
		From("boats").
		Where(squirrel.Eq{"active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadBoats - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadBoats - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	boats := make(map[string]*domain.Boat)
	for rows.Next() {
		var b domain.Boat
		if err := rows.Scan(&b.ID, &b.Name, &b.Capacity, &b.Deposit, &b.HourlyRate); err != nil {
			return nil, fmt.Errorf("%w: loadBoats - scan row: %v", ErrScanRow, err)
		}
		boats[b.ID] = &b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadBoats - rows error: %v", ErrScanRow, err)
	}

	return boats, nil
}

// loadSeasons читает сезоны вместе с ценами одним запросом (LEFT JOIN) и раскладывает их по лодкам
func (r *Repository) loadSeasons(ctx context.Context, boats map[string]*domain.Boat) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.boat_id",
		"s.label",
		"s.from_day",
		"s.to_day",
		"p.duration_hours",
		"p.price_cents",
	).
		From("boat_seasons s").
		LeftJoin("season_prices p ON p.season_id = s.id").
		OrderBy("s.boat_id", "s.id", "p.duration_hours").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadSeasons - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadSeasons - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var (
		current   *domain.Season
		currentID int64
		owner     *domain.Boat
	)
	flush := func() {
		if current != nil && owner != nil {
			owner.Seasons = append(owner.Seasons, *current)
		}
		current = nil
	}

	for rows.Next() {
		var (
			seasonID       int64
			boatID, label  string
			fromDay, toDay string
			hours          sql.NullInt64
			price          sql.NullInt64
		)
		if err := rows.Scan(&seasonID, &boatID, &label, &fromDay, &toDay, &hours, &price); err != nil {
			return fmt.Errorf("%w: loadSeasons - scan row: %v", ErrScanRow, err)
		}

		if current == nil || seasonID != currentID {
			flush()

			// сезоны неактивных лодок пропускаем
			owner = boats[boatID]
			period, err := parsePeriod(fromDay, toDay)
			if err != nil {
				return fmt.Errorf("%w: loadSeasons - season %d: %v", ErrInvalidData, seasonID, err)
			}
			current = &domain.Season{
				Label:  label,
				Period: period,
				Prices: make(map[domain.DurationBucket]domain.Cents),
			}
			currentID = seasonID
		}

		if hours.Valid && price.Valid {
			current.Prices[domain.DurationBucket(hours.Int64)] = domain.Cents(price.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadSeasons - rows error: %v", ErrScanRow, err)
	}
	flush()

	return nil
}

func (r *Repository) loadExtras(ctx context.Context) ([]domain.Extra, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "unit_price_cents").
		From("extras").
		Where(squirrel.Eq{"active": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadExtras - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadExtras - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	extras := make([]domain.Extra, 0)
	for rows.Next() {
		var e domain.Extra
		if err := rows.Scan(&e.ID, &e.Name, &e.UnitPrice); err != nil {
			return nil, fmt.Errorf("%w: loadExtras - scan row: %v", ErrScanRow, err)
		}
		extras = append(extras, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadExtras - rows error: %v", ErrScanRow, err)
	}

	return extras, nil
}

func parsePeriod(from, to string) (domain.SeasonPeriod, error) {
	fromDay, err := domain.ParseMonthDay(from)
	if err != nil {
		return domain.SeasonPeriod{}, err
	}
	toDay, err := domain.ParseMonthDay(to)
	if err != nil {
		return domain.SeasonPeriod{}, err
	}
	return domain.SeasonPeriod{From: fromDay, To: toDay}, nil
}
