package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/platform/logger"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// EarthRadiusMiles is the radius used to turn a search distance into an arc.
const EarthRadiusMiles = 3963.0

var bootcampSchema = newSchema("bootcamps",
	col("id", "id", kindUUID, func(b *domain.Bootcamp) any { return &b.ID }),
	col("user", "user_id", kindUUID, func(b *domain.Bootcamp) any { return &b.UserID }),
	col("name", "name", kindText, func(b *domain.Bootcamp) any { return &b.Name }),
	col("slug", "slug", kindText, func(b *domain.Bootcamp) any { return &b.Slug }),
	col("description", "description", kindText, func(b *domain.Bootcamp) any { return &b.Description }),
	col("website", "website", kindText, func(b *domain.Bootcamp) any { return &b.Website }),
	col("phone", "phone", kindText, func(b *domain.Bootcamp) any { return &b.Phone }),
	col("email", "email", kindText, func(b *domain.Bootcamp) any { return &b.Email }),
	col("address", "address", kindText, func(b *domain.Bootcamp) any { return &b.Address }),
	col("location.longitude", "location_longitude", kindNumber, func(b *domain.Bootcamp) any { return &b.Location.Longitude }),
	col("location.latitude", "location_latitude", kindNumber, func(b *domain.Bootcamp) any { return &b.Location.Latitude }),
	col("location.formattedAddress", "location_formatted_address", kindText, func(b *domain.Bootcamp) any { return &b.Location.FormattedAddress }),
	col("location.street", "location_street", kindText, func(b *domain.Bootcamp) any { return &b.Location.Street }),
	col("location.city", "location_city", kindText, func(b *domain.Bootcamp) any { return &b.Location.City }),
	col("location.state", "location_state", kindText, func(b *domain.Bootcamp) any { return &b.Location.State }),
	col("location.zipcode", "location_zipcode", kindText, func(b *domain.Bootcamp) any { return &b.Location.Zipcode }),
	col("location.country", "location_country", kindText, func(b *domain.Bootcamp) any { return &b.Location.Country }),
	col("careers", "careers", kindTextArray, func(b *domain.Bootcamp) any { return &b.Careers }),
	col("averageRating", "average_rating", kindNumber, func(b *domain.Bootcamp) any { return &b.AverageRating }),
	col("averageCost", "average_cost", kindNumber, func(b *domain.Bootcamp) any { return &b.AverageCost }),
	col("photo", "photo", kindText, func(b *domain.Bootcamp) any { return &b.Photo }),
	col("housing", "housing", kindBool, func(b *domain.Bootcamp) any { return &b.Housing }),
	col("jobAssistance", "job_assistance", kindBool, func(b *domain.Bootcamp) any { return &b.JobAssistance }),
	col("jobGuarantee", "job_guarantee", kindBool, func(b *domain.Bootcamp) any { return &b.JobGuarantee }),
	col("acceptGi", "accept_gi", kindBool, func(b *domain.Bootcamp) any { return &b.AcceptGi }),
	col("createdAt", "created_at", kindTime, func(b *domain.Bootcamp) any { return &b.CreatedAt }),
)

// PostgresBootcampStore implements store.BootcampStore.
type PostgresBootcampStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBootcampStore creates a bootcamp store on db. If logger is nil,
// the default logger is used.
func NewPostgresBootcampStore(db store.DBTX, logger *slog.Logger) *PostgresBootcampStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBootcampStore{
		db:     db,
		logger: logger.With(slog.String("component", "bootcamp_store")),
	}
}

var _ store.BootcampStore = (*PostgresBootcampStore)(nil)

// WithTx implements store.BootcampStore.WithTx.
func (s *PostgresBootcampStore) WithTx(tx *sql.Tx) store.BootcampStore {
	return &PostgresBootcampStore{db: tx, logger: s.logger}
}

// Count implements query.Repository.
func (s *PostgresBootcampStore) Count(ctx context.Context, f query.Filter) (int, error) {
	return count(ctx, s.db, bootcampSchema, f)
}

// Find implements query.Repository.
func (s *PostgresBootcampStore) Find(f query.Filter) query.Cursor[*domain.Bootcamp] {
	return newCursor(s.db, bootcampSchema, f)
}

// Create implements store.BootcampStore.Create.
func (s *PostgresBootcampStore) Create(ctx context.Context, b *domain.Bootcamp) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := b.Validate(); err != nil {
		log.Warn("bootcamp validation failed during create",
			slog.String("error", err.Error()),
			slog.String("bootcamp_id", b.ID.String()))
		return err
	}

	sqlStr, args, err := psql.Insert(bootcampSchema.table).
		Columns(columnNames(bootcampSchema.columns)...).
		Values(bootcampValues(b)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build bootcamp insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		err = MapError(err)
		if errors.Is(err, store.ErrDuplicate) {
			log.Debug("bootcamp name already exists", slog.String("name", b.Name))
		} else {
			log.Error("failed to create bootcamp",
				slog.String("error", err.Error()),
				slog.String("bootcamp_id", b.ID.String()))
		}
		return err
	}

	log.Info("bootcamp created",
		slog.String("bootcamp_id", b.ID.String()),
		slog.String("user_id", b.UserID.String()))
	return nil
}

// GetByID implements store.BootcampStore.GetByID.
func (s *PostgresBootcampStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sqlStr, args, err := psql.Select(columnNames(bootcampSchema.columns)...).
		From(bootcampSchema.table).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bootcamp query: %w", err)
	}

	items, err := queryRows(ctx, s.db, sqlStr, args, bootcampSchema.columns)
	if err != nil {
		log.Error("failed to get bootcamp",
			slog.String("error", err.Error()),
			slog.String("bootcamp_id", id.String()))
		return nil, err
	}
	if len(items) == 0 {
		return nil, store.ErrBootcampNotFound
	}
	return items[0], nil
}

// GetSummaries implements store.BootcampStore.GetSummaries.
func (s *PostgresBootcampStore) GetSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.BootcampSummary, error) {
	out := make(map[uuid.UUID]*domain.BootcampSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sqlStr, args, err := psql.Select("id", "name", "description").
		From(bootcampSchema.table).
		Where(sq.Eq{"id": uuidArgs(ids)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bootcamp summary query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var sum domain.BootcampSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Description); err != nil {
			return nil, fmt.Errorf("failed to scan bootcamp summary: %w", err)
		}
		out[sum.ID] = &sum
	}
	return out, MapError(rows.Err())
}

// CountByUser implements store.BootcampStore.CountByUser.
func (s *PostgresBootcampStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bootcamps WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// WithinRadius implements store.BootcampStore.WithinRadius using the
// haversine distance in miles.
func (s *PostgresBootcampStore) WithinRadius(ctx context.Context, lat, lng, miles float64) ([]*domain.Bootcamp, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	distance := fmt.Sprintf(`(%g * 2 * ASIN(SQRT(
		POWER(SIN(RADIANS(location_latitude - ?) / 2), 2) +
		COS(RADIANS(?)) * COS(RADIANS(location_latitude)) *
		POWER(SIN(RADIANS(location_longitude - ?) / 2), 2))))`, EarthRadiusMiles)

	sqlStr, args, err := psql.Select(columnNames(bootcampSchema.columns)...).
		From(bootcampSchema.table).
		Where("location_latitude IS NOT NULL AND location_longitude IS NOT NULL").
		Where(sq.Expr(distance+" <= ?", lat, lat, lng, miles)).
		OrderByClause(sq.Expr(distance+" ASC", lat, lat, lng)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build radius query: %w", err)
	}

	items, err := queryRows(ctx, s.db, sqlStr, args, bootcampSchema.columns)
	if err != nil {
		log.Error("failed to query bootcamps by radius",
			slog.String("error", err.Error()),
			slog.Float64("miles", miles))
		return nil, err
	}
	return items, nil
}

// Update implements store.BootcampStore.Update.
func (s *PostgresBootcampStore) Update(ctx context.Context, b *domain.Bootcamp) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := b.Validate(); err != nil {
		return err
	}

	sqlStr, args, err := psql.Update(bootcampSchema.table).
		SetMap(map[string]any{
			"name":                       b.Name,
			"slug":                       b.Slug,
			"description":                b.Description,
			"website":                    b.Website,
			"phone":                      b.Phone,
			"email":                      b.Email,
			"address":                    b.Address,
			"location_longitude":         b.Location.Longitude,
			"location_latitude":          b.Location.Latitude,
			"location_formatted_address": b.Location.FormattedAddress,
			"location_street":            b.Location.Street,
			"location_city":              b.Location.City,
			"location_state":             b.Location.State,
			"location_zipcode":           b.Location.Zipcode,
			"location_country":           b.Location.Country,
			"careers":                    b.Careers,
			"average_rating":             b.AverageRating,
			"photo":                      b.Photo,
			"housing":                    b.Housing,
			"job_assistance":             b.JobAssistance,
			"job_guarantee":              b.JobGuarantee,
			"accept_gi":                  b.AcceptGi,
		}).
		Where("id = ?", b.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build bootcamp update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		err = MapError(err)
		log.Warn("failed to update bootcamp",
			slog.String("error", err.Error()),
			slog.String("bootcamp_id", b.ID.String()))
		return err
	}
	if err := CheckRowsAffected(result, store.ErrBootcampNotFound); err != nil {
		return err
	}

	log.Info("bootcamp updated", slog.String("bootcamp_id", b.ID.String()))
	return nil
}

// Delete implements store.BootcampStore.Delete. Courses are removed by
// the ON DELETE CASCADE foreign key.
func (s *PostgresBootcampStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM bootcamps WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete bootcamp",
			slog.String("error", err.Error()),
			slog.String("bootcamp_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrBootcampNotFound); err != nil {
		return err
	}

	log.Info("bootcamp deleted", slog.String("bootcamp_id", id.String()))
	return nil
}

// bootcampValues lists b's values in bootcampSchema column order.
func bootcampValues(b *domain.Bootcamp) []any {
	return []any{
		b.ID, b.UserID, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email, b.Address,
		b.Location.Longitude, b.Location.Latitude, b.Location.FormattedAddress, b.Location.Street,
		b.Location.City, b.Location.State, b.Location.Zipcode, b.Location.Country,
		b.Careers, b.AverageRating, b.AverageCost, b.Photo,
		b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGi, b.CreatedAt,
	}
}

func uuidArgs(ids []uuid.UUID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
