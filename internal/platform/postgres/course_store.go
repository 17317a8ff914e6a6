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

var courseSchema = newSchema("courses",
	col("id", "id", kindUUID, func(c *domain.Course) any { return &c.ID }),
	col("bootcampId", "bootcamp_id", kindUUID, func(c *domain.Course) any { return &c.BootcampID }),
	col("user", "user_id", kindUUID, func(c *domain.Course) any { return &c.UserID }),
	col("title", "title", kindText, func(c *domain.Course) any { return &c.Title }),
	col("description", "description", kindText, func(c *domain.Course) any { return &c.Description }),
	col("weeks", "weeks", kindInt, func(c *domain.Course) any { return &c.Weeks }),
	col("tuition", "tuition", kindNumber, func(c *domain.Course) any { return &c.Tuition }),
	col("minimumSkill", "minimum_skill", kindText, func(c *domain.Course) any { return &c.MinimumSkill }),
	col("scholarshipAvailable", "scholarship_available", kindBool, func(c *domain.Course) any { return &c.ScholarshipAvailable }),
	col("createdAt", "created_at", kindTime, func(c *domain.Course) any { return &c.CreatedAt }),
)

// PostgresCourseStore implements store.CourseStore.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCourseStore creates a course store on db. If logger is nil,
// the default logger is used.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

var _ store.CourseStore = (*PostgresCourseStore)(nil)

// WithTx implements store.CourseStore.WithTx.
func (s *PostgresCourseStore) WithTx(tx *sql.Tx) store.CourseStore {
	return &PostgresCourseStore{db: tx, logger: s.logger}
}

// Count implements query.Repository.
func (s *PostgresCourseStore) Count(ctx context.Context, f query.Filter) (int, error) {
	return count(ctx, s.db, courseSchema, f)
}

// Find implements query.Repository.
func (s *PostgresCourseStore) Find(f query.Filter) query.Cursor[*domain.Course] {
	return newCursor(s.db, courseSchema, f)
}

// Create implements store.CourseStore.Create.
func (s *PostgresCourseStore) Create(ctx context.Context, c *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courses (id, bootcamp_id, user_id, title, description, weeks,
			tuition, minimum_skill, scholarship_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		c.ID, c.BootcampID, c.UserID, c.Title, c.Description, c.Weeks,
		c.Tuition, c.MinimumSkill, c.ScholarshipAvailable, c.CreatedAt,
	)
	if err != nil {
		err = MapError(err)
		if errors.Is(err, store.ErrInvalidEntity) {
			log.Warn("course rejected by database",
				slog.String("error", err.Error()),
				slog.String("bootcamp_id", c.BootcampID.String()))
			return err
		}
		log.Error("failed to create course",
			slog.String("error", err.Error()),
			slog.String("course_id", c.ID.String()))
		return err
	}

	log.Info("course created",
		slog.String("course_id", c.ID.String()),
		slog.String("bootcamp_id", c.BootcampID.String()))
	return nil
}

// GetByID implements store.CourseStore.GetByID.
func (s *PostgresCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	sqlStr, args, err := psql.Select(columnNames(courseSchema.columns)...).
		From(courseSchema.table).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course query: %w", err)
	}

	items, err := queryRows(ctx, s.db, sqlStr, args, courseSchema.columns)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, store.ErrCourseNotFound
	}
	return items[0], nil
}

// ListByBootcamps implements store.CourseStore.ListByBootcamps.
func (s *PostgresCourseStore) ListByBootcamps(ctx context.Context, bootcampIDs []uuid.UUID) ([]*domain.Course, error) {
	if len(bootcampIDs) == 0 {
		return []*domain.Course{}, nil
	}

	sqlStr, args, err := psql.Select(columnNames(courseSchema.columns)...).
		From(courseSchema.table).
		Where(sq.Eq{"bootcamp_id": uuidArgs(bootcampIDs)}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course query: %w", err)
	}
	return queryRows(ctx, s.db, sqlStr, args, courseSchema.columns)
}

// Update implements store.CourseStore.Update.
func (s *PostgresCourseStore) Update(ctx context.Context, c *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE courses
		SET title = $1, description = $2, weeks = $3, tuition = $4,
			minimum_skill = $5, scholarship_available = $6
		WHERE id = $7
	`, c.Title, c.Description, c.Weeks, c.Tuition, c.MinimumSkill, c.ScholarshipAvailable, c.ID)
	if err != nil {
		err = MapError(err)
		log.Error("failed to update course",
			slog.String("error", err.Error()),
			slog.String("course_id", c.ID.String()))
		return err
	}
	if err := CheckRowsAffected(result, store.ErrCourseNotFound); err != nil {
		return err
	}

	log.Info("course updated", slog.String("course_id", c.ID.String()))
	return nil
}

// Delete implements store.CourseStore.Delete.
func (s *PostgresCourseStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete course",
			slog.String("error", err.Error()),
			slog.String("course_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCourseNotFound); err != nil {
		return err
	}

	log.Info("course deleted", slog.String("course_id", id.String()))
	return nil
}

// RecalculateAverageCost implements store.CourseStore.RecalculateAverageCost.
// The mean tuition is rounded up to a multiple of ten.
func (s *PostgresCourseStore) RecalculateAverageCost(ctx context.Context, bootcampID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		UPDATE bootcamps
		SET average_cost = (
			SELECT CEIL(AVG(tuition) / 10) * 10 FROM courses WHERE bootcamp_id = $1
		)
		WHERE id = $1
	`, bootcampID)
	if err != nil {
		log.Error("failed to recalculate average cost",
			slog.String("error", err.Error()),
			slog.String("bootcamp_id", bootcampID.String()))
		return MapError(err)
	}

	log.Debug("average cost recalculated", slog.String("bootcamp_id", bootcampID.String()))
	return nil
}
