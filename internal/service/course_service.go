package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// CourseService provides course-related operations. Every write recomputes
// the average cost of the affected bootcamp in the same transaction.
type CourseService interface {
	// List runs a list request through the query pipeline and attaches the
	// bootcamp summary of every returned course.
	List(ctx context.Context, raw map[string]string) (*query.PageResult[*domain.Course], error)

	// ListForBootcamp returns every course of a bootcamp, unpaginated.
	ListForBootcamp(ctx context.Context, bootcampID uuid.UUID) ([]*domain.Course, error)

	// Get returns a course with its bootcamp summary.
	Get(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	// Add creates a course in a bootcamp actor owns or administers.
	Add(ctx context.Context, actor *domain.User, bootcampID uuid.UUID, in domain.Course) (*domain.Course, error)

	// Update applies changes to a course of a bootcamp actor owns or administers.
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, changes domain.CourseChanges) (*domain.Course, error)

	// Delete removes a course of a bootcamp actor owns or administers.
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error
}

type courseServiceImpl struct {
	courses   store.CourseStore
	bootcamps store.BootcampStore
	db        *sql.DB
	pipeline  query.Pipeline
	logger    *slog.Logger
}

// NewCourseService creates a CourseService.
func NewCourseService(
	courses store.CourseStore,
	bootcamps store.BootcampStore,
	db *sql.DB,
	pipeline query.Pipeline,
	logger *slog.Logger,
) (CourseService, error) {
	if courses == nil {
		return nil, domain.NewValidationError("courses", "cannot be nil", domain.ErrValidation)
	}
	if bootcamps == nil {
		return nil, domain.NewValidationError("bootcamps", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &courseServiceImpl{
		courses:   courses,
		bootcamps: bootcamps,
		db:        db,
		pipeline:  pipeline,
		logger:    logger.With(slog.String("component", "course_service")),
	}, nil
}

func (s *courseServiceImpl) List(
	ctx context.Context,
	raw map[string]string,
) (*query.PageResult[*domain.Course], error) {
	page, err := query.Execute(ctx, s.pipeline, raw, s.courses)
	if err != nil {
		return nil, NewServiceError("course", "list", err)
	}
	if err := s.attachBootcamps(ctx, page.Items); err != nil {
		return nil, NewServiceError("course", "list", err)
	}
	return page, nil
}

func (s *courseServiceImpl) ListForBootcamp(ctx context.Context, bootcampID uuid.UUID) ([]*domain.Course, error) {
	if _, err := s.bootcamps.GetByID(ctx, bootcampID); err != nil {
		return nil, NewServiceError("course", "list for bootcamp", err)
	}
	courses, err := s.courses.ListByBootcamps(ctx, []uuid.UUID{bootcampID})
	if err != nil {
		return nil, NewServiceError("course", "list for bootcamp", err)
	}
	if courses == nil {
		courses = []*domain.Course{}
	}
	return courses, nil
}

func (s *courseServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("course", "get", err)
	}
	if err := s.attachBootcamps(ctx, []*domain.Course{course}); err != nil {
		return nil, NewServiceError("course", "get", err)
	}
	return course, nil
}

func (s *courseServiceImpl) Add(
	ctx context.Context,
	actor *domain.User,
	bootcampID uuid.UUID,
	in domain.Course,
) (*domain.Course, error) {
	var course *domain.Course
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		bootcamps := s.bootcamps.WithTx(tx)
		courses := s.courses.WithTx(tx)

		bootcamp, err := bootcamps.GetByID(ctx, bootcampID)
		if err != nil {
			return err
		}
		if !canModify(actor, bootcamp.UserID) {
			return ErrNotOwned
		}

		course, err = domain.NewCourse(bootcampID, actor.ID, in)
		if err != nil {
			return err
		}
		if err := courses.Create(ctx, course); err != nil {
			return err
		}
		course.Bootcamp = bootcamp.Summary()
		return courses.RecalculateAverageCost(ctx, bootcampID)
	})
	if err != nil {
		return nil, NewServiceError("course", "add", err)
	}

	s.logger.Info("course added",
		slog.String("course_id", course.ID.String()),
		slog.String("bootcamp_id", bootcampID.String()))
	return course, nil
}

func (s *courseServiceImpl) Update(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	changes domain.CourseChanges,
) (*domain.Course, error) {
	var course *domain.Course
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		courses := s.courses.WithTx(tx)

		var err error
		course, err = courses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		bootcamp, err := s.bootcamps.WithTx(tx).GetByID(ctx, course.BootcampID)
		if err != nil {
			return err
		}
		if !canModify(actor, bootcamp.UserID) {
			return ErrNotOwned
		}

		repriced := changes.TuitionChanged(course)
		changes.Apply(course)
		if err := course.Validate(); err != nil {
			return err
		}
		if err := courses.Update(ctx, course); err != nil {
			return err
		}
		course.Bootcamp = bootcamp.Summary()
		if !repriced {
			return nil
		}
		return courses.RecalculateAverageCost(ctx, course.BootcampID)
	})
	if err != nil {
		return nil, NewServiceError("course", "update", err)
	}
	return course, nil
}

func (s *courseServiceImpl) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		courses := s.courses.WithTx(tx)

		course, err := courses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		bootcamp, err := s.bootcamps.WithTx(tx).GetByID(ctx, course.BootcampID)
		if err != nil {
			return err
		}
		if !canModify(actor, bootcamp.UserID) {
			return ErrNotOwned
		}

		if err := courses.Delete(ctx, id); err != nil {
			return err
		}
		return courses.RecalculateAverageCost(ctx, course.BootcampID)
	})
	if err != nil {
		return NewServiceError("course", "delete", err)
	}

	s.logger.Info("course deleted", slog.String("course_id", id.String()))
	return nil
}

// attachBootcamps populates the Bootcamp summary of every course with one query.
func (s *courseServiceImpl) attachBootcamps(ctx context.Context, courses []*domain.Course) error {
	if len(courses) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(courses))
	ids := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		if _, ok := seen[c.BootcampID]; ok || c.BootcampID == uuid.Nil {
			continue
		}
		seen[c.BootcampID] = struct{}{}
		ids = append(ids, c.BootcampID)
	}
	if len(ids) == 0 {
		return nil
	}

	summaries, err := s.bootcamps.GetSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range courses {
		c.Bootcamp = summaries[c.BootcampID]
	}
	return nil
}
