package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// Geocoder resolves a free-form address or zipcode to candidate locations,
// best match first.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]domain.Location, error)
}

// BootcampService provides bootcamp-related operations.
type BootcampService interface {
	// List runs a list request through the query pipeline and populates the
	// courses of every returned bootcamp.
	List(ctx context.Context, raw map[string]string) (*query.PageResult[*domain.Bootcamp], error)

	// Get returns a bootcamp with its courses.
	Get(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error)

	// Create adds a bootcamp owned by actor. A publisher may own one
	// bootcamp; admins are not limited. Returns ErrAlreadyPublished.
	Create(ctx context.Context, actor *domain.User, in domain.Bootcamp) (*domain.Bootcamp, error)

	// Update applies changes when actor owns the bootcamp or is an admin.
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, changes domain.BootcampChanges) (*domain.Bootcamp, error)

	// Delete removes a bootcamp and its courses when actor owns it or is an admin.
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error

	// WithinRadius returns the bootcamps within miles of the given zipcode.
	WithinRadius(ctx context.Context, zipcode string, miles float64) ([]*domain.Bootcamp, error)
}

type bootcampServiceImpl struct {
	bootcamps store.BootcampStore
	courses   store.CourseStore
	db        *sql.DB
	geocoder  Geocoder
	pipeline  query.Pipeline
	logger    *slog.Logger
}

// NewBootcampService creates a BootcampService. geocoder may be nil, in which
// case addresses are stored without coordinates and radius searches fail
// with ErrGeocodingDisabled.
func NewBootcampService(
	bootcamps store.BootcampStore,
	courses store.CourseStore,
	db *sql.DB,
	geocoder Geocoder,
	pipeline query.Pipeline,
	logger *slog.Logger,
) (BootcampService, error) {
	if bootcamps == nil {
		return nil, domain.NewValidationError("bootcamps", "cannot be nil", domain.ErrValidation)
	}
	if courses == nil {
		return nil, domain.NewValidationError("courses", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bootcampServiceImpl{
		bootcamps: bootcamps,
		courses:   courses,
		db:        db,
		geocoder:  geocoder,
		pipeline:  pipeline,
		logger:    logger.With(slog.String("component", "bootcamp_service")),
	}, nil
}

func (s *bootcampServiceImpl) List(
	ctx context.Context,
	raw map[string]string,
) (*query.PageResult[*domain.Bootcamp], error) {
	page, err := query.Execute(ctx, s.pipeline, raw, s.bootcamps)
	if err != nil {
		return nil, NewServiceError("bootcamp", "list", err)
	}
	if err := s.attachCourses(ctx, page.Items); err != nil {
		return nil, NewServiceError("bootcamp", "list", err)
	}
	return page, nil
}

func (s *bootcampServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error) {
	bootcamp, err := s.bootcamps.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("bootcamp", "get", err)
	}
	if err := s.attachCourses(ctx, []*domain.Bootcamp{bootcamp}); err != nil {
		return nil, NewServiceError("bootcamp", "get", err)
	}
	return bootcamp, nil
}

func (s *bootcampServiceImpl) Create(
	ctx context.Context,
	actor *domain.User,
	in domain.Bootcamp,
) (*domain.Bootcamp, error) {
	bootcamp, err := domain.NewBootcamp(actor.ID, in)
	if err != nil {
		return nil, err
	}
	bootcamp.AverageCost = nil
	bootcamp.Location = s.locate(ctx, bootcamp.Address)

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		bootcamps := s.bootcamps.WithTx(tx)

		if actor.Role != domain.RoleAdmin {
			owned, err := bootcamps.CountByUser(ctx, actor.ID)
			if err != nil {
				return err
			}
			if owned > 0 {
				return ErrAlreadyPublished
			}
		}
		return bootcamps.Create(ctx, bootcamp)
	})
	if err != nil {
		if !errors.Is(err, ErrAlreadyPublished) && !errors.Is(err, store.ErrDuplicate) {
			s.logger.Error("failed to create bootcamp",
				slog.String("error", err.Error()),
				slog.String("user_id", actor.ID.String()))
		}
		return nil, NewServiceError("bootcamp", "create", err)
	}

	s.logger.Info("bootcamp created",
		slog.String("bootcamp_id", bootcamp.ID.String()),
		slog.String("user_id", actor.ID.String()))
	return bootcamp, nil
}

func (s *bootcampServiceImpl) Update(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	changes domain.BootcampChanges,
) (*domain.Bootcamp, error) {
	// Geocode outside the transaction; the result is used only if the bootcamp moves.
	var location domain.Location
	if changes.Address != nil {
		location = s.locate(ctx, strings.TrimSpace(*changes.Address))
	}

	var bootcamp *domain.Bootcamp
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		bootcamps := s.bootcamps.WithTx(tx)

		var err error
		bootcamp, err = bootcamps.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !canModify(actor, bootcamp.UserID) {
			return ErrNotOwned
		}

		moved := changes.AddressChanged(bootcamp)
		changes.Apply(bootcamp)
		if err := bootcamp.Validate(); err != nil {
			return err
		}
		if moved {
			bootcamp.Location = location
		}
		return bootcamps.Update(ctx, bootcamp)
	})
	if err != nil {
		return nil, NewServiceError("bootcamp", "update", err)
	}
	return bootcamp, nil
}

func (s *bootcampServiceImpl) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		bootcamps := s.bootcamps.WithTx(tx)

		bootcamp, err := bootcamps.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !canModify(actor, bootcamp.UserID) {
			return ErrNotOwned
		}
		return bootcamps.Delete(ctx, id)
	})
	if err != nil {
		return NewServiceError("bootcamp", "delete", err)
	}

	s.logger.Info("bootcamp deleted",
		slog.String("bootcamp_id", id.String()),
		slog.String("user_id", actor.ID.String()))
	return nil
}

func (s *bootcampServiceImpl) WithinRadius(
	ctx context.Context,
	zipcode string,
	miles float64,
) ([]*domain.Bootcamp, error) {
	if s.geocoder == nil {
		return nil, ErrGeocodingDisabled
	}
	if miles < 0 {
		return nil, domain.NewValidationError("distance", "must not be negative", nil)
	}

	locations, err := s.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, NewServiceError("bootcamp", "radius", err)
	}
	if len(locations) == 0 || !locations[0].HasCoordinates() {
		return []*domain.Bootcamp{}, nil
	}

	origin := locations[0]
	bootcamps, err := s.bootcamps.WithinRadius(ctx, *origin.Latitude, *origin.Longitude, miles)
	if err != nil {
		return nil, NewServiceError("bootcamp", "radius", err)
	}
	return bootcamps, nil
}

// locate geocodes address. Failures leave the bootcamp without coordinates
// so that a provider outage never blocks writes.
func (s *bootcampServiceImpl) locate(ctx context.Context, address string) domain.Location {
	if s.geocoder == nil {
		return domain.Location{}
	}
	locations, err := s.geocoder.Geocode(ctx, address)
	if err != nil || len(locations) == 0 {
		if err != nil {
			s.logger.Warn("geocoding failed, storing bootcamp without coordinates",
				slog.String("error", err.Error()))
		}
		return domain.Location{}
	}
	return locations[0]
}

// attachCourses populates the Courses field of every bootcamp with one query.
func (s *bootcampServiceImpl) attachCourses(ctx context.Context, bootcamps []*domain.Bootcamp) error {
	if len(bootcamps) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(bootcamps))
	byID := make(map[uuid.UUID]*domain.Bootcamp, len(bootcamps))
	for _, b := range bootcamps {
		ids = append(ids, b.ID)
		byID[b.ID] = b
		b.Courses = []*domain.Course{}
	}

	courses, err := s.courses.ListByBootcamps(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range courses {
		if b, ok := byID[c.BootcampID]; ok {
			b.Courses = append(b.Courses, c)
		}
	}
	return nil
}

// canModify reports whether actor may change a resource owned by ownerID.
func canModify(actor *domain.User, ownerID uuid.UUID) bool {
	return actor != nil && (actor.Role == domain.RoleAdmin || actor.ID == ownerID)
}
