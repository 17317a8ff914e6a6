// Package seed loads the sample directory data from JSON files into the
// database and removes it again.
package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/service"
	"github.com/phrazzld/devcamper-api/internal/service/auth"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// Data file names inside the seed directory.
const (
	UsersFile     = "users.json"
	BootcampsFile = "bootcamps.json"
	CoursesFile   = "courses.json"
)

// User is a seed account. Unlike domain.User it carries its plaintext password.
type User struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Password string      `json:"password"`
}

// Data is the content of a seed directory.
type Data struct {
	Users     []User
	Bootcamps []domain.Bootcamp
	Courses   []domain.Course
}

// Load reads the three seed files from dir.
func Load(dir string) (*Data, error) {
	var data Data
	if err := readJSON(filepath.Join(dir, UsersFile), &data.Users); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, BootcampsFile), &data.Bootcamps); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, CoursesFile), &data.Courses); err != nil {
		return nil, err
	}
	return &data, nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Seeder writes seed data through the stores.
type Seeder struct {
	db        *sql.DB
	users     store.UserStore
	bootcamps store.BootcampStore
	courses   store.CourseStore
	hasher    auth.PasswordHasher
	geocoder  service.Geocoder
	logger    *slog.Logger
}

// NewSeeder creates a Seeder. geocoder may be nil.
func NewSeeder(
	db *sql.DB,
	users store.UserStore,
	bootcamps store.BootcampStore,
	courses store.CourseStore,
	hasher auth.PasswordHasher,
	geocoder service.Geocoder,
	logger *slog.Logger,
) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		db:        db,
		users:     users,
		bootcamps: bootcamps,
		courses:   courses,
		hasher:    hasher,
		geocoder:  geocoder,
		logger:    logger.With("component", "seeder"),
	}
}

// Import inserts users, bootcamps and courses in one transaction, keeping the
// IDs from the files, and recomputes the average cost of every bootcamp.
func (s *Seeder) Import(ctx context.Context, data *Data) error {
	users, err := s.prepareUsers(data.Users)
	if err != nil {
		return err
	}
	bootcamps, err := s.prepareBootcamps(ctx, data.Bootcamps)
	if err != nil {
		return err
	}
	courses, err := prepareCourses(data.Courses)
	if err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		userStore := s.users.WithTx(tx)
		bootcampStore := s.bootcamps.WithTx(tx)
		courseStore := s.courses.WithTx(tx)

		for _, u := range users {
			if err := userStore.Create(ctx, u); err != nil {
				return fmt.Errorf("user %s: %w", u.Email, err)
			}
		}
		for _, b := range bootcamps {
			if err := bootcampStore.Create(ctx, b); err != nil {
				return fmt.Errorf("bootcamp %s: %w", b.Name, err)
			}
		}
		for _, c := range courses {
			if err := courseStore.Create(ctx, c); err != nil {
				return fmt.Errorf("course %s: %w", c.Title, err)
			}
		}
		for _, b := range bootcamps {
			if err := courseStore.RecalculateAverageCost(ctx, b.ID); err != nil {
				return fmt.Errorf("average cost of %s: %w", b.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	s.logger.Info("seed data imported",
		slog.Int("users", len(users)),
		slog.Int("bootcamps", len(bootcamps)),
		slog.Int("courses", len(courses)))
	return nil
}

func (s *Seeder) prepareUsers(in []User) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(in))
	for _, su := range in {
		u, err := domain.NewUser(su.Name, su.Email, su.Password, su.Role)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", su.Email, err)
		}
		if su.ID != uuid.Nil {
			u.ID = su.ID
		}
		hashed, err := s.hasher.Hash(u.Password)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", su.Email, err)
		}
		u.HashedPassword = hashed
		u.Password = ""
		out = append(out, u)
	}
	return out, nil
}

func (s *Seeder) prepareBootcamps(ctx context.Context, in []domain.Bootcamp) ([]*domain.Bootcamp, error) {
	out := make([]*domain.Bootcamp, 0, len(in))
	for _, sb := range in {
		b, err := domain.NewBootcamp(sb.UserID, sb)
		if err != nil {
			return nil, fmt.Errorf("bootcamp %s: %w", sb.Name, err)
		}
		if sb.ID != uuid.Nil {
			b.ID = sb.ID
		}
		b.AverageCost = nil
		b.Location = s.locate(ctx, b.Address)
		out = append(out, b)
	}
	return out, nil
}

func prepareCourses(in []domain.Course) ([]*domain.Course, error) {
	out := make([]*domain.Course, 0, len(in))
	for _, sc := range in {
		c, err := domain.NewCourse(sc.BootcampID, sc.UserID, sc)
		if err != nil {
			return nil, fmt.Errorf("course %s: %w", sc.Title, err)
		}
		if sc.ID != uuid.Nil {
			c.ID = sc.ID
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Seeder) locate(ctx context.Context, address string) domain.Location {
	if s.geocoder == nil {
		return domain.Location{}
	}
	locations, err := s.geocoder.Geocode(ctx, address)
	if err != nil || len(locations) == 0 {
		if err != nil {
			s.logger.Warn("geocoding failed", slog.String("address", address), slog.String("error", err.Error()))
		}
		return domain.Location{}
	}
	return locations[0]
}

// Destroy removes every course, bootcamp and user.
func (s *Seeder) Destroy(ctx context.Context) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, table := range []string{"courses", "bootcamps", "users"} {
			query, args, err := sq.Delete(table).PlaceholderFormat(sq.Dollar).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}
	s.logger.Info("seed data destroyed")
	return nil
}

// ErrEmpty is returned by Validate when a seed directory holds no records.
var ErrEmpty = errors.New("seed data is empty")

// Validate checks that every course references a bootcamp and every bootcamp
// an owner present in the same data set.
func (d *Data) Validate() error {
	if len(d.Users) == 0 && len(d.Bootcamps) == 0 && len(d.Courses) == 0 {
		return ErrEmpty
	}
	users := make(map[uuid.UUID]struct{}, len(d.Users))
	for _, u := range d.Users {
		users[u.ID] = struct{}{}
	}
	bootcamps := make(map[uuid.UUID]struct{}, len(d.Bootcamps))
	for _, b := range d.Bootcamps {
		if _, ok := users[b.UserID]; !ok {
			return fmt.Errorf("bootcamp %s: unknown owner %s", b.Name, b.UserID)
		}
		bootcamps[b.ID] = struct{}{}
	}
	for _, c := range d.Courses {
		if _, ok := bootcamps[c.BootcampID]; !ok {
			return fmt.Errorf("course %s: unknown bootcamp %s", c.Title, c.BootcampID)
		}
		if _, ok := users[c.UserID]; !ok {
			return fmt.Errorf("course %s: unknown author %s", c.Title, c.UserID)
		}
	}
	return nil
}
