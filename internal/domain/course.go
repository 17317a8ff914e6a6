package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SkillLevel is the minimum skill a course expects.
type SkillLevel string

// Known skill levels.
const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Valid reports whether s is a known skill level.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// Course is a program offered by a bootcamp.
type Course struct {
	ID                   uuid.UUID  `json:"id"`
	BootcampID           uuid.UUID  `json:"bootcampId"`
	UserID               uuid.UUID  `json:"user"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Weeks                int        `json:"weeks"`
	Tuition              float64    `json:"tuition"`
	MinimumSkill         SkillLevel `json:"minimumSkill"`
	ScholarshipAvailable bool       `json:"scholarshipAvailable"`
	CreatedAt            time.Time  `json:"createdAt"`

	// Bootcamp is populated on list and detail reads.
	Bootcamp *BootcampSummary `json:"bootcamp,omitempty"`
}

// NewCourse creates a course of bootcampID authored by userID and validates it.
func NewCourse(bootcampID, userID uuid.UUID, c Course) (*Course, error) {
	c.ID = uuid.New()
	c.BootcampID = bootcampID
	c.UserID = userID
	c.Title = strings.TrimSpace(c.Title)
	c.CreatedAt = time.Now().UTC()
	c.Bootcamp = nil

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks if the Course has valid data.
func (c *Course) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if c.BootcampID == uuid.Nil {
		return NewValidationError("bootcamp", "cannot be empty", ErrInvalidID)
	}
	if c.UserID == uuid.Nil {
		return NewValidationError("user", "cannot be empty", ErrInvalidID)
	}
	if c.Title == "" {
		return NewValidationError("title", "is required", nil)
	}
	if strings.TrimSpace(c.Description) == "" {
		return NewValidationError("description", "is required", nil)
	}
	if c.Weeks <= 0 {
		return NewValidationError("weeks", "must be a positive number of weeks", nil)
	}
	if c.Tuition < 0 {
		return NewValidationError("tuition", "cannot be negative", nil)
	}
	if !c.MinimumSkill.Valid() {
		return NewValidationError("minimumSkill", "must be one of beginner, intermediate, advanced", nil)
	}
	return nil
}

// CourseChanges carries a partial update of a course. Nil fields are left untouched.
type CourseChanges struct {
	Title                *string
	Description          *string
	Weeks                *int
	Tuition              *float64
	MinimumSkill         *SkillLevel
	ScholarshipAvailable *bool
}

// Apply copies the non-nil fields onto c.
func (ch CourseChanges) Apply(c *Course) {
	if ch.Title != nil {
		c.Title = strings.TrimSpace(*ch.Title)
	}
	setString(&c.Description, ch.Description)
	if ch.Weeks != nil {
		c.Weeks = *ch.Weeks
	}
	if ch.Tuition != nil {
		c.Tuition = *ch.Tuition
	}
	if ch.MinimumSkill != nil {
		c.MinimumSkill = *ch.MinimumSkill
	}
	setBool(&c.ScholarshipAvailable, ch.ScholarshipAvailable)
}

// TuitionChanged reports whether applying ch alters the tuition of c.
func (ch CourseChanges) TuitionChanged(c *Course) bool {
	return ch.Tuition != nil && *ch.Tuition != c.Tuition
}

// AverageCost rounds the mean tuition up to the next multiple of ten.
// It returns nil when there are no tuitions.
func AverageCost(tuitions []float64) *float64 {
	if len(tuitions) == 0 {
		return nil
	}
	var sum float64
	for _, t := range tuitions {
		sum += t
	}
	rounded := math.Ceil(sum/float64(len(tuitions))/10) * 10
	return &rounded
}
