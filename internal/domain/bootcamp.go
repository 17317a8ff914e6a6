package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Bootcamp field limits.
const (
	MaxBootcampNameLength        = 50
	MaxBootcampDescriptionLength = 500
	MaxPhoneLength               = 20
	MinAverageRating             = 1
	MaxAverageRating             = 10
	DefaultPhoto                 = "no-photo.jpg"
)

// Careers lists the career tracks a bootcamp may advertise.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// Location is the geocoded address of a bootcamp.
type Location struct {
	Longitude        *float64 `json:"longitude,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	FormattedAddress string   `json:"formattedAddress,omitempty"`
	Street           string   `json:"street,omitempty"`
	City             string   `json:"city,omitempty"`
	State            string   `json:"state,omitempty"`
	Zipcode          string   `json:"zipcode,omitempty"`
	Country          string   `json:"country,omitempty"`
}

// HasCoordinates reports whether the location was geocoded.
func (l Location) HasCoordinates() bool {
	return l.Longitude != nil && l.Latitude != nil
}

// Bootcamp is a training provider listed in the directory.
type Bootcamp struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address"`
	Location      Location  `json:"location"`
	Careers       []string  `json:"careers"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	AverageCost   *float64  `json:"averageCost,omitempty"`
	Photo         string    `json:"photo"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	CreatedAt     time.Time `json:"createdAt"`

	// Courses is populated by list and detail reads; it is not stored on the row.
	Courses []*Course `json:"courses,omitempty"`
}

// BootcampSummary is the reduced bootcamp view embedded in course responses.
type BootcampSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// NewBootcamp creates a Bootcamp owned by userID with a fresh ID, slug and
// creation timestamp, and validates it.
func NewBootcamp(userID uuid.UUID, b Bootcamp) (*Bootcamp, error) {
	b.ID = uuid.New()
	b.UserID = userID
	b.CreatedAt = time.Now().UTC()
	b.Courses = nil
	b.Normalize()

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Normalize trims text fields, fills defaults and regenerates the slug.
func (b *Bootcamp) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
	b.Address = strings.TrimSpace(b.Address)
	b.Slug = slug.Make(b.Name)
	if b.Photo == "" {
		b.Photo = DefaultPhoto
	}
}

// Summary returns the reduced view of the bootcamp.
func (b *Bootcamp) Summary() *BootcampSummary {
	return &BootcampSummary{ID: b.ID, Name: b.Name, Description: b.Description}
}

// OwnedBy reports whether userID owns the bootcamp.
func (b *Bootcamp) OwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// Validate checks if the Bootcamp has valid data.
func (b *Bootcamp) Validate() error {
	if b.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if b.UserID == uuid.Nil {
		return NewValidationError("user", "cannot be empty", ErrInvalidID)
	}
	if b.Name == "" {
		return NewValidationError("name", "is required", nil)
	}
	if len(b.Name) > MaxBootcampNameLength {
		return NewValidationError("name", "can not be more than 50 characters", nil)
	}
	if strings.TrimSpace(b.Description) == "" {
		return NewValidationError("description", "is required", nil)
	}
	if len(b.Description) > MaxBootcampDescriptionLength {
		return NewValidationError("description", "can not be more than 500 characters", nil)
	}
	if b.Website != "" && !isURL(b.Website) {
		return NewValidationError("website", "must be a valid URL with HTTP or HTTPS", nil)
	}
	if len(b.Phone) > MaxPhoneLength {
		return NewValidationError("phone", "can not be longer than 20 characters", nil)
	}
	if b.Email != "" && !isEmail(b.Email) {
		return NewValidationError("email", "must be a valid email address", ErrInvalidEmail)
	}
	if b.Address == "" {
		return NewValidationError("address", "is required", nil)
	}
	if len(b.Careers) == 0 {
		return NewValidationError("careers", "must list at least one career", nil)
	}
	for _, career := range b.Careers {
		if !slices.Contains(Careers, career) {
			return NewValidationError("careers", "contains unknown career "+career, nil)
		}
	}
	if b.AverageRating != nil &&
		(*b.AverageRating < MinAverageRating || *b.AverageRating > MaxAverageRating) {
		return NewValidationError("averageRating", "must be between 1 and 10", nil)
	}
	return nil
}

// BootcampChanges carries a partial update of a bootcamp. Nil fields are left untouched.
type BootcampChanges struct {
	Name          *string
	Description   *string
	Website       *string
	Phone         *string
	Email         *string
	Address       *string
	Careers       []string
	Housing       *bool
	JobAssistance *bool
	JobGuarantee  *bool
	AcceptGi      *bool
}

// AddressChanged reports whether applying c would move the bootcamp.
func (c BootcampChanges) AddressChanged(b *Bootcamp) bool {
	return c.Address != nil && strings.TrimSpace(*c.Address) != b.Address
}

// Apply copies the non-nil fields onto b and re-normalizes it.
func (c BootcampChanges) Apply(b *Bootcamp) {
	setString(&b.Name, c.Name)
	setString(&b.Description, c.Description)
	setString(&b.Website, c.Website)
	setString(&b.Phone, c.Phone)
	setString(&b.Email, c.Email)
	setString(&b.Address, c.Address)
	if c.Careers != nil {
		b.Careers = c.Careers
	}
	setBool(&b.Housing, c.Housing)
	setBool(&b.JobAssistance, c.JobAssistance)
	setBool(&b.JobGuarantee, c.JobGuarantee)
	setBool(&b.AcceptGi, c.AcceptGi)
	b.Normalize()
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
