package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password length bounds. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// Role is the authorization role of a user.
type Role string

// Known roles.
const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePublisher, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered user of the directory.
type User struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Role                Role       `json:"role"`
	Password            string     `json:"-"` // Plaintext, only set while creating or changing the password
	HashedPassword      string     `json:"-"`
	ResetPasswordToken  string     `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// NewUser creates a new User with a fresh ID and creation timestamp.
// An empty role defaults to RoleUser.
//
// The caller is responsible for hashing the password before storing the user.
func NewUser(name, email, password string, role Role) (*User, error) {
	if role == "" {
		role = RoleUser
	}
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      role,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if strings.TrimSpace(u.Name) == "" {
		return NewValidationError("name", "is required", nil)
	}
	if !isEmail(u.Email) {
		return NewValidationError("email", "must be a valid email address", ErrInvalidEmail)
	}
	if !u.Role.Valid() {
		return NewValidationError("role", "must be one of user, publisher, admin", ErrInvalidRole)
	}

	// Existing users carry only the hash; a plaintext password is checked when present.
	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return NewValidationError("password", "must be at least 6 characters", ErrInvalidPassword)
		}
		if len(u.Password) > MaxPasswordLength {
			return NewValidationError("password", "must be at most 72 characters", ErrInvalidPassword)
		}
	} else if u.HashedPassword == "" {
		return NewValidationError("password", "is required", ErrInvalidPassword)
	}

	return nil
}

// ResetTokenValid reports whether the stored reset token is still usable at now.
func (u *User) ResetTokenValid(hashedToken string, now time.Time) bool {
	return u.ResetPasswordToken != "" &&
		u.ResetPasswordToken == hashedToken &&
		u.ResetPasswordExpire != nil &&
		now.Before(*u.ResetPasswordExpire)
}

// UserChanges carries a partial update of a user. Nil fields are left untouched.
type UserChanges struct {
	Name     *string
	Email    *string
	Role     *Role
	Password *string
}

// Apply copies the non-nil fields onto u.
func (c UserChanges) Apply(u *User) {
	if c.Name != nil {
		u.Name = strings.TrimSpace(*c.Name)
	}
	if c.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*c.Email))
	}
	if c.Role != nil {
		u.Role = *c.Role
	}
	if c.Password != nil {
		u.Password = *c.Password
	}
}
