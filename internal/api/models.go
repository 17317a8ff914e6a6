package api

import (
	"github.com/phrazzld/devcamper-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user publisher"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by every endpoint that signs a user in.
type TokenResponse struct {
	Success      bool   `json:"success"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// UpdateDetailsRequest changes the name or email of the signed-in user.
type UpdateDetailsRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UpdatePasswordRequest changes the password of the signed-in user.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=72"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// BootcampRequest is the body of bootcamp create and update requests.
// Absent fields are left untouched on update.
type BootcampRequest struct {
	Name          *string  `json:"name"          validate:"omitempty,max=50"`
	Description   *string  `json:"description"   validate:"omitempty,max=500"`
	Website       *string  `json:"website"       validate:"omitempty,url"`
	Phone         *string  `json:"phone"         validate:"omitempty,max=20"`
	Email         *string  `json:"email"         validate:"omitempty,email"`
	Address       *string  `json:"address"`
	Careers       []string `json:"careers"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"jobAssistance"`
	JobGuarantee  *bool    `json:"jobGuarantee"`
	AcceptGi      *bool    `json:"acceptGi"`
}

// ToBootcamp builds the bootcamp described by a create request.
func (r BootcampRequest) ToBootcamp() domain.Bootcamp {
	var b domain.Bootcamp
	r.ToChanges().Apply(&b)
	return b
}

// ToChanges builds the partial update described by an update request.
func (r BootcampRequest) ToChanges() domain.BootcampChanges {
	return domain.BootcampChanges{
		Name:          r.Name,
		Description:   r.Description,
		Website:       r.Website,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		Careers:       r.Careers,
		Housing:       r.Housing,
		JobAssistance: r.JobAssistance,
		JobGuarantee:  r.JobGuarantee,
		AcceptGi:      r.AcceptGi,
	}
}

// CourseRequest is the body of course create and update requests.
type CourseRequest struct {
	Title                *string  `json:"title"`
	Description          *string  `json:"description"`
	Weeks                *int     `json:"weeks"                validate:"omitempty,gt=0"`
	Tuition              *float64 `json:"tuition"              validate:"omitempty,gte=0"`
	MinimumSkill         *string  `json:"minimumSkill"         validate:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

// ToCourse builds the course described by a create request.
func (r CourseRequest) ToCourse() domain.Course {
	var c domain.Course
	r.ToChanges().Apply(&c)
	return c
}

// ToChanges builds the partial update described by an update request.
func (r CourseRequest) ToChanges() domain.CourseChanges {
	changes := domain.CourseChanges{
		Title:                r.Title,
		Description:          r.Description,
		Weeks:                r.Weeks,
		Tuition:              r.Tuition,
		ScholarshipAvailable: r.ScholarshipAvailable,
	}
	if r.MinimumSkill != nil {
		skill := domain.SkillLevel(*r.MinimumSkill)
		changes.MinimumSkill = &skill
	}
	return changes
}

// UserRequest is the body of the admin user create and update requests.
type UserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *string `json:"role"     validate:"omitempty,oneof=user publisher admin"`
}

// ToChanges builds the partial update described by the request.
func (r UserRequest) ToChanges() domain.UserChanges {
	changes := domain.UserChanges{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		changes.Role = &role
	}
	return changes
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
