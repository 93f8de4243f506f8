package model

import "time"

// Role classifies what a user is allowed to do. The set is closed;
// values outside it grant nothing.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleReadOnly Role = "read-only"
)

// Action is a capability checked against a Role.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
	ActionAdmin Action = "admin"
)

// Permits reports whether the role allows the action. It is total over
// all inputs: an unknown role denies every action.
func (r Role) Permits(a Action) bool {
	switch r {
	case RoleAdmin:
		return a == ActionRead || a == ActionWrite || a == ActionAdmin
	case RoleUser:
		return a == ActionRead || a == ActionWrite
	case RoleReadOnly:
		return a == ActionRead
	default:
		return false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleReadOnly:
		return true
	}
	return false
}

// User represents a user in the database. PasswordHash never leaves the
// repository and service layers.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the projection of the user that is safe to serialize.
func (u *User) Public() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Principal is the authenticated identity attached to a request after
// token verification.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// RegisterRequest represents a registration request body.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginRequest represents a login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a freshly issued token and the public user projection.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// FieldError is one per-field entry in the details of a validation
// failure response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
