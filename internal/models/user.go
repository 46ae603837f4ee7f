package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         string    `json:"role"` // admin or technician
	TechnicianID *int      `json:"technician_id,omitempty"` // link to the technician record, nil for pure admins
	TOTPSecret   string    `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	IsActive     bool      `json:"is_active"` // true = active, false = paused/suspended
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication.
// When RequiresTOTP is set, Token is a short-lived pending token that
// must be exchanged via the TOTP verify endpoint.
type AuthResponse struct {
	Token        string `json:"token"`
	RequiresTOTP bool   `json:"requires_totp,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// TOTPVerifyRequest carries the second login step for admins with 2FA
type TOTPVerifyRequest struct {
	PendingToken string `json:"pending_token"`
	Code         string `json:"code"`
}

// TOTPSetupResponse returns the enrolment secret and QR image
type TOTPSetupResponse struct {
	Secret  string `json:"secret"`
	QRImage string `json:"qr_image"` // base64 PNG
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	TechnicianID *int   `json:"technician_id,omitempty"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password,omitempty"` // Optional
	Role         string `json:"role"`
	TechnicianID *int   `json:"technician_id,omitempty"`
}
