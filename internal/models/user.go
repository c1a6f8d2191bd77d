package models

import "time"

// User represents a registered account
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest represents the registration form
type RegisterRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// ResetPasswordRequest represents the forgot-password form
type ResetPasswordRequest struct {
	Username    string `form:"username" validate:"required"`
	NewPassword string `form:"new_password" validate:"required"`
}
