package model

import "errors"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleDoctor Role = "DOCTOR"
)

// AuthUser is the authenticated actor for a session.
type AuthUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Credential is one entry in the registered-credentials list. The secret
// is stored as a bcrypt hash, never plaintext.
type Credential struct {
	ID           string `json:"id"`
	PasswordHash string `json:"password_hash"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
}

type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"required,oneof=ADMIN DOCTOR"`
}

type SignupRequest struct {
	ID              string `json:"id" binding:"required"`
	Password        string `json:"password" binding:"required,strongpassword"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	Name            string `json:"name"`
}

type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	User        AuthUser `json:"user"`
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateIdentity  = errors.New("registration ID already taken")
	ErrWeakPassword       = errors.New("password does not meet the security requirements")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)
