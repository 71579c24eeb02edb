package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a staff member allowed to operate the admin endpoints.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// JWTClaims are the claims embedded in staff access tokens.
type JWTClaims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionResponse returns the authenticated user and the issued token.
type SessionResponse struct {
	User  SessionUser `json:"user"`
	Token string      `json:"token"`
}

// SessionUser is the user projection returned on login.
type SessionUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
