package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole distinguishes the two account kinds.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

// JWTClaims is the access-token payload. For students, Class and Semester
// feed the page-access policy; both are empty for teachers.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Name     string   `json:"name"`
	Class    string   `json:"class,omitempty"`
	Semester *int     `json:"semester,omitempty"`
	jwt.RegisteredClaims
}

// StudentLoginRequest authenticates by roll UID plus registered email.
type StudentLoginRequest struct {
	UID   string `json:"uid" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// TeacherLoginRequest authenticates by email and password.
type TeacherLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and signed-in profile.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	IssuedAt    time.Time   `json:"issued_at"`
	Role        UserRole    `json:"role"`
	Profile     interface{} `json:"profile"`
}
