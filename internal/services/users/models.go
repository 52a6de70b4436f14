package users

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// SessionToken is one active session of a user.
type SessionToken struct {
	Token string `bson:"token" json:"token"`
}

// User is the account document stored in the "users" collection.
// PasswordHash and Tokens never leave the server.
type User struct {
	ID           bson.ObjectID  `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	Name         string         `bson:"name" json:"name" example:"Jane Doe"`
	Email        string         `bson:"email" json:"email" example:"jane@example.com"`
	PasswordHash string         `bson:"password" json:"-"`
	Age          *int           `bson:"age,omitempty" json:"age,omitempty" example:"31"`
	DOB          *time.Time     `bson:"dob,omitempty" json:"dob,omitempty" example:"1994-03-17T00:00:00Z"`
	Mobile       *string        `bson:"mobile,omitempty" json:"mobile,omitempty" example:"+15551234567"`
	Gender       *string        `bson:"gender,omitempty" json:"gender,omitempty" example:"female"`
	Tokens       []SessionToken `bson:"tokens" json:"-"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005Z"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005Z"`
}

// HasToken reports whether raw is one of the user's active session tokens.
func (u *User) HasToken(raw string) bool {
	for _, t := range u.Tokens {
		if t.Token == raw {
			return true
		}
	}
	return false
}

// Session is what the auth middleware resolves a bearer token to.
type Session struct {
	User  *User
	Token string
}

// SignUpRequest is the body of POST /users.
type SignUpRequest struct {
	Name     string  `json:"name" validate:"required,notblank,max=100" example:"Jane Doe"`
	Email    string  `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string  `json:"password" validate:"required,password" example:"Secret123"`
	Age      *int    `json:"age,omitempty" validate:"omitempty,min=0,max=150" example:"31"`
	DOB      *string `json:"dob,omitempty" validate:"omitempty,date" example:"1994-03-17"`
	Mobile   *string `json:"mobile,omitempty" validate:"omitempty,min=5,max=20" example:"+15551234567"`
	Gender   *string `json:"gender,omitempty" validate:"omitempty,oneof=male female other" example:"female"`
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required" example:"Secret123"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJfaWQiOiI2ODNjZGI4YWE5NmFkNzFlOGUwNzViZDEifQ.sig"`
}
