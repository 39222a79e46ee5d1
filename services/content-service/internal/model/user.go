package model

import (
	"errors"
	"time"
)

// User represents a registered author.
type User struct {
	ID           string    `bson:"id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// Validate checks the invariants every stored user must satisfy.
func (u *User) Validate() error {
	switch {
	case u.ID == "":
		return errors.New("user id is required")
	case u.Username == "":
		return errors.New("username is required")
	case u.Email == "":
		return errors.New("email is required")
	case u.PasswordHash == "":
		return errors.New("password hash is required")
	}
	return nil
}
