package models

import (
	"time"
)

// UserRole is the privilege level stored on a user record. The zero value is a regular customer.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           string    `json:"_id" bson:"_id,omitempty" gorm:"primaryKey"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email" gorm:"uniqueIndex;not null"`
	PhotoURL     string    `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Role         UserRole  `json:"role,omitempty" bson:"role,omitempty"`
	PasswordHash string    `json:"-" bson:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
