package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessLevel is the role tag controlling visibility and mutation scope.
type AccessLevel string

const (
	AccessUser    AccessLevel = "User"
	AccessManager AccessLevel = "Manager"
	AccessAdmin   AccessLevel = "Admin"
)

// AccessLevels lists every assignable level, least privileged first.
var AccessLevels = []AccessLevel{AccessUser, AccessManager, AccessAdmin}

// Valid reports whether a is one of the known access levels.
func (a AccessLevel) Valid() bool {
	for _, level := range AccessLevels {
		if a == level {
			return true
		}
	}
	return false
}

// Elevated reports whether a is above the least privileged tier. Unknown
// levels are never elevated.
func (a AccessLevel) Elevated() bool {
	return a == AccessManager || a == AccessAdmin
}

// User is an account; workers on worksheet logs are users too.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber  string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	PasswordHash string             `bson:"password" json:"-"`
	AccessLevel  AccessLevel        `bson:"accessLevel" json:"accessLevel"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// NewUser carries the fields of a registration request.
type NewUser struct {
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phoneNumber"`
	Password    string      `json:"password"`
	AccessLevel AccessLevel `json:"accessLevel"`
}

// UserProfile carries the editable profile fields of a user.
type UserProfile struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
}

// Caller is the authenticated identity a request acts on behalf of.
type Caller struct {
	ID          string
	AccessLevel AccessLevel
}

// Session is a login that can be revoked server side.
type Session struct {
	ID        string             `bson:"_id"`
	User      primitive.ObjectID `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt"`
}
