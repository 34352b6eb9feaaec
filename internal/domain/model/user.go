package model

import (
	"time"
)

type User struct {
	ID             string    `json:"id" bson:"_id"`
	Username       string    `json:"username" bson:"username"`
	Email          string    `json:"email" bson:"email"`
	HashedPassword string    `json:"-" bson:"hashed_password"` // Not exposed
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updated_at"`
}

// Public returns a copy of the user without the password hash.
func (u User) Public() *User {
	u.HashedPassword = ""
	return &u
}

// Author is the public projection of a user embedded in recipe responses.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Author() *Author {
	return &Author{ID: u.ID, Username: u.Username, Email: u.Email}
}
