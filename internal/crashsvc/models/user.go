package models

import (
	"time"
)

// User represents the users table in the database.
type User struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
