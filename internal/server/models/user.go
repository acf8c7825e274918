// Package models defines server-side data models persisted in the database.
package models

import "time"

type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	Confirmed    bool
	CreatedAt    time.Time
}

type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
