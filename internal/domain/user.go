package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type NewUser struct {
	Name         string
	Username     string
	PasswordHash string
}

// Preference weight stored for artists picked explicitly in the app.
const PreferenceWeight = 260
