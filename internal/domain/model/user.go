package model

import "time"

// User carries the profile fields the backend needs for scheduling and
// localization. Account lifecycle (registration, OTP, auth issuance) is
// handled by an external collaborator.
type User struct {
	ID        string    `json:"id"`
	Timezone  string    `json:"timezone,omitempty"` // IANA name; empty means UTC
	Language  string    `json:"language,omitempty"` // ru|en
	CreatedAt time.Time `json:"created_at"`
}

// Location resolves the user's timezone, falling back to UTC on anything
// unknown.
func (u *User) Location() *time.Location {
	name := "UTC"
	if u != nil && u.Timezone != "" {
		name = u.Timezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
