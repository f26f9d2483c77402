package models

import (
	"database/sql"
	"time"
)

// Voter represents a resident account, one per flat
type Voter struct {
	ID          string    `json:"id"`
	FlatNumber  string    `json:"flat_number"`
	Name        string    `json:"name"`
	Password    string    `json:"-"`
	Wing        string    `json:"wing"`
	FloorNumber int       `json:"floor_number,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	DeviceToken string    `json:"-"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// GetVoterName returns the voter's name, or "Unknown" if the voter is missing.
// Used to backfill the denormalized name on attendance records.
func GetVoterName(db *sql.DB, voterID string) string {
	var name string
	err := db.QueryRow("SELECT name FROM voters WHERE id = $1", voterID).Scan(&name)
	if err != nil {
		return "Unknown"
	}
	return name
}
