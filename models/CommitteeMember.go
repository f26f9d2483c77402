package models

import "time"

// CommitteeMember represents a member of the election committee
type CommitteeMember struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Position         string    `json:"position"` // Chief, Co-Chief or Member
	FlatNumber       string    `json:"flatNumber"`
	Wing             string    `json:"wing"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Image            string    `json:"image,omitempty"`
	Responsibilities string    `json:"responsibilities,omitempty"`
	ElectionID       string    `json:"electionId"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}
