package models

import "time"

// Candidate represents a candidate standing for one position in an election.
// The votes counter is mutated only by the tally engine.
type Candidate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Position    string    `json:"position"`
	FlatNumber  string    `json:"flatNumber,omitempty"`
	Wing        string    `json:"wing,omitempty"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Votes       int       `json:"votes"`
	ElectionID  string    `json:"electionId"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// CandidateRequest is used for creating or updating a candidate
type CandidateRequest struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	FlatNumber  string `json:"flatNumber"`
	Wing        string `json:"wing"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ElectionID  string `json:"electionId"`
}
