package models

import "time"

// Ballot is the single per-(voter, election) record of candidate choices.
// Immutable once cast except for deletion during vote rejection.
type Ballot struct {
	ID         string            `json:"id"`
	VoterID    string            `json:"voter_id"`
	FlatNumber string            `json:"flat_number"`
	ElectionID string            `json:"election_id"`
	Choices    map[string]string `json:"votes"` // position -> candidate id
	CastAt     time.Time         `json:"timestamp"`
}

// BallotRequest is the vote-cast payload received from clients
type BallotRequest struct {
	ElectionID string            `json:"electionId" binding:"required"`
	Votes      map[string]string `json:"votes" binding:"required"`
}
