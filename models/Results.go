package models

import "time"

// Election result statuses
const (
	StatusOngoing   = "ongoing"
	StatusDeclared  = "declared"
	StatusCancelled = "cancelled"
)

// CandidateResult is the per-candidate snapshot inside the results aggregate.
// CandidateName is a copy taken when the entry is created, not a live
// reference, and votedByFlats exists for traceability and rejection reversal.
type CandidateResult struct {
	CandidateID    string    `json:"candidateId"`
	CandidateName  string    `json:"candidateName"`
	Position       string    `json:"position"`
	TotalVotes     int       `json:"totalVotes"`
	VotePercentage float64   `json:"votePercentage"`
	VotedByFlats   []string  `json:"votedByFlats"`
	CreatedAt      time.Time `json:"-"`
}

// VotingStatistics is the overall statistics block of the aggregate
type VotingStatistics struct {
	TotalVoters      int      `json:"totalVoters"`
	TotalFlats       int      `json:"totalFlats"`
	TotalVotesCast   int      `json:"totalVotesCast"`
	VotingPercentage float64  `json:"votingPercentage"`
	NonVotingFlats   []string `json:"nonVotingFlats"`
	RejectedVotes    int      `json:"rejectedVotes"`
}

// Results is the denormalized per-election projection combining all candidate
// tallies and voting statistics.
type Results struct {
	ID               string            `json:"id"`
	ElectionID       string            `json:"electionId"`
	CandidateResults []CandidateResult `json:"candidateResults"`
	VotingStatistics VotingStatistics  `json:"votingStatistics"`
	ElectionStatus   string            `json:"electionStatus"`
	DeclaredAt       *time.Time        `json:"declaredAt,omitempty"`
	CreatedAt        time.Time         `json:"createdAt,omitempty"`
	UpdatedAt        time.Time         `json:"updatedAt,omitempty"`
}
