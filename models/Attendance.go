package models

import "time"

// Attendance is the per-(voter, election) login and voting record. The unique
// key on (voter_id, election_id) makes login recording idempotent.
type Attendance struct {
	ID         string     `json:"id"`
	VoterID    string     `json:"voter_id"`
	FlatNumber string     `json:"flat_number"`
	Name       string     `json:"name"`
	ElectionID string     `json:"election_id"`
	LoginTime  time.Time  `json:"login_time"`
	VoteTime   *time.Time `json:"vote_time,omitempty"`
	Voted      bool       `json:"voted"`
	Rejected   bool       `json:"rejected,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
	IPAddress  string     `json:"-"`
	UserAgent  string     `json:"-"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

// AttendanceReport is the admin-facing aggregate over attendance records
type AttendanceReport struct {
	TotalRegistered    int          `json:"totalRegistered"`
	TotalPresent       int          `json:"totalPresent"`
	TotalVoted         int          `json:"totalVoted"`
	PresentButNotVoted int          `json:"presentButNotVoted"`
	VotingPercentage   float64      `json:"votingPercentage"`
	AttendanceList     []Attendance `json:"attendanceList"`
}
