package models

import "time"

// DefaultPositions is the fixed set of elected positions.
var DefaultPositions = []string{
	"President",
	"Vice President",
	"General Secretary",
	"Joint Secretary",
	"Finance Secretary",
}

// Schedule phases derived from election state
const (
	PhaseNotStarted = "not_started"
	PhaseOngoing    = "ongoing"
	PhaseEnded      = "ended"
	PhaseDeclared   = "declared"
	PhaseCancelled  = "cancelled"
)

// Election holds election metadata and schedule
type Election struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	IsOpen          bool      `json:"is_open"`
	AutoOpenEnabled bool      `json:"auto_open_enabled"`
	SocietyName     string    `json:"society_name,omitempty"`
	Positions       []string  `json:"positions"`
	TotalFlatsWingA int       `json:"total_flats_wing_a"`
	TotalFlatsWingB int       `json:"total_flats_wing_b"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// HasPosition reports whether the position is part of this election.
func (e *Election) HasPosition(position string) bool {
	for _, p := range e.Positions {
		if p == position {
			return true
		}
	}
	return false
}

// SchedulePhase derives the election phase. An explicit declared or cancelled
// result status takes precedence; otherwise the date window decides; with no
// window configured the is_open flag is the only signal.
func (e *Election) SchedulePhase(resultStatus string, now time.Time) string {
	switch resultStatus {
	case StatusDeclared:
		return PhaseDeclared
	case StatusCancelled:
		return PhaseCancelled
	}

	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		if e.IsOpen {
			return PhaseOngoing
		}
		return PhaseNotStarted
	}

	switch {
	case now.Before(e.StartDate):
		return PhaseNotStarted
	case now.After(e.EndDate):
		return PhaseEnded
	default:
		return PhaseOngoing
	}
}
