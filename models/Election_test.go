package models

import (
	"testing"
	"time"
)

func TestHasPosition(t *testing.T) {
	election := &Election{Positions: DefaultPositions}

	if !election.HasPosition("President") {
		t.Error("expected President to be an elected position")
	}
	if election.HasPosition("Treasurer") {
		t.Error("did not expect Treasurer to be an elected position")
	}
	if election.HasPosition("") {
		t.Error("did not expect empty position to match")
	}
}

func TestSchedulePhase(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start := now.Add(-24 * time.Hour)
	end := now.Add(24 * time.Hour)

	tests := []struct {
		name         string
		election     Election
		resultStatus string
		want         string
	}{
		{
			name:         "declared status wins over open window",
			election:     Election{StartDate: start, EndDate: end, IsOpen: true},
			resultStatus: StatusDeclared,
			want:         PhaseDeclared,
		},
		{
			name:         "cancelled status wins over open window",
			election:     Election{StartDate: start, EndDate: end, IsOpen: true},
			resultStatus: StatusCancelled,
			want:         PhaseCancelled,
		},
		{
			name:         "before the window",
			election:     Election{StartDate: now.Add(time.Hour), EndDate: end},
			resultStatus: StatusOngoing,
			want:         PhaseNotStarted,
		},
		{
			name:         "inside the window",
			election:     Election{StartDate: start, EndDate: end},
			resultStatus: StatusOngoing,
			want:         PhaseOngoing,
		},
		{
			name:         "after the window",
			election:     Election{StartDate: start, EndDate: now.Add(-time.Hour)},
			resultStatus: StatusOngoing,
			want:         PhaseEnded,
		},
		{
			name:         "no window, open flag set",
			election:     Election{IsOpen: true},
			resultStatus: StatusOngoing,
			want:         PhaseOngoing,
		},
		{
			name:         "no window, closed",
			election:     Election{},
			resultStatus: StatusOngoing,
			want:         PhaseNotStarted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.election.SchedulePhase(tt.resultStatus, now)
			if got != tt.want {
				t.Errorf("SchedulePhase() = %q, want %q", got, tt.want)
			}
		})
	}
}
