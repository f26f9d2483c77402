package routes

import (
	"testing"
	"time"

	"elections/models"

	"github.com/google/uuid"
)

func TestValidateBallot(t *testing.T) {
	election := &models.Election{Positions: models.DefaultPositions}
	validID := uuid.New().String()

	tests := []struct {
		name      string
		votes     map[string]string
		wantCount int
	}{
		{
			name:      "empty ballot",
			votes:     map[string]string{},
			wantCount: 1,
		},
		{
			name:      "valid single choice",
			votes:     map[string]string{"President": validID},
			wantCount: 0,
		},
		{
			name: "valid full ballot",
			votes: map[string]string{
				"President":         validID,
				"Vice President":    uuid.New().String(),
				"General Secretary": uuid.New().String(),
			},
			wantCount: 0,
		},
		{
			name:      "unknown position",
			votes:     map[string]string{"Treasurer": validID},
			wantCount: 1,
		},
		{
			name:      "missing candidate",
			votes:     map[string]string{"President": ""},
			wantCount: 1,
		},
		{
			name:      "malformed candidate id",
			votes:     map[string]string{"President": "not-a-uuid"},
			wantCount: 1,
		},
		{
			name: "multiple problems collected",
			votes: map[string]string{
				"Treasurer":      validID,
				"President":      "",
				"Vice President": "bogus",
			},
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateBallot(tt.votes, election)
			if len(errs) != tt.wantCount {
				t.Errorf("ValidateBallot() returned %d errors (%v), want %d", len(errs), errs, tt.wantCount)
			}
		})
	}
}

func TestBallotWindowOpen(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start := now.Add(-24 * time.Hour)
	end := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		election models.Election
		status   string
		want     bool
	}{
		{
			name:     "open inside the window",
			election: models.Election{IsOpen: true, StartDate: start, EndDate: end},
			status:   models.StatusOngoing,
			want:     true,
		},
		{
			name:     "flag up but window not started",
			election: models.Election{IsOpen: true, StartDate: now.Add(time.Hour), EndDate: end},
			status:   models.StatusOngoing,
			want:     false,
		},
		{
			name:     "flag up but window ended",
			election: models.Election{IsOpen: true, StartDate: start, EndDate: now.Add(-time.Hour)},
			status:   models.StatusOngoing,
			want:     false,
		},
		{
			name:     "flag down inside the window",
			election: models.Election{IsOpen: false, StartDate: start, EndDate: end},
			status:   models.StatusOngoing,
			want:     false,
		},
		{
			name:     "declared closes the gate",
			election: models.Election{IsOpen: true, StartDate: start, EndDate: end},
			status:   models.StatusDeclared,
			want:     false,
		},
		{
			name:     "cancelled closes the gate",
			election: models.Election{IsOpen: true, StartDate: start, EndDate: end},
			status:   models.StatusCancelled,
			want:     false,
		},
		{
			name:     "no window falls back to the flag",
			election: models.Election{IsOpen: true},
			status:   models.StatusOngoing,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ballotWindowOpen(&tt.election, tt.status, now); got != tt.want {
				t.Errorf("ballotWindowOpen() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		numerator   int
		denominator int
		want        float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 105, 0},
		{105, 105, 100},
		{45, 105, 42.86},
		{1, 3, 33.33},
		{2, 3, 66.67},
	}

	for _, tt := range tests {
		if got := Percentage(tt.numerator, tt.denominator); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %v, want %v", tt.numerator, tt.denominator, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(42.857142); got != 42.86 {
		t.Errorf("Round2(42.857142) = %v, want 42.86", got)
	}
	if got := Round2(10.124); got != 10.12 {
		t.Errorf("Round2(10.124) = %v, want 10.12", got)
	}
}
