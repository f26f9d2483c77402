package routes

import (
	"database/sql"
	"fmt"
	"math"

	"elections/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Tally helpers shared by the vote-cast and results handlers. Candidate
// counters and aggregate entries are only ever mutated through these, with
// atomic in-database increments.

// ValidateBallot checks a position -> candidate mapping against the election's
// position list. All problems are collected, not just the first.
func ValidateBallot(votes map[string]string, election *models.Election) []string {
	var errs []string
	if len(votes) == 0 {
		return []string{"At least one vote is required"}
	}
	for position, candidateID := range votes {
		if !election.HasPosition(position) {
			errs = append(errs, fmt.Sprintf("%s is not an elected position", position))
			continue
		}
		if candidateID == "" {
			errs = append(errs, fmt.Sprintf("No candidate selected for %s", position))
			continue
		}
		if uuid.Validate(candidateID) != nil {
			errs = append(errs, fmt.Sprintf("Invalid candidate ID for %s", position))
		}
	}
	return errs
}

// HasVoted reports whether a ballot already exists for (voter, election).
// This pre-check catches most double submissions; the unique constraint on
// ballots is the authoritative guard for the residual race.
func HasVoted(q queryer, voterID, electionID string) (bool, error) {
	var ballotID string
	err := q.QueryRow(`
		SELECT id FROM ballots WHERE voter_id = $1 AND election_id = $2
	`, voterID, electionID).Scan(&ballotID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertBallot persists a ballot and its per-position choices. A unique
// violation must be translated by the caller to the already-voted outcome.
func InsertBallot(tx *sql.Tx, ballot *models.Ballot) error {
	_, err := tx.Exec(`
		INSERT INTO ballots (id, voter_id, flat_number, election_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ballot.ID, ballot.VoterID, ballot.FlatNumber, ballot.ElectionID, ballot.CastAt)
	if err != nil {
		return err
	}

	for position, candidateID := range ballot.Choices {
		_, err = tx.Exec(`
			INSERT INTO ballot_choices (ballot_id, position, candidate_id)
			VALUES ($1, $2, $3)
		`, ballot.ID, position, candidateID)
		if err != nil {
			return err
		}
	}
	return nil
}

// EnsureResultsRow creates the per-election aggregate row if it is missing.
func EnsureResultsRow(q queryer, electionID string) error {
	_, err := q.Exec(`
		INSERT INTO results (id, election_id)
		VALUES ($1, $2)
		ON CONFLICT (election_id) DO NOTHING
	`, uuid.NewString(), electionID)
	return err
}

// ApplyChoice propagates a single (position, candidate) selection into the
// candidate counter and the results aggregate: candidate votes +1, entry
// total_votes +1, flat added to the entry's voted_by_flats set. When the
// candidate has no entry yet (added after the aggregate was seeded) a new one
// is created with a snapshot of the candidate name.
func ApplyChoice(tx *sql.Tx, electionID, flatNumber, position, candidateID string) error {
	if _, err := tx.Exec(`
		UPDATE candidates SET votes = votes + 1 WHERE id = $1
	`, candidateID); err != nil {
		return fmt.Errorf("incrementing candidate %s: %w", candidateID, err)
	}

	res, err := tx.Exec(`
		UPDATE result_entries
		SET total_votes = total_votes + 1,
		    voted_by_flats = CASE
		        WHEN $1 = ANY(voted_by_flats) THEN voted_by_flats
		        ELSE array_append(voted_by_flats, $1)
		    END
		WHERE election_id = $2 AND candidate_id = $3
	`, flatNumber, electionID, candidateID)
	if err != nil {
		return fmt.Errorf("updating result entry for %s: %w", candidateID, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		var candidateName string
		err := tx.QueryRow(`SELECT name FROM candidates WHERE id = $1`, candidateID).Scan(&candidateName)
		if err != nil {
			candidateName = "Unknown"
		}
		_, err = tx.Exec(`
			INSERT INTO result_entries (id, election_id, candidate_id, candidate_name, position, total_votes, voted_by_flats)
			VALUES ($1, $2, $3, $4, $5, 1, $6)
			ON CONFLICT (election_id, candidate_id) DO UPDATE
			SET total_votes = result_entries.total_votes + 1,
			    voted_by_flats = array_append(result_entries.voted_by_flats, $7)
		`, uuid.NewString(), electionID, candidateID, candidateName, position,
			pq.Array([]string{flatNumber}), flatNumber)
		if err != nil {
			return fmt.Errorf("inserting result entry for %s: %w", candidateID, err)
		}
	}
	return nil
}

// MarkVoted upserts the attendance record to voted=true. A record missing at
// this point (vote before an attendance call) is created on the spot, with
// the voter name backfilled.
func MarkVoted(tx *sql.Tx, voterID, flatNumber, voterName, electionID, ipAddress, userAgent string) error {
	_, err := tx.Exec(`
		INSERT INTO attendance (id, voter_id, flat_number, name, election_id, voted, vote_time, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), $6, $7)
		ON CONFLICT (voter_id, election_id) DO UPDATE
		SET voted = TRUE,
		    vote_time = NOW(),
		    flat_number = EXCLUDED.flat_number,
		    name = COALESCE(NULLIF(attendance.name, ''), EXCLUDED.name),
		    updated_at = NOW()
	`, uuid.NewString(), voterID, flatNumber, voterName, electionID, ipAddress, userAgent)
	return err
}

// Round2 rounds to two decimal places, the precision used for all reported
// percentages.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percentage returns numerator/denominator as a percentage rounded to two
// decimals, and 0 when the denominator is zero.
func Percentage(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return Round2(float64(numerator) / float64(denominator) * 100)
}
