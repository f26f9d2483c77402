package routes

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"elections/middleware"
	"elections/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SetupVoteRoutes registers the ballot-casting and vote-inspection routes.
func SetupVoteRoutes(router *gin.RouterGroup, db *sql.DB) {
	router.POST("/votes/cast", middleware.VerifyToken(), middleware.RequireVoter(), func(c *gin.Context) {
		castVote(c, db)
	})
	router.GET("/votes/status/:electionId", middleware.VerifyToken(), func(c *gin.Context) {
		checkVoterStatus(c, db)
	})

	admin := router.Group("/votes", middleware.VerifyToken(), middleware.RequireAdmin())
	admin.GET("/results/:electionId", func(c *gin.Context) { getVoteResults(c, db) })
	admin.GET("/position/:electionId/:position", func(c *gin.Context) { getVotesByPosition(c, db) })
}

// castVote accepts a ballot (one candidate choice per position), enforces
// single submission and fans the ballot out into candidate counters, the
// results aggregate and the attendance record. The whole effect is applied in
// one transaction; a duplicate-key failure on the ballot insert is reported
// as already-voted, never as a generic error.
func castVote(c *gin.Context, db *sql.DB) {
	voterID := c.GetString(middleware.ContextUserID)
	flatNumber := c.GetString(middleware.ContextFlatNumber)

	var request models.BallotRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Election ID and votes are required",
		})
		return
	}

	log.Printf("Vote casting started: voter=%s flat=%s election=%s", voterID, flatNumber, request.ElectionID)

	election, err := GetElection(db, request.ElectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Election not found"})
		} else {
			log.Printf("Error loading election %s: %v", request.ElectionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
		}
		return
	}

	status, err := getElectionStatus(db, request.ElectionID)
	if err != nil {
		log.Printf("Error loading election status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
		return
	}
	if !ballotWindowOpen(election, status, time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Voting is not open for this election",
		})
		return
	}

	if voteErrors := ValidateBallot(request.Votes, election); len(voteErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid vote data",
			"errors":  voteErrors,
		})
		return
	}

	// Fast pre-check; the unique constraint below still guards the race.
	voted, err := HasVoted(db, voterID, request.ElectionID)
	if err != nil {
		log.Printf("Error checking existing ballot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
		return
	}
	if voted {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":      false,
			"message":      "You have already voted in this election",
			"alreadyVoted": true,
		})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
		return
	}
	defer tx.Rollback()

	ballot := &models.Ballot{
		ID:         uuid.NewString(),
		VoterID:    voterID,
		FlatNumber: flatNumber,
		ElectionID: request.ElectionID,
		Choices:    request.Votes,
		CastAt:     time.Now(),
	}

	if err := InsertBallot(tx, ballot); err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":      false,
				"message":      "You have already voted in this election",
				"alreadyVoted": true,
			})
			return
		}
		log.Printf("Error saving ballot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
		return
	}
	log.Printf("Ballot saved: %s", ballot.ID)

	if err := EnsureResultsRow(tx, request.ElectionID); err != nil {
		log.Printf("Error ensuring results aggregate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
		return
	}

	for position, candidateID := range request.Votes {
		if err := ApplyChoice(tx, request.ElectionID, flatNumber, position, candidateID); err != nil {
			log.Printf("Error applying choice: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
			return
		}
	}

	// totalVotesCast counts ballots, not per-position selections.
	if _, err := tx.Exec(`
		UPDATE results SET total_votes_cast = total_votes_cast + 1, updated_at = NOW()
		WHERE election_id = $1
	`, request.ElectionID); err != nil {
		log.Printf("Error updating vote total: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
		return
	}

	voterName := models.GetVoterName(db, voterID)
	if err := MarkVoted(tx, voterID, flatNumber, voterName, request.ElectionID, c.ClientIP(), c.GetHeader("User-Agent")); err != nil {
		log.Printf("Error updating attendance: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Error committing vote: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record vote. Please try again."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Vote recorded successfully",
		"vote": gin.H{
			"id":         ballot.ID,
			"flatNumber": ballot.FlatNumber,
			"timestamp":  ballot.CastAt,
		},
	})
}

// checkVoterStatus returns whether the caller has voted, plus the attendance
// snapshot for the election.
func checkVoterStatus(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")
	voterID := c.GetString(middleware.ContextUserID)

	var castAt time.Time
	var flatNumber string
	hasVoted := true
	err := db.QueryRow(`
		SELECT cast_at, flat_number FROM ballots
		WHERE voter_id = $1 AND election_id = $2
	`, voterID, electionID).Scan(&castAt, &flatNumber)
	if err == sql.ErrNoRows {
		hasVoted = false
	} else if err != nil {
		log.Printf("Error checking voter status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to check voter status"})
		return
	}

	var vote gin.H
	if hasVoted {
		vote = gin.H{"timestamp": castAt, "flatNumber": flatNumber}
	}

	var attendance gin.H
	var voted bool
	var loginTime time.Time
	var voteTime sql.NullTime
	err = db.QueryRow(`
		SELECT voted, login_time, vote_time FROM attendance
		WHERE voter_id = $1 AND election_id = $2
	`, voterID, electionID).Scan(&voted, &loginTime, &voteTime)
	if err == nil {
		attendance = gin.H{"voted": voted, "loginTime": loginTime}
		if voteTime.Valid {
			attendance["voteTime"] = voteTime.Time
		}
	} else if err != sql.ErrNoRows {
		log.Printf("Error loading attendance for status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to check voter status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"hasVoted":   hasVoted,
		"vote":       vote,
		"attendance": attendance,
	})
}

// getVoteResults is the admin live view: candidates grouped by position with
// the current leader per position.
func getVoteResults(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")

	var totalVotes int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM ballots WHERE election_id = $1
	`, electionID).Scan(&totalVotes); err != nil {
		log.Printf("Error counting ballots: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch results"})
		return
	}

	rows, err := db.Query(`
		SELECT id, name, position, flat_number, wing, description, image, votes, election_id, created_at
		FROM candidates
		WHERE election_id = $1
		ORDER BY position, votes DESC, created_at
	`, electionID)
	if err != nil {
		log.Printf("Error fetching candidates for results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch results"})
		return
	}
	defer rows.Close()

	candidates, err := collectCandidates(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error scanning candidate: " + err.Error()})
		return
	}

	candidateResults := map[string][]models.Candidate{}
	positionLeaders := map[string]*models.Candidate{}
	for i := range candidates {
		candidate := candidates[i]
		candidateResults[candidate.Position] = append(candidateResults[candidate.Position], candidate)
		if _, ok := positionLeaders[candidate.Position]; !ok {
			positionLeaders[candidate.Position] = &candidates[i]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": gin.H{
			"totalVotes":       totalVotes,
			"candidateResults": candidateResults,
			"positionWinners":  positionLeaders,
		},
	})
}

// getVotesByPosition returns the leaderboard for one position.
func getVotesByPosition(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")
	position := c.Param("position")

	rows, err := db.Query(`
		SELECT id, name, position, flat_number, wing, description, image, votes, election_id, created_at
		FROM candidates
		WHERE election_id = $1 AND position = $2
		ORDER BY votes DESC, created_at
	`, electionID, position)
	if err != nil {
		log.Printf("Error fetching votes by position: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch votes"})
		return
	}
	defer rows.Close()

	candidates, err := collectCandidates(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error scanning candidate: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"position":   position,
		"count":      len(candidates),
		"candidates": candidates,
	})
}

// ballotWindowOpen reports whether an election currently accepts ballots.
// The flag must be set and the schedule phase must be ongoing; a configured
// date window that has not started yet closes the gate even when the flag
// is up.
func ballotWindowOpen(e *models.Election, resultStatus string, now time.Time) bool {
	return e.IsOpen && e.SchedulePhase(resultStatus, now) == models.PhaseOngoing
}

// getElectionStatus reads the aggregate's status; elections without an
// aggregate row count as ongoing.
func getElectionStatus(q queryer, electionID string) (string, error) {
	var status string
	err := q.QueryRow(`
		SELECT election_status FROM results WHERE election_id = $1
	`, electionID).Scan(&status)
	if err == sql.ErrNoRows {
		return models.StatusOngoing, nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}
