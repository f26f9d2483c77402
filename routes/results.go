package routes

import (
	"database/sql"
	"log"
	"net/http"
	"sort"
	"time"

	"elections/config"
	"elections/middleware"
	"elections/models"
	"elections/notifications"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// SetupResultsRoutes registers the results projection routes and the admin
// declare / reject-votes workflow.
func SetupResultsRoutes(router *gin.RouterGroup, db *sql.DB) {
	router.GET("/results/:electionId", func(c *gin.Context) { getCurrentResults(c, db) })
	router.GET("/results/:electionId/finalized", func(c *gin.Context) { getFinalizedResults(c, db) })
	router.GET("/results/:electionId/position/:position", func(c *gin.Context) { getResultsByPosition(c, db) })
	router.GET("/results/:electionId/schedule-status", func(c *gin.Context) { getScheduleStatus(c, db) })

	admin := router.Group("/results", middleware.VerifyToken(), middleware.RequireAdmin())
	admin.POST("/:electionId/declare", func(c *gin.Context) { declareResults(c, db) })
	admin.POST("/:electionId/reject-votes", func(c *gin.Context) { rejectVotes(c, db) })
}

// loadResults reads the aggregate row and its entries. Entries come back in
// creation order. Returns sql.ErrNoRows when no aggregate exists.
func loadResults(q queryer, electionID string) (*models.Results, error) {
	var r models.Results
	var declaredAt sql.NullTime
	err := q.QueryRow(`
		SELECT id, election_id, election_status, declared_at, total_voters, total_flats,
		       total_votes_cast, voting_percentage, non_voting_flats, rejected_votes,
		       created_at, updated_at
		FROM results
		WHERE election_id = $1
	`, electionID).Scan(
		&r.ID, &r.ElectionID, &r.ElectionStatus, &declaredAt,
		&r.VotingStatistics.TotalVoters, &r.VotingStatistics.TotalFlats,
		&r.VotingStatistics.TotalVotesCast, &r.VotingStatistics.VotingPercentage,
		pq.Array(&r.VotingStatistics.NonVotingFlats), &r.VotingStatistics.RejectedVotes,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if declaredAt.Valid {
		r.DeclaredAt = &declaredAt.Time
	}

	rows, err := q.Query(`
		SELECT candidate_id, candidate_name, position, total_votes, vote_percentage,
		       voted_by_flats, created_at
		FROM result_entries
		WHERE election_id = $1
		ORDER BY created_at
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	r.CandidateResults = []models.CandidateResult{}
	for rows.Next() {
		var entry models.CandidateResult
		if err := rows.Scan(&entry.CandidateID, &entry.CandidateName, &entry.Position,
			&entry.TotalVotes, &entry.VotePercentage, pq.Array(&entry.VotedByFlats),
			&entry.CreatedAt); err != nil {
			return nil, err
		}
		r.CandidateResults = append(r.CandidateResults, entry)
	}
	return &r, rows.Err()
}

// getCurrentResults returns the live aggregate without any gating on the
// declared status.
func getCurrentResults(c *gin.Context, db *sql.DB) {
	results, err := loadResults(db, c.Param("electionId"))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "No results found for this election",
			})
		} else {
			log.Printf("Error fetching results: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch results"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
		"status":  results.ElectionStatus,
	})
}

// declareResults freezes the aggregate: recomputes the statistics block,
// recomputes per-candidate percentages, marks the aggregate declared and
// locks the election against further voting. Requires an existing aggregate,
// even if it holds no candidates or votes.
func declareResults(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	if _, err := loadResults(tx, electionID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "No results found"})
		} else {
			log.Printf("Error loading results for declare: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to declare results"})
		}
		return
	}

	allFlats, err := queryFlatNumbers(tx, "SELECT flat_number FROM voters ORDER BY flat_number")
	if err != nil {
		log.Printf("Error loading voters for declare: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to declare results"})
		return
	}
	votedFlats, err := queryFlatNumbers(tx,
		"SELECT flat_number FROM attendance WHERE election_id = $1 AND voted = TRUE", electionID)
	if err != nil {
		log.Printf("Error loading attendance for declare: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to declare results"})
		return
	}

	totalVoters := len(allFlats)
	totalFlats := totalVoters
	if totalFlats == 0 {
		totalFlats = config.FallbackTotalFlats
	}
	votersWhoVoted := len(votedFlats)
	votingPercentage := Percentage(votersWhoVoted, totalFlats)
	nonVotingFlats := ComputeNonVotingFlats(allFlats, votedFlats)

	// Per-candidate share of the votes actually cast.
	_, err = tx.Exec(`
		UPDATE result_entries
		SET vote_percentage = CASE
		    WHEN $1 = 0 THEN 0
		    ELSE ROUND((total_votes * 100.0 / $1)::numeric, 2)
		END
		WHERE election_id = $2
	`, votersWhoVoted, electionID)
	if err != nil {
		log.Printf("Error updating candidate percentages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to declare results"})
		return
	}

	// rejected_votes is deliberately left untouched.
	_, err = tx.Exec(`
		UPDATE results
		SET total_voters = $1,
		    total_flats = $2,
		    total_votes_cast = $3,
		    voting_percentage = $4,
		    non_voting_flats = $5,
		    election_status = $6,
		    declared_at = NOW(),
		    updated_at = NOW()
		WHERE election_id = $7
	`, totalVoters, totalFlats, votersWhoVoted, votingPercentage,
		pq.Array(nonVotingFlats), models.StatusDeclared, electionID)
	if err != nil {
		log.Printf("Error writing declared statistics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to declare results"})
		return
	}

	if err := LockElection(tx, electionID); err != nil {
		log.Printf("Error locking election on declare: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to declare results"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to commit transaction"})
		return
	}

	results, err := loadResults(db, electionID)
	if err != nil {
		log.Printf("Error reloading declared results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to declare results"})
		return
	}

	go notifications.NotifyRegisteredDevices(db, "Results declared",
		"The society election results have been declared.", electionID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Results declared successfully",
		"results": results,
		"statistics": gin.H{
			"totalFlats":       totalFlats,
			"totalVotesCast":   votersWhoVoted,
			"votingPercentage": votingPercentage,
			"nonVotingCount":   len(nonVotingFlats),
			"nonVotingFlats":   nonVotingFlats,
		},
	})
}

// rejectVotes is the compensating transaction: it deletes the ballots cast by
// the given flats, resets their attendance and reverses every tally those
// ballots produced. rejectedVotes counts ballots while candidate impact counts
// per-position selections; the two intentionally use different units.
func rejectVotes(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")

	var request struct {
		Flats          []string `json:"flats"`
		CancelElection *bool    `json:"cancelElection"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || len(request.Flats) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "A non-empty list of flats is required",
		})
		return
	}
	cancelElection := request.CancelElection == nil || *request.CancelElection

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT b.id, b.flat_number, bc.candidate_id
		FROM ballots b
		JOIN ballot_choices bc ON bc.ballot_id = b.id
		WHERE b.election_id = $1 AND b.flat_number = ANY($2)
	`, electionID, pq.Array(request.Flats))
	if err != nil {
		log.Printf("Error loading ballots for rejection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reject votes"})
		return
	}

	ballotIDs := map[string]bool{}
	impact := map[string]int{}
	rejectedFlats := map[string]bool{}
	for rows.Next() {
		var ballotID, flatNumber, candidateID string
		if err := rows.Scan(&ballotID, &flatNumber, &candidateID); err != nil {
			rows.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error scanning ballot: " + err.Error()})
			return
		}
		ballotIDs[ballotID] = true
		impact[candidateID]++
		rejectedFlats[flatNumber] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reject votes"})
		return
	}

	if len(ballotIDs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "No ballots found for the given flats",
		})
		return
	}
	rejectedCount := len(ballotIDs)

	// Ballot choices go with the ballots via ON DELETE CASCADE.
	if _, err := tx.Exec(`
		DELETE FROM ballots WHERE election_id = $1 AND flat_number = ANY($2)
	`, electionID, pq.Array(request.Flats)); err != nil {
		log.Printf("Error deleting rejected ballots: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reject votes"})
		return
	}

	if _, err := tx.Exec(`
		UPDATE attendance
		SET voted = FALSE, vote_time = NULL, rejected = TRUE, rejected_at = NOW(), updated_at = NOW()
		WHERE election_id = $1 AND flat_number = ANY($2)
	`, electionID, pq.Array(request.Flats)); err != nil {
		log.Printf("Error resetting attendance for rejection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reject votes"})
		return
	}

	for candidateID, count := range impact {
		if _, err := tx.Exec(`
			UPDATE candidates SET votes = GREATEST(votes - $1, 0) WHERE id = $2
		`, count, candidateID); err != nil {
			log.Printf("Error decrementing candidate %s: %v", candidateID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reject votes"})
			return
		}
		if _, err := tx.Exec(`
			UPDATE result_entries
			SET total_votes = GREATEST(total_votes - $1, 0),
			    voted_by_flats = (
			        SELECT COALESCE(array_agg(f), '{}'::text[])
			        FROM unnest(voted_by_flats) AS f
			        WHERE f <> ALL($2)
			    )
			WHERE election_id = $3 AND candidate_id = $4
		`, count, pq.Array(request.Flats), electionID, candidateID); err != nil {
			log.Printf("Error reversing result entry for %s: %v", candidateID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reject votes"})
			return
		}
	}

	statusUpdate := `
		UPDATE results
		SET total_votes_cast = GREATEST(total_votes_cast - $1, 0),
		    rejected_votes = rejected_votes + $1,
		    updated_at = NOW()
		WHERE election_id = $2
	`
	if cancelElection {
		statusUpdate = `
		UPDATE results
		SET total_votes_cast = GREATEST(total_votes_cast - $1, 0),
		    rejected_votes = rejected_votes + $1,
		    election_status = 'cancelled',
		    updated_at = NOW()
		WHERE election_id = $2
	`
	}
	if _, err := tx.Exec(statusUpdate, rejectedCount, electionID); err != nil {
		log.Printf("Error updating aggregate statistics for rejection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reject votes"})
		return
	}

	if cancelElection {
		if err := LockElection(tx, electionID); err != nil {
			log.Printf("Error locking election on rejection: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reject votes"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to commit transaction"})
		return
	}

	flats := make([]string, 0, len(rejectedFlats))
	for flat := range rejectedFlats {
		flats = append(flats, flat)
	}
	sort.Strings(flats)

	results, err := loadResults(db, electionID)
	if err != nil {
		log.Printf("Error reloading results after rejection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reject votes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Votes rejected successfully",
		"status":        results.ElectionStatus,
		"statistics":    results.VotingStatistics,
		"rejectedFlats": flats,
		"rejectedCount": rejectedCount,
	})
}

// getFinalizedResults returns the frozen view with winner/loser grouping.
// Only available once results are declared or the election is cancelled.
func getFinalizedResults(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")

	results, err := loadResults(db, electionID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "Results have not been declared yet"})
		} else {
			log.Printf("Error fetching finalized results: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch results"})
		}
		return
	}
	if results.ElectionStatus != models.StatusDeclared && results.ElectionStatus != models.StatusCancelled {
		c.JSON(http.StatusNotFound, gin.H{"message": "Results have not been declared yet"})
		return
	}

	sorted := RankCandidateResults(results.CandidateResults)
	winners, losers := SplitWinnersLosers(sorted)

	statistics := results.VotingStatistics
	if statistics.TotalFlats == 0 {
		statistics.TotalFlats = config.FallbackTotalFlats
	}

	summaries := func(entries []models.CandidateResult) []gin.H {
		out := make([]gin.H, 0, len(entries))
		for _, e := range entries {
			out = append(out, gin.H{
				"candidateName":  e.CandidateName,
				"position":       e.Position,
				"totalVotes":     e.TotalVotes,
				"votePercentage": e.VotePercentage,
				"votedBy":        e.VotedByFlats,
			})
		}
		return out
	}

	allCandidates := make([]gin.H, 0, len(sorted))
	for _, e := range sorted {
		allCandidates = append(allCandidates, gin.H{
			"candidateName":  e.CandidateName,
			"position":       e.Position,
			"totalVotes":     e.TotalVotes,
			"votePercentage": e.VotePercentage,
			"votedByCount":   len(e.VotedByFlats),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": gin.H{
			"statistics":    statistics,
			"winners":       summaries(winners),
			"losers":        summaries(losers),
			"allCandidates": allCandidates,
			"declaredAt":    results.DeclaredAt,
		},
	})
}

func getResultsByPosition(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")
	position := c.Param("position")

	results, err := loadResults(db, electionID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "No results found"})
		} else {
			log.Printf("Error fetching results by position: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch results"})
		}
		return
	}

	positionResults := []models.CandidateResult{}
	for _, entry := range results.CandidateResults {
		if entry.Position == position {
			positionResults = append(positionResults, entry)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"position":   position,
		"statistics": results.VotingStatistics,
		"candidates": positionResults,
	})
}

// getScheduleStatus derives the election phase from the declared/cancelled
// status and the schedule window.
func getScheduleStatus(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")

	election, err := GetElection(db, electionID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "Election not found"})
		} else {
			log.Printf("Error fetching election for schedule status: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch schedule status"})
		}
		return
	}

	status, err := getElectionStatus(db, electionID)
	if err != nil {
		log.Printf("Error fetching election status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch schedule status"})
		return
	}

	var declaredAt *time.Time
	if results, err := loadResults(db, electionID); err == nil {
		declaredAt = results.DeclaredAt
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"phase":      election.SchedulePhase(status, time.Now()),
		"isOpen":     election.IsOpen,
		"startDate":  election.StartDate,
		"endDate":    election.EndDate,
		"declaredAt": declaredAt,
	})
}

// RankCandidateResults orders entries by votes descending. Ties go to the
// earlier-created entry, then to the lower candidate id, so the winner split
// is deterministic.
func RankCandidateResults(entries []models.CandidateResult) []models.CandidateResult {
	sorted := make([]models.CandidateResult, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalVotes != sorted[j].TotalVotes {
			return sorted[i].TotalVotes > sorted[j].TotalVotes
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].CandidateID < sorted[j].CandidateID
	})
	return sorted
}

// SplitWinnersLosers groups ranked entries by position; the highest-ranked
// entry of each position wins, the rest lose. Position groups keep the order
// in which they first appear in the ranking.
func SplitWinnersLosers(ranked []models.CandidateResult) (winners, losers []models.CandidateResult) {
	seen := map[string]bool{}
	for _, entry := range ranked {
		if !seen[entry.Position] {
			seen[entry.Position] = true
			winners = append(winners, entry)
		} else {
			losers = append(losers, entry)
		}
	}
	return winners, losers
}

// ComputeNonVotingFlats returns all registered flats without a voted
// attendance record, preserving the registered order.
func ComputeNonVotingFlats(allFlats, votedFlats []string) []string {
	voted := make(map[string]bool, len(votedFlats))
	for _, flat := range votedFlats {
		voted[flat] = true
	}
	nonVoting := []string{}
	for _, flat := range allFlats {
		if !voted[flat] {
			nonVoting = append(nonVoting, flat)
		}
	}
	return nonVoting
}

func queryFlatNumbers(q queryer, query string, args ...interface{}) ([]string, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flats := []string{}
	for rows.Next() {
		var flat string
		if err := rows.Scan(&flat); err != nil {
			return nil, err
		}
		flats = append(flats, flat)
	}
	return flats, rows.Err()
}
