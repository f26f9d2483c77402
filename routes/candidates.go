package routes

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"elections/middleware"
	"elections/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SetupCandidateRoutes registers candidate directory routes. Reads are
// public, writes are admin only.
func SetupCandidateRoutes(router *gin.RouterGroup, db *sql.DB) {
	router.GET("/candidates/:electionId", func(c *gin.Context) { getCandidates(c, db) })
	router.GET("/candidates/position/:electionId/:position", func(c *gin.Context) { getCandidatesByPosition(c, db) })
	router.GET("/candidates/by-id/:candidateId", func(c *gin.Context) { getCandidateByID(c, db) })

	admin := router.Group("/candidates", middleware.VerifyToken(), middleware.RequireAdmin())
	admin.POST("/create", func(c *gin.Context) { createCandidate(c, db) })
	admin.PUT("/:candidateId", func(c *gin.Context) { updateCandidate(c, db) })
	admin.DELETE("/:candidateId", func(c *gin.Context) { deleteCandidate(c, db) })
}

// createCandidate adds a candidate with votes initialized to zero and seeds
// the matching entry in the election's results aggregate.
func createCandidate(c *gin.Context, db *sql.DB) {
	var request models.CandidateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data: " + err.Error()})
		return
	}

	name := strings.TrimSpace(request.Name)
	position := strings.TrimSpace(request.Position)
	if name == "" || position == "" || request.ElectionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Name, position, and electionId are required",
		})
		return
	}

	election, err := GetElection(db, request.ElectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "Election not found"})
		} else {
			log.Printf("Error fetching election for candidate: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create candidate"})
		}
		return
	}
	if !election.HasPosition(position) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Position is not part of this election",
		})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	candidateID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO candidates (id, name, position, flat_number, wing, description, image, votes, election_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
	`, candidateID, name, position, strings.TrimSpace(request.FlatNumber), request.Wing,
		strings.TrimSpace(request.Description), request.Image, request.ElectionID)
	if err != nil {
		log.Printf("Error creating candidate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create candidate. Please try again."})
		return
	}

	if err := EnsureResultsRow(tx, request.ElectionID); err != nil {
		log.Printf("Error ensuring results aggregate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create candidate. Please try again."})
		return
	}
	_, err = tx.Exec(`
		INSERT INTO result_entries (id, election_id, candidate_id, candidate_name, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (election_id, candidate_id) DO NOTHING
	`, uuid.NewString(), request.ElectionID, candidateID, name, position)
	if err != nil {
		log.Printf("Error seeding result entry: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create candidate. Please try again."})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Candidate created successfully",
		"candidate": models.Candidate{
			ID:          candidateID,
			Name:        name,
			Position:    position,
			FlatNumber:  strings.TrimSpace(request.FlatNumber),
			Wing:        request.Wing,
			Description: strings.TrimSpace(request.Description),
			Image:       request.Image,
			ElectionID:  request.ElectionID,
		},
	})
}

func getCandidates(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")

	rows, err := db.Query(`
		SELECT id, name, position, flat_number, wing, description, image, votes, election_id, created_at
		FROM candidates
		WHERE election_id = $1
		ORDER BY position, name
	`, electionID)
	if err != nil {
		log.Printf("Error fetching candidates: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch candidates"})
		return
	}
	defer rows.Close()

	candidates, err := collectCandidates(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error scanning candidate: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(candidates),
		"candidates": candidates,
	})
}

func getCandidatesByPosition(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")
	position := c.Param("position")

	rows, err := db.Query(`
		SELECT id, name, position, flat_number, wing, description, image, votes, election_id, created_at
		FROM candidates
		WHERE election_id = $1 AND position = $2
		ORDER BY name
	`, electionID, position)
	if err != nil {
		log.Printf("Error fetching candidates by position: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch candidates"})
		return
	}
	defer rows.Close()

	candidates, err := collectCandidates(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error scanning candidate: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"position":   position,
		"count":      len(candidates),
		"candidates": candidates,
	})
}

func getCandidateByID(c *gin.Context, db *sql.DB) {
	candidateID := c.Param("candidateId")

	var candidate models.Candidate
	err := db.QueryRow(`
		SELECT id, name, position, flat_number, wing, description, image, votes, election_id, created_at
		FROM candidates
		WHERE id = $1
	`, candidateID).Scan(
		&candidate.ID, &candidate.Name, &candidate.Position, &candidate.FlatNumber,
		&candidate.Wing, &candidate.Description, &candidate.Image, &candidate.Votes,
		&candidate.ElectionID, &candidate.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "Candidate not found"})
		} else {
			log.Printf("Error fetching candidate: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch candidate"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "candidate": candidate})
}

// updateCandidate applies a partial update. The votes counter is never
// touched here; it belongs to the tally engine.
func updateCandidate(c *gin.Context, db *sql.DB) {
	candidateID := c.Param("candidateId")

	var request models.CandidateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data: " + err.Error()})
		return
	}

	res, err := db.Exec(`
		UPDATE candidates
		SET name = COALESCE(NULLIF($1, ''), name),
		    position = COALESCE(NULLIF($2, ''), position),
		    flat_number = COALESCE(NULLIF($3, ''), flat_number),
		    wing = COALESCE(NULLIF($4, ''), wing),
		    description = COALESCE(NULLIF($5, ''), description),
		    image = COALESCE(NULLIF($6, ''), image)
		WHERE id = $7
	`, strings.TrimSpace(request.Name), strings.TrimSpace(request.Position),
		strings.TrimSpace(request.FlatNumber), request.Wing,
		strings.TrimSpace(request.Description), request.Image, candidateID)
	if err != nil {
		log.Printf("Error updating candidate %s: %v", candidateID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update candidate"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Candidate not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Candidate updated successfully",
	})
}

func deleteCandidate(c *gin.Context, db *sql.DB) {
	candidateID := c.Param("candidateId")

	var name, position, electionID string
	err := db.QueryRow(`
		SELECT name, position, election_id FROM candidates WHERE id = $1
	`, candidateID).Scan(&name, &position, &electionID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "Candidate not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete candidate"})
		}
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM candidates WHERE id = $1", candidateID); err != nil {
		log.Printf("Error deleting candidate %s: %v", candidateID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete candidate"})
		return
	}
	if _, err := tx.Exec(`
		DELETE FROM result_entries WHERE election_id = $1 AND candidate_id = $2
	`, electionID, candidateID); err != nil {
		log.Printf("Error deleting result entry for candidate %s: %v", candidateID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete candidate"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Candidate deleted successfully",
		"deletedCandidate": gin.H{
			"id":       candidateID,
			"name":     name,
			"position": position,
		},
	})
}

func collectCandidates(rows *sql.Rows) ([]models.Candidate, error) {
	candidates := []models.Candidate{}
	for rows.Next() {
		var candidate models.Candidate
		if err := rows.Scan(
			&candidate.ID, &candidate.Name, &candidate.Position, &candidate.FlatNumber,
			&candidate.Wing, &candidate.Description, &candidate.Image, &candidate.Votes,
			&candidate.ElectionID, &candidate.CreatedAt,
		); err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}
