package routes

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"elections/config"
	"elections/middleware"
	"elections/models"
	"elections/notifications"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SetupElectionRoutes registers election registry routes.
func SetupElectionRoutes(router *gin.RouterGroup, db *sql.DB) {
	router.GET("/elections", func(c *gin.Context) { getElections(c, db) })
	router.GET("/elections/:electionId", func(c *gin.Context) { getElectionByID(c, db) })

	admin := router.Group("/elections", middleware.VerifyToken(), middleware.RequireAdmin())
	admin.POST("/create", func(c *gin.Context) { createElection(c, db) })
	admin.PUT("/:electionId/open", func(c *gin.Context) { setElectionOpen(c, db) })
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// GetElection loads a single election. Returns sql.ErrNoRows when absent.
func GetElection(q queryer, electionID string) (*models.Election, error) {
	var e models.Election
	var start, end sql.NullTime
	err := q.QueryRow(`
		SELECT id, name, description, start_date, end_date, is_open, auto_open_enabled,
		       society_name, positions, total_flats_wing_a, total_flats_wing_b,
		       created_at, updated_at
		FROM elections
		WHERE id = $1
	`, electionID).Scan(
		&e.ID, &e.Name, &e.Description, &start, &end, &e.IsOpen, &e.AutoOpenEnabled,
		&e.SocietyName, pq.Array(&e.Positions), &e.TotalFlatsWingA, &e.TotalFlatsWingB,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.StartDate = start.Time
	e.EndDate = end.Time
	return &e, nil
}

// LockElection closes an election and disables auto-open. Called when results
// are declared or votes are rejected with cancellation; a one-way gate on
// further voting.
func LockElection(q queryer, electionID string) error {
	_, err := q.Exec(`
		UPDATE elections
		SET is_open = FALSE, auto_open_enabled = FALSE, updated_at = NOW()
		WHERE id = $1
	`, electionID)
	return err
}

func getElections(c *gin.Context, db *sql.DB) {
	rows, err := db.Query(`
		SELECT id, name, description, start_date, end_date, is_open, auto_open_enabled,
		       society_name, positions, total_flats_wing_a, total_flats_wing_b,
		       created_at, updated_at
		FROM elections
		ORDER BY created_at DESC
	`)
	if err != nil {
		log.Printf("Error listing elections: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch elections"})
		return
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		var e models.Election
		var start, end sql.NullTime
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &start, &end, &e.IsOpen, &e.AutoOpenEnabled,
			&e.SocietyName, pq.Array(&e.Positions), &e.TotalFlatsWingA, &e.TotalFlatsWingB,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error scanning election: " + err.Error()})
			return
		}
		e.StartDate = start.Time
		e.EndDate = end.Time
		elections = append(elections, e)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"count":     len(elections),
		"elections": elections,
	})
}

func getElectionByID(c *gin.Context, db *sql.DB) {
	election, err := GetElection(db, c.Param("electionId"))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "Election not found"})
		} else {
			log.Printf("Error fetching election: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch election"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "election": election})
}

// createElection creates an election together with its empty results
// aggregate, so declare always has an aggregate to work on.
func createElection(c *gin.Context, db *sql.DB) {
	var request struct {
		Name        string    `json:"name" binding:"required"`
		Description string    `json:"description"`
		StartDate   time.Time `json:"startDate"`
		EndDate     time.Time `json:"endDate"`
		SocietyName string    `json:"societyName"`
		Positions   []string  `json:"positions"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data: " + err.Error()})
		return
	}

	positions := request.Positions
	if len(positions) == 0 {
		positions = models.DefaultPositions
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	electionID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO elections (id, name, description, start_date, end_date, society_name,
		                       positions, total_flats_wing_a, total_flats_wing_b)
		VALUES ($1, $2, $3, NULLIF($4, '0001-01-01T00:00:00Z'::timestamptz),
		        NULLIF($5, '0001-01-01T00:00:00Z'::timestamptz), $6, $7, $8, $9)
	`, electionID, request.Name, request.Description, request.StartDate, request.EndDate,
		request.SocietyName, pq.Array(positions), config.WingAFlats, config.WingBFlats)
	if err != nil {
		log.Printf("Error creating election: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create election"})
		return
	}

	_, err = tx.Exec(`
		INSERT INTO results (id, election_id) VALUES ($1, $2)
	`, uuid.NewString(), electionID)
	if err != nil {
		log.Printf("Error seeding results aggregate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create election"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Election created successfully",
		"id":      electionID,
	})
}

// setElectionOpen toggles voting on or off. Manual toggling disables the
// schedule-driven auto-open behavior.
func setElectionOpen(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")

	var request struct {
		IsOpen *bool `json:"isOpen" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "isOpen is required"})
		return
	}

	res, err := db.Exec(`
		UPDATE elections
		SET is_open = $1, auto_open_enabled = FALSE, updated_at = NOW()
		WHERE id = $2
	`, *request.IsOpen, electionID)
	if err != nil {
		log.Printf("Error toggling election %s: %v", electionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update election"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Election not found"})
		return
	}

	if *request.IsOpen {
		go notifications.NotifyRegisteredDevices(db, "Voting is open",
			"Society election voting is now open. Cast your vote!", electionID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Election updated successfully",
		"isOpen":  *request.IsOpen,
	})
}
