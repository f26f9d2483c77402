package routes

import (
	"database/sql"
	"log"
	"net/http"

	"elections/middleware"
	"elections/models"
	"elections/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SetupVoterRoutes registers admin-side voter provisioning routes.
func SetupVoterRoutes(router *gin.RouterGroup, db *sql.DB) {
	admin := router.Group("/voters", middleware.VerifyToken(), middleware.RequireAdmin())
	admin.POST("/create", func(c *gin.Context) { createVoter(c, db) })
	admin.GET("/all", func(c *gin.Context) { getAllVoters(c, db) })
	admin.DELETE("/:voterId", func(c *gin.Context) { deleteVoter(c, db) })
}

// createVoter provisions a voter account for a flat (admin only).
func createVoter(c *gin.Context, db *sql.DB) {
	var request struct {
		FlatNumber  string `json:"flatNumber" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Password    string `json:"password" binding:"required"`
		Wing        string `json:"wing" binding:"required"`
		FloorNumber int    `json:"floorNumber"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data: " + err.Error()})
		return
	}

	hashed, err := utils.HashPassword(request.Password)
	if err != nil {
		log.Printf("Error hashing voter password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register voter"})
		return
	}

	voterID := uuid.NewString()
	_, err = db.Exec(`
		INSERT INTO voters (id, flat_number, name, password, wing, floor_number, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, voterID, request.FlatNumber, request.Name, hashed, request.Wing, request.FloorNumber, request.Email, request.Phone)
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Flat number already registered"})
			return
		}
		log.Printf("Error creating voter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register voter"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Voter registered successfully",
		"voter": gin.H{
			"id":         voterID,
			"flatNumber": request.FlatNumber,
			"name":       request.Name,
		},
	})
}

func getAllVoters(c *gin.Context, db *sql.DB) {
	rows, err := db.Query(`
		SELECT id, flat_number, name, wing, COALESCE(floor_number, 0),
		       COALESCE(email, ''), COALESCE(phone, ''), created_at
		FROM voters
		ORDER BY flat_number
	`)
	if err != nil {
		log.Printf("Error listing voters: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch voters"})
		return
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		voter, err := scanVoter(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error scanning voter: " + err.Error()})
			return
		}
		voters = append(voters, voter)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(voters),
		"voters":  voters,
	})
}

func deleteVoter(c *gin.Context, db *sql.DB) {
	voterID := c.Param("voterId")

	res, err := db.Exec("DELETE FROM voters WHERE id = $1", voterID)
	if err != nil {
		log.Printf("Error deleting voter %s: %v", voterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete voter"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Voter not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Voter deleted successfully",
	})
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVoter(row rowScanner) (models.Voter, error) {
	var voter models.Voter
	err := row.Scan(
		&voter.ID,
		&voter.FlatNumber,
		&voter.Name,
		&voter.Wing,
		&voter.FloorNumber,
		&voter.Email,
		&voter.Phone,
		&voter.CreatedAt,
	)
	return voter, err
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
