package routes

import (
	"database/sql"
	"log"
	"net/http"

	"elections/middleware"
	"elections/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SetupCommitteeRoutes registers the election committee roster routes.
// Reads are public, writes require an admin token.
func SetupCommitteeRoutes(router *gin.RouterGroup, db *sql.DB) {
	router.GET("/committee/:electionId", func(c *gin.Context) { getCommitteeMembers(c, db) })
	router.GET("/committee/by-id/:memberId", func(c *gin.Context) { getCommitteeMemberByID(c, db) })

	admin := router.Group("/committee", middleware.VerifyToken(), middleware.RequireAdmin())
	admin.POST("/create", func(c *gin.Context) { createCommitteeMember(c, db) })
	admin.PUT("/:memberId", func(c *gin.Context) { updateCommitteeMember(c, db) })
	admin.DELETE("/:memberId", func(c *gin.Context) { deleteCommitteeMember(c, db) })
}

func getCommitteeMembers(c *gin.Context, db *sql.DB) {
	rows, err := db.Query(`
		SELECT id, name, position, flat_number, wing, COALESCE(email, ''),
		       COALESCE(phone, ''), COALESCE(image, ''), COALESCE(responsibilities, ''),
		       election_id, created_at
		FROM committee_members
		WHERE election_id = $1
		ORDER BY position, name
	`, c.Param("electionId"))
	if err != nil {
		log.Printf("Error fetching committee members: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch committee members"})
		return
	}
	defer rows.Close()

	members := []models.CommitteeMember{}
	for rows.Next() {
		var m models.CommitteeMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Position, &m.FlatNumber, &m.Wing,
			&m.Email, &m.Phone, &m.Image, &m.Responsibilities, &m.ElectionID, &m.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error scanning committee member: " + err.Error()})
			return
		}
		members = append(members, m)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "committee": members})
}

func getCommitteeMemberByID(c *gin.Context, db *sql.DB) {
	var m models.CommitteeMember
	err := db.QueryRow(`
		SELECT id, name, position, flat_number, wing, COALESCE(email, ''),
		       COALESCE(phone, ''), COALESCE(image, ''), COALESCE(responsibilities, ''),
		       election_id, created_at
		FROM committee_members
		WHERE id = $1
	`, c.Param("memberId")).Scan(&m.ID, &m.Name, &m.Position, &m.FlatNumber, &m.Wing,
		&m.Email, &m.Phone, &m.Image, &m.Responsibilities, &m.ElectionID, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Committee member not found"})
		} else {
			log.Printf("Error fetching committee member: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch committee member"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "member": m})
}

func createCommitteeMember(c *gin.Context, db *sql.DB) {
	var member models.CommitteeMember
	if err := c.ShouldBindJSON(&member); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}
	if member.Name == "" || member.Position == "" || member.FlatNumber == "" || member.ElectionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Name, position, flat number and election are required",
		})
		return
	}

	if _, err := GetElection(db, member.ElectionID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Election not found"})
		} else {
			log.Printf("Error checking election for committee member: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create committee member"})
		}
		return
	}

	member.ID = uuid.New().String()
	err := db.QueryRow(`
		INSERT INTO committee_members (id, name, position, flat_number, wing, email, phone, image, responsibilities, election_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, member.ID, member.Name, member.Position, member.FlatNumber, member.Wing,
		member.Email, member.Phone, member.Image, member.Responsibilities, member.ElectionID,
	).Scan(&member.CreatedAt)
	if err != nil {
		log.Printf("Error creating committee member: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create committee member"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Committee member added successfully",
		"member":  member,
	})
}

func updateCommitteeMember(c *gin.Context, db *sql.DB) {
	memberID := c.Param("memberId")

	var update models.CommitteeMember
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	var member models.CommitteeMember
	err := db.QueryRow(`
		UPDATE committee_members
		SET name = COALESCE(NULLIF($1, ''), name),
		    position = COALESCE(NULLIF($2, ''), position),
		    flat_number = COALESCE(NULLIF($3, ''), flat_number),
		    wing = COALESCE(NULLIF($4, ''), wing),
		    email = COALESCE(NULLIF($5, ''), email),
		    phone = COALESCE(NULLIF($6, ''), phone),
		    image = COALESCE(NULLIF($7, ''), image),
		    responsibilities = COALESCE(NULLIF($8, ''), responsibilities)
		WHERE id = $9
		RETURNING id, name, position, flat_number, wing, COALESCE(email, ''),
		          COALESCE(phone, ''), COALESCE(image, ''), COALESCE(responsibilities, ''),
		          election_id, created_at
	`, update.Name, update.Position, update.FlatNumber, update.Wing,
		update.Email, update.Phone, update.Image, update.Responsibilities, memberID,
	).Scan(&member.ID, &member.Name, &member.Position, &member.FlatNumber, &member.Wing,
		&member.Email, &member.Phone, &member.Image, &member.Responsibilities,
		&member.ElectionID, &member.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Committee member not found"})
		} else {
			log.Printf("Error updating committee member: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update committee member"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Committee member updated successfully",
		"member":  member,
	})
}

func deleteCommitteeMember(c *gin.Context, db *sql.DB) {
	result, err := db.Exec("DELETE FROM committee_members WHERE id = $1", c.Param("memberId"))
	if err != nil {
		log.Printf("Error deleting committee member: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete committee member"})
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Committee member not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Committee member deleted successfully"})
}
