package routes

import (
	"database/sql"
	"log"
	"net/http"

	"elections/middleware"
	"elections/models"
	"elections/utils"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers login and profile routes for admins and voters.
func SetupAuthRoutes(router *gin.RouterGroup, db *sql.DB) {
	router.POST("/admin/login", func(c *gin.Context) { adminLogin(c, db) })
	router.GET("/admin/profile", middleware.VerifyToken(), middleware.RequireAdmin(), func(c *gin.Context) {
		adminProfile(c, db)
	})

	router.POST("/voters/login", func(c *gin.Context) { voterLogin(c, db) })
	router.GET("/voters/profile", middleware.VerifyToken(), func(c *gin.Context) { voterProfile(c, db) })
	router.PUT("/voters/profile", middleware.VerifyToken(), func(c *gin.Context) { updateVoterProfile(c, db) })
}

// adminLogin verifies admin credentials and issues a session token.
func adminLogin(c *gin.Context, db *sql.DB) {
	var loginData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BindJSON(&loginData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON"})
		return
	}
	if loginData.Username == "" || loginData.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}

	var admin models.Admin
	var name sql.NullString
	err := db.QueryRow(`
		SELECT id, username, password, email, COALESCE(name, '')
		FROM admins
		WHERE username = $1
	`, loginData.Username).Scan(&admin.ID, &admin.Username, &admin.Password, &admin.Email, &name)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username or password"})
		} else {
			log.Printf("Admin login query error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed. Please try again."})
		}
		return
	}
	admin.Name = name.String

	ok, err := utils.VerifyPassword(loginData.Password, admin.Password)
	if err != nil || !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username or password"})
		return
	}

	token, err := middleware.GenerateToken(admin.ID, middleware.RoleAdmin, "")
	if err != nil {
		log.Printf("Failed to sign admin token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"name":     admin.Name,
			"role":     middleware.RoleAdmin,
		},
	})
}

// voterLogin verifies a voter by flat number and issues a session token.
// An optional deviceToken is stored for push notifications.
func voterLogin(c *gin.Context, db *sql.DB) {
	var loginData struct {
		FlatNumber  string `json:"flatNumber"`
		Password    string `json:"password"`
		DeviceToken string `json:"deviceToken"`
	}
	if err := c.BindJSON(&loginData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON"})
		return
	}
	if loginData.FlatNumber == "" || loginData.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Flat number and password are required"})
		return
	}

	var voter models.Voter
	err := db.QueryRow(`
		SELECT id, flat_number, name, password, wing
		FROM voters
		WHERE flat_number = $1
	`, loginData.FlatNumber).Scan(&voter.ID, &voter.FlatNumber, &voter.Name, &voter.Password, &voter.Wing)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid flat number or password"})
		} else {
			log.Printf("Voter login query error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed. Please try again."})
		}
		return
	}

	ok, err := utils.VerifyPassword(loginData.Password, voter.Password)
	if err != nil || !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid flat number or password"})
		return
	}

	if loginData.DeviceToken != "" {
		if _, err := db.Exec("UPDATE voters SET device_token = $1 WHERE id = $2", loginData.DeviceToken, voter.ID); err != nil {
			log.Printf("Failed to store device token for %s: %v", voter.FlatNumber, err)
		}
	}

	token, err := middleware.GenerateToken(voter.ID, middleware.RoleVoter, voter.FlatNumber)
	if err != nil {
		log.Printf("Failed to sign voter token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":         voter.ID,
			"flatNumber": voter.FlatNumber,
			"name":       voter.Name,
			"wing":       voter.Wing,
			"role":       middleware.RoleVoter,
		},
	})
}

func adminProfile(c *gin.Context, db *sql.DB) {
	adminID := c.GetString(middleware.ContextUserID)

	var admin models.Admin
	var name sql.NullString
	err := db.QueryRow(`
		SELECT id, username, email, COALESCE(name, ''), created_at
		FROM admins
		WHERE id = $1
	`, adminID).Scan(&admin.ID, &admin.Username, &admin.Email, &name, &admin.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "Admin not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch profile"})
		}
		return
	}
	admin.Name = name.String

	c.JSON(http.StatusOK, gin.H{"success": true, "admin": admin})
}

func voterProfile(c *gin.Context, db *sql.DB) {
	voterID := c.GetString(middleware.ContextUserID)

	voter, err := scanVoter(db.QueryRow(`
		SELECT id, flat_number, name, wing, COALESCE(floor_number, 0),
		       COALESCE(email, ''), COALESCE(phone, ''), created_at
		FROM voters
		WHERE id = $1
	`, voterID))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"message": "Voter not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch profile"})
		}
		return
	}

	c.JSON(http.StatusOK, voter)
}

// updateVoterProfile lets a voter change contact details. Flat number, wing
// and password are not editable here.
func updateVoterProfile(c *gin.Context, db *sql.DB) {
	voterID := c.GetString(middleware.ContextUserID)

	var request struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data: " + err.Error()})
		return
	}

	_, err := db.Exec(`
		UPDATE voters
		SET name = COALESCE(NULLIF($1, ''), name), email = $2, phone = $3
		WHERE id = $4
	`, request.Name, request.Email, request.Phone, voterID)
	if err != nil {
		log.Printf("Error updating voter %s: %v", voterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
		return
	}

	voter, err := scanVoter(db.QueryRow(`
		SELECT id, flat_number, name, wing, COALESCE(floor_number, 0),
		       COALESCE(email, ''), COALESCE(phone, ''), created_at
		FROM voters
		WHERE id = $1
	`, voterID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "voter": voter})
}
