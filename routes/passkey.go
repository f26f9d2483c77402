package routes

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"sync"

	"elections/config"
	"elections/middleware"
	"elections/models"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

var (
	webAuthnConfig *webauthn.WebAuthn
	setupOnce      sync.Once
	sessionStore   = make(map[string]webauthn.SessionData)
	sessionMutex   sync.RWMutex
)

func initWebAuthn() {
	setupOnce.Do(func() {
		var err error
		webAuthnConfig, err = webauthn.New(&webauthn.Config{
			RPDisplayName: config.RPDisplayName,
			RPID:          config.RPID,
			RPOrigins:     []string{config.RPOrigin},
		})
		if err != nil {
			panic(fmt.Sprintf("Failed to create WebAuthn instance: %v", err))
		}
	})
}

// SetupPasskeyRoutes registers the admin passkey routes. Registration and
// deletion require an authenticated admin, the login ceremony does not.
func SetupPasskeyRoutes(router *gin.RouterGroup, db *sql.DB) {
	initWebAuthn()

	passkeys := router.Group("/passkeys")
	passkeys.POST("/begin-login", func(c *gin.Context) { beginLoginPasskey(c, db) })
	passkeys.POST("/finish-login", func(c *gin.Context) { finishLoginPasskey(c, db) })

	admin := passkeys.Group("", middleware.VerifyToken(), middleware.RequireAdmin())
	admin.POST("/begin-register", func(c *gin.Context) { beginRegisterPasskey(c, db) })
	admin.POST("/finish-register", func(c *gin.Context) { finishRegisterPasskey(c, db) })
	admin.GET("/status", func(c *gin.Context) { passkeyStatus(c, db) })
	admin.DELETE("", func(c *gin.Context) { deletePasskey(c, db) })
}

func storeSession(username string, data webauthn.SessionData) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	sessionStore[username] = data
}

func getSession(username string) (webauthn.SessionData, bool) {
	sessionMutex.RLock()
	defer sessionMutex.RUnlock()
	session, ok := sessionStore[username]
	return session, ok
}

func removeSession(username string) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	delete(sessionStore, username)
}

// adminUsernameFromContext resolves the username of the authenticated admin.
func adminUsernameFromContext(c *gin.Context, db *sql.DB) (string, error) {
	adminID := c.GetString(middleware.ContextUserID)
	var username string
	err := db.QueryRow("SELECT username FROM admins WHERE id = $1", adminID).Scan(&username)
	return username, err
}

func beginRegisterPasskey(c *gin.Context, db *sql.DB) {
	username, err := adminUsernameFromContext(c, db)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Admin not found"})
		return
	}

	user, err := models.GetAdminForWebAuthn(db, username)
	if err != nil {
		log.Printf("Error loading admin for passkey registration: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to begin registration"})
		return
	}

	options, sessionData, err := webAuthnConfig.BeginRegistration(user)
	if err != nil {
		log.Printf("Error beginning passkey registration: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to begin registration"})
		return
	}

	storeSession(username, *sessionData)
	c.JSON(http.StatusOK, options)
}

func finishRegisterPasskey(c *gin.Context, db *sql.DB) {
	username, err := adminUsernameFromContext(c, db)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Admin not found"})
		return
	}

	sessionData, ok := getSession(username)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No registration in progress"})
		return
	}
	defer removeSession(username)

	user, err := models.GetAdminForWebAuthn(db, username)
	if err != nil {
		log.Printf("Error loading admin for passkey registration: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to finish registration"})
		return
	}

	response, err := protocol.ParseCredentialCreationResponseBody(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid attestation response: " + err.Error()})
		return
	}

	credential, err := webAuthnConfig.CreateCredential(user, sessionData, response)
	if err != nil {
		log.Printf("Error creating passkey credential: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to verify credential"})
		return
	}

	if err := models.SavePasskeyCredential(db, user.ID, *credential); err != nil {
		log.Printf("Error saving passkey credential: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save credential"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Passkey registered successfully"})
}

func beginLoginPasskey(c *gin.Context, db *sql.DB) {
	var request struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username is required"})
		return
	}

	user, err := models.GetAdminForWebAuthn(db, request.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Admin not found"})
		} else {
			log.Printf("Error loading admin for passkey login: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to begin login"})
		}
		return
	}
	if len(user.Credentials) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No passkey registered for this account"})
		return
	}

	options, sessionData, err := webAuthnConfig.BeginLogin(user)
	if err != nil {
		log.Printf("Error beginning passkey login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to begin login"})
		return
	}

	storeSession(request.Username, *sessionData)
	c.JSON(http.StatusOK, options)
}

func finishLoginPasskey(c *gin.Context, db *sql.DB) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username is required"})
		return
	}

	sessionData, ok := getSession(username)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No login in progress"})
		return
	}
	defer removeSession(username)

	user, err := models.GetAdminForWebAuthn(db, username)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Admin not found"})
		return
	}

	response, err := protocol.ParseCredentialRequestResponseBody(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid assertion response: " + err.Error()})
		return
	}

	credential, err := webAuthnConfig.ValidateLogin(user, sessionData, response)
	if err != nil {
		log.Printf("Error validating passkey login: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Passkey verification failed"})
		return
	}

	if err := models.UpdatePasskeySignCount(db, credential.ID, credential.Authenticator.SignCount); err != nil {
		log.Printf("Error updating passkey sign count: %v", err)
	}

	token, err := middleware.GenerateToken(user.ID, middleware.RoleAdmin, "")
	if err != nil {
		log.Printf("Error generating token after passkey login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"name":     user.DisplayName,
			"role":     middleware.RoleAdmin,
		},
	})
}

func passkeyStatus(c *gin.Context, db *sql.DB) {
	adminID := c.GetString(middleware.ContextUserID)
	has, err := models.HasPasskey(db, adminID)
	if err != nil {
		log.Printf("Error checking passkey status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to check passkey status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hasPasskey": has})
}

func deletePasskey(c *gin.Context, db *sql.DB) {
	adminID := c.GetString(middleware.ContextUserID)
	if err := models.DeletePasskeys(db, adminID); err != nil {
		log.Printf("Error deleting passkeys: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete passkey"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Passkey deleted successfully"})
}
