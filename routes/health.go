package routes

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupHealthRoute registers the health check endpoint.
func SetupHealthRoute(router *gin.RouterGroup, db *sql.DB) {
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		dbStatus := "connected"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "degraded"
			dbStatus = "unreachable"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}
