package main

import (
	"log"

	"elections/config"
	"elections/db"
	"elections/middleware"
	"elections/notifications"
	"elections/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	conn, err := db.GetConnection()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer conn.Close()

	if err := db.EnsureSchema(conn); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	// Push notifications stay disabled when APNs credentials are not set.
	if err := notifications.InitAPNS(); err != nil {
		log.Printf("APNs disabled: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.CORS())

	apiRouter := router.Group("/api")
	routes.SetupHealthRoute(apiRouter, conn)
	routes.SetupAuthRoutes(apiRouter, conn)
	routes.SetupPasskeyRoutes(apiRouter, conn)
	routes.SetupVoterRoutes(apiRouter, conn)
	routes.SetupElectionRoutes(apiRouter, conn)
	routes.SetupCandidateRoutes(apiRouter, conn)
	routes.SetupAttendanceRoutes(apiRouter, conn)
	routes.SetupVoteRoutes(apiRouter, conn)
	routes.SetupResultsRoutes(apiRouter, conn)
	routes.SetupCommitteeRoutes(apiRouter, conn)

	if err := router.Run(":" + config.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
