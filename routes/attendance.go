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

// SetupAttendanceRoutes registers the attendance ledger routes.
func SetupAttendanceRoutes(router *gin.RouterGroup, db *sql.DB) {
	router.POST("/attendance/record", middleware.VerifyToken(), middleware.RequireVoter(), func(c *gin.Context) {
		recordAttendance(c, db)
	})
	router.GET("/attendance/by-flat/:flatNumber/:electionId", middleware.VerifyToken(), func(c *gin.Context) {
		getAttendanceByFlat(c, db)
	})

	admin := router.Group("/attendance", middleware.VerifyToken(), middleware.RequireAdmin())
	admin.GET("/report/:electionId", func(c *gin.Context) { getAttendanceReport(c, db) })
	admin.PUT("/:attendanceId/vote-status", func(c *gin.Context) { updateVoteStatus(c, db) })
}

// recordAttendance is the login-triggered upsert. Calling it repeatedly for
// the same (voter, election) refreshes updated_at and nothing else; a record
// already marked voted keeps its vote fields.
func recordAttendance(c *gin.Context, db *sql.DB) {
	voterID := c.GetString(middleware.ContextUserID)
	flatNumber := c.GetString(middleware.ContextFlatNumber)

	var request struct {
		ElectionID string `json:"electionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Election ID is required",
		})
		return
	}

	voterName := models.GetVoterName(db, voterID)

	var attendance models.Attendance
	err := db.QueryRow(`
		INSERT INTO attendance (id, voter_id, flat_number, name, election_id, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (voter_id, election_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, flat_number, name, login_time, voted
	`, uuid.NewString(), voterID, flatNumber, voterName, request.ElectionID,
		c.ClientIP(), c.GetHeader("User-Agent")).Scan(
		&attendance.ID, &attendance.FlatNumber, &attendance.Name, &attendance.LoginTime, &attendance.Voted,
	)
	if err != nil {
		log.Printf("Error recording attendance: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to record attendance",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Attendance recorded",
		"attendance": gin.H{
			"id":         attendance.ID,
			"flatNumber": attendance.FlatNumber,
			"name":       attendance.Name,
			"loginTime":  attendance.LoginTime,
			"voted":      attendance.Voted,
		},
	})
}

// getAttendanceReport returns counts and the full list sorted by flat number.
func getAttendanceReport(c *gin.Context, db *sql.DB) {
	electionID := c.Param("electionId")

	var totalRegistered int
	if err := db.QueryRow("SELECT COUNT(*) FROM voters").Scan(&totalRegistered); err != nil {
		log.Printf("Error counting voters: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch attendance report"})
		return
	}

	rows, err := db.Query(`
		SELECT id, voter_id, flat_number, name, login_time, vote_time, voted, rejected, rejected_at
		FROM attendance
		WHERE election_id = $1
		ORDER BY flat_number
	`, electionID)
	if err != nil {
		log.Printf("Error fetching attendance: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch attendance report"})
		return
	}
	defer rows.Close()

	report := models.AttendanceReport{TotalRegistered: totalRegistered, AttendanceList: []models.Attendance{}}
	for rows.Next() {
		var a models.Attendance
		var voteTime, rejectedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.VoterID, &a.FlatNumber, &a.Name, &a.LoginTime,
			&voteTime, &a.Voted, &a.Rejected, &rejectedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error scanning attendance: " + err.Error()})
			return
		}
		if voteTime.Valid {
			a.VoteTime = &voteTime.Time
		}
		if rejectedAt.Valid {
			a.RejectedAt = &rejectedAt.Time
		}
		a.ElectionID = electionID
		report.AttendanceList = append(report.AttendanceList, a)
		if a.Voted {
			report.TotalVoted++
		}
	}
	report.TotalPresent = len(report.AttendanceList)
	report.PresentButNotVoted = report.TotalPresent - report.TotalVoted
	report.VotingPercentage = Percentage(report.TotalVoted, report.TotalPresent)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}

func getAttendanceByFlat(c *gin.Context, db *sql.DB) {
	flatNumber := c.Param("flatNumber")
	electionID := c.Param("electionId")

	var a models.Attendance
	var voteTime sql.NullTime
	err := db.QueryRow(`
		SELECT id, flat_number, name, login_time, vote_time, voted
		FROM attendance
		WHERE flat_number = $1 AND election_id = $2
	`, flatNumber, electionID).Scan(&a.ID, &a.FlatNumber, &a.Name, &a.LoginTime, &voteTime, &a.Voted)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Attendance record not found",
			})
		} else {
			log.Printf("Error fetching attendance by flat: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch attendance"})
		}
		return
	}
	if voteTime.Valid {
		a.VoteTime = &voteTime.Time
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"attendance": a,
	})
}

// updateVoteStatus lets an admin force an attendance record to voted, for
// manual reconciliation after a partial failure.
func updateVoteStatus(c *gin.Context, db *sql.DB) {
	attendanceID := c.Param("attendanceId")

	var a models.Attendance
	var voteTime sql.NullTime
	err := db.QueryRow(`
		UPDATE attendance
		SET voted = TRUE, vote_time = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING id, voter_id, flat_number, name, election_id, login_time, vote_time, voted
	`, attendanceID).Scan(&a.ID, &a.VoterID, &a.FlatNumber, &a.Name, &a.ElectionID,
		&a.LoginTime, &voteTime, &a.Voted)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Attendance record not found",
			})
		} else {
			log.Printf("Error updating vote status: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update vote status"})
		}
		return
	}
	if voteTime.Valid {
		a.VoteTime = &voteTime.Time
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Vote status updated",
		"attendance": a,
	})
}
