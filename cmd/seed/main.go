package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"elections/config"
	"elections/db"
	"elections/models"
	"elections/routes"
	"elections/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Seeds the database with the initial admin account, one voter per flat,
// a sample election with candidates and the election committee. Safe to run
// repeatedly: existing rows are left alone, so a fresh deployment gets its
// bootstrap data and a live one is untouched.
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

	if err := seedAdmin(conn); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	if err := seedVoters(conn); err != nil {
		log.Fatalf("Failed to seed voters: %v", err)
	}
	if err := seedElection(conn); err != nil {
		log.Fatalf("Failed to seed election: %v", err)
	}

	log.Println("Seeding completed")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seedAdmin(conn *sql.DB) error {
	username := envOr("SEED_ADMIN_USERNAME", "admin")
	password := envOr("SEED_ADMIN_PASSWORD", "admin@12345")

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	result, err := conn.Exec(`
		INSERT INTO admins (id, username, password, email, name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING
	`, uuid.New().String(), username, hash, envOr("SEED_ADMIN_EMAIL", "admin@society.local"), "Admin User")
	if err != nil {
		return err
	}

	if affected, _ := result.RowsAffected(); affected > 0 {
		log.Printf("Admin %q created", username)
	} else {
		log.Printf("Admin %q already exists, skipping", username)
	}
	return nil
}

func seedVoters(conn *sql.DB) error {
	hash, err := utils.HashPassword(envOr("SEED_VOTER_PASSWORD", "password@123"))
	if err != nil {
		return err
	}

	created := 0
	insert := func(flatNumber, wing string, floor int) error {
		result, err := conn.Exec(`
			INSERT INTO voters (id, flat_number, name, password, wing, floor_number, email)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (flat_number) DO NOTHING
		`, uuid.New().String(), flatNumber, "Resident "+flatNumber, hash, wing, floor,
			fmt.Sprintf("resident-%s@society.local", flatNumber))
		if err != nil {
			return err
		}
		if affected, _ := result.RowsAffected(); affected > 0 {
			created++
		}
		return nil
	}

	// Wing A has three flats per floor, wing B four.
	for i := 1; i <= config.WingAFlats; i++ {
		if err := insert(fmt.Sprintf("A-%d", i), "A", (i+2)/3); err != nil {
			return err
		}
	}
	for i := 1; i <= config.WingBFlats; i++ {
		if err := insert(fmt.Sprintf("B-%d", i), "B", (i+3)/4); err != nil {
			return err
		}
	}

	log.Printf("Voters: %d created, %d total flats", created, config.WingAFlats+config.WingBFlats)
	return nil
}

func seedElection(conn *sql.DB) error {
	var existing string
	err := conn.QueryRow("SELECT id FROM elections LIMIT 1").Scan(&existing)
	if err == nil {
		log.Printf("Election %s already exists, skipping election seed", existing)
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	electionID := uuid.New().String()
	now := time.Now()
	_, err = conn.Exec(`
		INSERT INTO elections (id, name, description, start_date, end_date, is_open,
		                       society_name, positions, total_flats_wing_a, total_flats_wing_b)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7, $8, $9)
	`, electionID,
		fmt.Sprintf("%d Annual Society Elections", now.Year()),
		"Annual election of the managing committee",
		now, now.AddDate(0, 1, 0),
		envOr("SEED_SOCIETY_NAME", "Allah Noor"),
		pq.Array(models.DefaultPositions),
		config.WingAFlats, config.WingBFlats)
	if err != nil {
		return err
	}

	if err := routes.EnsureResultsRow(conn, electionID); err != nil {
		return err
	}

	candidates := []struct {
		name, position, flatNumber, wing, description string
	}{
		{"Ahmed Hassan", "President", "A-5", "A", "Experienced community leader"},
		{"Fatima Khan", "President", "B-20", "B", "Dedicated to community development"},
		{"Mohammed Ali", "Vice President", "A-12", "A", "Strong management skills"},
		{"Aisha Malik", "Vice President", "B-35", "B", "Community organizer"},
		{"Ibrahim Said", "General Secretary", "A-18", "A", "Excellent record keeper"},
		{"Zainab Ahmed", "General Secretary", "B-42", "B", "Detail-oriented professional"},
		{"Yusuf Khan", "Joint Secretary", "A-22", "A", "Team coordination expert"},
		{"Sara Patel", "Joint Secretary", "B-48", "B", "Event management specialist"},
		{"Omar Hassan", "Finance Secretary", "A-25", "A", "Financial management expertise"},
		{"Noor Ibrahim", "Finance Secretary", "B-55", "B", "Accounting background"},
	}
	for _, cand := range candidates {
		candidateID := uuid.New().String()
		if _, err := conn.Exec(`
			INSERT INTO candidates (id, name, position, flat_number, wing, description, election_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, candidateID, cand.name, cand.position, cand.flatNumber, cand.wing, cand.description, electionID); err != nil {
			return err
		}
		if _, err := conn.Exec(`
			INSERT INTO result_entries (id, election_id, candidate_id, candidate_name, position)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (election_id, candidate_id) DO NOTHING
		`, uuid.New().String(), electionID, candidateID, cand.name, cand.position); err != nil {
			return err
		}
	}

	committee := []struct {
		name, position, flatNumber, wing, responsibilities string
	}{
		{"Raj Patel", "Chief", "A-1", "A", "Overall supervision of elections"},
		{"Priya Sharma", "Co-Chief", "B-1", "B", "Assist chief, manage voter coordination"},
		{"Vikram Singh", "Member", "A-10", "A", "Manage voting booths"},
		{"Deepa Nair", "Member", "B-30", "B", "Verify voter eligibility"},
		{"Arjun Das", "Member", "A-35", "A", "Handle complaints"},
		{"Sneha Gupta", "Member", "B-50", "B", "Count and verify votes"},
	}
	for _, m := range committee {
		if _, err := conn.Exec(`
			INSERT INTO committee_members (id, name, position, flat_number, wing, responsibilities, election_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), m.name, m.position, m.flatNumber, m.wing, m.responsibilities, electionID); err != nil {
			return err
		}
	}

	log.Printf("Election %s seeded with %d candidates and %d committee members",
		electionID, len(candidates), len(committee))
	return nil
}
