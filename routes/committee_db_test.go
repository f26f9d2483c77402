package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"elections/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestGetCommitteeMemberByID(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	f := seedElectionFixture(t, conn)

	memberID := uuid.New().String()
	_, err := conn.Exec(`
		INSERT INTO committee_members (id, name, position, flat_number, wing, election_id)
		VALUES ($1, 'Raj Patel', 'Chief', 'A-1', 'A', $2)
	`, memberID, f.electionID)
	if err != nil {
		t.Fatalf("Failed to create committee member: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupCommitteeRoutes(router.Group("/api"), conn)

	w := doJSON(t, router, http.MethodGet, "/api/committee/by-id/"+memberID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("by-id status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Member models.CommitteeMember `json:"member"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Member.ID != memberID || resp.Member.Name != "Raj Patel" {
		t.Errorf("member = %+v, want id %s name Raj Patel", resp.Member, memberID)
	}

	w = doJSON(t, router, http.MethodGet, "/api/committee/by-id/"+uuid.New().String(), "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown member status = %d, want 404", w.Code)
	}
}
