package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCandidateRequestUsesCamelCaseKeys(t *testing.T) {
	payload := `{
		"name": "Ahmed Hassan",
		"position": "President",
		"flatNumber": "A-5",
		"wing": "A",
		"electionId": "election-1"
	}`

	var request CandidateRequest
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		t.Fatalf("Failed to decode candidate payload: %v", err)
	}
	if request.FlatNumber != "A-5" {
		t.Errorf("FlatNumber = %q, want A-5", request.FlatNumber)
	}
	if request.ElectionID != "election-1" {
		t.Errorf("ElectionID = %q, want election-1", request.ElectionID)
	}

	out, err := json.Marshal(Candidate{ID: "c1", Name: "Ahmed", FlatNumber: "A-5", ElectionID: "election-1"})
	if err != nil {
		t.Fatalf("Failed to encode candidate: %v", err)
	}
	for _, key := range []string{`"flatNumber"`, `"electionId"`} {
		if !strings.Contains(string(out), key) {
			t.Errorf("candidate JSON missing %s: %s", key, out)
		}
	}
}

func TestCommitteeMemberUsesCamelCaseKeys(t *testing.T) {
	payload := `{
		"name": "Raj Patel",
		"position": "Chief",
		"flatNumber": "A-1",
		"wing": "A",
		"electionId": "election-1"
	}`

	var member CommitteeMember
	if err := json.Unmarshal([]byte(payload), &member); err != nil {
		t.Fatalf("Failed to decode committee payload: %v", err)
	}
	if member.FlatNumber != "A-1" {
		t.Errorf("FlatNumber = %q, want A-1", member.FlatNumber)
	}
	if member.ElectionID != "election-1" {
		t.Errorf("ElectionID = %q, want election-1", member.ElectionID)
	}
}
