package routes

import (
	"reflect"
	"testing"
	"time"

	"elections/models"
)

func entry(id, name, position string, votes int, createdAt time.Time) models.CandidateResult {
	return models.CandidateResult{
		CandidateID:   id,
		CandidateName: name,
		Position:      position,
		TotalVotes:    votes,
		CreatedAt:     createdAt,
	}
}

func TestRankCandidateResults(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	entries := []models.CandidateResult{
		entry("c", "Carol", "President", 10, base.Add(2*time.Hour)),
		entry("a", "Alice", "President", 25, base),
		entry("b", "Bob", "President", 10, base.Add(time.Hour)),
	}

	ranked := RankCandidateResults(entries)

	wantOrder := []string{"a", "b", "c"}
	for i, want := range wantOrder {
		if ranked[i].CandidateID != want {
			t.Fatalf("ranked[%d] = %s, want %s", i, ranked[i].CandidateID, want)
		}
	}

	// Ties on votes and creation time fall back to the candidate id.
	tied := []models.CandidateResult{
		entry("z", "Zoe", "President", 10, base),
		entry("m", "Mia", "President", 10, base),
	}
	ranked = RankCandidateResults(tied)
	if ranked[0].CandidateID != "m" || ranked[1].CandidateID != "z" {
		t.Errorf("tie-break by id gave order %s, %s", ranked[0].CandidateID, ranked[1].CandidateID)
	}

	// Input slice must not be reordered.
	if entries[0].CandidateID != "c" {
		t.Error("RankCandidateResults mutated its input")
	}
}

func TestSplitWinnersLosers(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ranked := RankCandidateResults([]models.CandidateResult{
		entry("p1", "Alice", "President", 40, base),
		entry("p2", "Bob", "President", 30, base),
		entry("v1", "Carol", "Vice President", 35, base),
		entry("v2", "Dan", "Vice President", 20, base),
		entry("g1", "Eve", "General Secretary", 5, base),
	})

	winners, losers := SplitWinnersLosers(ranked)

	gotWinners := []string{}
	for _, w := range winners {
		gotWinners = append(gotWinners, w.CandidateID)
	}
	if !reflect.DeepEqual(gotWinners, []string{"p1", "v1", "g1"}) {
		t.Errorf("winners = %v, want [p1 v1 g1]", gotWinners)
	}

	gotLosers := []string{}
	for _, l := range losers {
		gotLosers = append(gotLosers, l.CandidateID)
	}
	if !reflect.DeepEqual(gotLosers, []string{"p2", "v2"}) {
		t.Errorf("losers = %v, want [p2 v2]", gotLosers)
	}
}

func TestSplitWinnersLosersUnopposed(t *testing.T) {
	base := time.Now()
	winners, losers := SplitWinnersLosers([]models.CandidateResult{
		entry("only", "Solo", "President", 0, base),
	})
	if len(winners) != 1 || winners[0].CandidateID != "only" {
		t.Errorf("unopposed candidate should win, got winners %v", winners)
	}
	if len(losers) != 0 {
		t.Errorf("expected no losers, got %v", losers)
	}
}

func TestComputeNonVotingFlats(t *testing.T) {
	all := []string{"A-101", "A-102", "B-201", "B-202"}

	got := ComputeNonVotingFlats(all, []string{"A-102", "B-202"})
	if !reflect.DeepEqual(got, []string{"A-101", "B-201"}) {
		t.Errorf("ComputeNonVotingFlats = %v, want [A-101 B-201]", got)
	}

	if got := ComputeNonVotingFlats(all, nil); !reflect.DeepEqual(got, all) {
		t.Errorf("with no voters every flat is non-voting, got %v", got)
	}

	if got := ComputeNonVotingFlats(all, all); len(got) != 0 {
		t.Errorf("with full turnout expected no non-voting flats, got %v", got)
	}
}
