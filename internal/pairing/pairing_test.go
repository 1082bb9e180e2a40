package pairing

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/elfworks/santa-api-go/pkg/models"
)

func makeParticipants(n int) []models.Participant {
	participants := make([]models.Participant, n)
	for i := range participants {
		participants[i] = models.Participant{
			ID:   fmt.Sprintf("p%d", i),
			Name: fmt.Sprintf("Participant %d", i),
		}
	}
	return participants
}

// checkDerangement verifies the full contract: one assignment per
// participant, givers in input order, receivers a permutation of the input
// ids, and no self-assignment.
func checkDerangement(t *testing.T, participants []models.Participant, assignments []models.Assignment) {
	t.Helper()

	if len(assignments) != len(participants) {
		t.Fatalf("expected %d assignments, got %d", len(participants), len(assignments))
	}

	seenReceivers := make(map[string]bool, len(assignments))
	for i, a := range assignments {
		if a.GiverID != participants[i].ID {
			t.Errorf("assignment %d: giver %s does not match input order (%s)", i, a.GiverID, participants[i].ID)
		}
		if a.GiverID == a.ReceiverID {
			t.Errorf("assignment %d: %s is assigned to themselves", i, a.GiverID)
		}
		if seenReceivers[a.ReceiverID] {
			t.Errorf("receiver %s appears more than once", a.ReceiverID)
		}
		seenReceivers[a.ReceiverID] = true
	}

	for _, p := range participants {
		if !seenReceivers[p.ID] {
			t.Errorf("participant %s never receives", p.ID)
		}
	}
}

func TestDerangeSizes(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 10, 50, 100, 500} {
		participants := makeParticipants(n)
		assignments, err := Derange(participants)
		if err != nil {
			t.Fatalf("N=%d: unexpected error: %v", n, err)
		}
		checkDerangement(t, participants, assignments)
	}
}

func TestDerangeTooFewParticipants(t *testing.T) {
	for _, n := range []int{0, 1} {
		_, err := Derange(makeParticipants(n))
		if !errors.Is(err, ErrInsufficientParticipants) {
			t.Errorf("N=%d: expected ErrInsufficientParticipants, got %v", n, err)
		}
	}
}

func TestDerangeTwoParticipantsAlwaysSwap(t *testing.T) {
	participants := makeParticipants(2)
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		assignments, err := derangeWithRand(participants, r)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", i, err)
		}
		if assignments[0].ReceiverID != "p1" || assignments[1].ReceiverID != "p0" {
			t.Fatalf("trial %d: N=2 must always produce the swap, got %+v", i, assignments)
		}
	}
}

// For three participants only two of the six permutations are derangements:
// the two 3-cycles. Both should show up with roughly equal frequency.
func TestDerangeThreeParticipantsDistribution(t *testing.T) {
	participants := makeParticipants(3)
	r := rand.New(rand.NewSource(42))

	const trials = 10000
	counts := make(map[string]int)

	for i := 0; i < trials; i++ {
		assignments, err := derangeWithRand(participants, r)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", i, err)
		}
		key := assignments[0].ReceiverID + assignments[1].ReceiverID + assignments[2].ReceiverID
		counts[key]++
	}

	if len(counts) != 2 {
		t.Fatalf("expected exactly 2 distinct derangements for N=3, got %d: %v", len(counts), counts)
	}

	// Each cycle has expected frequency 1/2; allow a generous tolerance.
	for key, count := range counts {
		frac := float64(count) / float64(trials)
		if frac < 0.45 || frac > 0.55 {
			t.Errorf("derangement %s appeared with frequency %.3f, want roughly 0.5", key, frac)
		}
	}
}

func TestDerangeRepeatedCallsIndependentlyValid(t *testing.T) {
	participants := makeParticipants(20)

	first, err := Derange(participants)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := Derange(participants)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	checkDerangement(t, participants, first)
	checkDerangement(t, participants, second)
}

func TestDerangeEndToEndScenario(t *testing.T) {
	participants := []models.Participant{
		{ID: "A", Name: "Alice"},
		{ID: "B", Name: "Bob"},
		{ID: "C", Name: "Carol"},
		{ID: "D", Name: "Dave"},
	}

	assignments, err := Derange(participants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkDerangement(t, participants, assignments)
}

// The worst case for the retry loop is N=2, where each shuffle is a valid
// derangement with probability 1/2. Over many runs the budget of 50 attempts
// must never be exhausted in practice.
func TestDerangeTwoParticipantsStress(t *testing.T) {
	participants := makeParticipants(2)
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		if _, err := derangeWithRand(participants, r); err != nil {
			t.Fatalf("run %d: retry budget exhausted: %v", i, err)
		}
	}
}
