package pairing

import (
	"errors"
	"math/rand"
	"time"

	"github.com/elfworks/santa-api-go/pkg/models"
)

// maxAttempts bounds the shuffle-and-reject loop. Each attempt succeeds with
// probability >= 1/2 (the worst case, N=2), so 50 attempts make exhaustion
// vanishingly unlikely.
const maxAttempts = 50

var (
	// ErrInsufficientParticipants is returned when fewer than two
	// participants are supplied.
	ErrInsufficientParticipants = errors.New("pairing: at least two participants are required")

	// ErrDerangementUnobtainable is returned when the attempt budget is
	// exhausted without finding a valid derangement. Callers may retry the
	// whole operation.
	ErrDerangementUnobtainable = errors.New("pairing: no valid assignment found within the attempt budget")
)

// Derange pairs every participant with exactly one other as gift receiver.
// The result is a permutation of the input with no participant assigned to
// themselves. Givers appear in input order; the receiver mapping is
// randomized on every call.
func Derange(participants []models.Participant) ([]models.Assignment, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return derangeWithRand(participants, r)
}

func derangeWithRand(participants []models.Participant, r *rand.Rand) ([]models.Assignment, error) {
	if len(participants) < 2 {
		return nil, ErrInsufficientParticipants
	}

	receivers := make([]models.Participant, len(participants))
	copy(receivers, participants)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		r.Shuffle(len(receivers), func(i, j int) {
			receivers[i], receivers[j] = receivers[j], receivers[i]
		})

		if isDerangementOf(participants, receivers) {
			assignments := make([]models.Assignment, len(participants))
			for i, giver := range participants {
				assignments[i] = models.Assignment{
					GiverID:    giver.ID,
					ReceiverID: receivers[i].ID,
				}
			}
			return assignments, nil
		}
	}

	return nil, ErrDerangementUnobtainable
}

// isDerangementOf reports whether no position maps a giver to themselves.
func isDerangementOf(givers, receivers []models.Participant) bool {
	for i := range givers {
		if givers[i].ID == receivers[i].ID {
			return false
		}
	}
	return true
}
