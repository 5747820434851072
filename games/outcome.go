package games

import "math/rand"

// OutcomeSource produces a discrete outcome in [1, max] for a game draw.
// It is stateless; implementations must be safe for concurrent use.
type OutcomeSource interface {
	Draw(max int) int
}

type randSource struct{}

// NewRandSource returns the production outcome source backed by math/rand
func NewRandSource() OutcomeSource {
	return randSource{}
}

func (randSource) Draw(max int) int {
	return rand.Intn(max) + 1
}
