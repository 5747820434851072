package games

import "fmt"

// Variant identifies one of the dice mini-games
type Variant string

const (
	VariantFootball   Variant = "football"
	VariantBasketball Variant = "basketball"
	VariantDarts      Variant = "darts"
	VariantBowling    Variant = "bowling"
	VariantSlot       Variant = "slot"
	VariantDice       Variant = "dice"
)

// Game holds the static rules for one variant: the outcome domain is
// 1..OutcomeMax inclusive, and an outcome in WinningOutcomes pays
// bet * PayoutMultiplier.
type Game struct {
	Variant          Variant
	OutcomeMax       int
	WinningOutcomes  []int
	PayoutMultiplier int64
}

// IsWinning reports whether the drawn outcome is a member of the winning set
func (g *Game) IsWinning(outcome int) bool {
	for _, w := range g.WinningOutcomes {
		if w == outcome {
			return true
		}
	}
	return false
}

// Catalog is the read-only mapping of variant to game rules
type Catalog struct {
	games map[Variant]*Game
}

// NewCatalog builds a catalog from the given games
func NewCatalog(games ...*Game) *Catalog {
	m := make(map[Variant]*Game, len(games))
	for _, g := range games {
		m[g.Variant] = g
	}
	return &Catalog{games: m}
}

// Get returns the game for a variant, or an error for an unknown variant
func (c *Catalog) Get(variant Variant) (*Game, error) {
	g, ok := c.games[variant]
	if !ok {
		return nil, fmt.Errorf("unknown game variant: %s", variant)
	}
	return g, nil
}

// Variants returns all variant identifiers in the catalog
func (c *Catalog) Variants() []Variant {
	variants := make([]Variant, 0, len(c.games))
	for v := range c.games {
		variants = append(variants, v)
	}
	return variants
}

// DefaultCatalog returns the stock six games with their Telegram dice
// outcome domains and winning sets. All stock games pay 2x the bet.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		&Game{Variant: VariantFootball, OutcomeMax: 5, WinningOutcomes: []int{3, 4, 5}, PayoutMultiplier: 2},
		&Game{Variant: VariantBasketball, OutcomeMax: 5, WinningOutcomes: []int{4, 5}, PayoutMultiplier: 2},
		&Game{Variant: VariantDarts, OutcomeMax: 6, WinningOutcomes: []int{6}, PayoutMultiplier: 2},
		&Game{Variant: VariantBowling, OutcomeMax: 6, WinningOutcomes: []int{6}, PayoutMultiplier: 2},
		&Game{Variant: VariantSlot, OutcomeMax: 64, WinningOutcomes: []int{1, 22, 43, 64}, PayoutMultiplier: 2},
		&Game{Variant: VariantDice, OutcomeMax: 6, WinningOutcomes: []int{6}, PayoutMultiplier: 2},
	)
}
