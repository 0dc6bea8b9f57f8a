package rarity

import "github.com/osse101/LootChestBot_Go/internal/utils"

// Tiers lists the seven chest rarities from most to least common.
// Order matters: Roll walks the cumulative weights in this order.
var Tiers = []string{"Common", "Uncommon", "Rare", "Epic", "Legendary", "Mythic", "Artifact"}

// weights are roll percentages per tier, summing to 100.
var weights = []float64{40, 25, 15, 10, 5, 4.5, 0.5}

// baseScores are the per-tier score floors. Jitter adds up to half the base.
var baseScores = map[string]int{
	"Common":    10000,
	"Uncommon":  20000,
	"Rare":      40000,
	"Epic":      60000,
	"Legendary": 80000,
	"Mythic":    90000,
	"Artifact":  99000,
}

// scrapValues are points credited when an item of the given rarity is scrapped.
var scrapValues = map[string]int{
	"Common":    10,
	"Uncommon":  20,
	"Rare":      40,
	"Epic":      70,
	"Legendary": 100,
	"Mythic":    150,
	"Artifact":  200,
}

// UnknownScrapValue is credited for rarity strings outside the tier list.
const UnknownScrapValue = 5

var colors = map[string]string{
	"Common":    "🟤",
	"Uncommon":  "🟢",
	"Rare":      "🔵",
	"Epic":      "🟣",
	"Legendary": "🟡",
	"Mythic":    "🔴",
	"Artifact":  "🌈",
}

// UnknownColor is shown for rarity strings outside the tier list.
const UnknownColor = "⬜"

// Roller draws rarities and scores. The zero-value-adjacent New() uses the
// process RNG; tests inject deterministic sources.
type Roller struct {
	randFloat func() float64         // uniform [0,1)
	randInt   func(min, max int) int // uniform [min,max]
}

// New creates a Roller backed by the process RNG.
func New() *Roller {
	return &Roller{
		randFloat: utils.RandomFloat,
		randInt:   utils.RandomInt,
	}
}

// NewWithSource creates a Roller with injected randomness for tests.
func NewWithSource(randFloat func() float64, randInt func(min, max int) int) *Roller {
	return &Roller{randFloat: randFloat, randInt: randInt}
}

// Roll draws a tier from the weight table. A uniform value in [0,100) is
// compared against the running cumulative weight; the first tier whose
// cumulative sum covers the draw wins. Falls back to Common if rounding
// exhausts the table.
func (r *Roller) Roll() string {
	roll := r.randFloat() * 100
	total := 0.0
	for i, w := range weights {
		total += w
		if roll <= total {
			return Tiers[i]
		}
	}
	return "Common"
}

// ScoreFor returns the tier's base score plus a uniform bonus in [0, base/2).
// Unknown rarities score 0.
func (r *Roller) ScoreFor(rarity string) int {
	base, ok := baseScores[rarity]
	if !ok {
		return 0
	}
	return base + r.randInt(0, base/2-1)
}

// ScrapValueFor returns the points awarded for scrapping an item of the
// given rarity. Comparison is case-sensitive; unknown rarities degrade to
// UnknownScrapValue rather than failing.
func ScrapValueFor(rarity string) int {
	if v, ok := scrapValues[rarity]; ok {
		return v
	}
	return UnknownScrapValue
}

// ColorFor returns the emoji marker for a rarity tier.
func ColorFor(rarity string) string {
	if c, ok := colors[rarity]; ok {
		return c
	}
	return UnknownColor
}

// Known reports whether rarity is one of the seven tiers.
func Known(rarity string) bool {
	_, ok := baseScores[rarity]
	return ok
}
