package domain

import "time"

// Chest represents a spawned loot container. Items stay empty until the
// first successful open; Claimants records which users already took an
// item from it.
type Chest struct {
	ID          string     `json:"id"`
	Rarity      string     `json:"rarity"`
	Score       int        `json:"score"`
	Description string     `json:"description"`
	ImageRef    string     `json:"image_ref"`
	GuildID     string     `json:"guild_id"`
	Items       []LootItem `json:"items"`
	Claimants   []string   `json:"claimants"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Opened reports whether the chest's loot has been generated.
// A chest is opened exactly once; every later open returns the same items.
func (c *Chest) Opened() bool {
	return len(c.Items) > 0
}

// HasClaimant reports whether userID already claimed an item from this chest.
func (c *Chest) HasClaimant(userID string) bool {
	for _, id := range c.Claimants {
		if id == userID {
			return true
		}
	}
	return false
}
