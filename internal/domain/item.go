package domain

// LootItem is one generated item inside a chest. Ordinal is the 1-based
// position in the chest's item list and is the key users pass to claim.
type LootItem struct {
	Ordinal     int    `json:"ordinal"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      string `json:"rarity"`
	Score       int    `json:"score"`
	ImageRef    string `json:"image_ref"`
}

// InventoryEntry is a claimed copy of a LootItem owned by a user.
// SourceChestID records provenance and enforces one claim per chest per user.
type InventoryEntry struct {
	LootItem
	SourceChestID string `json:"source_chest_id"`
}

// CommunityRecord is an append-only copy of a claimed item together with
// the claiming user's display name, kept for leaderboard ranking.
type CommunityRecord struct {
	InventoryEntry
	Username string `json:"username"`
}
