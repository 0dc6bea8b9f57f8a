package handler

import (
	"errors"
	"fmt"

	"github.com/osse101/LootChestBot_Go/internal/cooldown"
	"github.com/osse101/LootChestBot_Go/internal/domain"
)

func usageError(usage string) error {
	return fmt.Errorf("%w: usage: %s", domain.ErrInvalidInput, usage)
}

// replyForError translates a service failure into the reply the user
// sees. Every domain error gets a specific message; anything unexpected
// collapses to the generic one.
func replyForError(err error, cmd *command) *Reply {
	var cd cooldown.ErrOnCooldown
	if errors.As(err, &cd) {
		secs := int(cd.Remaining.Seconds())
		if secs < 1 {
			secs = 1
		}
		return &Reply{Content: fmt.Sprintf("⏳ Please wait %d second(s) before opening another chest.", secs)}
	}

	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return &Reply{Content: msgNoPermission}
	case errors.Is(err, domain.ErrOpenInFlight):
		return &Reply{Content: "🛑 You are already opening a chest. Hold on."}
	case errors.Is(err, domain.ErrChestNotFound):
		return &Reply{Content: "❌ That chest is not available."}
	case errors.Is(err, domain.ErrChestNotEligible):
		return &Reply{Content: "❌ You don't have loot available to claim. Open a chest first."}
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return &Reply{Content: "❌ You already claimed an item from that chest."}
	case errors.Is(err, domain.ErrItemNotFound):
		return &Reply{Content: "❌ Invalid item number."}
	case errors.Is(err, domain.ErrInsufficientKeys):
		return &Reply{Content: "🔑 You don't have enough keys."}
	case errors.Is(err, domain.ErrInsufficientPoints):
		return &Reply{Content: "🎖️ You don't have enough points."}
	case errors.Is(err, domain.ErrEmptyInventory):
		return &Reply{Content: "🧾 The inventory is empty."}
	case errors.Is(err, domain.ErrGenerationFailed):
		return &Reply{Content: "⚠️ Error generating loot. Your key was not spent; try again."}
	case errors.Is(err, domain.ErrInvalidInput):
		return &Reply{Content: fmt.Sprintf("❌ Usage: `%s`", cmd.usage)}
	default:
		return &Reply{Content: msgGenericError}
	}
}
