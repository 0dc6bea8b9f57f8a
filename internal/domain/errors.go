package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Chest errors
	ErrMsgChestNotFound    = "chest not found"
	ErrMsgChestNotEligible = "no eligible chest"
	ErrMsgAlreadyClaimed   = "already claimed from this chest"
	ErrMsgItemNotFound     = "item not found"

	// Economy errors
	ErrMsgInsufficientKeys   = "insufficient keys"
	ErrMsgInsufficientPoints = "insufficient points"
	ErrMsgEmptyInventory     = "inventory is empty"

	// Guard errors
	ErrMsgOpenInFlight = "open already in flight"
	ErrMsgOnCooldown   = "action on cooldown"

	// Input errors
	ErrMsgInvalidInput = "invalid input"

	// Permission errors
	ErrMsgPermissionDenied = "permission denied"

	// Collaborator errors
	ErrMsgGenerationFailed = "content generation failed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Chest errors
	ErrChestNotFound    = errors.New(ErrMsgChestNotFound)
	ErrChestNotEligible = errors.New(ErrMsgChestNotEligible)
	ErrAlreadyClaimed   = errors.New(ErrMsgAlreadyClaimed)
	ErrItemNotFound     = errors.New(ErrMsgItemNotFound)

	// Economy errors
	ErrInsufficientKeys   = errors.New(ErrMsgInsufficientKeys)
	ErrInsufficientPoints = errors.New(ErrMsgInsufficientPoints)
	ErrEmptyInventory     = errors.New(ErrMsgEmptyInventory)

	// Guard errors
	ErrOpenInFlight = errors.New(ErrMsgOpenInFlight)

	// Input errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	// Permission errors
	ErrPermissionDenied = errors.New(ErrMsgPermissionDenied)

	// Collaborator errors
	ErrGenerationFailed = errors.New(ErrMsgGenerationFailed)
)
