package types

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrCategoryNotFound = errors.New("failure category not found")
	ErrHelpfulNotFound  = errors.New("helpful mark not found")

	ErrAlreadyMarked     = errors.New("project already marked helpful")
	ErrAlreadyPurchased  = errors.New("project already purchased")
	ErrDuplicateCategory = errors.New("duplicate failure category")

	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrValidation is the base for malformed or out-of-range input. Wrap it
	// with context: fmt.Errorf("price must be positive: %w", ErrValidation).
	ErrValidation = errors.New("invalid input")

	ErrForbidden = errors.New("not allowed for this user")
)
