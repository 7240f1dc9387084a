package domain

import "github.com/google/uuid"

// NewID produces an opaque unique identifier for a new entity.
// Shared by every entity constructor so id generation stays in one place.
func NewID() string {
	return uuid.NewString()
}
