package platform

import (
	"github.com/google/uuid"
)

// NewID returns a new opaque record identifier.
func NewID() string {
	return uuid.New().String()
}
