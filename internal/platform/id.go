package platform

import "github.com/google/uuid"

// NewID returns a random UUID used as a configuration record id.
func NewID() string {
	return uuid.New().String()
}
