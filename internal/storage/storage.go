// Package storage defines where the session's last computed product list lives.
package storage

import (
	"context"

	"github.com/hyperjump/ecorank/internal/models"
)

// SessionStore holds the most recently committed product list of one session.
// Implementations must make Save and Clear atomic with respect to Products.
type SessionStore interface {
	// ID identifies the current session; it changes on Clear.
	ID() string
	// Products returns a copy of the last committed list (empty, never nil).
	Products(ctx context.Context) ([]models.ScoredProduct, error)
	// Save replaces the committed list.
	Save(ctx context.Context, products []models.ScoredProduct) error
	// Clear empties the list and starts a new session.
	Clear(ctx context.Context) error
}
