package models

import (
	"strings"

	"github.com/hyperjump/ecorank/internal/apperr"
)

// LinkInput is the body of an add request.
type LinkInput struct {
	Link string `json:"link"`
}

// Validate trims the link and rejects empty or blank values.
func (in *LinkInput) Validate() error {
	in.Link = strings.TrimSpace(in.Link)
	if in.Link == "" {
		return apperr.New(apperr.InvalidInput, "models.LinkInput", "link cannot be empty")
	}
	return nil
}
