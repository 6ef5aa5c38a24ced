package reply

import (
	"github.com/hyperjump/ecorank/internal/apperr"
	"github.com/hyperjump/ecorank/internal/models"
)

// ValidateCardinality fails with apperr.CardinalityMismatch unless there is
// exactly one record per submitted link.
func ValidateCardinality(records []models.ProductRecord, links int) error {
	if len(records) != links {
		return apperr.New(apperr.CardinalityMismatch, "reply.ValidateCardinality",
			"reply has %d records for %d links", len(records), links)
	}
	return nil
}
