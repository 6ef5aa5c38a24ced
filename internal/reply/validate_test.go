package reply

import (
	"errors"
	"testing"

	"github.com/hyperjump/ecorank/internal/apperr"
	"github.com/hyperjump/ecorank/internal/models"
)

func TestValidateCardinality(t *testing.T) {
	two := []models.ProductRecord{{Name: "a", RawIndex: 0.2}, {Name: "b", RawIndex: 0.4}}
	tests := []struct {
		name    string
		records []models.ProductRecord
		links   int
		wantErr bool
	}{
		{"match", two, 2, false},
		{"both empty", nil, 0, false},
		{"fewer records", two[:1], 2, true},
		{"more records", append(two, models.ProductRecord{Name: "c", RawIndex: 0.6}), 2, true},
		{"records for no links", two, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCardinality(tt.records, tt.links)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCardinality() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, apperr.CardinalityMismatch) {
				t.Errorf("error kind = %v, want cardinality_mismatch", apperr.KindOf(err))
			}
		})
	}
}
