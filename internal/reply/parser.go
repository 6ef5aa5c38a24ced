// Package reply turns the inference service's free-text answer into product records.
//
// The service is instructed to answer with exactly one JSON array of
// {"product_name": string, "index": number} objects. Parsing is strict: any
// deviation fails the whole reply with apperr.MalformedReply, because records
// are matched to links by position only and a skipped or defaulted entry
// would shift every score after it.
package reply

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/ecorank/internal/apperr"
	"github.com/hyperjump/ecorank/internal/models"
)

const op = "reply.Parse"

// wireRecord mirrors one array element. Pointers distinguish a missing or
// null field from a zero value.
type wireRecord struct {
	Name  *string  `json:"product_name"`
	Index *float64 `json:"index"`
}

// Parse decodes raw into records in reply order.
func Parse(raw string) ([]models.ProductRecord, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, apperr.New(apperr.MalformedReply, op, "empty reply")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()

	var wire []*wireRecord
	if err := dec.Decode(&wire); err != nil {
		return nil, apperr.Wrap(apperr.MalformedReply, op, err, describeDecodeError(err))
	}
	if wire == nil {
		return nil, apperr.New(apperr.MalformedReply, op, "reply is not a JSON array")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperr.New(apperr.MalformedReply, op, "unexpected content after the record list")
	}

	records := make([]models.ProductRecord, 0, len(wire))
	for i, w := range wire {
		rec, err := w.toRecord()
		if err != nil {
			return nil, apperr.New(apperr.MalformedReply, op, "entry %d: %s", i, err.Error())
		}
		records = append(records, rec)
	}
	return records, nil
}

func (w *wireRecord) toRecord() (models.ProductRecord, error) {
	if w == nil {
		return models.ProductRecord{}, errors.New("null entry")
	}
	if w.Name == nil {
		return models.ProductRecord{}, errors.New("missing product_name")
	}
	name := strings.TrimSpace(*w.Name)
	if name == "" {
		return models.ProductRecord{}, errors.New("empty product_name")
	}
	if w.Index == nil {
		return models.ProductRecord{}, errors.New("missing index")
	}
	return models.ProductRecord{Name: name, RawIndex: *w.Index}, nil
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "truncated record list"
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("field %s has JSON type %s", typeErr.Field, typeErr.Value)
		}
		return fmt.Sprintf("unexpected JSON %s in record list", typeErr.Value)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return strings.TrimPrefix(err.Error(), "json: ")
	default:
		return "cannot decode record list"
	}
}
