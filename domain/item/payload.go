package item

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseData reads exactly one JSON object from r. Numbers are kept as
// json.Number so integers wider than a float64 mantissa survive unchanged.
func ParseData(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: got null", ErrInvalidPayload)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the object", ErrInvalidPayload)
	}
	return data, nil
}

// ParseDataBytes is ParseData over an in-memory document.
func ParseDataBytes(raw []byte) (map[string]any, error) {
	return ParseData(bytes.NewReader(raw))
}
