// Package json contains utilities for handling JSON.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeJSON decodes exactly one JSON value from the decoder. Anything left
// in the stream after the first value is an error, so request bodies cannot
// smuggle a second document past validation.
func DecodeJSON(dst any, decoder *json.Decoder) error {
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}

	switch _, err := decoder.Token(); {
	case err == nil:
		return errors.New("unexpected token after JSON value")
	case !errors.Is(err, io.EOF):
		return fmt.Errorf("reading past JSON value: %w", err)
	}
	return nil
}
