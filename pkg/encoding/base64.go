// Package encoding provides JSON-serializable byte encodings used to render
// content-hash identities. RawURLData is the encoding used for hash-derived
// store key segments: raw-URL base64 never contains the key separator.
package encoding

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// RawURLData is a byte slice that serializes to/from raw-URL base64 in JSON.
// Its alphabet is safe for use as a colon-delimited key segment.
type RawURLData []byte

// MarshalJSON implements json.Marshaler.
func (b RawURLData) MarshalJSON() ([]byte, error) {
	return []byte(`"` + base64.RawURLEncoding.EncodeToString(b) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *RawURLData) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("unmarshal json base64 data: empty data")
	}
	switch data[0] {
	case 'n': // null
		return nil
	case '"':
		if len(data) < 2 || data[len(data)-1] != '"' {
			return errors.New("unmarshal json base64 data: invalid string")
		}
		decoded, err := base64.RawURLEncoding.DecodeString(string(data[1 : len(data)-1]))
		if err != nil {
			return err
		}
		*b = decoded
		return nil
	default:
		return fmt.Errorf("invalid base64 data: %s", string(data))
	}
}

// String returns the raw-URL base64 representation.
func (b RawURLData) String() string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// HexData is a byte slice that serializes to/from hexadecimal in JSON.
type HexData []byte

// MarshalJSON implements json.Marshaler.
func (h HexData) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(h) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *HexData) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("unmarshal json hex data: empty data")
	}
	switch data[0] {
	case 'n': // null
		return nil
	case '"':
		if len(data) < 2 || data[len(data)-1] != '"' {
			return errors.New("unmarshal json hex data: invalid string")
		}
		decoded, err := hex.DecodeString(string(data[1 : len(data)-1]))
		if err != nil {
			return err
		}
		*h = decoded
		return nil
	default:
		return fmt.Errorf("invalid hex data: %s", string(data))
	}
}

// String returns the hex-encoded string representation.
func (h HexData) String() string {
	return hex.EncodeToString(h)
}
