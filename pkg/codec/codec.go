// Package codec serializes records, grids, and graphs to and from the
// interchange formats datakit speaks: JSON, YAML, XML, CSV, and msgpack.
// The tree formats share one wire shape that keeps item insertion order by
// encoding items as ordered lists, never maps; CSV is grid-only.
//
// Encoders consume the public iteration surface of the model packages and
// never reach into their internals, so a decoded value is an ordinary model
// value built through the same mutation API callers use.
package codec

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cordata/datakit/pkg/graph"
	"github.com/cordata/datakit/pkg/grid"
	"github.com/cordata/datakit/pkg/record"
)

// Sentinel errors.
var (
	// ErrUnknownFormat is returned for format names outside the closed set.
	ErrUnknownFormat = errors.New("codec: unknown format")

	// ErrUnsupported is returned when a format cannot represent the given
	// shape, e.g. a record in CSV.
	ErrUnsupported = errors.New("codec: shape not supported by format")
)

// Format names one of the supported interchange formats.
type Format string

// Supported formats.
const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	XML     Format = "xml"
	CSV     Format = "csv"
	Msgpack Format = "msgpack"
)

// ParseFormat converts a format name, as used in CLI flags and file
// extensions, to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case JSON, YAML, XML, CSV, Msgpack:
		return Format(s), nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// marshalDoc renders one wire document in the given tree format.
func marshalDoc(v any, f Format) ([]byte, error) {
	switch f {
	case JSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("codec: encode json: %w", err)
		}
		return buf.Bytes(), nil
	case YAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("codec: encode yaml: %w", err)
		}
		return b, nil
	case XML:
		b, err := xml.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("codec: encode xml: %w", err)
		}
		return b, nil
	case Msgpack:
		b, err := msgpack.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("codec: encode msgpack: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// unmarshalDoc parses one wire document in the given tree format.
func unmarshalDoc(b []byte, f Format, v any) error {
	switch f {
	case JSON:
		if err := json.Unmarshal(b, v); err != nil {
			return fmt.Errorf("codec: decode json: %w", err)
		}
		return nil
	case YAML:
		if err := yaml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("codec: decode yaml: %w", err)
		}
		return nil
	case XML:
		if err := xml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("codec: decode xml: %w", err)
		}
		return nil
	case Msgpack:
		if err := msgpack.Unmarshal(b, v); err != nil {
			return fmt.Errorf("codec: decode msgpack: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// MarshalRecord serializes a record.
func MarshalRecord(r *record.Record, f Format) ([]byte, error) {
	if f == CSV {
		return nil, fmt.Errorf("%w: record as csv", ErrUnsupported)
	}
	return marshalDoc(recordToDoc(r), f)
}

// UnmarshalRecord deserializes a record.
func UnmarshalRecord(b []byte, f Format) (*record.Record, error) {
	if f == CSV {
		return nil, fmt.Errorf("%w: record as csv", ErrUnsupported)
	}
	var d recordDoc
	if err := unmarshalDoc(b, f, &d); err != nil {
		return nil, err
	}
	return docToRecord(&d), nil
}

// MarshalGrid serializes a grid. CSV output holds the header row and the
// data rows only; schema types and features are not representable there.
func MarshalGrid(g *grid.Grid, f Format) ([]byte, error) {
	if f == CSV {
		return marshalGridCSV(g)
	}
	return marshalDoc(gridToDoc(g), f)
}

// UnmarshalGrid deserializes a grid. CSV input yields Text-typed columns
// taken from the header row.
func UnmarshalGrid(name string, b []byte, f Format) (*grid.Grid, error) {
	if f == CSV {
		return unmarshalGridCSV(name, b)
	}
	var d gridDoc
	if err := unmarshalDoc(b, f, &d); err != nil {
		return nil, err
	}
	return docToGrid(&d)
}

// MarshalGraph serializes a graph. CSV cannot hold a graph; project it to
// a grid first.
func MarshalGraph(g *graph.Graph, f Format) ([]byte, error) {
	if f == CSV {
		return nil, fmt.Errorf("%w: graph as csv", ErrUnsupported)
	}
	return marshalDoc(graphToDoc(g), f)
}

// UnmarshalGraph deserializes a graph.
func UnmarshalGraph(b []byte, f Format) (*graph.Graph, error) {
	if f == CSV {
		return nil, fmt.Errorf("%w: graph as csv", ErrUnsupported)
	}
	var d graphDoc
	if err := unmarshalDoc(b, f, &d); err != nil {
		return nil, err
	}
	return docToGraph(&d)
}
