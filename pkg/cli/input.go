package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cordata/datakit/pkg/codec"
)

// DetectFormat maps a file extension to a codec format. An explicit
// format flag wins over the extension; pass it as override. Stdin ("-")
// and unknown extensions fall back to JSON.
func DetectFormat(path, override string) (codec.Format, error) {
	if override != "" {
		return codec.ParseFormat(override)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return codec.JSON, nil
	case ".yaml", ".yml":
		return codec.YAML, nil
	case ".xml":
		return codec.XML, nil
	case ".csv":
		return codec.CSV, nil
	case ".msgpack", ".mp":
		return codec.Msgpack, nil
	default:
		return codec.JSON, nil
	}
}

// ReadInput reads a file, or stdin when path is "-" or empty.
func ReadInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// WriteOutput writes to a file, or stdout when path is "-" or empty.
func WriteOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
