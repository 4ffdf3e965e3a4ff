package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cordata/datakit/pkg/cli"
)

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	err := cli.Output(map[string]any{"name": "users", "rows": 3}, cli.OutputOptions{
		Format: cli.FormatJSON,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if got["name"] != "users" {
		t.Fatalf("name = %v, want users", got["name"])
	}
}

func TestOutputYAMLDefault(t *testing.T) {
	var buf bytes.Buffer
	err := cli.Output(map[string]string{"key": "app:core:Hash:Doc:Name:user"}, cli.OutputOptions{
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !strings.Contains(buf.String(), "app:core:Hash:Doc:Name:user") {
		t.Fatalf("yaml output missing value: %q", buf.String())
	}
}

func TestOutputRaw(t *testing.T) {
	var buf bytes.Buffer
	err := cli.Output([]byte("raw-bytes"), cli.OutputOptions{
		Format: cli.FormatRaw,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if buf.String() != "raw-bytes" {
		t.Fatalf("raw output = %q", buf.String())
	}
}

func TestOutputUnknownFormat(t *testing.T) {
	err := cli.Output("x", cli.OutputOptions{Format: "toml", Writer: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("Output accepted an unknown format")
	}
}

func TestOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	err := cli.Output(map[string]int{"n": 1}, cli.OutputOptions{
		Format: cli.FormatJSON,
		File:   path,
	})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if !strings.Contains(string(data), `"n": 1`) {
		t.Fatalf("file content = %q", data)
	}
}

func TestOutputBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	if err := cli.OutputBytes([]byte{0x81, 0x00}, path); err != nil {
		t.Fatalf("OutputBytes: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != 2 || data[0] != 0x81 {
		t.Fatalf("data = %v", data)
	}
	if err := cli.OutputBytes(nil, ""); err == nil {
		t.Fatal("OutputBytes accepted an empty path")
	}
}
