package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/cordata/datakit/pkg/cli"
	"github.com/cordata/datakit/pkg/codec"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path     string
		override string
		want     codec.Format
	}{
		{"doc.json", "", codec.JSON},
		{"doc.yaml", "", codec.YAML},
		{"doc.yml", "", codec.YAML},
		{"doc.xml", "", codec.XML},
		{"rows.csv", "", codec.CSV},
		{"doc.msgpack", "", codec.Msgpack},
		{"doc.mp", "", codec.Msgpack},
		{"doc.txt", "", codec.JSON},
		{"-", "", codec.JSON},
		{"doc.json", "yaml", codec.YAML},
	}
	for _, tc := range cases {
		got, err := cli.DetectFormat(tc.path, tc.override)
		if err != nil {
			t.Fatalf("DetectFormat(%q, %q): %v", tc.path, tc.override, err)
		}
		if got != tc.want {
			t.Errorf("DetectFormat(%q, %q) = %v, want %v", tc.path, tc.override, got, tc.want)
		}
	}
}

func TestDetectFormatBadOverride(t *testing.T) {
	if _, err := cli.DetectFormat("doc.json", "toml"); err == nil {
		t.Fatal("DetectFormat accepted an unknown override")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	want := []byte(`{"name":"user"}`)
	if err := cli.WriteOutput(path, want); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	got, err := cli.ReadInput(path)
	if err != nil {
		t.Fatalf("ReadInput: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("round trip = %q, want %q", got, want)
	}
}

func TestReadInputMissingFile(t *testing.T) {
	if _, err := cli.ReadInput(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("ReadInput succeeded on a missing file")
	}
}
