package encoding

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestRawURLData_MarshalJSON(t *testing.T) {
	data := RawURLData([]byte("hello world"))

	b, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}

	expected := `"aGVsbG8gd29ybGQ"`
	if string(b) != expected {
		t.Errorf("MarshalJSON = %s; want %s", b, expected)
	}
}

func TestRawURLData_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{
			name:  "valid base64",
			input: `"aGVsbG8gd29ybGQ"`,
			want:  []byte("hello world"),
		},
		{
			name:  "empty base64",
			input: `""`,
			want:  []byte{},
		},
		{
			name:  "null",
			input: `null`,
			want:  nil,
		},
		{
			name:    "invalid - number",
			input:   `123`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var data RawURLData
			err := json.Unmarshal([]byte(tc.input), &data)

			if tc.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalJSON error: %v", err)
			}
			if !bytes.Equal(data, tc.want) {
				t.Errorf("UnmarshalJSON = %q; want %q", []byte(data), tc.want)
			}
		})
	}
}

func TestRawURLData_KeySafe(t *testing.T) {
	// Encoded hashes become key segments; the alphabet must not contain
	// the key separator.
	data := RawURLData(bytes.Repeat([]byte{0xff, 0x3a, 0x00}, 16))
	if bytes.ContainsRune([]byte(data.String()), ':') {
		t.Errorf("encoded data contains separator: %s", data)
	}
}

func TestHexData_RoundTrip(t *testing.T) {
	orig := HexData([]byte{0xde, 0xad, 0xbe, 0xef})

	b, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}
	if string(b) != `"deadbeef"` {
		t.Errorf("MarshalJSON = %s; want %q", b, `"deadbeef"`)
	}

	var decoded HexData
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("UnmarshalJSON error: %v", err)
	}
	if !bytes.Equal(decoded, orig) {
		t.Errorf("round trip = %x; want %x", []byte(decoded), []byte(orig))
	}
}
