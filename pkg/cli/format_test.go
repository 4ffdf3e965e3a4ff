package cli_test

import (
	"testing"

	"github.com/cordata/datakit/pkg/cli"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{3 * 1024 * 1024, "3.00 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
	}
	for _, tc := range cases {
		if got := cli.FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	if got := cli.FormatCount(1, "row"); got != "1 row" {
		t.Errorf("FormatCount(1) = %q", got)
	}
	if got := cli.FormatCount(3, "row"); got != "3 rows" {
		t.Errorf("FormatCount(3) = %q", got)
	}
}
