package utils

import "testing"

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"Amara.Qureshi@SwissPharma.com", "amara.qureshi@swisspharma.com"},
		{"  bilal@swisspharma.com ", "bilal@swisspharma.com"},
		{"already@lower.case", "already@lower.case"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
