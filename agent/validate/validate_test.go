package validate

import (
	"strings"
	"testing"
	"time"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"jane@example.com", true},
		{"jane.doe+leasing@mail.example.org", true},
		{"j_d-1@ex-ample.com", true},
		{"", false},
		{"janeexample.com", false},
		{"jane@", false},
		{"@example.com", false},
		{"jane@example", false},
		{"jane doe@example.com", false},
		{"jane@exa mple.com", false},
	}
	for _, tc := range cases {
		if got := Email(tc.in); got != tc.want {
			t.Errorf("Email(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestEmailShape(t *testing.T) {
	t.Parallel()

	// every accepted address has exactly one @, non-empty parts, and a dot
	// in the domain
	accepted := []string{"jane@example.com", "a@b.c", "x+y@host.co.uk"}
	for _, s := range accepted {
		if !Email(s) {
			t.Fatalf("expected %q to validate", s)
		}
		at := strings.Count(s, "@")
		if at != 1 {
			t.Errorf("%q has %d '@'", s, at)
		}
		parts := strings.SplitN(s, "@", 2)
		if parts[0] == "" || parts[1] == "" {
			t.Errorf("%q has an empty local or domain part", s)
		}
		if !strings.Contains(parts[1], ".") {
			t.Errorf("%q has no dot in the domain", s)
		}
	}
}

func TestPhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"555-123-4567", true},
		{"(555) 123-4567", true},
		{"+1 555 123 4567", true},
		{"+1(555)123.4567", true},
		{"123-4567", true},
		{"", false},
		{"555-123-456", false},
		{"call me maybe", false},
		{"555-123-45678", false},
	}
	for _, tc := range cases {
		if got := Phone(tc.in); got != tc.want {
			t.Errorf("Phone(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMoveInDateAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want bool
	}{
		{"2099-01-01", true},
		{"January 7, 2026", true},
		{"2026/03/15", true},
		{"2020-01-01", false},
		{"not a date", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := MoveInDateAt(tc.in, now); got != tc.want {
			t.Errorf("MoveInDateAt(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBedCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in     string
		wantN  int
		wantOK bool
	}{
		{"1", 1, true},
		{"2", 2, true},
		{"10", 10, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"two", 0, false},
		{"2.5", 0, false},
		{"2 ", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		n, ok := BedCount(tc.in)
		if n != tc.wantN || ok != tc.wantOK {
			t.Errorf("BedCount(%q) = (%d, %v), want (%d, %v)", tc.in, n, ok, tc.wantN, tc.wantOK)
		}
	}
}
