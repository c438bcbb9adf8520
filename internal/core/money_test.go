package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"50000000", 50_000_000, true},
		{"2,000,000", 2_000_000, true},
		{"1 500 000", 1_500_000, true},
		{"  800 ", 800, true},
		{"0", 0, true},
		{"", 0, false},
		{"-100", 0, false},
		{"+100", 0, false},
		{"12.50", 0, false},
		{"abc", 0, false},
		{",,,", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.in)
		}
		if tc.ok && got.Units != tc.want {
			t.Fatalf("case %d (%q) got %d, want %d", i, tc.in, got.Units, tc.want)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Units: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Units: 0}).Validate(); err != nil {
		t.Fatalf("expected ok for zero, got %v", err)
	}
	if err := (Money{Units: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{8000000, "8,000,000"},
		{50000000, "50,000,000"},
		{-4500, "-4,500"},
	}
	for i, tc := range cases {
		if got := (Money{Units: tc.in}).Format(); got != tc.want {
			t.Fatalf("case %d got %q, want %q", i, got, tc.want)
		}
	}
}
