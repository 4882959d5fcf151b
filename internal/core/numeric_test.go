package core

import "testing"

func TestFormatInput(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"123", "123"},
		{"1a2b3", "123"},
		{"1.5", "1,5"},
		{"1,5", "1,5"},
		{"1,2,3", "1,23"},
		{"1,2345", "1,23"},
		{",5", "0,5"},
		{"-12", "-12"},
		{"--12--", "-12"},
		{"12-34", "1234"},
		{"abc", ""},
		{"12,34,56,78", "12,34"},
	}
	for _, tc := range cases {
		if got := FormatInput(tc.in); got != tc.out {
			t.Errorf("FormatInput(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestFormatBlur(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"123", "123,00"},
		{"123,4", "123,40"},
		{"123,456", "123,45"},
		{"0", "0,00"},
		{",5", "0,50"},
		{"1.5", "1,50"},
		{"-", ""},
		{"-,5", "-0,50"},
	}
	for _, tc := range cases {
		if got := FormatBlur(tc.in); got != tc.out {
			t.Errorf("FormatBlur(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestFormatBlurIdempotent(t *testing.T) {
	inputs := []string{"", "1", "1,2", "1,23", "1,234", "-5", "abc", "12.5", ",7", "-", "-,"}
	for _, in := range inputs {
		once := FormatBlur(in)
		twice := FormatBlur(once)
		if once != twice {
			t.Errorf("FormatBlur not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"", 0},
		{"100,00", 100},
		{"100.00", 100},
		{"50,50", 50.5},
		{"-12,5", -12.5},
		{"abc", 0},
		{"1,2,3", 0},
		{" 2,50 ", 2.5},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestValidAmount(t *testing.T) {
	valid := []string{"", "1", "1,5", "1.5", "-3,20"}
	for _, s := range valid {
		if !ValidAmount(s) {
			t.Errorf("ValidAmount(%q) = false, want true", s)
		}
	}
	invalid := []string{"abc", "1,2,3", "--1"}
	for _, s := range invalid {
		if ValidAmount(s) {
			t.Errorf("ValidAmount(%q) = true, want false", s)
		}
	}
}

func TestCleanRegistrationNumber(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"1234567890123456", "1234567890123456"},
		{"12-34 567890АБ1234567890", "1234567890123456"},
		{"abc123", "123"},
	}
	for _, tc := range cases {
		if got := CleanRegistrationNumber(tc.in); got != tc.out {
			t.Errorf("CleanRegistrationNumber(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in  float64
		out float64
	}{
		{30.1, 30.1},
		{30.105, 30.11},
		{-30.105, -30.11},
		{30.104, 30.1},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.out {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.out)
		}
	}
}
