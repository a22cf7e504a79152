package textutil

import "testing"

func TestPeriodEnd(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1995", "1995-12-31", true},
		{"1995-02", "1995-02-28", true},
		{"1995-04", "1995-04-30", true},
		{"1995-07", "1995-07-31", true},
		{"1995-03-21", "1995-03-21", true},
		{"1995-03-21T00:00:00Z", "1995-03-21", true},
		{"", "", false},
		{"95", "", false},
		{"1995-13", "", false},
	}
	for _, tt := range tests {
		got, ok := PeriodEnd(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("PeriodEnd(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPeriodStart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1995", "1995-01-01"},
		{"1995-06", "1995-06-01"},
		{"1995-06-15", "1995-06-15"},
	}
	for _, tt := range tests {
		got, ok := PeriodStart(tt.in)
		if !ok || got != tt.want {
			t.Fatalf("PeriodStart(%q) = %q want %q", tt.in, got, tt.want)
		}
	}
	if _, ok := PeriodStart("unknown"); ok {
		t.Fatal("expected invalid date to be rejected")
	}
}
