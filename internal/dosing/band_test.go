package dosing

import "testing"

func TestRangeContains(t *testing.T) {
	tests := []struct {
		r    Range
		v    float64
		want bool
	}{
		{Above(0), 0, false},
		{Above(0), 0.001, true},
		{AtLeast(200), 200, true},
		{Below(50), 50, false},
		{Below(50), 49.9, true},
		{Closed(-25, 0), -25, true},
		{Closed(-25, 0), 0, true},
		{HalfOpen(-75, -25), -25, false},
		{HalfOpen(-75, -25), -75, true},
		{LeftOpen(6, 9.5), 6, false},
		{LeftOpen(6, 9.5), 9.5, true},
		{anyChange, -1e9, true},
	}

	for _, tt := range tests {
		if got := tt.r.Contains(tt.v); got != tt.want {
			t.Errorf("%v.Contains(%v) = %v, want %v", tt.r, tt.v, got, tt.want)
		}
	}
}

func TestRangeString(t *testing.T) {
	tests := []struct {
		r    Range
		want string
	}{
		{Above(0), "> 0"},
		{AtLeast(200), "≥ 200"},
		{Below(-100), "< -100"},
		{Closed(-25, 0), "[-25, 0]"},
		{HalfOpen(140, 200), "[140, 200)"},
		{LeftOpen(6, 9.5), "(6, 9.5]"},
		{anyChange, "any"},
	}

	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
