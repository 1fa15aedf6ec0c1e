package version

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.3", "1.2.3-r1", -1},
		{"1.2.3-r1", "1.2.3", 1},
		{"1.2.3-r1", "1.2.3-r2", -1},
		{"1.2_alpha1", "1.2", -1},
		{"1.2", "1.2_alpha1", 1},
		{"1.2_alpha1", "1.2_alpha2", -1},
		{"1.2_alpha", "1.2_beta", -1},
		{"1.2_beta", "1.2_pre1", -1},
		{"1.2_pre1", "1.2_rc1", -1},
		{"1.2_rc1", "1.2", -1},
		{"1.2", "1.2_git1", -1},
		{"1.2_p1", "1.2_p2", -1},
		{"1.0", "1.0a", -1},
		{"1.0a", "1.0b", -1},
		{"1", "1.0", 0},
		{"1.0", "1.0.0", 0},
		{"2.0", "10.0", -1},
		{"1.2.3", "1.2.3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); sign(got) != sign(tt.want) {
				t.Errorf("Compare(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(tt.b, tt.a); sign(got) != -sign(tt.want) {
				t.Errorf("Compare(%q, %q) = %d, want sign %d", tt.b, tt.a, got, -sign(tt.want))
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestValidate(t *testing.T) {
	valid := []string{
		"1.2.3", "1.2.3-r1", "1.2_alpha1", "1.0a", "1", "1.2.3_git20210101-r2",
	}
	invalid := []string{
		"", "abc", "1.2.", ".1.2", "1.2-r", "1.2-rabc", "1.2_bogus1", "1.2_",
	}
	for _, s := range valid {
		if !Validate(s) {
			t.Errorf("Validate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if Validate(s) {
			t.Errorf("Validate(%q) = true, want false", s)
		}
	}
}

func TestCompareTransitivity(t *testing.T) {
	ordered := []string{
		"1.0_alpha1", "1.0_alpha2", "1.0_beta1", "1.0_pre1", "1.0_rc1",
		"1.0", "1.0-r1", "1.0_git1", "1.0_p1", "1.1",
	}
	for i := 0; i < len(ordered)-1; i++ {
		if Compare(ordered[i], ordered[i+1]) >= 0 {
			t.Errorf("expected %q < %q", ordered[i], ordered[i+1])
		}
	}
}

func TestCompareLetterOrdering(t *testing.T) {
	// A letter-qualified version with no suffix sorts above its unqualified
	// base, and letters order alphabetically.
	if Compare("1.0", "1.0a") >= 0 {
		t.Errorf("expected 1.0 < 1.0a")
	}
	if Compare("1.0a", "1.0b") >= 0 {
		t.Errorf("expected 1.0a < 1.0b")
	}
}
