package version

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2.5", "2.5", 0},
		{"2.5", "2.5.0", 0},
		{"2.5", "2.6", -1},
		{"3.0", "2.6", 1},
		{"2.10", "2.9", 1},
		{"0", "1.0", -1},
		{"2.5.1", "2.5", 1},
		{"v2.5", "2.5", 0},
		{"2.5.0.1", "2.5.0.2", -1},
		{"latest", "nightly", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLessOrEqual(t *testing.T) {
	if !LessOrEqual("2.5", "2.5") {
		t.Error("2.5 <= 2.5 should hold")
	}
	if LessOrEqual("2.6", "2.5") {
		t.Error("2.6 <= 2.5 should not hold")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		v       string
		wantErr bool
	}{
		{"2.5", false},
		{"2.16.0-rc1", false},
		{"", true},
		{"2.5 beta", true},
		{"../2.5", true},
		{"repo:2.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.v, func(t *testing.T) {
			if err := Validate(tt.v); (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
		})
	}
}
