package version

import "testing"

func TestFilter_PrepareEligible(t *testing.T) {
	f := NewFilter("2.5", "3.0")

	var selected []string
	for _, min := range []string{"1.0", "2.0", "2.5", "3.0"} {
		if f.PrepareEligible(min) {
			selected = append(selected, min)
		}
	}

	want := []string{"1.0", "2.0", "2.5"}
	if len(selected) != len(want) {
		t.Fatalf("selected %v, want %v", selected, want)
	}
	for i := range want {
		if selected[i] != want[i] {
			t.Errorf("selected[%d] = %q, want %q", i, selected[i], want[i])
		}
	}

	if !f.PrepareEligible("") {
		t.Error("a case without a minimum version should always be prepared")
	}
}

func TestFilter_Eligible(t *testing.T) {
	f := NewFilter("2.5", "3.0")

	tests := []struct {
		name     string
		from     string
		declared string
		want     bool
	}{
		{"below from", "2.0", "", true},
		{"equal to from", "2.5", "", true},
		{"above from but within to", "2.6", "", true},
		{"equal to to", "3.0", "", true},
		{"above to", "3.1", "", false},
		{"declared within to", "3.1", "2.9", true},
		{"declared above to, min within from", "2.4", "3.5", true},
		{"unversioned", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Eligible(tt.from, tt.declared); got != tt.want {
				t.Errorf("Eligible(%q, %q) = %v, want %v", tt.from, tt.declared, got, tt.want)
			}
		})
	}
}

func TestFilter_String(t *testing.T) {
	f := NewFilter("2.5", "2.6")
	want := "marqo_from_version<='2.5' or marqo_version<='2.6'"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
