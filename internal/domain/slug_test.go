package domain

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Getting Started", "getting-started"},
		{"  API   Reference!! ", "api-reference"},
		{"Über Café", "uber-cafe"},
		{"C++ & Go", "c-go"},
		{"v2.0 release", "v2-0-release"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"guides", true},
		{"api-reference", true},
		{"v2", true},
		{"", false},
		{"Guides", false},
		{"-guides", false},
		{"guides-", false},
		{"api--reference", false},
		{"api reference", false},
		{"api/reference", false},
	}

	for _, tt := range tests {
		if got := ValidSlug(tt.in); got != tt.want {
			t.Errorf("ValidSlug(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
