package cli

import (
	"testing"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"y", true, false},
		{"Y", true, false},
		{"yes", true, false},
		{"YES", true, false},
		{"true", true, false},
		{"1", true, false},
		{"n", false, false},
		{"no", false, false},
		{"false", false, false},
		{"0", false, false},
		{"", false, false},
		{"  yes  ", true, false},
		{"maybe", false, true},
		{"2", false, true},
	}

	for _, tt := range tests {
		got, err := ParseAnswer(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAnswer(%q) should fail", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAnswer(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAnswer(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
