package config

import (
	"reflect"
	"testing"
)

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"http://localhost:5173", []string{"http://localhost:5173"}},
		{"https://a.example, https://b.example", []string{"https://a.example", "https://b.example"}},
		{" , https://a.example, ", []string{"https://a.example"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		if got := SplitOrigins(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitOrigins(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
