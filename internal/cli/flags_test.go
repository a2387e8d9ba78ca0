package cli

import (
	"reflect"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"MinLength", flags.MinLength, 2},
		{"CacheBackend", flags.CacheBackend, "files"},
		{"DataDir", flags.DataDir, "data"},
		{"LogLevel", flags.LogLevel, "info"},
		{"MaxWords", flags.MaxWords, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	boolTests := []struct {
		name  string
		value bool
	}{
		{"ListWords", flags.ListWords},
		{"ForceRefresh", flags.ForceRefresh},
		{"Archive", flags.Archive},
		{"MCPMode", flags.MCPMode},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"StartWord", flags.StartWord},
		{"MetricsFile", flags.MetricsFile},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}

	if len(flags.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", flags.Sources)
	}
}
