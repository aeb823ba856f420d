package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{name: "nil", items: nil, want: "(none)"},
		{name: "empty", items: []string{}, want: "(none)"},
		{name: "single", items: []string{"git"}, want: "git"},
		{name: "several", items: []string{"apt", "brew", "conda"}, want: "apt, brew, conda"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrNone(tt.items))
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "-", JoinOrDefault(nil, "-"))
	assert.Equal(t, "gpg, curl", JoinOrDefault([]string{"gpg", "curl"}, "-"))
}
