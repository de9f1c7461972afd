package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesSelector(t *testing.T) {
	tests := []struct {
		name      string
		objLabels map[string]string
		selector  map[string]string
		want      bool
	}{
		{
			name:      "exact match",
			objLabels: map[string]string{"app": "web"},
			selector:  map[string]string{"app": "web"},
			want:      true,
		},
		{
			name:      "extra pod labels ignored",
			objLabels: map[string]string{"app": "web", "tier": "frontend", "env": "prod"},
			selector:  map[string]string{"app": "web"},
			want:      true,
		},
		{
			name:      "subset of multi-key selector is not adopted",
			objLabels: map[string]string{"app": "web"},
			selector:  map[string]string{"app": "web", "tier": "frontend"},
			want:      false,
		},
		{
			name:      "value mismatch",
			objLabels: map[string]string{"app": "api"},
			selector:  map[string]string{"app": "web"},
			want:      false,
		},
		{
			name:      "empty selector matches nothing",
			objLabels: map[string]string{"app": "web"},
			selector:  nil,
			want:      false,
		},
		{
			name:      "no labels at all",
			objLabels: nil,
			selector:  map[string]string{"app": "web"},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesSelector(tt.objLabels, tt.selector))
		})
	}
}

func TestMergeLabels(t *testing.T) {
	base := map[string]string{"app": "web"}
	extra := map[string]string{"tier": "frontend", "app": "override"}

	merged := MergeLabels(base, extra)

	assert.Equal(t, "override", merged["app"])
	assert.Equal(t, "frontend", merged["tier"])
	// inputs untouched
	assert.Equal(t, "web", base["app"])
}
