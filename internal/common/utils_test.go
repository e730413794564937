package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected MessageClass
	}{
		{"flood marker", "F12", ClassFlood},
		{"normal marker", "M7", ClassNormal},
		{"unrecognized prefix", "X1", ClassNeither},
		{"lowercase is not a marker", "m1", ClassNeither},
		{"empty id", "", ClassNeither},
		{"marker only", "F", ClassFlood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.id))
		})
	}
}

func TestMessageClassString(t *testing.T) {
	assert.Equal(t, "normal", ClassNormal.String())
	assert.Equal(t, "flood", ClassFlood.String())
	assert.Equal(t, "neither", ClassNeither.String())
	assert.True(t, ClassFlood.Counted())
	assert.False(t, ClassNeither.Counted())
}

func TestFormatShortNodeID(t *testing.T) {
	assert.Equal(t, "n1", FormatShortNodeID("n1"))
	assert.Equal(t, "abcdefghijkl", FormatShortNodeID("abcdefghijklmnop"))
}
