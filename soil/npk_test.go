package soil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPKRatio(t *testing.T) {
	tests := []struct {
		name    string
		n, p, k *float64
		want    string
	}{
		{"simple", f(40), f(20), f(60), "2:1:3"},
		{"all zero", f(0), f(0), f(0), "0:0:0"},
		{"fractional", f(30), f(20), f(50), "1.5:1:2.5"},
		{"rounded to one decimal", f(10), f(30), f(70), "1:3:7"},
		{"thirds", f(30), f(10), f(1), "30:10:1"},
		{"zero excluded from divisor", f(0), f(20), f(40), "0:1:2"},
		{"repeating", f(10), f(30), f(20), "1:3:2"},
		{"one third", f(1), f(3), f(3), "1:3:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NPKRatio(tt.n, tt.p, tt.k)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNPKRatioRoundsParts(t *testing.T) {
	got := NPKRatio(f(10), f(30), f(25))
	require.NotNil(t, got)
	assert.Equal(t, "1:3:2.5", *got)

	got = NPKRatio(f(3), f(10), f(3))
	require.NotNil(t, got)
	assert.Equal(t, "1:3.3:1", *got)
}

func TestNPKRatioNil(t *testing.T) {
	assert.Nil(t, NPKRatio(nil, f(20), f(60)))
	assert.Nil(t, NPKRatio(f(40), nil, f(60)))
	assert.Nil(t, NPKRatio(f(40), f(20), nil))
	assert.Nil(t, NPKRatio(f(-1), f(20), f(60)))
}

func TestNPKRatioIdempotent(t *testing.T) {
	a := NPKRatio(f(40), f(20), f(60))
	b := NPKRatio(f(40), f(20), f(60))
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, *a, *b)
}
