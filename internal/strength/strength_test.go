package strength

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate(t *testing.T) {
	tests := []struct {
		password string
		score    int
		want     Rating
	}{
		{"", 0, Weak},
		{"abc", 1, Weak},
		{"abcdefgh", 2, Weak},
		{"Abcdefgh", 3, Medium},
		{"abc1!", 3, Medium},
		{"Abcdefg1", 4, Strong},
		{"Abcdefg1!", 5, VeryStrong},
		{"ÄÖÜäöü12", 4, Strong},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.score, Score(tt.password))
			assert.Equal(t, tt.want, Rate(tt.password))
		})
	}
}

func TestRating_String(t *testing.T) {
	assert.Equal(t, "Weak", Weak.String())
	assert.Equal(t, "Medium", Medium.String())
	assert.Equal(t, "Strong", Strong.String())
	assert.Equal(t, "Very Strong", VeryStrong.String())
	assert.Equal(t, "Rating(9)", Rating(9).String())
}

func TestGenerate_AlwaysVeryStrong(t *testing.T) {
	for i := 0; i < 200; i++ {
		p, err := Generate(DefaultLength)
		require.NoError(t, err)
		require.Len(t, p, DefaultLength)
		require.Equal(t, VeryStrong, Rate(p), "generated %q", p)
	}
}

func TestGenerate_Lengths(t *testing.T) {
	for _, n := range []int{MinLength, 16, 64, MaxLength} {
		p, err := Generate(n)
		require.NoError(t, err)
		assert.Len(t, p, n)
		for _, r := range p {
			assert.True(t, strings.ContainsRune(Lowercase+Uppercase+Digits+Symbols, r))
		}
	}

	tests := []struct {
		length int
		want   error
	}{
		{MinLength - 1, ErrTooShort},
		{-1, ErrTooShort},
		{MaxLength + 1, ErrTooLong},
		{math.MaxInt, ErrTooLong},
	}
	for _, tt := range tests {
		_, err := Generate(tt.length)
		require.ErrorIs(t, err, tt.want, "length %d", tt.length)
	}
}

func TestGenerate_Distinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		p, err := Generate(DefaultLength)
		require.NoError(t, err)
		_, dup := seen[p]
		require.False(t, dup)
		seen[p] = struct{}{}
	}
}
