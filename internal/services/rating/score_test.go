package rating

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreFromRatings(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    int
	}{
		{"no ratings", nil, 0},
		{"single five star", []int{5}, 100},
		{"single one star", []int{1}, 20},
		{"mixed", []int{5, 3}, 80},
		{"rounds half up", []int{4, 3}, 70},
		{"fractional mean", []int{5, 4, 4}, 87},
		{"all threes", []int{3, 3, 3, 3}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreFromRatings(tt.ratings))
		})
	}
}

func TestMeanRating(t *testing.T) {
	assert.Equal(t, 0.0, MeanRating(nil))
	assert.Equal(t, 5.0, MeanRating([]int{5}))
	assert.Equal(t, 4.0, MeanRating([]int{5, 3}))
	assert.Equal(t, 4.3, MeanRating([]int{5, 4, 4}))
	assert.Equal(t, 3.5, MeanRating([]int{4, 3}))
}

func TestValidReviewLengthCountsCharacters(t *testing.T) {
	assert.True(t, validReviewLength(""))
	assert.True(t, validReviewLength(strings.Repeat("a", maxReviewLength)))
	assert.False(t, validReviewLength(strings.Repeat("a", maxReviewLength+1)))

	// 500 multibyte characters are within the limit even though their
	// byte length is far beyond it.
	assert.True(t, validReviewLength(strings.Repeat("é", maxReviewLength)))
	assert.False(t, validReviewLength(strings.Repeat("é", maxReviewLength+1)))
}
