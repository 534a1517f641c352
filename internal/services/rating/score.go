package rating

import (
	"math"
	"unicode/utf8"
)

const maxReviewLength = 500

// MeanRating is the raw 0-5 average of a set of ratings, rounded to one
// decimal. An empty set averages zero.
func MeanRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}

// validReviewLength counts characters, matching the char_length check the
// store enforces; byte length would reject multibyte reviews early.
func validReviewLength(review string) bool {
	return utf8.RuneCountInString(review) <= maxReviewLength
}

// ScoreFromRatings maps a set of 1-5 star ratings onto the 0-100 trust
// scale: the rounded mean scaled by 20. An empty set scores zero.
func ScoreFromRatings(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	score := int(math.Round(float64(sum) / float64(len(ratings)) * 20))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
