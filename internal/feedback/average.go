package feedback

import (
	"math"

	"github.com/samadammeek/core-geonetwork/internal/domain"
)

// Average computes the per-criterion rating averages of a feedback list.
// Criteria nobody rated are absent from the result.
func Average(list []domain.UserFeedback) domain.RatingAverage {
	sums := make(map[int]int)
	counts := make(map[int]int)
	rated := 0

	for _, fb := range list {
		hasRating := false
		for criterion, value := range fb.Ratings {
			if value < domain.MinRating || value > domain.MaxRating {
				continue
			}
			sums[criterion] += value
			counts[criterion]++
			hasRating = true
		}
		if hasRating {
			rated++
		}
	}

	averages := make(map[int]float32, len(sums))
	for criterion, sum := range sums {
		averages[criterion] = roundToOneDecimal(float32(sum) / float32(counts[criterion]))
	}

	return domain.RatingAverage{
		Averages:      averages,
		RatingCount:   rated,
		FeedbackCount: len(list),
	}
}

func roundToOneDecimal(value float32) float32 {
	return float32(math.Round(float64(value)*10) / 10.0)
}
