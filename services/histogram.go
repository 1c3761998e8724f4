package services

import "cian-radar/models"

// HistogramBuckets is how many bars the result page draws.
const HistogramBuckets = 50

// BuildHistogram splits values into count equal-width buckets between
// the minimum and maximum of the distribution. The last bucket is
// closed on both ends so the maximum lands inside it. Input where every
// value is equal collapses to a single bucket, and empty input yields
// an empty histogram.
func BuildHistogram(values []float64, count int) models.Histogram {
	var h models.Histogram
	if len(values) == 0 || count <= 0 {
		return h
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		h.Buckets = []models.HistogramBucket{{From: min, To: max, Count: len(values)}}
		return h
	}

	width := (max - min) / float64(count)
	h.Buckets = make([]models.HistogramBucket, count)
	for i := range h.Buckets {
		h.Buckets[i].From = min + float64(i)*width
		h.Buckets[i].To = min + float64(i+1)*width
	}

	for _, v := range values {
		i := int((v - min) / width)
		if i >= count {
			i = count - 1
		}
		h.Buckets[i].Count++
	}
	return h
}
