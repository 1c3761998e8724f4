package models

import "time"

// HistogramBucket is one bar of the price-per-m² distribution.
// From is inclusive, To exclusive except for the last bucket, which
// keeps the maximum value inside the histogram.
type HistogramBucket struct {
	From  float64
	To    float64
	Count int
}

// Histogram is the bucketed price-per-m² distribution for the chart.
type Histogram struct {
	Buckets []HistogramBucket
}

// Report is everything the result page needs from one search. A failed
// fetch produces a report with only SearchID, Params and Error set.
type Report struct {
	SearchID string
	Params   SearchParams

	// Resolved coordinates of the searched address, shown for
	// orientation. Resolution is best-effort and never fails a search.
	Resolved    bool
	ResolvedLat float64
	ResolvedLon float64

	// Shrinkage of the dataset along the pipeline.
	Fetched    int
	Normalized int
	Kept       int

	Rows       []Listing
	Average    float64
	HasAverage bool
	Histogram  Histogram

	Elapsed time.Duration
	Error   string
}
