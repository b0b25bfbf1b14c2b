// Package segmentation groups customers into behavioral segments with
// k-means over standardized RFM-style features.
//
// Results depend on the seed: the same view, options and seed always give
// the same segments, while a different seed may not.
package segmentation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"commerce-insights/internal/dataset"
)

var ErrInvalidOptions = errors.New("invalid segmentation options")

type Options struct {
	K                int     `json:"k"`
	Seed             int64   `json:"seed"`
	MaxIterations    int     `json:"max_iterations"`
	Restarts         int     `json:"restarts"`
	Tolerance        float64 `json:"tolerance"`
	SilhouetteSample int     `json:"silhouette_sample"`
}

var DefaultOptions = Options{
	K:                3,
	Seed:             42,
	MaxIterations:    300,
	Restarts:         10,
	Tolerance:        1e-4,
	SilhouetteSample: 2000,
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultOptions.MaxIterations
	}
	if o.Restarts <= 0 {
		o.Restarts = DefaultOptions.Restarts
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultOptions.Tolerance
	}
	return o
}

type Summary struct {
	Segment   int      `json:"segment"`
	Customers int      `json:"customers"`
	Means     Features `json:"means"`
}

type Result struct {
	Options Options `json:"options"`
	// Assignments maps customer_unique_id to segment label.
	Assignments map[string]int `json:"assignments"`
	// Segments are labelled 0..n-1 by descending mean total spend.
	Segments []Summary `json:"segments"`
	Skipped  int       `json:"skipped"`
	Scaler   Scaler    `json:"scaler"`
	Quality  Quality   `json:"quality"`
}

// Segment clusters the unique customers of v. K above the number of
// customers is reduced to that number; an empty view yields an empty
// result.
func Segment(v *dataset.View, opts Options) (*Result, error) {
	if opts.K < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidOptions, opts.K)
	}
	opts = opts.withDefaults()

	customers, skipped := Extract(v)
	res := &Result{Options: opts, Assignments: make(map[string]int, len(customers)), Skipped: skipped}
	if len(customers) == 0 {
		return res, nil
	}

	raw := make([][]float64, len(customers))
	for i, c := range customers {
		raw[i] = c.Features.vector()
	}
	res.Scaler = FitScaler(raw)
	points := res.Scaler.Transform(raw)

	k := opts.K
	if k > len(points) {
		k = len(points)
	}
	cl := kmeans(points, k, opts.Seed, opts.Restarts, opts.MaxIterations, opts.Tolerance)

	labels := relabel(raw, cl.labels)
	for i, c := range customers {
		res.Assignments[c.ID] = labels[i]
	}
	res.Segments = summarize(raw, labels)
	res.Quality = Quality{
		Inertia:          cl.inertia,
		Silhouette:       silhouette(points, labels, opts.SilhouetteSample, opts.Seed),
		CalinskiHarabasz: calinskiHarabasz(points, labels),
		DaviesBouldin:    daviesBouldin(points, labels),
	}
	return res, nil
}

// relabel renumbers the non-empty clusters by descending mean total
// spend, so label 0 is always the highest-value segment.
func relabel(raw [][]float64, labels []int) []int {
	spend := make(map[int][]float64)
	for i, l := range labels {
		spend[l] = append(spend[l], raw[i][1])
	}
	type cluster struct {
		label int
		mean  float64
	}
	clusters := make([]cluster, 0, len(spend))
	for l, s := range spend {
		m, _ := stats.Mean(s)
		clusters = append(clusters, cluster{label: l, mean: m})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].mean != clusters[j].mean {
			return clusters[i].mean > clusters[j].mean
		}
		return clusters[i].label < clusters[j].label
	})
	mapping := make(map[int]int, len(clusters))
	for i, c := range clusters {
		mapping[c.label] = i
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = mapping[l]
	}
	return out
}

func summarize(raw [][]float64, labels []int) []Summary {
	members := make(map[int][]int)
	for i, l := range labels {
		members[l] = append(members[l], i)
	}
	out := make([]Summary, len(members))
	col := make([]float64, 0, len(raw))
	for l := range out {
		idx := members[l]
		means := make([]float64, len(FeatureNames))
		for j := range means {
			col = col[:0]
			for _, i := range idx {
				col = append(col, raw[i][j])
			}
			means[j], _ = stats.Mean(col)
		}
		out[l] = Summary{Segment: l, Customers: len(idx), Means: featuresOf(means)}
	}
	return out
}
